package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
)

// Client is the order API collaborator. The engine never owns order data; all
// durable reads and status mutations go through here.
type Client interface {
	RestaurantOrders(ctx context.Context, restaurantID string) ([]order.Order, error)
	Archive(ctx context.Context, q ArchiveQuery) (ArchiveResult, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID string, upd ItemStatusUpdate) (order.Order, error)
}

// ArchiveQuery selects one page of historical orders.
type ArchiveQuery struct {
	RestaurantID string
	Page         int
	Limit        int
	Statuses     []order.Status
	StartDate    *time.Time
	EndDate      *time.Time
}

type ArchiveMeta struct {
	TotalPages int `json:"total_pages"`
}

type ArchiveResult struct {
	Data []order.Order `json:"data"`
	Meta ArchiveMeta   `json:"meta"`
}

// ItemStatusUpdate is the body of an item status mutation.
type ItemStatusUpdate struct {
	Status order.ItemStatus `json:"status"`
	UserID string           `json:"user_id,omitempty"`
}

// HTTPClient implements Client against the order API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a new order API client. Status mutations carry no
// client-side timeout; cancellation comes from the caller's context.
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = "http://localhost:8084"
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

func (c *HTTPClient) RestaurantOrders(ctx context.Context, restaurantID string) ([]order.Order, error) {
	endpoint := fmt.Sprintf("%s/restaurants/%s/orders", c.baseURL, url.PathEscape(restaurantID))

	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch orders for restaurant %s: %w", restaurantID, err)
	}
	return orders, nil
}

func (c *HTTPClient) Archive(ctx context.Context, q ArchiveQuery) (ArchiveResult, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	for _, status := range q.Statuses {
		query.Add("status", string(status))
	}
	if q.StartDate != nil {
		query.Set("start_date", q.StartDate.Format(time.RFC3339))
	}
	if q.EndDate != nil {
		query.Set("end_date", q.EndDate.Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("%s/restaurants/%s/orders/archive?%s",
		c.baseURL, url.PathEscape(q.RestaurantID), query.Encode())

	var result ArchiveResult
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return ArchiveResult{}, fmt.Errorf("failed to fetch archive for restaurant %s: %w", q.RestaurantID, err)
	}
	return result, nil
}

func (c *HTTPClient) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
	endpoint := fmt.Sprintf("%s/orders/%s/status", c.baseURL, url.PathEscape(orderID))
	body := map[string]string{"status": string(status)}

	var updated order.Order
	if err := c.do(ctx, http.MethodPatch, endpoint, body, &updated); err != nil {
		return order.Order{}, fmt.Errorf("failed to update status of order %s: %w", orderID, err)
	}
	return updated, nil
}

func (c *HTTPClient) UpdateItemStatus(ctx context.Context, orderID, itemID string, upd ItemStatusUpdate) (order.Order, error) {
	endpoint := fmt.Sprintf("%s/orders/%s/items/%s/status",
		c.baseURL, url.PathEscape(orderID), url.PathEscape(itemID))

	var updated order.Order
	if err := c.do(ctx, http.MethodPatch, endpoint, upd, &updated); err != nil {
		return order.Order{}, fmt.Errorf("failed to update status of item %s in order %s: %w", itemID, orderID, err)
	}
	return updated, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("order API returned %d: %s", resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
