package board

import (
	"context"
	"sync"
	"time"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/internal/orderapi"
)

// MockClient is a test mock for orderapi.Client
type MockClient struct {
	RestaurantOrdersFunc  func(ctx context.Context, restaurantID string) ([]order.Order, error)
	ArchiveFunc           func(ctx context.Context, q orderapi.ArchiveQuery) (orderapi.ArchiveResult, error)
	UpdateOrderStatusFunc func(ctx context.Context, orderID string, status order.Status) (order.Order, error)
	UpdateItemStatusFunc  func(ctx context.Context, orderID, itemID string, upd orderapi.ItemStatusUpdate) (order.Order, error)
}

func (m *MockClient) RestaurantOrders(ctx context.Context, restaurantID string) ([]order.Order, error) {
	if m.RestaurantOrdersFunc != nil {
		return m.RestaurantOrdersFunc(ctx, restaurantID)
	}
	return nil, nil
}

func (m *MockClient) Archive(ctx context.Context, q orderapi.ArchiveQuery) (orderapi.ArchiveResult, error) {
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, q)
	}
	return orderapi.ArchiveResult{}, nil
}

func (m *MockClient) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
	if m.UpdateOrderStatusFunc != nil {
		return m.UpdateOrderStatusFunc(ctx, orderID, status)
	}
	return order.Order{}, nil
}

func (m *MockClient) UpdateItemStatus(ctx context.Context, orderID, itemID string, upd orderapi.ItemStatusUpdate) (order.Order, error) {
	if m.UpdateItemStatusFunc != nil {
		return m.UpdateItemStatusFunc(ctx, orderID, itemID, upd)
	}
	return order.Order{}, nil
}

// MockAudio records played cues
type MockAudio struct {
	mu   sync.Mutex
	Cues []string
}

func (m *MockAudio) Play(cue string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cues = append(m.Cues, cue)
}

func (m *MockAudio) Played() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.Cues))
	copy(result, m.Cues)
	return result
}

func (m *MockAudio) CountOf(cue string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.Cues {
		if c == cue {
			count++
		}
	}
	return count
}

// MockNotifier records toasts
type MockNotifier struct {
	mu     sync.Mutex
	Toasts []string
}

func (m *MockNotifier) Toast(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Toasts = append(m.Toasts, message)
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Toasts)
}

// newTestOrder builds an order with predictable timestamps for sorting tests.
func newTestOrder(id string, status order.Status, createdOffset time.Duration) order.Order {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return order.Order{
		ID:        id,
		Number:    id,
		Status:    status,
		Type:      order.TypeDineIn,
		CreatedAt: base.Add(createdOffset),
		UpdatedAt: base.Add(createdOffset),
	}
}

func newDeliveryOrder(id string, status order.Status, courierID string, createdOffset time.Duration) order.Order {
	o := newTestOrder(id, status, createdOffset)
	o.Type = order.TypeDelivery
	if courierID != "" {
		o.Courier = &order.Courier{ID: courierID}
	}
	return o
}

func orderIDs(list []order.Order) []string {
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
