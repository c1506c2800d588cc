package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Helarman/crm-frontend-sub004/internal/board"
	"github.com/Helarman/crm-frontend-sub004/internal/events"
	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/internal/orderapi"
	"github.com/Helarman/crm-frontend-sub004/internal/prefs"
	"github.com/Helarman/crm-frontend-sub004/pkg/event"
	"github.com/appetiteclub/apt"
)

// mockClient implements orderapi.Client with per-call overrides
type mockClient struct {
	RestaurantOrdersFunc func(ctx context.Context, restaurantID string) ([]order.Order, error)
}

func (m *mockClient) RestaurantOrders(ctx context.Context, restaurantID string) ([]order.Order, error) {
	if m.RestaurantOrdersFunc != nil {
		return m.RestaurantOrdersFunc(ctx, restaurantID)
	}
	return nil, nil
}

func (m *mockClient) Archive(ctx context.Context, q orderapi.ArchiveQuery) (orderapi.ArchiveResult, error) {
	return orderapi.ArchiveResult{}, nil
}

func (m *mockClient) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
	return order.Order{}, nil
}

func (m *mockClient) UpdateItemStatus(ctx context.Context, orderID, itemID string, upd orderapi.ItemStatusUpdate) (order.Order, error) {
	return order.Order{}, nil
}

// mockTransport keeps live handlers per topic so tests can push feed messages
type mockTransport struct {
	handlers map[string]func(data []byte)
}

func newMockTransport() *mockTransport {
	return &mockTransport{handlers: make(map[string]func(data []byte))}
}

func (m *mockTransport) Subscribe(topic string, handler func(data []byte)) (events.Subscription, error) {
	m.handlers[topic] = handler
	return &mockSubscription{transport: m, topic: topic}, nil
}

func (m *mockTransport) IsConnected() bool { return true }

func (m *mockTransport) Deliver(topic string, data []byte) bool {
	handler, ok := m.handlers[topic]
	if !ok {
		return false
	}
	handler(data)
	return true
}

type mockSubscription struct {
	transport *mockTransport
	topic     string
}

func (s *mockSubscription) Unsubscribe() error {
	delete(s.transport.handlers, s.topic)
	return nil
}

func newSwitchFixture(t *testing.T, client *mockClient) (*board.Board, *events.OrderSubscriber, *mockTransport) {
	t.Helper()

	b := board.NewBoard(
		board.SurfaceKitchen,
		client,
		prefs.NewMemoryStore(),
		nil,
		board.NewSnapshotStore(),
		nil,
		nil,
		apt.NewNoopLogger(),
	)
	transport := newMockTransport()
	subscriber := events.NewOrderSubscriber(transport, events.Callbacks{
		OnOrderCreated:       func(o order.Order) { b.Apply(event.EventOrderCreated, o) },
		OnOrderUpdated:       func(o order.Order) { b.Apply(event.EventOrderUpdated, o) },
		OnOrderStatusUpdated: func(o order.Order) { b.Apply(event.EventOrderStatusUpdated, o) },
		OnOrderModified:      func(o order.Order) { b.Apply(event.EventOrderModified, o) },
	}, true, apt.NewNoopLogger())

	return b, subscriber, transport
}

func feedPayload(t *testing.T, restaurantID string, o order.Order) []byte {
	t.Helper()
	data, err := json.Marshal(event.OrderEvent{
		EventType:    event.EventOrderCreated,
		OccurredAt:   time.Now(),
		RestaurantID: restaurantID,
		Order:        o,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func TestSwitchRestaurantMovesSubscription(t *testing.T) {
	b, subscriber, transport := newSwitchFixture(t, &mockClient{})

	ctx := context.Background()
	if err := switchRestaurant(ctx, b, subscriber, "r1", apt.NewNoopLogger()); err != nil {
		t.Fatalf("switchRestaurant(r1) error = %v", err)
	}
	if err := switchRestaurant(ctx, b, subscriber, "r2", apt.NewNoopLogger()); err != nil {
		t.Fatalf("switchRestaurant(r2) error = %v", err)
	}

	o := order.Order{ID: "o1", Status: order.StatusPreparing}
	if delivered := transport.Deliver(event.OrderFeedTopic("r1"), feedPayload(t, "r1", o)); delivered {
		t.Error("r1 feed handler still live after switching to r2")
	}
	if !transport.Deliver(event.OrderFeedTopic("r2"), feedPayload(t, "r2", o)) {
		t.Fatal("r2 feed handler not registered")
	}
	if got := b.Orders(); len(got) != 1 || got[0].ID != "o1" {
		t.Errorf("board orders after r2 event = %+v", got)
	}
}

func TestSwitchRestaurantFailedFetchTearsDownOldFeed(t *testing.T) {
	client := &mockClient{}
	b, subscriber, transport := newSwitchFixture(t, client)

	ctx := context.Background()
	if err := switchRestaurant(ctx, b, subscriber, "r1", apt.NewNoopLogger()); err != nil {
		t.Fatalf("switchRestaurant(r1) error = %v", err)
	}

	client.RestaurantOrdersFunc = func(ctx context.Context, restaurantID string) ([]order.Order, error) {
		return nil, errors.New("connection refused")
	}
	if err := switchRestaurant(ctx, b, subscriber, "r2", apt.NewNoopLogger()); err == nil {
		t.Fatal("switchRestaurant(r2) expected error")
	}
	if b.RestaurantID() != "r2" {
		t.Errorf("RestaurantID() = %q, want r2", b.RestaurantID())
	}
	if b.LoadError() == nil {
		t.Error("LoadError() = nil, want visible error state")
	}

	// The old feed must be gone: r1 events may not repopulate the r2 error board.
	stale := order.Order{ID: "stale", Status: order.StatusPreparing}
	if delivered := transport.Deliver(event.OrderFeedTopic("r1"), feedPayload(t, "r1", stale)); delivered {
		t.Error("r1 feed handler still live after failed switch to r2")
	}
	if got := b.Orders(); len(got) != 0 {
		t.Errorf("board orders after failed switch = %+v, want empty", got)
	}
}
