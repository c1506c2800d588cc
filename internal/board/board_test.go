package board

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Helarman/crm-frontend-sub004/internal/audio"
	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/internal/orderapi"
	"github.com/Helarman/crm-frontend-sub004/internal/prefs"
	"github.com/appetiteclub/apt"
)

type boardFixture struct {
	board      *Board
	client     *MockClient
	audio      *MockAudio
	notifier   *MockNotifier
	highlights *HighlightRegistry
	prefs      *prefs.MemoryStore
}

func newBoardFixture(t *testing.T, surface Surface, options ...Option) *boardFixture {
	t.Helper()

	client := &MockClient{}
	mockAudio := &MockAudio{}
	notifier := &MockNotifier{}
	store := prefs.NewMemoryStore()
	highlights := NewHighlightRegistry(testTTL)
	t.Cleanup(highlights.Stop)

	var b *Board
	dispatcher := NewDispatcher(mockAudio, notifier, highlights, func() bool { return b.SoundEnabled() }, apt.NewNoopLogger())
	b = NewBoard(surface, client, store, dispatcher, NewSnapshotStore(), highlights, notifier, apt.NewNoopLogger(), options...)

	return &boardFixture{
		board:      b,
		client:     client,
		audio:      mockAudio,
		notifier:   notifier,
		highlights: highlights,
		prefs:      store,
	}
}

func TestSelectRestaurantFiltersInitialFetch(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.client.RestaurantOrdersFunc = func(ctx context.Context, restaurantID string) ([]order.Order, error) {
		return []order.Order{
			newTestOrder("o1", order.StatusPreparing, 0),
			newTestOrder("o2", order.StatusCompleted, 0),
			newTestOrder("o3", order.StatusCancelled, 0),
		}, nil
	}

	if err := fx.board.SelectRestaurant(context.Background(), "r1"); err != nil {
		t.Fatalf("SelectRestaurant() error = %v", err)
	}

	got := orderIDs(fx.board.Orders())
	if !sameIDs(got, []string{"o1"}) {
		t.Errorf("kitchen canonical list = %v, want [o1]", got)
	}

	if saved, _ := fx.prefs.Get("kitchen.restaurant_id"); saved != "r1" {
		t.Errorf("persisted restaurant = %q, want r1", saved)
	}
}

func TestSelectRestaurantFailureIsVisible(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.client.RestaurantOrdersFunc = func(ctx context.Context, restaurantID string) ([]order.Order, error) {
		return nil, errors.New("connection refused")
	}

	if err := fx.board.SelectRestaurant(context.Background(), "r1"); err == nil {
		t.Fatal("SelectRestaurant() error = nil, want error")
	}

	if fx.board.LoadError() == nil {
		t.Error("LoadError() = nil, want visible error state")
	}
	views := fx.board.Project()
	if views.LoadError == "" {
		t.Error("Project().LoadError empty, want underlying message surfaced")
	}
}

// Scenario: CONFIRMED order goes PREPARING via push; it shows up on the
// kitchen board and the new-order cue fires exactly once. A follow-up READY
// event keeps it on the board without refiring.
func TestKitchenEventLifecycle(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.client.RestaurantOrdersFunc = func(ctx context.Context, restaurantID string) ([]order.Order, error) {
		return []order.Order{newTestOrder("o1", order.StatusConfirmed, 0)}, nil
	}
	if err := fx.board.SelectRestaurant(context.Background(), "r1"); err != nil {
		t.Fatalf("SelectRestaurant() error = %v", err)
	}

	fx.board.Apply("order.status_updated", newTestOrder("o1", order.StatusPreparing, 0))

	views := fx.board.Project()
	if !sameIDs(orderIDs(views.KitchenActive), []string{"o1"}) {
		t.Fatalf("kitchen active = %v, want [o1]", orderIDs(views.KitchenActive))
	}
	if fx.audio.CountOf(audio.CueNewOrder) != 1 {
		t.Errorf("new-order cue count = %d, want 1", fx.audio.CountOf(audio.CueNewOrder))
	}

	fx.board.Apply("order.status_updated", newTestOrder("o1", order.StatusReady, 0))

	views = fx.board.Project()
	if !sameIDs(orderIDs(views.KitchenActive), []string{"o1"}) {
		t.Fatalf("kitchen active after READY = %v, want [o1]", orderIDs(views.KitchenActive))
	}
	if fx.audio.CountOf(audio.CueNewOrder) != 1 {
		t.Errorf("new-order cue refired on READY, count = %d", fx.audio.CountOf(audio.CueNewOrder))
	}
}

func TestApplyDuplicateEventIsIdempotentAndSilent(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)

	evt := newTestOrder("o1", order.StatusPreparing, 0)
	fx.board.Apply("order.status_updated", evt)
	once := fx.board.Orders()
	cues := len(fx.audio.Played())

	// At-least-once delivery: the same event again must change nothing.
	fx.board.Apply("order.status_updated", evt)

	if !reflect.DeepEqual(once, fx.board.Orders()) {
		t.Error("duplicate event changed the canonical list")
	}
	if len(fx.audio.Played()) != cues {
		t.Errorf("duplicate event played cues: %v", fx.audio.Played())
	}
}

// Scenario: a CANCELLED event removes the order and its snapshot; a replay of
// the same event (at-least-once delivery) must not refire the refund effects
// carried in its payload.
func TestTerminalReplayDoesNotRefireRefund(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.board.Apply("order.created", newTestOrder("o1", order.StatusPreparing, 0))

	cancelled := newTestOrder("o1", order.StatusCancelled, 0)
	cancelled.Items = []order.Item{{ID: "i1", Status: order.ItemRefunded}}

	fx.board.Apply("order.status_updated", cancelled)
	if fx.audio.CountOf(audio.CueRefund) != 1 {
		t.Fatalf("refund cue count = %d after cancellation, want 1", fx.audio.CountOf(audio.CueRefund))
	}

	fx.board.Apply("order.status_updated", cancelled)
	if fx.audio.CountOf(audio.CueRefund) != 1 {
		t.Errorf("refund cue refired on replay, count = %d", fx.audio.CountOf(audio.CueRefund))
	}
}

// Scenario: a COMPLETED order arriving via push leaves the kitchen list.
func TestKitchenCompletedRemoval(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.board.Apply("order.created", newTestOrder("o3", order.StatusPreparing, 0))

	fx.board.Apply("order.status_updated", newTestOrder("o3", order.StatusCompleted, 0))

	if got := fx.board.Orders(); len(got) != 0 {
		t.Errorf("kitchen list = %v after COMPLETED, want empty", orderIDs(got))
	}
}

// Scenario: a COMPLETED delivery order for the current courier shows up in
// the completed tab only.
func TestDeliveryCompletedTabOnly(t *testing.T) {
	fx := newBoardFixture(t, SurfaceDelivery, WithViewer(Viewer{CourierID: "c1", Restricted: true}))

	fx.board.Apply("order.status_updated", newDeliveryOrder("o3", order.StatusReady, "c1", 0))
	fx.board.Apply("order.status_updated", newDeliveryOrder("o3", order.StatusCompleted, "c1", 0))

	views := fx.board.Project()
	if !sameIDs(orderIDs(views.DeliveryCompleted), []string{"o3"}) {
		t.Errorf("completed tab = %v, want [o3]", orderIDs(views.DeliveryCompleted))
	}
	if len(views.DeliveryActive) != 0 {
		t.Errorf("active tab = %v, want empty", orderIDs(views.DeliveryActive))
	}
	if len(views.DeliveryAvailable) != 0 {
		t.Errorf("available tab = %v, want empty", orderIDs(views.DeliveryAvailable))
	}
}

func TestUpdateOrderStatusOptimisticCommit(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.board.Apply("order.created", newTestOrder("o1", order.StatusPreparing, 0))

	confirmed := newTestOrder("o1", order.StatusReady, 0)
	fx.client.UpdateOrderStatusFunc = func(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
		return confirmed, nil
	}

	if err := fx.board.UpdateOrderStatus(context.Background(), "o1", order.StatusReady); err != nil {
		t.Fatalf("UpdateOrderStatus() error = %v", err)
	}

	got := fx.board.Orders()
	if len(got) != 1 || got[0].Status != order.StatusReady {
		t.Errorf("list after confirmed mutation = %+v, want o1 READY", got)
	}
}

func TestUpdateOrderStatusRollbackOnRejection(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.board.Apply("order.created", newTestOrder("o1", order.StatusPreparing, 0))
	before := fx.board.Orders()

	fx.client.UpdateOrderStatusFunc = func(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
		return order.Order{}, errors.New("409 conflict")
	}

	if err := fx.board.UpdateOrderStatus(context.Background(), "o1", order.StatusReady); err == nil {
		t.Fatal("UpdateOrderStatus() error = nil, want rejection")
	}

	if !reflect.DeepEqual(before, fx.board.Orders()) {
		t.Errorf("list not restored to pre-mutation state: %v", orderIDs(fx.board.Orders()))
	}
	if fx.notifier.Count() == 0 {
		t.Error("no failure notice surfaced after rollback")
	}
}

func TestUpdateItemStatusRollbackOnRejection(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	o := newTestOrder("o1", order.StatusPreparing, 0)
	o.Items = []order.Item{{ID: "i1", Status: order.ItemCreated}}
	fx.board.Apply("order.created", o)
	before := fx.board.Orders()

	fx.client.UpdateItemStatusFunc = func(ctx context.Context, orderID, itemID string, upd orderapi.ItemStatusUpdate) (order.Order, error) {
		return order.Order{}, errors.New("rejected")
	}

	err := fx.board.UpdateItemStatus(context.Background(), "o1", "i1", orderapi.ItemStatusUpdate{Status: order.ItemInProgress})
	if err == nil {
		t.Fatal("UpdateItemStatus() error = nil, want rejection")
	}
	if !reflect.DeepEqual(before, fx.board.Orders()) {
		t.Error("item mutation not rolled back")
	}
}

// The optimistic write must not advance the snapshot baseline; the cue for
// the transition fires when the server's document confirms it, and only once.
func TestOptimisticWriteDoesNotEatTransition(t *testing.T) {
	fx := newBoardFixture(t, SurfaceKitchen)
	fx.board.Apply("order.created", newTestOrder("o1", order.StatusConfirmed, 0))

	confirmed := newTestOrder("o1", order.StatusPreparing, 0)
	fx.client.UpdateOrderStatusFunc = func(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
		return confirmed, nil
	}

	if err := fx.board.UpdateOrderStatus(context.Background(), "o1", order.StatusPreparing); err != nil {
		t.Fatalf("UpdateOrderStatus() error = %v", err)
	}
	if fx.audio.CountOf(audio.CueNewOrder) != 1 {
		t.Fatalf("new-order cue count = %d after confirmation, want 1", fx.audio.CountOf(audio.CueNewOrder))
	}

	// The push feed replays the same transition; the snapshot already
	// reflects it, so nothing refires.
	fx.board.Apply("order.status_updated", confirmed)
	if fx.audio.CountOf(audio.CueNewOrder) != 1 {
		t.Errorf("new-order cue refired on push replay, count = %d", fx.audio.CountOf(audio.CueNewOrder))
	}
}

func TestSoundPreferencePersistence(t *testing.T) {
	fx := newBoardFixture(t, SurfaceDelivery)

	if !fx.board.SoundEnabled() {
		t.Error("SoundEnabled() = false by default, want true")
	}

	if err := fx.board.SetSoundEnabled(false); err != nil {
		t.Fatalf("SetSoundEnabled() error = %v", err)
	}
	if fx.board.SoundEnabled() {
		t.Error("SoundEnabled() = true after disabling")
	}

	if raw, _ := fx.prefs.Get("delivery.sound_enabled"); raw != "false" {
		t.Errorf("persisted value = %q, want false", raw)
	}
}
