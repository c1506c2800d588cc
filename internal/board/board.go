package board

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/internal/orderapi"
	"github.com/Helarman/crm-frontend-sub004/internal/prefs"
	"github.com/appetiteclub/apt"
)

// Board owns the canonical order list for one operator surface. Every push
// event and every REST result funnels through Apply, which serializes on the
// board mutex: detect transitions against the previous snapshot, commit the
// new list, then overwrite the snapshot store, strictly in that order.
type Board struct {
	mu sync.Mutex

	surface    Surface
	client     orderapi.Client
	prefs      prefs.Store
	dispatcher *Dispatcher
	snapshots  *SnapshotStore
	highlights *HighlightRegistry
	notifier   Notifier
	logger     apt.Logger

	orders       []order.Order
	viewer       Viewer
	restaurantID string
	loadErr      error

	onChange func()
}

// Option configures a Board.
type Option func(*Board)

func WithViewer(viewer Viewer) Option {
	return func(b *Board) { b.viewer = viewer }
}

// WithOnChange registers a hook invoked after every committed list change.
func WithOnChange(fn func()) Option {
	return func(b *Board) { b.onChange = fn }
}

func NewBoard(
	surface Surface,
	client orderapi.Client,
	store prefs.Store,
	dispatcher *Dispatcher,
	snapshots *SnapshotStore,
	highlights *HighlightRegistry,
	notifier Notifier,
	logger apt.Logger,
	options ...Option,
) *Board {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if snapshots == nil {
		snapshots = NewSnapshotStore()
	}
	board := &Board{
		surface:    surface,
		client:     client,
		prefs:      store,
		dispatcher: dispatcher,
		snapshots:  snapshots,
		highlights: highlights,
		notifier:   notifier,
		logger:     logger,
	}
	for _, opt := range options {
		opt(board)
	}
	return board
}

// SelectRestaurant performs the initial fetch for a restaurant and resets the
// canonical list to the server's view. A fetch failure leaves the board in a
// visible error state; there is no automatic retry.
func (b *Board) SelectRestaurant(ctx context.Context, restaurantID string) error {
	orders, err := b.client.RestaurantOrders(ctx, restaurantID)
	if err != nil {
		b.mu.Lock()
		b.restaurantID = restaurantID
		b.loadErr = err
		b.orders = nil
		b.snapshots.ReplaceAll(nil)
		b.mu.Unlock()
		b.notifyChange()
		return fmt.Errorf("failed to load orders for restaurant %s: %w", restaurantID, err)
	}

	list := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		if b.surface == SurfaceKitchen && o.Status == order.StatusCompleted {
			continue
		}
		list = append(list, o)
	}

	b.mu.Lock()
	b.restaurantID = restaurantID
	b.loadErr = nil
	b.orders = list
	b.snapshots.ReplaceAll(list)
	b.mu.Unlock()

	if b.prefs != nil {
		if err := b.prefs.Set(b.prefKey("restaurant_id"), restaurantID); err != nil {
			b.logger.Errorf("failed to persist restaurant selection: %v", err)
		}
	}

	b.notifyChange()
	return nil
}

// LastRestaurant returns the persisted restaurant selection for this surface.
func (b *Board) LastRestaurant() (string, bool) {
	if b.prefs == nil {
		return "", false
	}
	return b.prefs.Get(b.prefKey("restaurant_id"))
}

// Apply folds one push event into the board. Duplicate delivery is harmless:
// a replay carries no new transitions (the snapshot already matches) and the
// reconciled list is unchanged.
func (b *Board) Apply(eventType string, incoming order.Order) {
	b.mu.Lock()

	var prevPtr *order.Order
	if prev, ok := b.snapshots.Get(incoming.ID); ok {
		prevPtr = &prev
	}

	// A terminal event for an id without a snapshot is either noise or a
	// replay of the event that already removed the order (removal dropped the
	// snapshot entry); dispatching it would refire refund effects.
	if b.dispatcher != nil && !(prevPtr == nil && incoming.Status.Terminal()) {
		b.dispatcher.Dispatch(b.surface, incoming, prevPtr)
	}

	b.orders = Reconcile(b.orders, b.surface, incoming)
	// Snapshot commit comes last so the detector above compared against the
	// pre-event state.
	b.snapshots.ReplaceAll(b.orders)

	b.mu.Unlock()

	b.logger.Debug("applied order event", "type", eventType, "order", incoming.ID, "status", string(incoming.Status))
	b.notifyChange()
}

// Orders returns a copy of the canonical list.
func (b *Board) Orders() []order.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]order.Order, len(b.orders))
	copy(result, b.orders)
	return result
}

// Views holds every projected tab for the board's surface, recomputed from
// the canonical list on demand and never independently mutated.
type Views struct {
	Surface           Surface       `json:"surface"`
	RestaurantID      string        `json:"restaurant_id"`
	KitchenActive     []order.Order `json:"kitchen_active,omitempty"`
	DeliveryAvailable []order.Order `json:"delivery_available,omitempty"`
	DeliveryActive    []order.Order `json:"delivery_active,omitempty"`
	DeliveryCompleted []order.Order `json:"delivery_completed,omitempty"`
	Highlighted       []string      `json:"highlighted,omitempty"`
	LoadError         string        `json:"load_error,omitempty"`
}

// Project derives every tab for the current surface.
func (b *Board) Project() Views {
	b.mu.Lock()
	list := make([]order.Order, len(b.orders))
	copy(list, b.orders)
	surface := b.surface
	viewer := b.viewer
	restaurantID := b.restaurantID
	loadErr := b.loadErr
	b.mu.Unlock()

	views := Views{
		Surface:      surface,
		RestaurantID: restaurantID,
	}
	if loadErr != nil {
		views.LoadError = loadErr.Error()
	}
	if b.highlights != nil {
		views.Highlighted = b.highlights.ActiveIDs()
	}

	switch surface {
	case SurfaceKitchen:
		views.KitchenActive = KitchenActive(list)
	case SurfaceDelivery:
		views.DeliveryAvailable = DeliveryAvailable(list)
		views.DeliveryActive = DeliveryActive(list, viewer)
		views.DeliveryCompleted = DeliveryCompleted(list, viewer)
	}
	return views
}

// UpdateOrderStatus applies an optimistic status change, then confirms it
// against the API. On rejection the list is restored to the exact pre-mutation
// array and the failure is surfaced as a toast. On success the server's order
// document runs through the normal reconciliation path, so any transitions it
// carries fire once here and the later push replay is silent.
func (b *Board) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) error {
	previous := b.beginOptimistic(orderID, func(o *order.Order) {
		o.Status = status
	})

	updated, err := b.client.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		b.rollback(previous)
		b.toastf("Could not update order status: %v", err)
		return fmt.Errorf("failed to update status of order %s: %w", orderID, err)
	}

	b.Apply("rest.order.status_updated", updated)
	return nil
}

// UpdateItemStatus mirrors UpdateOrderStatus for a single item.
func (b *Board) UpdateItemStatus(ctx context.Context, orderID, itemID string, upd orderapi.ItemStatusUpdate) error {
	previous := b.beginOptimistic(orderID, func(o *order.Order) {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				o.Items[i].Status = upd.Status
				if upd.UserID != "" {
					o.Items[i].AssignedTo = upd.UserID
				}
			}
		}
	})

	updated, err := b.client.UpdateItemStatus(ctx, orderID, itemID, upd)
	if err != nil {
		b.rollback(previous)
		b.toastf("Could not update item status: %v", err)
		return fmt.Errorf("failed to update status of item %s in order %s: %w", itemID, orderID, err)
	}

	b.Apply("rest.order.item_status_updated", updated)
	return nil
}

// beginOptimistic captures the pre-mutation list, applies mutate to the
// targeted order in a copied list and commits it. The snapshot store is left
// untouched so the confirming server document is still detected as the real
// transition.
func (b *Board) beginOptimistic(orderID string, mutate func(*order.Order)) []order.Order {
	b.mu.Lock()

	previous := make([]order.Order, len(b.orders))
	copy(previous, b.orders)

	next := make([]order.Order, len(b.orders))
	copy(next, b.orders)
	for i := range next {
		if next[i].ID == orderID {
			mutate(&next[i])
		}
	}
	b.orders = next

	b.mu.Unlock()
	b.notifyChange()
	return previous
}

func (b *Board) rollback(previous []order.Order) {
	b.mu.Lock()
	b.orders = previous
	b.mu.Unlock()
	b.notifyChange()
}

// SoundEnabled reads the persisted cue preference; sound defaults to on.
func (b *Board) SoundEnabled() bool {
	if b.prefs == nil {
		return true
	}
	raw, ok := b.prefs.Get(b.prefKey("sound_enabled"))
	if !ok {
		return true
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return enabled
}

// SetSoundEnabled persists the cue preference for this surface.
func (b *Board) SetSoundEnabled(enabled bool) error {
	if b.prefs == nil {
		return nil
	}
	return b.prefs.Set(b.prefKey("sound_enabled"), strconv.FormatBool(enabled))
}

// LoadError returns the visible error state from the last initial fetch.
func (b *Board) LoadError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// RestaurantID returns the currently selected restaurant.
func (b *Board) RestaurantID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.restaurantID
}

func (b *Board) prefKey(key string) string {
	return fmt.Sprintf("%s.%s", b.surface, key)
}

func (b *Board) toastf(format string, args ...interface{}) {
	if b.notifier == nil {
		return
	}
	b.notifier.Toast(fmt.Sprintf(format, args...))
}

func (b *Board) notifyChange() {
	if b.onChange != nil {
		b.onChange()
	}
}
