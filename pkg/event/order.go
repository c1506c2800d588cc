package event

import (
	"fmt"
	"time"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
)

const (
	// Order feed subjects are scoped per restaurant:
	// orders.<restaurant_id>.<suffix>
	OrderTopicPrefix = "orders"

	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderModified      = "order.modified"
)

// OrderFeedTopic returns the wildcard subject covering every order event for
// one restaurant. Boards subscribe to exactly one restaurant at a time.
func OrderFeedTopic(restaurantID string) string {
	return fmt.Sprintf("%s.%s.>", OrderTopicPrefix, restaurantID)
}

// OrderEvent is an order feed event. Payloads always carry the full order
// document; consumers replace, never merge.
type OrderEvent struct {
	EventType    string      `json:"event_type"`
	OccurredAt   time.Time   `json:"occurred_at"`
	RestaurantID string      `json:"restaurant_id"`
	Order        order.Order `json:"order"`
}
