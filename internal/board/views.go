package board

import (
	"sort"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
)

// Viewer is the actor looking at a delivery board. Restricted couriers only
// see orders assigned to themselves.
type Viewer struct {
	CourierID  string
	Restricted bool
}

// KitchenActive projects the kitchen working set: PREPARING orders before
// READY ones, PREPARING oldest first so nobody's ticket starves, READY newest
// first so fresh hand-offs sit on top.
func KitchenActive(list []order.Order) []order.Order {
	result := filterOrders(list, func(o order.Order) bool {
		return o.Status == order.StatusPreparing || o.Status == order.StatusReady
	})

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Status != b.Status {
			return a.Status == order.StatusPreparing
		}
		if a.Status == order.StatusPreparing {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return result
}

// DeliveryAvailable projects READY delivery orders nobody has claimed yet.
func DeliveryAvailable(list []order.Order) []order.Order {
	return filterOrders(list, func(o order.Order) bool {
		return o.Status == order.StatusReady &&
			o.Type == order.TypeDelivery &&
			o.Courier == nil
	})
}

// DeliveryActive projects claimed delivery orders in flight, limited to the
// viewer's own assignments when the viewer is restricted.
func DeliveryActive(list []order.Order, viewer Viewer) []order.Order {
	return filterOrders(list, func(o order.Order) bool {
		if o.Status != order.StatusReady && o.Status != order.StatusDelivering {
			return false
		}
		return o.Type == order.TypeDelivery && o.Courier != nil && visibleTo(o, viewer)
	})
}

// DeliveryCompleted projects finished delivery orders under the same viewer
// restriction as the active tab.
func DeliveryCompleted(list []order.Order, viewer Viewer) []order.Order {
	return filterOrders(list, func(o order.Order) bool {
		return o.Status == order.StatusCompleted &&
			o.Type == order.TypeDelivery &&
			visibleTo(o, viewer)
	})
}

func visibleTo(o order.Order, viewer Viewer) bool {
	if !viewer.Restricted {
		return true
	}
	return o.Courier != nil && o.Courier.ID == viewer.CourierID
}

func filterOrders(list []order.Order, keep func(order.Order) bool) []order.Order {
	result := make([]order.Order, 0, len(list))
	for _, o := range list {
		if o.Status == order.StatusCancelled {
			// Cancelled orders never surface in any view.
			continue
		}
		if keep(o) {
			result = append(result, o)
		}
	}
	return result
}
