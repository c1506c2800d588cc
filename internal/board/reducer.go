package board

import "github.com/Helarman/crm-frontend-sub004/internal/order"

// Surface identifies which operator board a canonical list belongs to. The
// two surfaces share the reconciliation engine but gate insertions and
// removals differently.
type Surface string

const (
	SurfaceKitchen  Surface = "kitchen"
	SurfaceDelivery Surface = "delivery"
)

func (s Surface) Valid() bool {
	return s == SurfaceKitchen || s == SurfaceDelivery
}

// Reconcile folds one incoming order document into the canonical list and
// returns the new list. The input is never mutated, so applying back-to-back
// events before a consumer observes the result cannot lose updates, and
// applying the identical event twice yields the identical list.
//
// Policy, in order: cancelled orders leave every surface; completed orders
// leave the kitchen; a known id is replaced in place; an unknown id is
// prepended on the kitchen unconditionally and on delivery only when it is a
// READY delivery order.
func Reconcile(list []order.Order, surface Surface, incoming order.Order) []order.Order {
	if incoming.Status == order.StatusCancelled {
		return removeByID(list, incoming.ID)
	}

	if surface == SurfaceKitchen && incoming.Status == order.StatusCompleted {
		return removeByID(list, incoming.ID)
	}

	for i := range list {
		if list[i].ID == incoming.ID {
			result := make([]order.Order, len(list))
			copy(result, list)
			result[i] = incoming
			return result
		}
	}

	if surface == SurfaceDelivery {
		if incoming.Status != order.StatusReady || incoming.Type != order.TypeDelivery {
			// Not meant for this feed.
			return list
		}
	}

	result := make([]order.Order, 0, len(list)+1)
	result = append(result, incoming)
	result = append(result, list...)
	return result
}

func removeByID(list []order.Order, id string) []order.Order {
	result := make([]order.Order, 0, len(list))
	for _, o := range list {
		if o.ID != id {
			result = append(result, o)
		}
	}
	return result
}
