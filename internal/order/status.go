package order

// Status is an order lifecycle status code. The set below is closed on the
// client side, but codes the server introduces later are carried through
// verbatim instead of being rejected; Known reports membership.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusConfirmed  Status = "CONFIRMED"
	StatusPreparing  Status = "PREPARING"
	StatusReady      Status = "READY"
	StatusDelivering Status = "DELIVERING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"

	// StatusUnknown marks records that arrived without any status at all.
	StatusUnknown Status = "UNKNOWN"
)

var AllStatuses = []Status{
	StatusCreated,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivering,
	StatusCompleted,
	StatusCancelled,
}

// Known reports whether s belongs to the closed client-side status set.
func (s Status) Known() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further order transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ItemStatus is an order item lifecycle status code. Unrecognized codes pass
// through the same way order statuses do.
type ItemStatus string

const (
	ItemCreated       ItemStatus = "CREATED"
	ItemInProgress    ItemStatus = "IN_PROGRESS"
	ItemPartiallyDone ItemStatus = "PARTIALLY_DONE"
	ItemPaused        ItemStatus = "PAUSED"
	ItemCompleted     ItemStatus = "COMPLETED"
	ItemCancelled     ItemStatus = "CANCELLED"
	ItemRefunded      ItemStatus = "REFUNDED"
)

var AllItemStatuses = []ItemStatus{
	ItemCreated,
	ItemInProgress,
	ItemPartiallyDone,
	ItemPaused,
	ItemCompleted,
	ItemCancelled,
	ItemRefunded,
}

// Known reports whether s belongs to the closed client-side item status set.
func (s ItemStatus) Known() bool {
	for _, known := range AllItemStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further item transitions are expected.
func (s ItemStatus) Terminal() bool {
	return s == ItemCompleted || s == ItemCancelled || s == ItemRefunded
}
