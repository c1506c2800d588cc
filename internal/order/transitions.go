package order

// Transition predicates compare a freshly received order against the snapshot
// taken on the previous reconciliation cycle. prev is nil when the order was
// not present in that snapshot. All predicates are pure.

// BecameReady reports whether next just entered READY.
func BecameReady(next Order, prev *Order) bool {
	return next.Status == StatusReady && (prev == nil || prev.Status != StatusReady)
}

// BecamePreparing reports whether next just entered PREPARING.
func BecamePreparing(next Order, prev *Order) bool {
	return next.Status == StatusPreparing && (prev == nil || prev.Status != StatusPreparing)
}

// ItemsBecameInProgress reports whether next carries at least one IN_PROGRESS
// item that was not already IN_PROGRESS in prev. The item need not have
// existed before at all.
func ItemsBecameInProgress(next Order, prev *Order) bool {
	previous := make(map[string]bool)
	if prev != nil {
		for _, item := range prev.Items {
			if item.Status == ItemInProgress {
				previous[item.ID] = true
			}
		}
	}
	for _, item := range next.Items {
		if item.Status == ItemInProgress && !previous[item.ID] {
			return true
		}
	}
	return false
}

// ItemsBecameRefunded reports whether the number of REFUNDED items grew. It
// only detects an increase in count, not which item changed.
func ItemsBecameRefunded(next Order, prev *Order) bool {
	prevCount := 0
	if prev != nil {
		prevCount = len(prev.ItemsWithStatus(ItemRefunded))
	}
	return len(next.ItemsWithStatus(ItemRefunded)) > prevCount
}

// StatusChanged reports whether the order status differs from the snapshot.
// A missing snapshot is not a change.
func StatusChanged(next Order, prev *Order) bool {
	return prev != nil && next.Status != prev.Status
}
