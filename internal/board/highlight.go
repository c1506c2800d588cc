package board

import (
	"sort"
	"sync"
	"time"
)

// DefaultHighlightTTL is the visual emphasis window after a refund transition.
const DefaultHighlightTTL = 30 * time.Second

// HighlightRegistry tracks order ids under transient refund emphasis. Each id
// owns one cancellable timer; re-arming replaces the old timer rather than
// stacking a second one.
type HighlightRegistry struct {
	mu       sync.Mutex
	ttl      time.Duration
	timers   map[string]*time.Timer
	active   map[string]bool
	onExpire func(id string)
}

// NewHighlightRegistry creates a registry with the given emphasis window.
// A zero or negative ttl falls back to DefaultHighlightTTL.
func NewHighlightRegistry(ttl time.Duration) *HighlightRegistry {
	if ttl <= 0 {
		ttl = DefaultHighlightTTL
	}
	return &HighlightRegistry{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
		active: make(map[string]bool),
	}
}

// OnExpire registers a callback invoked after an id leaves the registry.
// Must be set before the first Arm.
func (r *HighlightRegistry) OnExpire(fn func(id string)) {
	r.mu.Lock()
	r.onExpire = fn
	r.mu.Unlock()
}

// Arm starts (or restarts) the emphasis window for the given order id.
func (r *HighlightRegistry) Arm(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.timers[id]; ok {
		timer.Stop()
	}

	r.active[id] = true
	var timer *time.Timer
	timer = time.AfterFunc(r.ttl, func() {
		r.expire(id, timer)
	})
	r.timers[id] = timer
}

// expire only acts when the firing timer is still the registered one; a timer
// that lost a Stop/Arm race must not clear the re-armed highlight.
func (r *HighlightRegistry) expire(id string, timer *time.Timer) {
	r.mu.Lock()
	if r.timers[id] != timer {
		r.mu.Unlock()
		return
	}
	delete(r.active, id)
	delete(r.timers, id)
	fn := r.onExpire
	r.mu.Unlock()

	if fn != nil {
		fn(id)
	}
}

// Active reports whether the given id is currently highlighted.
func (r *HighlightRegistry) Active(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[id]
}

// ActiveIDs returns the highlighted ids in stable order.
func (r *HighlightRegistry) ActiveIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cancel drops the highlight for one id without waiting for expiry.
func (r *HighlightRegistry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.timers[id]; ok {
		timer.Stop()
		delete(r.timers, id)
	}
	delete(r.active, id)
}

// Stop cancels every pending highlight timer.
func (r *HighlightRegistry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
	r.active = make(map[string]bool)
}
