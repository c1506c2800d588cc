package board

import (
	"fmt"

	"github.com/Helarman/crm-frontend-sub004/internal/audio"
	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/appetiteclub/apt"
)

// Notifier surfaces transient operator-facing notices (toasts).
type Notifier interface {
	Toast(message string)
}

// Dispatcher turns detected order transitions into side effects: audio cues,
// toasts and refund highlights. Cue playback is gated by the persisted sound
// preference; toasts and highlights run regardless of it.
type Dispatcher struct {
	audio        audio.Port
	notifier     Notifier
	highlights   *HighlightRegistry
	soundEnabled func() bool
	logger       apt.Logger
}

func NewDispatcher(
	port audio.Port,
	notifier Notifier,
	highlights *HighlightRegistry,
	soundEnabled func() bool,
	logger apt.Logger,
) *Dispatcher {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Dispatcher{
		audio:        port,
		notifier:     notifier,
		highlights:   highlights,
		soundEnabled: soundEnabled,
		logger:       logger,
	}
}

// Dispatch evaluates every transition predicate for one incoming order
// against its previous snapshot and fires the matching side effects. The
// predicates are independent; more than one effect may fire for one event.
// Callers must invoke Dispatch before the snapshot store is overwritten.
func (d *Dispatcher) Dispatch(surface Surface, next order.Order, prev *order.Order) {
	switch surface {
	case SurfaceKitchen:
		if order.BecamePreparing(next, prev) {
			d.playCue(audio.CueNewOrder)
			d.toast(fmt.Sprintf("New order #%s", next.Number))
		}
		if order.ItemsBecameInProgress(next, prev) {
			d.playCue(audio.CueItem)
		}
	case SurfaceDelivery:
		if order.BecameReady(next, prev) || (prev == nil && next.Status == order.StatusReady) {
			d.playCue(audio.CueNewOrder)
			d.toast(fmt.Sprintf("Order #%s is ready for delivery", next.Number))
		}
		// Generic catch-all cue. This co-fires with the ready cue above when
		// an order transitions into READY; kept as observed behavior.
		if order.StatusChanged(next, prev) {
			d.playCue(audio.CueItem)
		}
	}

	if order.ItemsBecameRefunded(next, prev) {
		d.playCue(audio.CueRefund)
		if d.highlights != nil {
			d.highlights.Arm(next.ID)
		}
	}
}

func (d *Dispatcher) playCue(cue string) {
	if d.audio == nil {
		return
	}
	if d.soundEnabled != nil && !d.soundEnabled() {
		d.logger.Debug("sound disabled, skipping cue", "cue", cue)
		return
	}
	d.audio.Play(cue)
}

func (d *Dispatcher) toast(message string) {
	if d.notifier == nil {
		return
	}
	d.notifier.Toast(message)
}
