package audio

import "github.com/appetiteclub/apt"

// Cue identifiers used by the notification dispatcher.
const (
	CueNewOrder = "new-order"
	CueItem     = "item"
	CueRefund   = "refund"
)

// Port plays an audio cue, fire and forget. Implementations must rewind the
// cue before playing so rapid repeated triggers stay audible, and must log
// playback failures instead of returning them.
type Port interface {
	Play(cue string)
}

// LogPlayer is the default Port for headless deployments: it records each cue
// through the structured logger so rendering surfaces (which own the actual
// speakers) can be driven off the change stream instead.
type LogPlayer struct {
	logger apt.Logger
}

func NewLogPlayer(logger apt.Logger) *LogPlayer {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &LogPlayer{logger: logger}
}

func (p *LogPlayer) Play(cue string) {
	p.logger.Debug("playing audio cue", "cue", cue)
}
