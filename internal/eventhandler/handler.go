// Package eventhandler drives the pipeline: it reads events from the
// Subscriber, applies the arcade remap and state-change filter described
// in spec.md §4.4, and on every real change asks the Resolver for a
// MediaSet and hands it to the Slideshow Engine.
package eventhandler

import (
	"log/slog"
	"time"

	"github.com/poppadum/dynquee-go/internal/broker"
	"github.com/poppadum/dynquee-go/internal/config"
	"github.com/poppadum/dynquee-go/internal/dynevent"
	"github.com/poppadum/dynquee-go/internal/media"
	"github.com/poppadum/dynquee-go/internal/resolver"
	"github.com/poppadum/dynquee-go/internal/shutdown"
)

// eventSource is the subset of broker.Subscriber the handler depends on.
type eventSource interface {
	GetEvent(checkInterval time.Duration) (string, bool)
	GetEventParams() map[string]string
}

// mediaResolver is the subset of resolver.Resolver the handler depends on.
type mediaResolver interface {
	Resolve(ev dynevent.Event) media.Set
	StartupMedia() media.Set
}

// slideshowSetter is the subset of slideshow.Engine the handler depends
// on, narrowed so tests can substitute a recording fake instead of
// spawning real viewer/player subprocesses.
type slideshowSetter interface {
	SetMedia(set media.Set)
}

// Handler owns the front-end state record and drives one event at a time
// from Subscriber through Resolver to Slideshow.
type Handler struct {
	sub           eventSource
	res           mediaResolver
	show          slideshowSetter
	media         config.Media
	chg           config.Change
	arcadeEnabled bool

	checkInterval time.Duration

	currentState     dynevent.State
	stateBeforeSleep dynevent.State
	previousParams   map[string]string
}

// New constructs a Handler wired to the given components.
func New(sub *broker.Subscriber, res *resolver.Resolver, show slideshowSetter, cfg *config.Config, checkInterval time.Duration) *Handler {
	return &Handler{
		sub:           sub,
		res:           res,
		show:          show,
		media:         cfg.Media,
		chg:           cfg.Change,
		arcadeEnabled: cfg.Media.ArcadeEnabled,
		checkInterval: checkInterval,
	}
}

// Run fetches the startup MediaSet, enqueues it, then loops handling
// events until Subscriber reports shutdown or sd fires. It is meant to
// run on the main goroutine, per spec.md §5's scheduling model.
func (h *Handler) Run(sd *shutdown.Coordinator) {
	h.show.SetMedia(h.res.StartupMedia())

	for {
		payload, ok := h.sub.GetEvent(h.checkInterval)
		if !ok || payload == "" {
			slog.Info("event handler stopping")
			return
		}
		if sd.Triggered() {
			return
		}
		h.handle(payload)
	}
}

// handle processes one received action string per spec.md §4.4 steps 2-6.
func (h *Handler) handle(action string) {
	params := h.sub.GetEventParams()
	ev := dynevent.NewEvent(action, params)

	if h.arcadeEnabled && ev.Get(dynevent.KeySystemId) != "" && h.media.IsArcadeSystem(ev.Get(dynevent.KeySystemId)) {
		ev = ev.WithSystemId("arcade")
	}

	changed := h.stateChanged(ev)
	resolveEv := h.updateState(ev)

	if !changed {
		return
	}
	set := h.res.Resolve(resolveEv)
	h.show.SetMedia(set)
}

// stateChanged evaluates the state-change filter against currentState,
// per spec.md §4.4 step 4, WITHOUT mutating any state yet.
func (h *Handler) stateChanged(ev dynevent.Event) bool {
	if ev.Action == "wakeup" {
		return true
	}
	if h.currentState.Action == "endgame" {
		return true
	}

	rule := h.chg.Rule(ev.Action)
	next := ev.State()
	switch rule {
	case "never":
		return false
	case "always":
		return true
	case "action":
		return next.Action != h.currentState.Action
	case "system":
		return next.System != h.currentState.System
	case "game":
		return next.Game != h.currentState.Game
	case "system/game":
		return next.System != h.currentState.System || next.Game != h.currentState.Game
	default:
		slog.Error("unknown state-change rule, treating as changed", "action", ev.Action, "rule", rule)
		return true
	}
}

// updateState applies spec.md §4.4 step 5, and returns the Event the
// Resolver should see: normally ev itself, but on wakeup the params of the
// last non-sleep/non-wakeup event, carrying whatever SystemId remap was
// applied to that event when it was recorded.
func (h *Handler) updateState(ev dynevent.Event) dynevent.Event {
	if ev.Action == "sleep" {
		h.stateBeforeSleep = h.currentState
	}
	if ev.Action != "sleep" && ev.Action != "wakeup" {
		h.previousParams = ev.Params
	}
	h.currentState = ev.State()

	if ev.Action != "wakeup" {
		return ev
	}

	h.currentState = h.stateBeforeSleep
	restored := dynevent.NewEvent(h.currentState.Action, h.previousParams)
	return restored
}
