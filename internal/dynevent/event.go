// Package dynevent defines the EmulationStation event shape dynquee reacts
// to and the derived front-end state used by the state-change filter.
package dynevent

// Canonical param keys read from an event's parameter map.
const (
	KeyAction    = "Action"
	KeySystemId  = "SystemId"
	KeyGamePath  = "GamePath"
	KeyIsFolder  = "IsFolder"
	KeyImagePath = "ImagePath"
	KeyPublisher = "Publisher"
	KeyGenre     = "Genre"
)

// Event is a single notification received from the front-end, decoded from
// the broker payload and overlaid with the current parameter snapshot.
// It is immutable and lives only for the duration of one handling
// iteration.
type Event struct {
	Action string
	Params map[string]string
}

// NewEvent builds an Event by overlaying Action onto a copy of params.
func NewEvent(action string, params map[string]string) Event {
	p := make(map[string]string, len(params)+1)
	for k, v := range params {
		p[k] = v
	}
	p[KeyAction] = action
	return Event{Action: action, Params: p}
}

// Get returns a param value, or "" if absent.
func (e Event) Get(key string) string {
	return e.Params[key]
}

// State derives a FrontEndState from this event's params.
func (e Event) State() State {
	return State{
		Action:   e.Get(KeyAction),
		System:   e.Get(KeySystemId),
		Game:     e.Get(KeyGamePath),
		IsFolder: e.Get(KeyIsFolder) == "1",
	}
}

// WithSystemId returns a copy of the event with SystemId rewritten — used
// for the arcade meta-system remap.
func (e Event) WithSystemId(systemId string) Event {
	p := make(map[string]string, len(e.Params))
	for k, v := range e.Params {
		p[k] = v
	}
	p[KeySystemId] = systemId
	return Event{Action: e.Action, Params: p}
}

// State is the immutable 4-tuple (action, system, game, isFolder) derived
// from an Event's canonical params.
type State struct {
	Action   string
	System   string
	Game     string
	IsFolder bool
}
