package presenter

import "github.com/zjrosen/atelier/internal/log"

// ViewState is the top-level screen currently attached.
type ViewState int

const (
	// WelcomeScreen is the initial state.
	WelcomeScreen ViewState = iota
	// ProjectOpened is terminal for the life of the presenter.
	ProjectOpened
)

func (s ViewState) String() string {
	switch s {
	case WelcomeScreen:
		return "welcome"
	case ProjectOpened:
		return "project"
	default:
		return "unknown"
	}
}

// ViewSwitch moves the view from the welcome screen to the project screen.
// There is no way back.
type ViewSwitch struct {
	view        View
	state       ViewState
	transitions int
	acks        []func()
}

// NewViewSwitch starts in WelcomeScreen.
func NewViewSwitch(view View) *ViewSwitch {
	return &ViewSwitch{view: view}
}

// OnSwitched registers fn to run once the project screen is attached. The
// command path uses it to dismiss its pending state.
func (v *ViewSwitch) OnSwitched(fn func()) {
	v.acks = append(v.acks, fn)
}

// Switch attaches the project screen. Reports whether a transition
// happened; only the first call does anything.
func (v *ViewSwitch) Switch() bool {
	if v.state == ProjectOpened {
		return false
	}
	v.state = ProjectOpened
	v.transitions++
	v.view.SwitchToProject()
	log.Info(log.CatView, "Switched view", "state", v.state)
	for _, ack := range v.acks {
		ack()
	}
	return true
}

// State returns the current state.
func (v *ViewSwitch) State() ViewState {
	return v.state
}

// Transitions returns how many times the state changed.
func (v *ViewSwitch) Transitions() int {
	return v.transitions
}
