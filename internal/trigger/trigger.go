package trigger

import (
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
)

// MenuTitle is the label of the top-bar menu.
const MenuTitle = "Amici"

type Action string

const (
	ActionUpdateEmployerForm Action = "update-employer-form"
	ActionUpdateEvents       Action = "update-events"
	ActionActivateTrigger    Action = "activate-trigger"
)

type MenuItem struct {
	Label  string `json:"label"`
	Action Action `json:"action"`
}

type Menu struct {
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithActivated(activated bool) Option {
	return func(r *Registry) {
		r.activated = activated
	}
}

// Registry tracks whether a deployment reacts to form submissions and
// which menu actions it offers.
type Registry struct {
	Variant internal.Variant
	State   *FSM

	activated bool
	logger    *zap.Logger
}

func New(variant internal.Variant, opts ...Option) *Registry {
	r := &Registry{
		Variant: variant,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	initial := StateLimited
	if r.activated {
		initial = StateActivated
	}
	r.State = NewFSM(
		FSMWithInitialState(initial),
		FSMWithLogger(r.logger.Named("fsm")),
	)
	return r
}

// Menu lists the actions available in the current state. The employer
// registry has a single action; the event registry asks for activation
// until the form-submission trigger is registered.
func (r *Registry) Menu() Menu {
	m := Menu{Title: MenuTitle}
	switch {
	case r.Variant == internal.VariantEmployers:
		m.Items = []MenuItem{{Label: "Update forms data", Action: ActionUpdateEmployerForm}}
	case r.State.Current() == StateLimited:
		m.Items = []MenuItem{{Label: "Activate events solution", Action: ActionActivateTrigger}}
	default:
		m.Items = []MenuItem{{Label: "Update events", Action: ActionUpdateEvents}}
	}
	return m
}

// Activate registers the form-submission trigger and returns the refreshed
// menu. A failed registration is logged and otherwise ignored.
func (r *Registry) Activate() Menu {
	if err := r.State.Transition(StateActivated); err != nil {
		r.logger.Warn("Something went wrong registering the trigger",
			zap.String("variant", string(r.Variant)),
			zap.Error(err),
		)
	}
	return r.Menu()
}

// AcceptsFormSubmit tells whether a form submission should run the sync.
func (r *Registry) AcceptsFormSubmit() bool {
	return r.Variant == internal.VariantEvents && r.State.Current() == StateActivated
}

// Allows tells whether action may run in the current state.
func (r *Registry) Allows(action Action) bool {
	for _, item := range r.Menu().Items {
		if item.Action == action {
			return true
		}
	}
	return false
}
