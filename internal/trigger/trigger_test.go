package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turbolytics/formsync/internal"
)

func TestNewFSM(t *testing.T) {
	f := NewFSM()
	assert.Equal(t, StateLimited, f.Current())

	assert.NoError(t, f.Transition(StateActivated))
	assert.Equal(t, StateActivated, f.Current())

	assert.ErrorIs(t, f.Transition(StateActivated), ErrInvalidTransition)
	assert.Equal(t, StateActivated, f.Current())

	assert.ErrorIs(t, f.Transition(StateLimited), ErrInvalidTransition)
	assert.Equal(t, StateActivated, f.Current())
}

func TestRegistry(t *testing.T) {
	t.Run("employers", func(t *testing.T) {
		r := New(internal.VariantEmployers)

		m := r.Menu()
		assert.Equal(t, "Amici", m.Title)
		assert.Equal(t, []MenuItem{{Label: "Update forms data", Action: ActionUpdateEmployerForm}}, m.Items)
		assert.False(t, r.AcceptsFormSubmit())
		assert.True(t, r.Allows(ActionUpdateEmployerForm))
		assert.False(t, r.Allows(ActionUpdateEvents))
	})

	t.Run("events need activation", func(t *testing.T) {
		r := New(internal.VariantEvents)

		assert.Equal(t, []MenuItem{{Label: "Activate events solution", Action: ActionActivateTrigger}}, r.Menu().Items)
		assert.False(t, r.AcceptsFormSubmit())
		assert.False(t, r.Allows(ActionUpdateEvents))

		m := r.Activate()
		assert.Equal(t, []MenuItem{{Label: "Update events", Action: ActionUpdateEvents}}, m.Items)
		assert.True(t, r.AcceptsFormSubmit())
		assert.True(t, r.Allows(ActionUpdateEvents))
	})

	t.Run("failed activation is ignored", func(t *testing.T) {
		r := New(internal.VariantEvents, WithActivated(true))
		assert.Equal(t, StateActivated, r.State.Current())

		m := r.Activate()
		assert.Equal(t, ActionUpdateEvents, m.Items[0].Action)
		assert.True(t, r.AcceptsFormSubmit())
	})

	t.Run("activation is one way", func(t *testing.T) {
		r := New(internal.VariantEvents, WithActivated(true))
		assert.ErrorIs(t, r.State.Transition(StateLimited), ErrInvalidTransition)
		assert.True(t, r.AcceptsFormSubmit())
	})
}
