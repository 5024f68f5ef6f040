package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/formsync/internal"
)

func TestDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("read pads to a rectangle", func(t *testing.T) {
		d := NewDocument()
		d.SetTable("Data Entry", [][]any{
			{"Event Name", "Event ID"},
			{"Gala"},
		})

		grid, err := d.ReadTable(ctx, "Data Entry")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"Event Name", "Event ID"}, {"Gala", ""}}, grid)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := NewDocument().ReadTable(ctx, "Settings")
		assert.True(t, errors.Is(err, internal.ErrTableNotFound))

		err = NewDocument().WriteCells(ctx, "Settings", [][]any{{"x"}}, 1, 1, internal.WriteOptions{})
		assert.True(t, errors.Is(err, internal.ErrTableNotFound))
	})

	t.Run("write single cell", func(t *testing.T) {
		d := NewDocument()
		d.SetTable("T", [][]any{{"A", "B"}, {"a", ""}})

		require.NoError(t, d.WriteCells(ctx, "T", [][]any{{"b"}}, 2, 2, internal.WriteOptions{}))
		assert.Equal(t, [][]any{{"A", "B"}, {"a", "b"}}, d.Table("T"))
	})

	t.Run("write grows the grid", func(t *testing.T) {
		d := NewDocument()
		d.SetTable("T", [][]any{{"A"}})

		require.NoError(t, d.WriteCells(ctx, "T", [][]any{{"x", "y"}}, 3, 2, internal.WriteOptions{}))
		grid, err := d.ReadTable(ctx, "T")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"A", "", ""}, {"", "", ""}, {"", "x", "y"}}, grid)
	})

	t.Run("append", func(t *testing.T) {
		d := NewDocument()
		d.SetTable("T", [][]any{{"A"}, {"1"}})

		require.NoError(t, d.WriteCells(ctx, "T", [][]any{{"2"}, {"3"}}, 1, 1, internal.WriteOptions{Append: true}))
		assert.Equal(t, [][]any{{"A"}, {"1"}, {"2"}, {"3"}}, d.Table("T"))
	})

	t.Run("clear", func(t *testing.T) {
		d := NewDocument()
		d.SetTable("T", [][]any{{"A", "B"}, {"1", "x"}, {"2", "y"}, {"3", "z"}})

		require.NoError(t, d.WriteCells(ctx, "T", [][]any{{"9"}}, 2, 1, internal.WriteOptions{Clear: true}))
		assert.Equal(t, [][]any{{"A", "B"}, {"9", "x"}, {"", "y"}, {"", "z"}}, d.Table("T"))
	})

	t.Run("empty block", func(t *testing.T) {
		d := NewDocument()
		d.SetTable("T", [][]any{{"A"}})
		assert.Error(t, d.WriteCells(ctx, "T", nil, 1, 1, internal.WriteOptions{}))
	})
}

func TestForms(t *testing.T) {
	ctx := context.Background()

	forms := NewForms()
	list := NewListField("Employer", "A")
	forms.AddForm("f1", NewTextField("Name"), list)

	_, err := forms.OpenForm(ctx, "f2")
	assert.True(t, errors.Is(err, internal.ErrFormNotFound))

	form, err := forms.OpenForm(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", form.ID())

	_, err = form.FieldAt(ctx, 0)
	assert.True(t, errors.Is(err, internal.ErrNotChoiceField))

	_, err = form.FieldAt(ctx, 2)
	assert.True(t, errors.Is(err, internal.ErrFieldNotFound))

	_, err = form.FieldAt(ctx, -1)
	assert.True(t, errors.Is(err, internal.ErrFieldNotFound))

	field, err := form.FieldAt(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, field.SetChoices(ctx, []string{"B", "C"}))
	got, err := field.Choices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got)

	require.NoError(t, field.SetChoices(ctx, nil))
	got, _ = field.Choices(ctx)
	assert.Empty(t, got)
	assert.Equal(t, 2, list.Writes())
}
