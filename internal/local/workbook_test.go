package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/turbolytics/formsync/internal"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for name, grid := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for r, row := range grid {
			for c, v := range row {
				axis, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, axis, v))
			}
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "registry.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbook(t *testing.T) {
	ctx := context.Background()

	path := writeWorkbook(t, map[string][][]any{
		"Data Entry": {
			{"Code", "Catering", "Rank"},
			{"ACME", true, 3},
			{"BETA", false},
		},
		"Settings": {
			{"Form ID", "Field Index", "Type"},
			{"form123", 2, "Catering"},
		},
		"Roster": {
			{"Name", "Team"},
			{"ada", "x"},
			{"bob", "y"},
			{"cy", "z"},
		},
	})

	w, err := Open(path)
	require.NoError(t, err)
	defer w.Close()

	t.Run("typed rectangle", func(t *testing.T) {
		grid, err := w.ReadTable(ctx, "Data Entry")
		require.NoError(t, err)
		assert.Equal(t, [][]any{
			{"Code", "Catering", "Rank"},
			{"ACME", true, 3.0},
			{"BETA", false, ""},
		}, grid)

		grid, err = w.ReadTable(ctx, "Settings")
		require.NoError(t, err)
		assert.Equal(t, 2.0, grid[1][1])
	})

	t.Run("missing sheet", func(t *testing.T) {
		_, err := w.ReadTable(ctx, "Events")
		assert.True(t, errors.Is(err, internal.ErrTableNotFound))
	})

	t.Run("write is saved", func(t *testing.T) {
		require.NoError(t, w.WriteCells(ctx, "Data Entry", [][]any{{"9"}}, 3, 3, internal.WriteOptions{}))

		reopened, err := Open(path)
		require.NoError(t, err)
		defer reopened.Close()

		grid, err := reopened.ReadTable(ctx, "Data Entry")
		require.NoError(t, err)
		assert.Equal(t, "9", grid[2][2])
	})

	t.Run("append", func(t *testing.T) {
		require.NoError(t, w.WriteCells(ctx, "Settings", [][]any{{"form456", 1, "Venue"}}, 1, 1, internal.WriteOptions{Append: true}))

		grid, err := w.ReadTable(ctx, "Settings")
		require.NoError(t, err)
		require.Len(t, grid, 3)
		assert.Equal(t, []any{"form456", 1.0, "Venue"}, grid[2])
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, w.WriteCells(ctx, "Roster", [][]any{{"dee"}}, 2, 1, internal.WriteOptions{Clear: true}))

		reopened, err := Open(path)
		require.NoError(t, err)
		defer reopened.Close()

		grid, err := reopened.ReadTable(ctx, "Roster")
		require.NoError(t, err)
		assert.Equal(t, [][]any{
			{"Name", "Team"},
			{"dee", "x"},
			{"", "y"},
			{"", "z"},
		}, grid)
	})
}
