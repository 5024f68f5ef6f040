package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/turbolytics/formsync/internal"
)

// Document keeps tables as grids in memory.
type Document struct {
	mu     sync.Mutex
	tables map[string][][]any
}

func NewDocument() *Document {
	return &Document{
		tables: make(map[string][][]any),
	}
}

// SetTable replaces the content of a table, creating it if needed.
func (d *Document) SetTable(name string, grid [][]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[name] = copyGrid(grid)
}

// Table returns a copy of the stored grid.
func (d *Document) Table(name string) [][]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyGrid(d.tables[name])
}

// ReadTable returns the used range, padded to a rectangle with empty strings.
func (d *Document) ReadTable(ctx context.Context, name string) ([][]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	grid, ok := d.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", internal.ErrTableNotFound, name)
	}

	width := 0
	for _, row := range grid {
		width = max(width, len(row))
	}

	out := make([][]any, len(grid))
	for i, row := range grid {
		out[i] = make([]any, width)
		for j := range out[i] {
			if j < len(row) {
				out[i][j] = row[j]
			} else {
				out[i][j] = ""
			}
		}
	}
	return out, nil
}

func (d *Document) WriteCells(ctx context.Context, name string, grid [][]any, firstRow, firstColumn int, opts internal.WriteOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	table, ok := d.tables[name]
	if !ok {
		return fmt.Errorf("%w: %q", internal.ErrTableNotFound, name)
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		return errors.New("nothing to write")
	}
	if firstRow < 1 || firstColumn < 1 {
		return fmt.Errorf("invalid cell position %d,%d", firstRow, firstColumn)
	}

	width := len(grid[0])
	lastRow := len(table)

	if opts.Clear && lastRow > firstRow {
		for r := firstRow; r < firstRow+lastRow-1 && r <= lastRow; r++ {
			for c := firstColumn; c < firstColumn+width; c++ {
				table = setCell(table, r, c, "")
			}
		}
	}
	if opts.Append {
		firstRow = lastRow + 1
	}

	for i, row := range grid {
		for j, v := range row {
			table = setCell(table, firstRow+i, firstColumn+j, v)
		}
	}
	d.tables[name] = table
	return nil
}

// setCell writes a 1-based cell, growing the grid as needed.
func setCell(grid [][]any, row, col int, v any) [][]any {
	for len(grid) < row {
		grid = append(grid, []any{})
	}
	r := grid[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = v
	grid[row-1] = r
	return grid
}

func copyGrid(grid [][]any) [][]any {
	if grid == nil {
		return nil
	}
	out := make([][]any, len(grid))
	for i, row := range grid {
		out[i] = append([]any(nil), row...)
	}
	return out
}

var _ internal.Document = (*Document)(nil)
