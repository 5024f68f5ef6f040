package local

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
)

type Option func(*Workbook)

func WithLogger(logger *zap.Logger) Option {
	return func(w *Workbook) {
		w.logger = logger
	}
}

// Workbook is an .xlsx file on disk. Every sheet is a table.
type Workbook struct {
	path   string
	file   *excelize.File
	logger *zap.Logger
	mu     sync.Mutex
}

func Open(path string, opts ...Option) (*Workbook, error) {
	w := &Workbook{
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %q: %w", path, err)
	}
	w.file = f

	w.logger.Info("workbook opened",
		zap.String("path", path),
		zap.Strings("sheets", f.GetSheetList()),
	)
	return w, nil
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) sheet(name string) error {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", internal.ErrTableNotFound, name)
	}
	return nil
}

// ReadTable returns the used range of the sheet as a rectangle. Empty cells
// are empty strings, booleans are bool and numbers are float64.
func (w *Workbook) ReadTable(ctx context.Context, name string) ([][]any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.sheet(name); err != nil {
		return nil, err
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	grid := make([][]any, len(rows))
	for r, row := range rows {
		grid[r] = make([]any, width)
		for c := range grid[r] {
			if c >= len(row) || row[c] == "" {
				grid[r][c] = ""
				continue
			}
			v, err := w.cell(name, r+1, c+1, row[c])
			if err != nil {
				return nil, err
			}
			grid[r][c] = v
		}
	}

	w.logger.Debug("sheet read",
		zap.String("sheet", name),
		zap.Int("rows", len(grid)),
		zap.Int("columns", width),
	)
	return grid, nil
}

// cell types a raw value using the cell's stored type.
func (w *Workbook) cell(sheet string, row, col int, raw string) (any, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return nil, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, nil
		}
	}
	return raw, nil
}

// WriteCells writes grid with its top-left corner at firstRow, firstColumn
// and saves the workbook.
func (w *Workbook) WriteCells(ctx context.Context, name string, grid [][]any, firstRow, firstColumn int, opts internal.WriteOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.sheet(name); err != nil {
		return err
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		return errors.New("nothing to write")
	}

	rows, err := w.file.GetRows(name)
	if err != nil {
		return err
	}
	lastRow := len(rows)
	width := len(grid[0])

	if opts.Clear && lastRow > firstRow {
		for r := firstRow; r < firstRow+lastRow-1 && r <= lastRow; r++ {
			for c := firstColumn; c < firstColumn+width; c++ {
				if err := w.set(name, r, c, nil); err != nil {
					return err
				}
			}
		}
	}
	if opts.Append {
		firstRow = lastRow + 1
	}

	for i, row := range grid {
		for j, v := range row {
			if err := w.set(name, firstRow+i, firstColumn+j, v); err != nil {
				return err
			}
		}
	}

	if err := w.file.Save(); err != nil {
		return fmt.Errorf("saving workbook %q: %w", w.path, err)
	}

	w.logger.Debug("cells written",
		zap.String("sheet", name),
		zap.Int("row", firstRow),
		zap.Int("column", firstColumn),
		zap.Int("rows", len(grid)),
	)
	return nil
}

func (w *Workbook) set(sheet string, row, col int, v any) error {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(sheet, axis, v)
}

var _ internal.Document = (*Workbook)(nil)
