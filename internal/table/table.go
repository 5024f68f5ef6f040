package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/turbolytics/formsync/internal"
)

// Table is a parsed grid: the header row and one record per data row.
type Table struct {
	Name    string
	Headers []string
	Records []*internal.Record
}

// Parse converts a grid whose first row holds the headers into records,
// preserving row order. Cells missing from a short row become nil; cells
// beyond the header width are ignored.
func Parse(grid [][]any) *Table {
	t := &Table{}
	if len(grid) == 0 {
		return t
	}

	t.Headers = make([]string, len(grid[0]))
	for i, h := range grid[0] {
		t.Headers[i] = String(h)
	}

	t.Records = make([]*internal.Record, 0, len(grid)-1)
	for i, row := range grid[1:] {
		values := make([]any, len(t.Headers))
		for col := range t.Headers {
			if col < len(row) {
				values[col] = row[col]
			}
		}
		t.Records = append(t.Records, internal.NewRecord(t.Headers, values).WithIndex(i))
	}
	return t
}

// Index returns the 0-based column of header, or -1.
func (t *Table) Index(header string) int {
	for i := len(t.Headers) - 1; i >= 0; i-- {
		if t.Headers[i] == header {
			return i
		}
	}
	return -1
}

// Schema lists the headers a table must carry.
type Schema []string

func (t *Table) Validate(schema Schema) error {
	for _, column := range schema {
		if t.Index(column) < 0 {
			return fmt.Errorf("table %q: %w: %q", t.Name, internal.ErrMissingColumn, column)
		}
	}
	return nil
}

// String renders a cell the way it reads in the sheet.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}

// Int converts a cell holding a whole number. Numeric strings are accepted.
func Int(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("%v is not a whole number", val)
		}
		return int(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", val)
		}
		return Int(f)
	default:
		return 0, fmt.Errorf("%v (%T) is not a number", v, v)
	}
}
