package internal

import (
	"context"
)

// WriteOptions control how WriteCells places a block of cells.
type WriteOptions struct {
	// Clear blanks the rows below firstRow, across the block's columns, before writing.
	Clear bool
	// Append moves the write start just below the last used row.
	Append bool
}

// Document is the tabular store holding the registry and settings tables.
// Rows and columns are 1-based, like a spreadsheet.
type Document interface {
	ReadTable(ctx context.Context, name string) ([][]any, error)
	WriteCells(ctx context.Context, name string, grid [][]any, firstRow, firstColumn int, opts WriteOptions) error
}

// FormService opens externally managed forms.
type FormService interface {
	OpenForm(ctx context.Context, formID string) (Form, error)
}

type Form interface {
	ID() string
	// FieldAt resolves the field at a 0-based position.
	FieldAt(ctx context.Context, index int) (Field, error)
}

// Field is a list field whose choices can be replaced.
type Field interface {
	Choices(ctx context.Context) ([]string, error)
	SetChoices(ctx context.Context, choices []string) error
}

// FieldKindList is the only field kind that carries a choice list.
const FieldKindList = "list"

// FieldSpec describes a field when seeding a form service.
type FieldSpec struct {
	Title   string   `yaml:"title" json:"title"`
	Kind    string   `yaml:"kind" json:"kind"`
	Choices []string `yaml:"choices" json:"choices"`
}
