package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/turbolytics/formsync/internal"
)

// Forms is an in-memory form service.
type Forms struct {
	mu    sync.Mutex
	forms map[string]*Form
}

func NewForms() *Forms {
	return &Forms{
		forms: make(map[string]*Form),
	}
}

// AddForm registers a form with the given fields, in position order.
func (f *Forms) AddForm(id string, fields ...*Field) *Form {
	f.mu.Lock()
	defer f.mu.Unlock()

	form := &Form{id: id, fields: fields}
	f.forms[id] = form
	return form
}

func (f *Forms) OpenForm(ctx context.Context, formID string) (internal.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	form, ok := f.forms[formID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", internal.ErrFormNotFound, formID)
	}
	return form, nil
}

type Form struct {
	id     string
	fields []*Field
}

func (f *Form) ID() string {
	return f.id
}

func (f *Form) FieldAt(ctx context.Context, index int) (internal.Field, error) {
	if index < 0 || index >= len(f.fields) {
		return nil, fmt.Errorf("form %q: %w: index %d of %d", f.id, internal.ErrFieldNotFound, index, len(f.fields))
	}
	field := f.fields[index]
	if field.Kind != internal.FieldKindList {
		return nil, fmt.Errorf("form %q, field %d (%s): %w", f.id, index, field.Kind, internal.ErrNotChoiceField)
	}
	return field, nil
}

type Field struct {
	Title string
	Kind  string

	mu      sync.Mutex
	choices []string
	writes  int
}

// NewListField returns a dropdown field holding choices.
func NewListField(title string, choices ...string) *Field {
	return &Field{
		Title:   title,
		Kind:    internal.FieldKindList,
		choices: choices,
	}
}

func NewTextField(title string) *Field {
	return &Field{
		Title: title,
		Kind:  "text",
	}
}

func (f *Field) Choices(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.choices...), nil
}

func (f *Field) SetChoices(ctx context.Context, choices []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.choices = append([]string{}, choices...)
	f.writes++
	return nil
}

// Writes counts SetChoices calls.
func (f *Field) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

var (
	_ internal.FormService = (*Forms)(nil)
	_ internal.Form        = (*Form)(nil)
	_ internal.Field       = (*Field)(nil)
)

// PutForm replaces a form from field specs.
func (f *Forms) PutForm(ctx context.Context, id string, fields ...internal.FieldSpec) error {
	out := make([]*Field, len(fields))
	for i, spec := range fields {
		out[i] = &Field{Title: spec.Title, Kind: spec.Kind, choices: append([]string(nil), spec.Choices...)}
	}
	f.AddForm(id, out...)
	return nil
}
