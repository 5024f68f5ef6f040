package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
)

// Querier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Forms keeps form fields in a table, one row per field:
//
//	form_id | position | title | kind | choices | updated_at
//
// position is 0-based.
type Forms struct {
	DB     Querier
	Schema string
	Table  string

	logger *zap.Logger
}

type Option func(*Forms)

func WithSchema(schema string) Option {
	return func(f *Forms) {
		f.Schema = schema
	}
}

func WithTable(table string) Option {
	return func(f *Forms) {
		f.Table = table
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Forms) {
		f.logger = logger
	}
}

func NewForms(db Querier, opts ...Option) *Forms {
	f := Forms{
		DB:     db,
		Schema: "public",
		Table:  "form_fields",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&f)
	}
	return &f
}

func (f *Forms) Name() string {
	return pgx.Identifier{f.Schema, f.Table}.Sanitize()
}

func (f *Forms) EnsureSchema(ctx context.Context) error {
	_, err := f.DB.Exec(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	form_id    TEXT        NOT NULL,
	position   INTEGER     NOT NULL,
	title      TEXT        NOT NULL DEFAULT '',
	kind       TEXT        NOT NULL DEFAULT 'list',
	choices    TEXT[]      NOT NULL DEFAULT '{}',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (form_id, position)
)`, f.Name()))
	return err
}

// AddField inserts or replaces the field at position.
func (f *Forms) AddField(ctx context.Context, formID string, position int, title, kind string, choices []string) error {
	if choices == nil {
		choices = []string{}
	}
	_, err := f.DB.Exec(ctx, fmt.Sprintf(`
INSERT INTO %s (form_id, position, title, kind, choices)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (form_id, position)
DO UPDATE SET title = EXCLUDED.title, kind = EXCLUDED.kind, choices = EXCLUDED.choices, updated_at = now()`,
		f.Name()), formID, position, title, kind, choices)
	return err
}

// PutForm replaces every field of a form.
func (f *Forms) PutForm(ctx context.Context, id string, fields ...internal.FieldSpec) error {
	if _, err := f.DB.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE form_id = $1`, f.Name()), id); err != nil {
		return err
	}
	for i, spec := range fields {
		if err := f.AddField(ctx, id, i, spec.Title, spec.Kind, spec.Choices); err != nil {
			return err
		}
	}
	return nil
}

func (f *Forms) OpenForm(ctx context.Context, formID string) (internal.Form, error) {
	var n int
	err := f.DB.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE form_id = $1`, f.Name()),
		formID,
	).Scan(&n)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %q", internal.ErrFormNotFound, formID)
	}
	return &Form{forms: f, id: formID}, nil
}

type Form struct {
	forms *Forms
	id    string
}

func (f *Form) ID() string {
	return f.id
}

func (f *Form) FieldAt(ctx context.Context, index int) (internal.Field, error) {
	var kind string
	err := f.forms.DB.QueryRow(ctx,
		fmt.Sprintf(`SELECT kind FROM %s WHERE form_id = $1 AND position = $2`, f.forms.Name()),
		f.id, index,
	).Scan(&kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("form %q: %w: index %d", f.id, internal.ErrFieldNotFound, index)
	}
	if err != nil {
		return nil, err
	}
	if kind != internal.FieldKindList {
		return nil, fmt.Errorf("form %q, field %d (%s): %w", f.id, index, kind, internal.ErrNotChoiceField)
	}
	return &Field{forms: f.forms, formID: f.id, position: index}, nil
}

type Field struct {
	forms    *Forms
	formID   string
	position int
}

func (f *Field) Choices(ctx context.Context) ([]string, error) {
	var choices []string
	err := f.forms.DB.QueryRow(ctx,
		fmt.Sprintf(`SELECT choices FROM %s WHERE form_id = $1 AND position = $2`, f.forms.Name()),
		f.formID, f.position,
	).Scan(&choices)
	return choices, err
}

func (f *Field) SetChoices(ctx context.Context, choices []string) error {
	if choices == nil {
		choices = []string{}
	}
	tag, err := f.forms.DB.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET choices = $3, updated_at = now() WHERE form_id = $1 AND position = $2`, f.forms.Name()),
		f.formID, f.position, choices,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("form %q: %w: index %d", f.formID, internal.ErrFieldNotFound, f.position)
	}

	f.forms.logger.Debug("choices stored",
		zap.String("form_id", f.formID),
		zap.Int("position", f.position),
		zap.Int("choices", len(choices)),
	)
	return nil
}

var (
	_ internal.FormService = (*Forms)(nil)
	_ internal.Form        = (*Form)(nil)
	_ internal.Field       = (*Field)(nil)
)
