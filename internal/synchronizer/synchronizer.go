package synchronizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/catalog"
	"github.com/turbolytics/formsync/internal/registry"
	"github.com/turbolytics/formsync/internal/table"
)

// Settings table columns.
const (
	ColumnFormID     = "Form ID"
	ColumnFieldIndex = "Field Index"
	ColumnType       = "Type"
)

type Option func(*Synchronizer)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

func WithNotifier(n internal.Notifier) Option {
	return func(s *Synchronizer) {
		s.notifier = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// Synchronizer pushes registry entries into form fields as choice lists.
type Synchronizer struct {
	reader   *registry.Reader
	forms    internal.FormService
	notifier internal.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func New(reader *registry.Reader, forms internal.FormService, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		reader: reader,
		forms:  forms,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync runs the synchronization for the given registry variant.
func (s *Synchronizer) Sync(ctx context.Context, variant internal.Variant) (*catalog.Catalog, error) {
	switch variant {
	case internal.VariantEmployers:
		return s.SyncEmployers(ctx)
	case internal.VariantEvents:
		return s.SyncEvents(ctx)
	default:
		return nil, fmt.Errorf("unknown variant: %q", variant)
	}
}

// binding is one row of the settings table.
type binding struct {
	formID     string
	fieldIndex int
	typ        string
}

func (s *Synchronizer) bindings(settings *table.Table, schema table.Schema) ([]binding, error) {
	if err := settings.Validate(schema); err != nil {
		return nil, err
	}

	bindings := make([]binding, 0, len(settings.Records))
	for _, r := range settings.Records {
		formID, _ := r.Get(ColumnFormID)
		raw, _ := r.Get(ColumnFieldIndex)

		idx, err := table.Int(raw)
		if err != nil {
			return nil, fmt.Errorf("settings row %d: %w: %v", r.Index()+2, internal.ErrInvalidFieldIndex, err)
		}
		if idx < 1 {
			return nil, fmt.Errorf("settings row %d: %w: %d", r.Index()+2, internal.ErrInvalidFieldIndex, idx)
		}

		typ, _ := r.Get(ColumnType)
		bindings = append(bindings, binding{
			formID:     table.String(formID),
			fieldIndex: idx,
			typ:        table.String(typ),
		})
	}
	return bindings, nil
}

func (s *Synchronizer) newCatalog(variant internal.Variant) *catalog.Catalog {
	return &catalog.Catalog{
		RunID:     uuid.New().String(),
		Variant:   variant,
		StartTime: s.now(),
		Source:    s.reader.DataEntryName(),
	}
}

// replace swaps the whole choice list of the bound field.
func (s *Synchronizer) replace(ctx context.Context, c *catalog.Catalog, b binding, choices []string) error {
	form, err := s.forms.OpenForm(ctx, b.formID)
	if err != nil {
		return err
	}

	field, err := form.FieldAt(ctx, b.fieldIndex-1)
	if err != nil {
		return err
	}

	previous, err := field.Choices(ctx)
	if err != nil {
		return fmt.Errorf("form %q field %d: reading choices: %w", b.formID, b.fieldIndex, err)
	}

	if err := field.SetChoices(ctx, choices); err != nil {
		return fmt.Errorf("form %q field %d: setting choices: %w", b.formID, b.fieldIndex, err)
	}
	c.NumFieldsUpdated++

	s.logger.Info("choices replaced",
		zap.String("run_id", c.RunID),
		zap.String("form_id", b.formID),
		zap.Int("field_index", b.fieldIndex),
		zap.Int("previous", len(previous)),
		zap.Int("choices", len(choices)),
	)

	if s.notifier == nil {
		return nil
	}
	return s.notifier.Notify(ctx, internal.ChoicesReplaced{
		RunID:      c.RunID,
		Variant:    c.Variant,
		FormID:     b.formID,
		FieldIndex: b.fieldIndex,
		Previous:   len(previous),
		Choices:    choices,
		Time:       s.now(),
	})
}

func (s *Synchronizer) finish(c *catalog.Catalog, err error) (*catalog.Catalog, error) {
	c.EndTime = s.now()
	c.Completed = err == nil

	fields := []zap.Field{
		zap.String("run_id", c.RunID),
		zap.String("variant", string(c.Variant)),
		zap.Int("records", c.NumSourceRecords),
		zap.Int("ids_generated", c.NumIDsGenerated),
		zap.Int("fields_updated", c.NumFieldsUpdated),
		zap.Duration("duration", c.Duration()),
	}
	if err != nil {
		s.logger.Error("sync failed", append(fields, zap.Error(err))...)
		return c, err
	}
	s.logger.Info("sync completed", fields...)
	return c, nil
}
