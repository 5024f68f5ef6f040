package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/table"
)

type Option func(*Reader)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

func WithDataEntry(name string) Option {
	return func(r *Reader) {
		if name != "" {
			r.dataEntry = name
		}
	}
}

func WithSettings(name string) Option {
	return func(r *Reader) {
		if name != "" {
			r.settings = name
		}
	}
}

// Reader loads the registry and settings tables from a document.
type Reader struct {
	doc       internal.Document
	dataEntry string
	settings  string
	logger    *zap.Logger
}

func New(doc internal.Document, opts ...Option) *Reader {
	r := &Reader{
		doc:       doc,
		dataEntry: internal.DefaultDataEntryTable,
		settings:  internal.DefaultSettingsTable,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) Document() internal.Document {
	return r.doc
}

func (r *Reader) DataEntryName() string {
	return r.dataEntry
}

// Read returns the full extent of the named table, parsed into records.
func (r *Reader) Read(ctx context.Context, name string) (*table.Table, error) {
	grid, err := r.doc.ReadTable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}

	t := table.Parse(grid)
	t.Name = name

	r.logger.Debug("table read",
		zap.String("table", name),
		zap.Int("columns", len(t.Headers)),
		zap.Int("records", len(t.Records)),
	)
	return t, nil
}

func (r *Reader) DataEntry(ctx context.Context) (*table.Table, error) {
	return r.Read(ctx, r.dataEntry)
}

func (r *Reader) Settings(ctx context.Context) (*table.Table, error) {
	return r.Read(ctx, r.settings)
}
