package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/integrations/kafka"
	"github.com/turbolytics/formsync/internal/integrations/mongo"
	"github.com/turbolytics/formsync/internal/local"
	"github.com/turbolytics/formsync/internal/postgres"
	"github.com/turbolytics/formsync/internal/registry"
	"github.com/turbolytics/formsync/internal/s3"
	"github.com/turbolytics/formsync/internal/stdout"
	"github.com/turbolytics/formsync/internal/synchronizer"
	"github.com/turbolytics/formsync/internal/trigger"
)

// FormSeeder can create whole forms, used to load fixtures.
type FormSeeder interface {
	PutForm(ctx context.Context, id string, fields ...internal.FieldSpec) error
}

// Runtime holds everything a command needs to run a sync.
type Runtime struct {
	Document     internal.Document
	Forms        internal.FormService
	Notifier     internal.Notifier
	Synchronizer *synchronizer.Synchronizer
	Triggers     *trigger.Registry

	closers []func(context.Context) error
}

func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i](ctx))
	}
	return errors.Join(errs...)
}

func Initialize(ctx context.Context, c *FormSync, l *zap.Logger) (*Runtime, error) {
	rt := &Runtime{}

	doc, closeDoc, err := InitializeDocument(ctx, c, l.Named("document"))
	if err != nil {
		return nil, err
	}
	rt.Document = doc
	rt.closers = append(rt.closers, closeDoc)

	forms, closeForms, err := InitializeForms(ctx, c, l.Named("forms"))
	if err != nil {
		if cerr := rt.Close(ctx); cerr != nil {
			l.Warn("closing partial runtime", zap.Error(cerr))
		}
		return nil, err
	}
	rt.Forms = forms
	rt.closers = append(rt.closers, closeForms)

	opts := []synchronizer.Option{
		synchronizer.WithLogger(l.Named("synchronizer")),
	}

	notifier, err := InitializeNotifier(ctx, c, l.Named("notifier"))
	if err != nil {
		if cerr := rt.Close(ctx); cerr != nil {
			l.Warn("closing partial runtime", zap.Error(cerr))
		}
		return nil, err
	}
	if notifier != nil {
		rt.Notifier = notifier
		rt.closers = append(rt.closers, notifier.Close)
		opts = append(opts, synchronizer.WithNotifier(notifier))
	}

	reader := registry.New(doc,
		registry.WithLogger(l.Named("registry")),
		registry.WithDataEntry(c.Tables.DataEntry),
		registry.WithSettings(c.Tables.Settings),
	)
	rt.Synchronizer = synchronizer.New(reader, forms, opts...)
	rt.Triggers = trigger.New(c.Variant,
		trigger.WithLogger(l.Named("trigger")),
		trigger.WithActivated(c.Trigger.Activated),
	)
	return rt, nil
}

func InitializeDocument(ctx context.Context, c *FormSync, l *zap.Logger) (internal.Document, func(context.Context) error, error) {
	switch c.Document.Type {
	case "local":
		w, err := local.Open(c.Document.Local.Path, local.WithLogger(l))
		if err != nil {
			return nil, nil, err
		}
		return w, func(context.Context) error { return w.Close() }, nil
	case "s3":
		w, err := s3.Open(ctx,
			s3.WithLogger(l),
			s3.WithRegion(c.Document.S3.Region),
			s3.WithBucket(c.Document.S3.Bucket),
			s3.WithKey(c.Document.S3.Key),
			s3.WithEndpoint(c.Document.S3.Endpoint),
			s3.WithForcePathStyle(c.Document.S3.ForcePathStyle),
		)
		if err != nil {
			return nil, nil, err
		}
		return w, func(context.Context) error { return w.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown document type: %s", c.Document.Type)
	}
}

// InitializeForms picks the form service from the URL scheme.
func InitializeForms(ctx context.Context, c *FormSync, l *zap.Logger) (internal.FormService, func(context.Context) error, error) {
	u, err := url.Parse(c.Forms.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid forms URL: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		l.Info("initializing postgres forms", zap.String("host", u.Host))
		conn, err := pgx.Connect(ctx, c.Forms.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := conn.Ping(ctx); err != nil {
			if cerr := conn.Close(ctx); cerr != nil {
				l.Warn("closing postgres connection", zap.Error(cerr))
			}
			return nil, nil, err
		}

		opts := []postgres.Option{postgres.WithLogger(l)}
		if c.Forms.Table != "" {
			opts = append(opts, postgres.WithTable(c.Forms.Table))
		}
		forms := postgres.NewForms(conn, opts...)
		if err := forms.EnsureSchema(ctx); err != nil {
			if cerr := conn.Close(ctx); cerr != nil {
				l.Warn("closing postgres connection", zap.Error(cerr))
			}
			return nil, nil, err
		}
		return forms, conn.Close, nil
	case "mongodb", "mongodb+srv":
		l.Info("initializing MongoDB forms", zap.String("host", u.Host))
		forms, err := mongo.NewForms(ctx, u, l)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create MongoDB forms: %w", err)
		}
		return forms, forms.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported forms protocol: %s", u.Scheme)
	}
}

// InitializeNotifier returns nil when no notifier is configured.
func InitializeNotifier(ctx context.Context, c *FormSync, l *zap.Logger) (internal.Notifier, error) {
	if c.Notifier.URL == "" {
		return nil, nil
	}

	u, err := url.Parse(c.Notifier.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid notifier URL: %w", err)
	}

	switch u.Scheme {
	case "kafka":
		l.Info("initializing kafka notifier", zap.String("url", c.Notifier.URL))
		n, err := kafka.NewNotifier(ctx, u, l)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "stdout":
		return stdout.New(nil), nil
	default:
		return nil, fmt.Errorf("unsupported notifier protocol: %s", u.Scheme)
	}
}
