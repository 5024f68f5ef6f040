package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/memory"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewFromFile(t *testing.T) {
	t.Run("events", func(t *testing.T) {
		c, err := NewFromFile("testdata/events.yml")
		require.NoError(t, err)

		assert.Equal(t, internal.VariantEvents, c.Variant)
		assert.Equal(t, "debug", c.Global.Logger.Level)
		assert.Equal(t, "local", c.Document.Type)
		assert.Equal(t, "./dev/amici-events.xlsx", c.Document.Local.Path)
		assert.Equal(t, "Data Entry", c.Tables.DataEntry)
		assert.Equal(t, "Settings", c.Tables.Settings)
		assert.Equal(t, "amici_form_fields", c.Forms.Table)
		assert.Equal(t, "kafka://localhost:9092/formsync.choices", c.Notifier.URL)
		assert.True(t, c.Trigger.Activated)
		assert.Equal(t, ":8080", c.Server.Addr)
	})

	t.Run("employers on s3", func(t *testing.T) {
		c, err := NewFromFile("testdata/employers.s3.yml")
		require.NoError(t, err)

		assert.Equal(t, internal.VariantEmployers, c.Variant)
		assert.Equal(t, "info", c.Global.Logger.Level)
		assert.Equal(t, "amici", c.Document.S3.Bucket)
		assert.True(t, c.Document.S3.ForcePathStyle)
		assert.Equal(t, ":9090", c.Server.Addr)
		assert.Empty(t, c.Notifier.URL)
	})

	t.Run("invalid", func(t *testing.T) {
		testCases := []struct {
			name string
			body string
		}{
			{"unknown variant", "variant: payroll\ndocument: {local: {path: a.xlsx}}\nforms: {url: postgres://x}\n"},
			{"missing path", "variant: events\nforms: {url: postgres://x}\n"},
			{"missing forms", "variant: events\ndocument: {local: {path: a.xlsx}}\n"},
			{"unknown document", "variant: events\ndocument: {type: ftp}\nforms: {url: postgres://x}\n"},
			{"bad level", "global: {logger: {level: loud}}\nvariant: events\ndocument: {local: {path: a.xlsx}}\nforms: {url: postgres://x}\n"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewFromFile(writeConfig(t, tc.body))
				assert.Error(t, err)
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFromFile("testdata/nope.yml")
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	c, err := NewFromFile("testdata/events.yml")
	require.NoError(t, err)

	l, err := c.NewLogger()
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestInitializeErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported forms protocol", func(t *testing.T) {
		c := &FormSync{Forms: Forms{URL: "ftp://forms"}}
		_, _, err := InitializeForms(ctx, c, zap.NewNop())
		assert.ErrorContains(t, err, "unsupported forms protocol")
	})

	t.Run("unsupported notifier protocol", func(t *testing.T) {
		c := &FormSync{Notifier: Notifier{URL: "amqp://localhost/choices"}}
		_, err := InitializeNotifier(ctx, c, zap.NewNop())
		assert.ErrorContains(t, err, "unsupported notifier protocol")
	})

	t.Run("no notifier", func(t *testing.T) {
		n, err := InitializeNotifier(ctx, &FormSync{}, zap.NewNop())
		assert.NoError(t, err)
		assert.Nil(t, n)
	})

	t.Run("missing workbook", func(t *testing.T) {
		c := &FormSync{Document: Document{Type: "local", Local: LocalDocument{Path: filepath.Join(t.TempDir(), "nope.xlsx")}}}
		_, _, err := InitializeDocument(ctx, c, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestSeedForms(t *testing.T) {
	ctx := context.Background()

	fixtures, err := LoadFormFixtures("testdata/forms.yml")
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	assert.Equal(t, "text", fixtures[0].Fields[0].Kind)
	assert.Equal(t, internal.FieldKindList, fixtures[0].Fields[1].Kind)

	forms := memory.NewForms()
	require.NoError(t, SeedForms(ctx, forms, fixtures))

	form, err := forms.OpenForm(ctx, "form123")
	require.NoError(t, err)
	field, err := form.FieldAt(ctx, 1)
	require.NoError(t, err)

	choices, err := field.Choices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"OLD"}, choices)

	_, err = forms.OpenForm(ctx, "caterers")
	assert.NoError(t, err)
}

func TestInitializeNotifierStdout(t *testing.T) {
	n, err := InitializeNotifier(context.Background(), &FormSync{Notifier: Notifier{URL: "stdout://"}}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, n)
}
