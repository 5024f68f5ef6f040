package synchronizer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/catalog"
	"github.com/turbolytics/formsync/internal/table"
)

const (
	ColumnEventName = "Event Name"
	ColumnEventID   = "Event ID"
)

var (
	eventSchema         = table.Schema{ColumnEventName, ColumnEventID}
	eventSettingsSchema = table.Schema{ColumnFormID, ColumnFieldIndex}
)

// SyncEvents assigns identifiers to events that lack one, writing them back
// to the document, then fills every bound field with all event identifiers.
func (s *Synchronizer) SyncEvents(ctx context.Context) (*catalog.Catalog, error) {
	c := s.newCatalog(internal.VariantEvents)

	events, err := s.reader.DataEntry(ctx)
	if err != nil {
		return s.finish(c, err)
	}
	if err := events.Validate(eventSchema); err != nil {
		return s.finish(c, err)
	}
	c.NumSourceRecords = len(events.Records)

	column := events.Index(ColumnEventID) + 1
	choices := make([]string, 0, len(events.Records))

	for _, r := range events.Records {
		v, _ := r.Get(ColumnEventID)
		if id, ok := v.(string); ok && id == "" {
			name, _ := r.Get(ColumnEventName)
			id = GenerateEventID(table.String(name), r.Index())

			row := r.Index() + 2
			err := s.reader.Document().WriteCells(ctx, events.Name, [][]any{{id}}, row, column, internal.WriteOptions{})
			if err != nil {
				return s.finish(c, fmt.Errorf("writing event id at row %d: %w", row, err))
			}
			r.Set(ColumnEventID, id)
			c.NumIDsGenerated++

			s.logger.Info("event id generated",
				zap.String("run_id", c.RunID),
				zap.String("event_id", id),
				zap.Int("row", row),
			)
		}

		v, _ = r.Get(ColumnEventID)
		choices = append(choices, table.String(v))
	}

	settings, err := s.reader.Settings(ctx)
	if err != nil {
		return s.finish(c, err)
	}
	bindings, err := s.bindings(settings, eventSettingsSchema)
	if err != nil {
		return s.finish(c, err)
	}

	for _, b := range bindings {
		if err := s.replace(ctx, c, b, choices); err != nil {
			return s.finish(c, err)
		}
	}
	return s.finish(c, nil)
}

// GenerateEventID builds an identifier from the first five characters of
// the name with whitespace removed and full upper-case mapping applied
// ("ß" becomes "SS"), followed by the sheet row (index + 2) padded to five
// digits. Names shorter than five characters are kept short.
func GenerateEventID(name string, index int) string {
	var b strings.Builder
	for _, r := range name {
		if !unicode.IsSpace(r) && r != '\ufeff' {
			b.WriteRune(r)
		}
	}

	prefix := []rune(cases.Upper(language.Und).String(b.String()))
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	return fmt.Sprintf("%s%05d", string(prefix), index+2)
}
