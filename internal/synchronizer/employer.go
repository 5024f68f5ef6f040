package synchronizer

import (
	"context"

	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/catalog"
	"github.com/turbolytics/formsync/internal/table"
)

const ColumnCode = "Code"

var (
	employerSchema         = table.Schema{ColumnCode}
	employerSettingsSchema = table.Schema{ColumnFormID, ColumnFieldIndex, ColumnType}
)

// SyncEmployers fills every bound field with the codes of the employers
// flagged with the binding's type.
func (s *Synchronizer) SyncEmployers(ctx context.Context) (*catalog.Catalog, error) {
	c := s.newCatalog(internal.VariantEmployers)

	employers, err := s.reader.DataEntry(ctx)
	if err != nil {
		return s.finish(c, err)
	}
	if err := employers.Validate(employerSchema); err != nil {
		return s.finish(c, err)
	}
	c.NumSourceRecords = len(employers.Records)

	settings, err := s.reader.Settings(ctx)
	if err != nil {
		return s.finish(c, err)
	}
	bindings, err := s.bindings(settings, employerSettingsSchema)
	if err != nil {
		return s.finish(c, err)
	}

	for _, b := range bindings {
		if employers.Index(b.typ) < 0 {
			s.logger.Warn("type column not found, field will be emptied",
				zap.String("form_id", b.formID),
				zap.String("type", b.typ),
			)
		}
		if err := s.replace(ctx, c, b, EmployerChoices(employers, b.typ)); err != nil {
			return s.finish(c, err)
		}
	}
	return s.finish(c, nil)
}

// EmployerChoices returns the codes of the records whose typ column holds
// the boolean true, in table order. Truthy non-boolean values do not match.
func EmployerChoices(employers *table.Table, typ string) []string {
	choices := []string{}
	for _, r := range employers.Records {
		v, _ := r.Get(typ)
		if flag, ok := v.(bool); !ok || !flag {
			continue
		}
		code, _ := r.Get(ColumnCode)
		choices = append(choices, table.String(code))
	}
	return choices
}
