package catalog

import (
	"time"

	"github.com/turbolytics/formsync/internal"
)

/*
The catalog is a record of what a sync run did.
It is returned to whoever triggered the run and logged, and is the
primitive for auditing which fields were rewritten.
*/

// Catalog represents one synchronization run
type Catalog struct {
	RunID            string           `json:"run_id"`
	Variant          internal.Variant `json:"variant"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
	Source           string           `json:"source"`
	NumSourceRecords int              `json:"num_source_records"`
	NumIDsGenerated  int              `json:"num_ids_generated"`
	NumFieldsUpdated int              `json:"num_fields_updated"`
	Completed        bool             `json:"completed"`
}

// Duration is zero until the run ends.
func (c *Catalog) Duration() time.Duration {
	if c.EndTime.IsZero() {
		return 0
	}
	return c.EndTime.Sub(c.StartTime)
}
