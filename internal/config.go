package internal

// Variant names the registry a deployment keeps in sync.
type Variant string

const (
	VariantEmployers Variant = "employers"
	VariantEvents    Variant = "events"
)

// Table names used when the configuration leaves them empty.
const (
	DefaultDataEntryTable = "Data Entry"
	DefaultSettingsTable  = "Settings"
)
