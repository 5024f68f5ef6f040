package internal

// Record is a struct that contains a set of fields and their corresponding values.
// It is used to represent a data row of a registry table.
// Field order matters for writing cells back, so we keep them in a separate slice.
type Record struct {
	fields []string
	values []any
	index  int
}

func NewRecord(fields []string, values []any) *Record {
	return &Record{
		fields: fields,
		values: values,
	}
}

// WithIndex sets the 0-based data row the record was parsed from.
func (r *Record) WithIndex(i int) *Record {
	r.index = i
	return r
}

// Index is the 0-based data row of the record. The sheet row is Index() + 2.
func (r *Record) Index() int {
	return r.index
}

func (r *Record) Len() int {
	return len(r.fields)
}

func (r *Record) Fields() []string {
	return r.fields
}

func (r *Record) Values() []any {
	return r.values
}

// Get returns the value stored under field. When a header repeats, the
// right-most column wins, same as Map.
func (r *Record) Get(field string) (any, bool) {
	for i := len(r.fields) - 1; i >= 0; i-- {
		if r.fields[i] == field {
			return r.values[i], true
		}
	}
	return nil, false
}

// Set replaces the value stored under field, returning false if the field is unknown.
func (r *Record) Set(field string, value any) bool {
	for i := len(r.fields) - 1; i >= 0; i-- {
		if r.fields[i] == field {
			r.values[i] = value
			return true
		}
	}
	return false
}

func (r *Record) Map() map[string]any {
	m := make(map[string]any)
	for i, field := range r.fields {
		m[field] = r.values[i]
	}
	return m
}
