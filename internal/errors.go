package internal

import "errors"

var (
	ErrTableNotFound     = errors.New("table not found")
	ErrMissingColumn     = errors.New("missing column")
	ErrFormNotFound      = errors.New("form not found")
	ErrFieldNotFound     = errors.New("field not found")
	ErrNotChoiceField    = errors.New("field does not accept choices")
	ErrInvalidFieldIndex = errors.New("invalid field index")
)
