package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema            = errors.New("schema error")
	ErrSnapshotNotLoaded = errors.New("snapshot not loaded")
	ErrSourceUnavailable = errors.New("data source unavailable")
)

// SchemaError reports required columns missing from a loaded table.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s: missing required columns %s", e.Table, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
