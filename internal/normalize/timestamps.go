package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"chat-insights/internal/models"
)

const (
	reasonMissing     = "missing"
	reasonUnparseable = "unparseable"
)

// timeParser parses the loosely formatted timestamps of the exports in a
// fixed location.
type timeParser struct {
	loc *time.Location
}

func newTimeParser(loc *time.Location) timeParser {
	if loc == nil {
		loc = time.UTC
	}
	return timeParser{loc: loc}
}

// parse returns an invalid Timestamp and the failure reason when value cannot
// be read. dayFirst resolves ambiguous numeric dates such as 02/01/2024.
func (p timeParser) parse(value string, dayFirst bool) (models.Timestamp, string) {
	value = strings.TrimSpace(value)
	if isNullToken(value) {
		return models.Timestamp{}, reasonMissing
	}
	t, err := dateparse.ParseIn(value, p.loc, dateparse.PreferMonthFirst(!dayFirst))
	if err != nil {
		return models.Timestamp{}, reasonUnparseable
	}
	return models.At(t.In(p.loc)), ""
}

// parseDateTime combines separate date and time cells.
func (p timeParser) parseDateTime(date, clock string) (models.Timestamp, string) {
	date = strings.TrimSpace(date)
	if isNullToken(date) {
		return models.Timestamp{}, reasonMissing
	}
	clock = strings.TrimSpace(clock)
	if isNullToken(clock) {
		return p.parse(date, false)
	}
	return p.parse(date+" "+clock, false)
}
