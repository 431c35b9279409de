package normalize

import "chat-insights/internal/models"

// Cause identifies one kind of row-level malformation.
type Cause struct {
	Table  string `json:"table"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// CauseCount is a cause and the number of rows it affected.
type CauseCount struct {
	Cause
	Rows int `json:"rows"`
}

// Diagnostics collects row-level issues absorbed during normalization, one
// entry per distinct cause in first-seen order.
type Diagnostics struct {
	counts map[Cause]int
	order  []Cause
}

func newDiagnostics() *Diagnostics {
	return &Diagnostics{counts: map[Cause]int{}}
}

func (d *Diagnostics) add(table, field, reason string) {
	c := Cause{Table: table, Field: field, Reason: reason}
	if _, ok := d.counts[c]; !ok {
		d.order = append(d.order, c)
	}
	d.counts[c]++
}

// Causes lists every distinct cause with its row count.
func (d *Diagnostics) Causes() []CauseCount {
	if d == nil {
		return []CauseCount{}
	}
	out := make([]CauseCount, 0, len(d.order))
	for _, c := range d.order {
		out = append(out, CauseCount{Cause: c, Rows: d.counts[c]})
	}
	return out
}

// Rows returns the number of rows affected by cause.
func (d *Diagnostics) Rows(c Cause) int {
	if d == nil {
		return 0
	}
	return d.counts[c]
}

// Malformed converts the causes for reporting.
func (d *Diagnostics) Malformed() []models.MalformedRows {
	causes := d.Causes()
	out := make([]models.MalformedRows, 0, len(causes))
	for _, c := range causes {
		out = append(out, models.MalformedRows{Table: c.Table, Field: c.Field, Reason: c.Reason, Rows: c.Rows})
	}
	return out
}
