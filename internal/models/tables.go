package models

// NormalizedTables is the output of normalization. It is never modified
// after it is built.
type NormalizedTables struct {
	Groups      []Group           `json:"groups"`
	Memberships []Membership      `json:"memberships"`
	Messages    []Message         `json:"messages"`
	Reactions   []Reaction        `json:"reactions"`
	Events      []MembershipEvent `json:"events"`
}

// FilteredTables is the table set produced by one filter stage. Each stage
// returns a new value.
type FilteredTables struct {
	Groups      []Group           `json:"groups"`
	Memberships []Membership      `json:"memberships"`
	Messages    []Message         `json:"messages"`
	Reactions   []Reaction        `json:"reactions"`
	Events      []MembershipEvent `json:"events"`
}

// Unfiltered wraps normalized tables as the input of the first filter stage.
func (n NormalizedTables) Unfiltered() FilteredTables {
	return FilteredTables(n)
}

// RowCounts reports the size of each table keyed by entity name.
func (n NormalizedTables) RowCounts() map[string]int {
	return map[string]int{
		"groups":      len(n.Groups),
		"memberships": len(n.Memberships),
		"messages":    len(n.Messages),
		"reactions":   len(n.Reactions),
		"events":      len(n.Events),
	}
}
