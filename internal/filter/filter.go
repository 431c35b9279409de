// Package filter narrows normalized tables by date range, group name and
// sub-identifier. Every stage returns a new FilteredTables and never touches
// its input.
package filter

import (
	"time"

	"chat-insights/internal/models"
)

const (
	// AllGroups disables the group-name stage.
	AllGroups = "All Groups"
	// AllBooths disables the sub-identifier stage.
	AllBooths = "All Booths"
)

// DateRange is an inclusive range of calendar dates. A zero side is unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Unbounded reports whether the range places no constraint at all.
func (r DateRange) Unbounded() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether the timestamp's calendar date falls in the range.
// Invalid timestamps are never contained.
func (r DateRange) Contains(ts models.Timestamp) bool {
	key := ts.DateKey()
	if key == "" {
		return false
	}
	if !r.Start.IsZero() && key < r.Start.Format(models.DateLayout) {
		return false
	}
	if !r.End.IsZero() && key > r.End.Format(models.DateLayout) {
		return false
	}
	return true
}

// Params selects the slice of data a query looks at. Empty Group and
// SubIdentifier behave like the All sentinels.
type Params struct {
	Dates         DateRange `json:"-"`
	Group         string    `json:"group"`
	SubIdentifier string    `json:"sub_identifier"`
}

// Apply runs the date, group-name and sub-identifier stages in order and
// scopes every dependent table to the surviving groups.
func Apply(tables models.FilteredTables, p Params) models.FilteredTables {
	out := ByDate(tables, p.Dates)
	out = ByGroupName(out, p.Group)
	out = BySubIdentifier(out, p.SubIdentifier)
	return Scope(out)
}

// ByDate keeps groups, messages, reactions and events whose own timestamp is
// in range. Memberships carry no timestamp and pass through.
func ByDate(tables models.FilteredTables, r DateRange) models.FilteredTables {
	if r.Unbounded() {
		return clone(tables)
	}
	return models.FilteredTables{
		Groups:      Where(tables.Groups, func(g models.Group) bool { return r.Contains(g.CreatedAt) }),
		Memberships: Where(tables.Memberships, func(models.Membership) bool { return true }),
		Messages:    Where(tables.Messages, func(m models.Message) bool { return r.Contains(m.SentAt) }),
		Reactions:   Where(tables.Reactions, func(x models.Reaction) bool { return r.Contains(x.ReactedAt) }),
		Events:      Where(tables.Events, func(e models.MembershipEvent) bool { return r.Contains(e.OccurredAt) }),
	}
}

// ByGroupName keeps the groups with the given display name and their
// dependent rows. More than one group may share a name; all are kept.
func ByGroupName(tables models.FilteredTables, name string) models.FilteredTables {
	if name == "" || name == AllGroups {
		return clone(tables)
	}
	out := tables
	out.Groups = Where(tables.Groups, func(g models.Group) bool { return g.Name == name })
	return Scope(out)
}

// BySubIdentifier keeps the groups with the given sub-identifier and their
// dependent rows.
func BySubIdentifier(tables models.FilteredTables, sub string) models.FilteredTables {
	if sub == "" || sub == AllBooths {
		return clone(tables)
	}
	out := tables
	out.Groups = Where(tables.Groups, func(g models.Group) bool { return g.SubIdentifier == sub })
	return Scope(out)
}

// Scope restricts memberships, messages, reactions and events to the groups
// present in tables.Groups.
func Scope(tables models.FilteredTables) models.FilteredTables {
	groups := Keys(tables.Groups, groupID)
	return models.FilteredTables{
		Groups:      Where(tables.Groups, func(models.Group) bool { return true }),
		Memberships: Where(tables.Memberships, func(m models.Membership) bool { return groups.Has(m.GroupID) }),
		Messages:    Where(tables.Messages, func(m models.Message) bool { return groups.Has(m.GroupID) }),
		Reactions:   Where(tables.Reactions, func(r models.Reaction) bool { return groups.Has(r.GroupID) }),
		Events:      Where(tables.Events, func(e models.MembershipEvent) bool { return groups.Has(e.GroupID) }),
	}
}

func clone(tables models.FilteredTables) models.FilteredTables {
	return models.FilteredTables{
		Groups:      append([]models.Group{}, tables.Groups...),
		Memberships: append([]models.Membership{}, tables.Memberships...),
		Messages:    append([]models.Message{}, tables.Messages...),
		Reactions:   append([]models.Reaction{}, tables.Reactions...),
		Events:      append([]models.MembershipEvent{}, tables.Events...),
	}
}

func groupID(g models.Group) string { return g.ID }
