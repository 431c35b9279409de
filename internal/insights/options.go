package insights

import (
	"sort"

	"chat-insights/internal/filter"
	"chat-insights/internal/models"
)

// ComputeFilterOptions lists the selector values of a snapshot. Group names
// are sorted with the AllGroups sentinel first; sub-identifiers ascend
// numerically with the AllBooths sentinel last.
func ComputeFilterOptions(n models.NormalizedTables) models.FilterOptions {
	return models.FilterOptions{
		Dates:          dateBounds(n),
		GroupNames:     groupNames(n.Groups),
		SubIdentifiers: subIdentifiers(n.Groups),
	}
}

func dateBounds(n models.NormalizedTables) models.DateBounds {
	var b models.DateBounds
	see := func(ts models.Timestamp) {
		key := ts.DateKey()
		if key == "" {
			return
		}
		if !b.Valid || key < b.Min {
			b.Min = key
		}
		if !b.Valid || key > b.Max {
			b.Max = key
		}
		b.Valid = true
	}
	for _, g := range n.Groups {
		see(g.CreatedAt)
	}
	for _, m := range n.Messages {
		see(m.SentAt)
	}
	for _, r := range n.Reactions {
		see(r.ReactedAt)
	}
	for _, e := range n.Events {
		see(e.OccurredAt)
	}
	return b
}

func groupNames(groups []models.Group) []string {
	seen := map[string]bool{}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		if !seen[g.Name] {
			seen[g.Name] = true
			names = append(names, g.Name)
		}
	}
	sort.Strings(names)
	return append([]string{filter.AllGroups}, names...)
}

func subIdentifiers(groups []models.Group) []string {
	seen := map[string]bool{}
	subs := make([]string, 0, len(groups)+1)
	for _, g := range groups {
		if g.SubIdentifier != "" && !seen[g.SubIdentifier] {
			seen[g.SubIdentifier] = true
			subs = append(subs, g.SubIdentifier)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return numericLess(subs[i], subs[j]) })
	return append(subs, filter.AllBooths)
}

// numericLess orders digit strings by value without overflow, so "9" < "10"
// and "007" sorts next to "7".
func numericLess(a, b string) bool {
	ta, tb := trimZeros(a), trimZeros(b)
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	if ta != tb {
		return ta < tb
	}
	return a < b
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
