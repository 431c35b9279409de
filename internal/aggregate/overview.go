// Package aggregate computes the insight views over filtered tables. Every
// function is pure and returns empty, non-nil results for empty input.
package aggregate

import (
	"chat-insights/internal/classify"
	"chat-insights/internal/models"
)

// DefaultTopN is the length of the ranked message and group lists.
const DefaultTopN = 5

// Options tunes Compute.
type Options struct {
	TopN int
	// POCLabels maps canonical participant ids to display labels.
	POCLabels map[string]string
}

// Compute runs every aggregate over one filtered table set.
func Compute(tables models.FilteredTables, opts Options) models.AggregateResult {
	n := opts.TopN
	if n <= 0 {
		n = DefaultTopN
	}
	classes := classify.Groups(tables.Groups, tables.Memberships)
	return models.AggregateResult{
		Overview:         Overview(tables),
		Classification:   classes,
		TypeDistribution: classify.Distribution(classes),
		TopMessages:      TopMessages(tables, n),
		TopGroups:        TopGroups(tables, n),
		JoinLeave:        JoinLeave(tables),
		Content:          Content(tables),
		POCs:             POCs(tables, opts.POCLabels),
		Trend:            Trend(tables),
		Tables:           tables,
	}
}

// Overview computes the headline counts and ratios.
func Overview(tables models.FilteredTables) models.Overview {
	unique := distinct(tables.Memberships, func(m models.Membership) string { return m.ParticipantID })
	senders := distinct(tables.Messages, func(m models.Message) string { return m.SenderID })
	activeGroups := distinct(tables.Messages, func(m models.Message) string { return m.GroupID })
	reactors := distinct(tables.Reactions, func(r models.Reaction) string { return r.ReactorID })

	o := models.Overview{
		GroupCount:         len(tables.Groups),
		TotalParticipants:  len(tables.Memberships),
		UniqueParticipants: unique,
		ActiveParticipants: senders,
		ActiveGroups:       activeGroups,
		Reactors:           reactors,
	}
	o.ActiveParticipantRatio = ratio(senders, o.TotalParticipants)
	o.ActiveGroupRatio = ratio(activeGroups, o.GroupCount)
	o.EngagementRatio = ratio(reactors, o.TotalParticipants)
	return o
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// distinct counts the non-empty keys of rows.
func distinct[T any](rows []T, key func(T) string) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if k := key(r); k != "" {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}
