package aggregate

import (
	"sort"

	"chat-insights/internal/filter"
	"chat-insights/internal/models"
)

// TopMessages ranks messages by reactions received. Ties keep message order.
// Messages without reactions are not ranked, so the result may hold fewer
// than n rows, or none.
func TopMessages(tables models.FilteredTables, n int) []models.RankedMessage {
	counts := filter.Count(tables.Reactions, func(r models.Reaction) string { return r.MessageID })

	ranked := make([]models.RankedMessage, 0, len(counts))
	for _, m := range tables.Messages {
		c := counts[m.ID]
		if c == 0 {
			continue
		}
		ranked = append(ranked, models.RankedMessage{
			MessageID:   m.ID,
			GroupID:     m.GroupID,
			Body:        m.Body,
			ContentType: m.ContentType,
			Reactions:   c,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Reactions > ranked[j].Reactions })
	return head(ranked, n)
}

// TopGroups ranks groups by reactions received. Ties keep group order.
// Groups without reactions are not ranked, so the result may hold fewer than
// n rows.
func TopGroups(tables models.FilteredTables, n int) []models.RankedGroup {
	counts := filter.Count(tables.Reactions, func(r models.Reaction) string { return r.GroupID })

	ranked := make([]models.RankedGroup, 0, len(tables.Groups))
	for _, g := range tables.Groups {
		c := counts[g.ID]
		if c == 0 {
			continue
		}
		ranked = append(ranked, models.RankedGroup{GroupID: g.ID, DisplayName: g.Name, Reactions: c})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Reactions > ranked[j].Reactions })
	return head(ranked, n)
}

func head[T any](rows []T, n int) []T {
	if n >= 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
