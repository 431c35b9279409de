package aggregate

import (
	"sort"

	"chat-insights/internal/filter"
	"chat-insights/internal/models"
)

// Content counts messages per content type, and reactions per content type of
// the message they react to. Reactions whose message is not in the filtered
// set are skipped.
func Content(tables models.FilteredTables) models.ContentDistribution {
	messages := filter.Count(tables.Messages, func(m models.Message) string { return m.ContentType })

	byID := filter.Index(tables.Messages, func(m models.Message) string { return m.ID })
	reactions := map[string]int{}
	for _, r := range tables.Reactions {
		if m, ok := byID[r.MessageID]; ok {
			reactions[m.ContentType]++
		}
	}

	return models.ContentDistribution{
		Messages:  sortedCounts(messages),
		Reactions: sortedCounts(reactions),
	}
}

func sortedCounts(counts map[string]int) []models.ContentTypeCount {
	out := make([]models.ContentTypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, models.ContentTypeCount{ContentType: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ContentType < out[j].ContentType
	})
	return out
}
