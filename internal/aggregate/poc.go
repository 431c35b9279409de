package aggregate

import (
	"sort"

	"chat-insights/internal/models"
)

type senderActivity struct {
	messages int
	groups   map[string]struct{}
}

// POCs rolls up every participant that is admin of at least one filtered
// group. Messages are grouped by sender once and looked up per admin.
func POCs(tables models.FilteredTables, labels map[string]string) []models.POCSummary {
	adminOf := map[string]map[string]struct{}{}
	for _, m := range tables.Memberships {
		if !m.IsAdmin || m.ParticipantID == "" {
			continue
		}
		groups, ok := adminOf[m.ParticipantID]
		if !ok {
			groups = map[string]struct{}{}
			adminOf[m.ParticipantID] = groups
		}
		groups[m.GroupID] = struct{}{}
	}

	activity := map[string]*senderActivity{}
	for _, m := range tables.Messages {
		a, ok := activity[m.SenderID]
		if !ok {
			a = &senderActivity{groups: map[string]struct{}{}}
			activity[m.SenderID] = a
		}
		a.messages++
		a.groups[m.GroupID] = struct{}{}
	}

	reactions := map[string]int{}
	for _, r := range tables.Reactions {
		reactions[r.ReactorID]++
	}

	out := make([]models.POCSummary, 0, len(adminOf))
	for id, groups := range adminOf {
		s := models.POCSummary{
			ParticipantID: id,
			Label:         labels[id],
			AdminGroups:   len(groups),
			Reactions:     reactions[id],
		}
		if a, ok := activity[id]; ok {
			s.Messages = a.messages
			s.ActiveGroups = len(a.groups)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Messages != out[j].Messages {
			return out[i].Messages > out[j].Messages
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}
