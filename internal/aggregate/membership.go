package aggregate

import "chat-insights/internal/models"

// JoinLeave counts add and leave events per group in group order. Groups with
// neither are left out.
func JoinLeave(tables models.FilteredTables) []models.JoinLeave {
	added := map[string]int{}
	left := map[string]int{}
	for _, e := range tables.Events {
		switch e.Kind {
		case models.EventAdd:
			added[e.GroupID]++
		case models.EventLeave:
			left[e.GroupID]++
		}
	}

	out := make([]models.JoinLeave, 0, len(tables.Groups))
	seen := map[string]bool{}
	for _, g := range tables.Groups {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		row := models.JoinLeave{GroupID: g.ID, DisplayName: g.Name, Added: added[g.ID], Left: left[g.ID]}
		if row.Added == 0 && row.Left == 0 {
			continue
		}
		out = append(out, row)
	}
	return out
}
