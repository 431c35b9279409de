// Package classify assigns a group type from membership composition.
package classify

import "chat-insights/internal/models"

// Classify returns the type of a group with the given distinct participant
// and admin counts. A single participant is always SinglePeer; otherwise any
// admin makes the group AdminManaged.
func Classify(participants, admins int) models.GroupType {
	switch {
	case participants == 1:
		return models.TypeSinglePeer
	case admins >= 1:
		return models.TypeAdminManaged
	default:
		return models.TypeMultiParticipantNoAdmin
	}
}

// Groups classifies every group that has at least one membership. Counts are
// taken from the memberships passed in, so the result follows whatever filter
// produced them. Output keeps the order of groups.
func Groups(groups []models.Group, memberships []models.Membership) []models.GroupClass {
	participants := map[string]map[string]struct{}{}
	admins := map[string]map[string]struct{}{}
	for _, m := range memberships {
		addMember(participants, m.GroupID, m.ParticipantID)
		if m.IsAdmin {
			addMember(admins, m.GroupID, m.ParticipantID)
		}
	}

	out := make([]models.GroupClass, 0, len(groups))
	for _, g := range groups {
		count := len(participants[g.ID])
		if count == 0 {
			continue
		}
		adminCount := len(admins[g.ID])
		out = append(out, models.GroupClass{
			GroupID:      g.ID,
			DisplayName:  g.Name,
			Participants: count,
			Admins:       adminCount,
			Type:         Classify(count, adminCount),
		})
	}
	return out
}

// Distribution counts classified groups per type, listing every type.
func Distribution(classes []models.GroupClass) []models.TypeCount {
	counts := map[models.GroupType]int{}
	for _, c := range classes {
		counts[c.Type]++
	}
	out := make([]models.TypeCount, 0, len(models.GroupTypes))
	for _, t := range models.GroupTypes {
		out = append(out, models.TypeCount{Type: t, Groups: counts[t]})
	}
	return out
}

func addMember(sets map[string]map[string]struct{}, groupID, participantID string) {
	set, ok := sets[groupID]
	if !ok {
		set = map[string]struct{}{}
		sets[groupID] = set
	}
	set[participantID] = struct{}{}
}
