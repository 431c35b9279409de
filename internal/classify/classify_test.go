package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-insights/internal/models"
)

func TestClassifyTotal(t *testing.T) {
	valid := map[models.GroupType]bool{}
	for _, gt := range models.GroupTypes {
		valid[gt] = true
	}
	for count := 1; count <= 6; count++ {
		for admins := 0; admins <= count; admins++ {
			got := Classify(count, admins)
			require.True(t, valid[got], "count=%d admins=%d", count, admins)
			if count == 1 {
				require.Equal(t, models.TypeSinglePeer, got)
			}
		}
	}
	require.Equal(t, models.TypeSinglePeer, Classify(1, 5))
	require.Equal(t, models.TypeAdminManaged, Classify(2, 1))
	require.Equal(t, models.TypeMultiParticipantNoAdmin, Classify(3, 0))
}

func TestGroupsBoothScenario(t *testing.T) {
	groups := []models.Group{{ID: "g12", Name: "Booth 12", SubIdentifier: "12"}}
	memberships := []models.Membership{
		{GroupID: "g12", ParticipantID: "a", IsAdmin: true},
		{GroupID: "g12", ParticipantID: "b"},
		{GroupID: "g12", ParticipantID: "c"},
	}

	classes := Groups(groups, memberships)
	require.Len(t, classes, 1)
	require.Equal(t, models.TypeAdminManaged, classes[0].Type)
	require.Equal(t, 3, classes[0].Participants)
	require.Equal(t, 1, classes[0].Admins)

	classes = Groups(groups, memberships[:1])
	require.Equal(t, models.TypeSinglePeer, classes[0].Type)
}

func TestGroupsCountsDistinctParticipants(t *testing.T) {
	groups := []models.Group{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}}
	memberships := []models.Membership{
		{GroupID: "g1", ParticipantID: "a"},
		{GroupID: "g1", ParticipantID: "a"},
		{GroupID: "g2", ParticipantID: "a"},
		{GroupID: "g2", ParticipantID: "b"},
		{GroupID: "g9", ParticipantID: "z", IsAdmin: true},
	}

	classes := Groups(groups, memberships)
	require.Len(t, classes, 2)
	require.Equal(t, models.TypeSinglePeer, classes[0].Type)
	require.Equal(t, models.TypeMultiParticipantNoAdmin, classes[1].Type)

	dist := Distribution(classes)
	require.Equal(t, []models.TypeCount{
		{Type: models.TypeSinglePeer, Groups: 1},
		{Type: models.TypeAdminManaged, Groups: 0},
		{Type: models.TypeMultiParticipantNoAdmin, Groups: 1},
	}, dist)
}

func TestGroupsEmpty(t *testing.T) {
	require.Empty(t, Groups(nil, nil))
	require.Len(t, Distribution(nil), len(models.GroupTypes))
}
