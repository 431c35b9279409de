package models

// GroupKind separates group conversations from direct ones.
type GroupKind string

const (
	KindGroup   GroupKind = "group"
	KindPrivate GroupKind = "private"
)

// GroupType is the classification of a group by membership composition.
type GroupType string

const (
	TypeSinglePeer              GroupType = "single_peer"
	TypeAdminManaged            GroupType = "admin_managed"
	TypeMultiParticipantNoAdmin GroupType = "multi_participant_no_admin"
)

// GroupTypes lists every classification in display order.
var GroupTypes = []GroupType{TypeSinglePeer, TypeAdminManaged, TypeMultiParticipantNoAdmin}

// Group represents a conversation container.
type Group struct {
	ID            string    `json:"group_id"`
	Name          string    `json:"display_name"`
	CreatedAt     Timestamp `json:"created_at"`
	Kind          GroupKind `json:"group_kind"`
	SubIdentifier string    `json:"sub_identifier"`
}

// Membership is one participant's presence in one group.
type Membership struct {
	GroupID       string `json:"group_id"`
	ParticipantID string `json:"participant_id"`
	IsAdmin       bool   `json:"is_admin"`
}

// EventKind is the type of a membership change.
type EventKind string

const (
	EventAdd   EventKind = "add"
	EventLeave EventKind = "leave"
	EventOther EventKind = "other"
)

// MembershipEvent is one join or leave occurrence.
type MembershipEvent struct {
	GroupID    string    `json:"group_id"`
	ActorID    string    `json:"actor_id"`
	Kind       EventKind `json:"event_kind"`
	OccurredAt Timestamp `json:"occurred_at"`
}
