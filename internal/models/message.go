package models

// Content types that do not come from a media payload.
const (
	ContentText    = "text"
	ContentUnknown = "unknown"
)

// MediaKind tags the state of a message's media payload.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaKnown
	MediaMalformed
)

// MediaDescriptor is the media payload decided once at normalization.
type MediaDescriptor struct {
	Kind     MediaKind
	MimeType string
}

// ContentType maps the descriptor to a message content type.
func (m MediaDescriptor) ContentType() string {
	switch m.Kind {
	case MediaNone:
		return ContentText
	case MediaKnown:
		return m.MimeType
	default:
		return ContentUnknown
	}
}

// Message represents one sent message.
type Message struct {
	ID          string          `json:"message_id"`
	GroupID     string          `json:"group_id"`
	SenderID    string          `json:"sender_id"`
	Body        string          `json:"body,omitempty"`
	SentAt      Timestamp       `json:"sent_at"`
	Media       MediaDescriptor `json:"-"`
	ContentType string          `json:"content_type"`
}

// Reaction is one reaction to one message.
type Reaction struct {
	GroupID   string    `json:"group_id"`
	MessageID string    `json:"message_id"`
	ReactorID string    `json:"reactor_id"`
	ReactedAt Timestamp `json:"reacted_at"`
}
