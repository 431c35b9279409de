package normalize

import (
	"encoding/json"
	"mime"
	"strings"

	"chat-insights/internal/models"
)

type mediaPayload struct {
	MimeType *string `json:"mimetype"`
}

// ParseMedia decides the media descriptor of a message from its raw payload.
// An empty cell means a text message; a payload without a readable mimetype
// is malformed.
func ParseMedia(raw string) models.MediaDescriptor {
	raw = strings.TrimSpace(raw)
	if isNullToken(raw) {
		return models.MediaDescriptor{Kind: models.MediaNone}
	}

	var payload mediaPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.MediaDescriptor{Kind: models.MediaMalformed}
	}
	if payload.MimeType == nil {
		return models.MediaDescriptor{Kind: models.MediaMalformed}
	}
	mimeType := strings.ToLower(strings.TrimSpace(*payload.MimeType))
	if mimeType == "" {
		return models.MediaDescriptor{Kind: models.MediaMalformed}
	}
	// "audio/ogg; codecs=opus" counts as audio/ogg.
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	return models.MediaDescriptor{Kind: models.MediaKnown, MimeType: mimeType}
}
