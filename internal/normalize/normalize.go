// Package normalize turns the five raw exports into normalized tables.
// Row-level problems never fail normalization; they degrade to null or
// sentinel values and are reported through Diagnostics. Only a missing
// required column is an error.
package normalize

import (
	"errors"
	"strings"
	"time"

	"chat-insights/internal/models"
)

// Reasons recorded for rows excluded or degraded during normalization.
const (
	reasonEmptyName     = "empty name"
	reasonErrorMarker   = "error marker"
	reasonNoSubID       = "no numeric suffix"
	reasonPrivate       = "private conversation"
	reasonDuplicate     = "duplicate"
	reasonInvalidBool   = "invalid boolean"
	reasonMalformed     = "malformed payload"
	reasonUnknownEvent  = "unknown event type"
	reasonMissingRecord = "missing id"
)

// Options tune normalization.
type Options struct {
	// Location is used for timestamps without an explicit zone. Defaults to UTC.
	Location *time.Location
	// IncludePrivate keeps direct conversations in the Group table.
	IncludePrivate bool
}

// Normalize validates the schema of every table and builds the normalized
// table set.
func Normalize(raw models.RawTables, opts Options) (models.NormalizedTables, *Diagnostics, error) {
	if err := ValidateSchema(raw); err != nil {
		return models.NormalizedTables{}, nil, err
	}

	n := &normalizer{
		opts:   opts,
		times:  newTimeParser(opts.Location),
		diag:   newDiagnostics(),
		result: models.NormalizedTables{},
	}
	tables := raw.All()
	n.groups(tables[0])
	n.memberships(tables[1])
	n.messages(tables[2])
	n.reactions(tables[3])
	n.events(tables[4])
	return n.result, n.diag, nil
}

// ValidateSchema reports every table missing a required column.
func ValidateSchema(raw models.RawTables) error {
	var errs []error
	for _, table := range raw.All() {
		if missing := table.MissingColumns(); len(missing) > 0 {
			errs = append(errs, &models.SchemaError{Table: table.Name, Missing: missing})
		}
	}
	return errors.Join(errs...)
}

type normalizer struct {
	opts   Options
	times  timeParser
	diag   *Diagnostics
	result models.NormalizedTables
}

// row reads cells by column name; short rows read as empty.
type row struct {
	cells []string
	idx   map[string]int
}

func (r row) get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

func eachRow(t models.RawTable, fn func(row)) {
	idx := t.ColumnIndex()
	for _, cells := range t.Rows {
		fn(row{cells: cells, idx: idx})
	}
}

func (n *normalizer) groups(t models.RawTable) {
	seen := map[string]struct{}{}
	n.result.Groups = make([]models.Group, 0, len(t.Rows))
	eachRow(t, func(r row) {
		rawID := r.get("chat_id")
		id := CanonicalID(rawID)
		if id == "" {
			n.diag.add(t.Name, "chat_id", reasonMissingRecord)
			return
		}
		name := strings.TrimSpace(r.get("chat_name"))
		if isNullToken(name) {
			n.diag.add(t.Name, "chat_name", reasonEmptyName)
			return
		}
		if hasErrorMarker(name) {
			n.diag.add(t.Name, "chat_name", reasonErrorMarker)
			return
		}
		subID := SubIdentifier(name)
		if subID == "" {
			n.diag.add(t.Name, "chat_name", reasonNoSubID)
			return
		}
		kind := KindOf(rawID)
		if kind == models.KindPrivate && !n.opts.IncludePrivate {
			n.diag.add(t.Name, "chat_id", reasonPrivate)
			return
		}
		if _, dup := seen[id]; dup {
			n.diag.add(t.Name, "chat_id", reasonDuplicate)
			return
		}
		seen[id] = struct{}{}

		created, reason := n.times.parse(r.get("chat_created_at"), true)
		if reason != "" {
			n.diag.add(t.Name, "chat_created_at", reason)
		}
		n.result.Groups = append(n.result.Groups, models.Group{
			ID:            id,
			Name:          name,
			CreatedAt:     created,
			Kind:          kind,
			SubIdentifier: subID,
		})
	})
}

func (n *normalizer) memberships(t models.RawTable) {
	n.result.Memberships = make([]models.Membership, 0, len(t.Rows))
	eachRow(t, func(r row) {
		groupID := CanonicalID(r.get("chat_id"))
		if groupID == "" {
			n.diag.add(t.Name, "chat_id", reasonMissingRecord)
			return
		}
		participant := CanonicalID(r.get("contact_phone_number"))
		if participant == "" {
			n.diag.add(t.Name, "contact_phone_number", reasonMissingRecord)
			return
		}
		isAdmin, ok := parseBool(r.get("contact_is_admin"))
		if !ok {
			n.diag.add(t.Name, "contact_is_admin", reasonInvalidBool)
		}
		n.result.Memberships = append(n.result.Memberships, models.Membership{
			GroupID:       groupID,
			ParticipantID: participant,
			IsAdmin:       isAdmin,
		})
	})
}

func (n *normalizer) messages(t models.RawTable) {
	seen := map[string]struct{}{}
	n.result.Messages = make([]models.Message, 0, len(t.Rows))
	eachRow(t, func(r row) {
		id := strings.TrimSpace(r.get("message_id"))
		if isNullToken(id) {
			n.diag.add(t.Name, "message_id", reasonMissingRecord)
			return
		}
		if _, dup := seen[id]; dup {
			n.diag.add(t.Name, "message_id", reasonDuplicate)
			return
		}
		groupID := CanonicalID(r.get("chat_id"))
		if groupID == "" {
			n.diag.add(t.Name, "chat_id", reasonMissingRecord)
			return
		}
		seen[id] = struct{}{}

		sentAt, reason := n.times.parseDateTime(r.get("received_at_date"), r.get("received_at_time"))
		if reason != "" {
			n.diag.add(t.Name, "received_at", reason)
		}
		media := ParseMedia(r.get("media"))
		if media.Kind == models.MediaMalformed {
			n.diag.add(t.Name, "media", reasonMalformed)
		}
		body := r.get("body")
		if isNullToken(body) {
			body = ""
		}
		n.result.Messages = append(n.result.Messages, models.Message{
			ID:          id,
			GroupID:     groupID,
			SenderID:    CanonicalID(r.get("sender_phone")),
			Body:        body,
			SentAt:      sentAt,
			Media:       media,
			ContentType: media.ContentType(),
		})
	})
}

func (n *normalizer) reactions(t models.RawTable) {
	n.result.Reactions = make([]models.Reaction, 0, len(t.Rows))
	eachRow(t, func(r row) {
		groupID := CanonicalID(r.get("chat_id"))
		messageID := strings.TrimSpace(r.get("message_id"))
		if groupID == "" || isNullToken(messageID) {
			n.diag.add(t.Name, "chat_id/message_id", reasonMissingRecord)
			return
		}
		reactedAt, reason := n.times.parse(r.get("timestamp"), false)
		if reason != "" {
			n.diag.add(t.Name, "timestamp", reason)
		}
		n.result.Reactions = append(n.result.Reactions, models.Reaction{
			GroupID:   groupID,
			MessageID: messageID,
			ReactorID: CanonicalID(r.get("sender_id")),
			ReactedAt: reactedAt,
		})
	})
}

func (n *normalizer) events(t models.RawTable) {
	n.result.Events = make([]models.MembershipEvent, 0, len(t.Rows))
	eachRow(t, func(r row) {
		groupID := CanonicalID(r.get("chat_id"))
		if groupID == "" {
			n.diag.add(t.Name, "chat_id", reasonMissingRecord)
			return
		}
		kind := parseEventKind(r.get("type"))
		if kind == models.EventOther {
			n.diag.add(t.Name, "type", reasonUnknownEvent)
		}
		occurredAt, reason := n.times.parse(r.get("timestamp"), false)
		if reason != "" {
			n.diag.add(t.Name, "timestamp", reason)
		}
		n.result.Events = append(n.result.Events, models.MembershipEvent{
			GroupID:    groupID,
			ActorID:    CanonicalID(r.get("author")),
			Kind:       kind,
			OccurredAt: occurredAt,
		})
	})
}

// parseBool reads the admin flag. Unreadable values count as false and
// report ok=false.
func parseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "1.0", "yes", "y", "t", "admin", "superadmin":
		return true, true
	case "false", "0", "0.0", "no", "n", "f", "", "nan", "none", "null":
		return false, true
	}
	return false, false
}

func parseEventKind(s string) models.EventKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add":
		return models.EventAdd
	case "leave":
		return models.EventLeave
	}
	return models.EventOther
}
