package normalize

import (
	"strings"

	"chat-insights/internal/models"
)

var (
	groupSuffixes   = []string{"@g.us"}
	privateSuffixes = []string{"@c.us", "@s.whatsapp.net", "@lid"}
	otherSuffixes   = []string{"@broadcast"}
)

// CanonicalID strips transport suffixes and export artifacts from a
// participant or group identifier. It is idempotent.
func CanonicalID(raw string) string {
	id := strings.TrimSpace(raw)
	if isNullToken(id) {
		return ""
	}
	for {
		stripped := false
		for _, suffixes := range [][]string{groupSuffixes, privateSuffixes, otherSuffixes} {
			for _, suffix := range suffixes {
				if strings.HasSuffix(id, suffix) {
					id = strings.TrimSpace(strings.TrimSuffix(id, suffix))
					stripped = true
				}
			}
		}
		if !stripped {
			break
		}
	}
	return trimFloatArtifact(id)
}

// KindOf derives the conversation kind from the suffix of a raw identifier.
// Only an explicit direct-chat suffix marks a conversation private; bare ids
// are groups, so KindOf(CanonicalID(id)) never turns a group private.
func KindOf(raw string) models.GroupKind {
	if hasAnySuffix(strings.TrimSpace(raw), privateSuffixes) {
		return models.KindPrivate
	}
	return models.KindGroup
}

func hasAnySuffix(id string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(id, suffix) {
			return true
		}
	}
	return false
}

// trimFloatArtifact turns "919895820344.0" back into "919895820344".
func trimFloatArtifact(id string) string {
	head, ok := strings.CutSuffix(id, ".0")
	if !ok || head == "" || !allDigits(head) {
		return id
	}
	return head
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// SubIdentifier returns the trailing digit run of a display name, or "".
func SubIdentifier(name string) string {
	name = strings.TrimSpace(name)
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	return name[start:end]
}

var errorMarkers = []string{"#ERROR!", "#N/A", "#REF!", "#VALUE!", "#NAME?", "#DIV/0!", "#NULL!", "#NUM!"}

func hasErrorMarker(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range errorMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// isNullToken matches the placeholders spreadsheet and dataframe exports
// write for empty cells.
func isNullToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "nat", "none", "null", "<na>":
		return true
	}
	return false
}
