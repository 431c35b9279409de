package models

import "time"

// Overview holds the headline participation metrics. Every ratio is 0 when
// its denominator is 0.
type Overview struct {
	GroupCount             int     `json:"group_count"`
	TotalParticipants      int     `json:"total_participants"`
	UniqueParticipants     int     `json:"unique_participants"`
	ActiveParticipants     int     `json:"active_participants"`
	ActiveGroups           int     `json:"active_groups"`
	Reactors               int     `json:"reactors"`
	ActiveParticipantRatio float64 `json:"active_participant_ratio"`
	ActiveGroupRatio       float64 `json:"active_group_ratio"`
	EngagementRatio        float64 `json:"engagement_ratio"`
}

// GroupClass is the classification of one group under the current filter.
type GroupClass struct {
	GroupID      string    `json:"group_id"`
	DisplayName  string    `json:"display_name"`
	Participants int       `json:"participants"`
	Admins       int       `json:"admins"`
	Type         GroupType `json:"type"`
}

// TypeCount is the number of groups of one type.
type TypeCount struct {
	Type   GroupType `json:"type"`
	Groups int       `json:"groups"`
}

// RankedMessage is a message ranked by reactions received.
type RankedMessage struct {
	MessageID   string `json:"message_id"`
	GroupID     string `json:"group_id"`
	Body        string `json:"body"`
	ContentType string `json:"content_type"`
	Reactions   int    `json:"reactions"`
}

// RankedGroup is a group ranked by reactions received.
type RankedGroup struct {
	GroupID     string `json:"group_id"`
	DisplayName string `json:"display_name"`
	Reactions   int    `json:"reactions"`
}

// JoinLeave counts membership changes in one group.
type JoinLeave struct {
	GroupID     string `json:"group_id"`
	DisplayName string `json:"display_name"`
	Added       int    `json:"added"`
	Left        int    `json:"left"`
}

// ContentTypeCount is a count for one content type.
type ContentTypeCount struct {
	ContentType string `json:"content_type"`
	Count       int    `json:"count"`
}

// ContentDistribution splits messages and reactions by content type.
type ContentDistribution struct {
	Messages  []ContentTypeCount `json:"messages"`
	Reactions []ContentTypeCount `json:"reactions"`
}

// POCSummary rolls up the activity of one admin participant.
type POCSummary struct {
	ParticipantID string `json:"participant_id"`
	Label         string `json:"label,omitempty"`
	AdminGroups   int    `json:"admin_groups"`
	ActiveGroups  int    `json:"active_groups"`
	Messages      int    `json:"messages"`
	Reactions     int    `json:"reactions"`
}

// BucketCount is the message count of one 6-hour bucket.
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// HourCount is the message count of one hour of day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DateCount is the message count of one calendar date.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DateBuckets splits one date's messages over the 6-hour buckets.
type DateBuckets struct {
	Date    string `json:"date"`
	Buckets [4]int `json:"buckets"`
}

// Trend holds the time-based message views.
type Trend struct {
	Buckets      []BucketCount `json:"buckets"`
	Hourly       []HourCount   `json:"hourly"`
	Daily        []DateCount   `json:"daily"`
	DailyBuckets []DateBuckets `json:"daily_buckets"`
}

// AggregateResult bundles every aggregate computed for one filter.
type AggregateResult struct {
	Overview         Overview            `json:"overview"`
	Classification   []GroupClass        `json:"classification"`
	TypeDistribution []TypeCount         `json:"type_distribution"`
	TopMessages      []RankedMessage     `json:"top_messages"`
	TopGroups        []RankedGroup       `json:"top_groups"`
	JoinLeave        []JoinLeave         `json:"join_leave"`
	Content          ContentDistribution `json:"content"`
	POCs             []POCSummary        `json:"pocs"`
	Trend            Trend               `json:"trend"`
	Tables           FilteredTables      `json:"-"`
}

// DateBounds is the earliest and latest calendar date seen in a snapshot.
type DateBounds struct {
	Min   string `json:"min,omitempty"`
	Max   string `json:"max,omitempty"`
	Valid bool   `json:"valid"`
}

// FilterOptions populates the selector ranges of the presentation layer.
type FilterOptions struct {
	Dates          DateBounds `json:"dates"`
	GroupNames     []string   `json:"group_names"`
	SubIdentifiers []string   `json:"sub_identifiers"`
}

// MalformedRows counts rows that hit one normalization problem.
type MalformedRows struct {
	Table  string `json:"table"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Rows   int    `json:"rows"`
}

// SnapshotInfo describes the snapshot currently served.
type SnapshotInfo struct {
	Version   string          `json:"version,omitempty"`
	LoadedAt  time.Time       `json:"loaded_at"`
	Rows      map[string]int  `json:"rows"`
	Malformed []MalformedRows `json:"malformed"`
}
