package models

import "strings"

// Names of the five source exports.
const (
	TableChats     = "chats"
	TableMembers   = "members"
	TableMessages  = "messages"
	TableReactions = "reactions"
	TableAddLeave  = "add_leave"
)

// TableNames lists the exports in load order.
var TableNames = []string{TableChats, TableMembers, TableMessages, TableReactions, TableAddLeave}

// RequiredColumns is the minimum header each export must carry.
var RequiredColumns = map[string][]string{
	TableChats:     {"chat_id", "chat_name", "chat_created_at"},
	TableMembers:   {"chat_id", "contact_phone_number", "contact_is_admin"},
	TableMessages:  {"chat_id", "message_id", "sender_phone", "received_at_date", "received_at_time", "media"},
	TableReactions: {"chat_id", "message_id", "sender_id", "timestamp"},
	TableAddLeave:  {"chat_id", "author", "type", "timestamp"},
}

// RawTable is one exported sheet: a header row and string cells.
type RawTable struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex maps each normalized header name to its position.
func (t RawTable) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		key := NormalizeColumnName(col)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// MissingColumns reports the required columns absent from the header.
func (t RawTable) MissingColumns() []string {
	idx := t.ColumnIndex()
	var missing []string
	for _, col := range RequiredColumns[t.Name] {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// NormalizeColumnName lowercases a header and drops a UTF-8 byte order mark.
func NormalizeColumnName(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	return strings.ToLower(strings.TrimSpace(col))
}

// RawTables bundles the five exports produced by a single fetch. They are
// always cached and replaced together.
type RawTables struct {
	Chats     RawTable `json:"chats"`
	Members   RawTable `json:"members"`
	Messages  RawTable `json:"messages"`
	Reactions RawTable `json:"reactions"`
	AddLeave  RawTable `json:"add_leave"`
	// Version identifies the source state the tables were read from, empty when unknown.
	Version string `json:"version,omitempty"`
}

// All returns the tables in load order, each named after its slot.
func (r RawTables) All() []RawTable {
	tables := []RawTable{r.Chats, r.Members, r.Messages, r.Reactions, r.AddLeave}
	for i := range tables {
		tables[i].Name = TableNames[i]
	}
	return tables
}

// Set stores table under its name and reports whether the name is known.
func (r *RawTables) Set(table RawTable) bool {
	switch table.Name {
	case TableChats:
		r.Chats = table
	case TableMembers:
		r.Members = table
	case TableMessages:
		r.Messages = table
	case TableReactions:
		r.Reactions = table
	case TableAddLeave:
		r.AddLeave = table
	default:
		return false
	}
	return true
}
