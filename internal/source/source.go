// Package source fetches the five raw export tables from a backing store.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"chat-insights/internal/models"
)

// Source returns all five raw tables in one call.
type Source interface {
	Fetch(ctx context.Context) (models.RawTables, error)
}

// Versioner reports an identity of the data currently behind a source. An
// empty version means the source cannot tell.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// FileNames maps each table to its export file name.
var FileNames = map[string]string{
	models.TableChats:     "chats.csv",
	models.TableMembers:   "members.csv",
	models.TableMessages:  "messages.csv",
	models.TableReactions: "reactions.csv",
	models.TableAddLeave:  "add_leave.csv",
}

// ReadCSV decodes one table. The first record is the header; short rows are
// padded and long rows truncated to the header width.
func ReadCSV(name string, r io.Reader) (models.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return models.RawTable{Name: name}, nil
	}
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read %s header: %w", name, err)
	}

	table := models.RawTable{Name: name, Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.RawTable{}, fmt.Errorf("read %s: %w", name, err)
		}
		row := make([]string, len(header))
		copy(row, record)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
