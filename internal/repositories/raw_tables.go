package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-insights/internal/models"
)

// RawTableReader reads the five raw export tables.
type RawTableReader interface {
	Fetch(ctx context.Context) (models.RawTables, error)
	Version(ctx context.Context) (string, error)
}

// RawTableRepo is a sqlx-backed RawTableReader over tables loaded by the
// export job. Every load of the export job appends a row to ingest_batches.
type RawTableRepo struct {
	db *sqlx.DB
}

// NewRawTableRepo constructs RawTableRepo.
func NewRawTableRepo(db *sqlx.DB) *RawTableRepo {
	return &RawTableRepo{db: db}
}

// Fetch reads all five tables in one read-only repeatable-read transaction so
// they come from the same committed state.
func (r *RawTableRepo) Fetch(ctx context.Context) (models.RawTables, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return models.RawTables{}, fmt.Errorf("begin read: %w: %w", models.ErrSourceUnavailable, err)
	}
	defer tx.Rollback()

	var tables models.RawTables
	for _, name := range models.TableNames {
		table, err := readTable(ctx, tx, name)
		if err != nil {
			return models.RawTables{}, err
		}
		tables.Set(table)
	}

	var batch int64
	if err := tx.GetContext(ctx, &batch, `SELECT COALESCE(MAX(id), 0) FROM ingest_batches`); err != nil {
		return models.RawTables{}, fmt.Errorf("read ingest batch: %w", err)
	}
	tables.Version = batchVersion(batch)

	if err := tx.Commit(); err != nil {
		return models.RawTables{}, fmt.Errorf("commit read: %w", err)
	}
	return tables, nil
}

// Version returns the id of the latest ingest batch.
func (r *RawTableRepo) Version(ctx context.Context) (string, error) {
	var batch int64
	if err := r.db.GetContext(ctx, &batch, `SELECT COALESCE(MAX(id), 0) FROM ingest_batches`); err != nil {
		return "", fmt.Errorf("read ingest batch: %w: %w", models.ErrSourceUnavailable, err)
	}
	return batchVersion(batch), nil
}

func batchVersion(batch int64) string {
	if batch == 0 {
		return ""
	}
	return "pg:batch:" + strconv.FormatInt(batch, 10)
}

func readTable(ctx context.Context, tx *sqlx.Tx, name string) (models.RawTable, error) {
	rows, err := tx.QueryxContext(ctx, `SELECT * FROM `+pq.QuoteIdentifier(name))
	if err != nil {
		return models.RawTable{}, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.RawTable{}, fmt.Errorf("columns of %s: %w", name, err)
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		return models.RawTable{}, fmt.Errorf("column types of %s: %w", name, err)
	}
	zoned := make([]bool, len(types))
	for i, ct := range types {
		zoned[i] = strings.EqualFold(ct.DatabaseTypeName(), "TIMESTAMPTZ")
	}

	table := models.RawTable{Name: name, Columns: columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return models.RawTable{}, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cell(v, i < len(zoned) && zoned[i])
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return models.RawTable{}, fmt.Errorf("read %s: %w", name, err)
	}
	return table, nil
}

// cell renders a scanned value the way it would appear in a CSV export.
// TIMESTAMPTZ values keep their offset; plain TIMESTAMP values are wall-clock
// times read in the configured timezone.
func cell(v interface{}, zoned bool) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if zoned {
			return val.Format(time.RFC3339Nano)
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
