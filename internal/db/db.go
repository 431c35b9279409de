package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect opens the database holding the raw exports and ensures the export
// tables exist.
func Connect(dsn string, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations applied")
	return db, nil
}

// Export columns are kept as text; parsing happens during normalization.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS chats (
            chat_id TEXT,
            chat_name TEXT,
            chat_type TEXT,
            chat_created_at TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS members (
            chat_id TEXT,
            contact_phone_number TEXT,
            contact_is_admin TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS messages (
            chat_id TEXT,
            message_id TEXT,
            sender_phone TEXT,
            received_at_date TEXT,
            received_at_time TEXT,
            media TEXT,
            body TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS reactions (
            chat_id TEXT,
            message_id TEXT,
            sender_id TEXT,
            timestamp TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS add_leave (
            chat_id TEXT,
            author TEXT,
            type TEXT,
            timestamp TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS ingest_batches (
            id BIGSERIAL PRIMARY KEY,
            source TEXT NOT NULL DEFAULT '',
            loaded_at TIMESTAMPTZ DEFAULT NOW()
        );`,
}

func runMigrations(db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
