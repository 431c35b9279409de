package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chat-insights/internal/models"
)

// CSVDir reads the tables from a directory of CSV exports.
type CSVDir struct {
	dir string
}

func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

func (s *CSVDir) Fetch(ctx context.Context) (models.RawTables, error) {
	var tables models.RawTables
	for _, name := range models.TableNames {
		if err := ctx.Err(); err != nil {
			return models.RawTables{}, err
		}
		table, err := s.readFile(name)
		if err != nil {
			return models.RawTables{}, err
		}
		tables.Set(table)
	}

	version, err := s.Version(ctx)
	if err != nil {
		return models.RawTables{}, err
	}
	tables.Version = version
	return tables, nil
}

// Version is derived from the size and modification time of every file.
func (s *CSVDir) Version(ctx context.Context) (string, error) {
	parts := make([]string, 0, len(models.TableNames))
	for _, name := range models.TableNames {
		info, err := os.Stat(filepath.Join(s.dir, FileNames[name]))
		if err != nil {
			return "", fmt.Errorf("stat %s: %w: %w", name, models.ErrSourceUnavailable, err)
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", name, info.Size(), info.ModTime().UnixNano()))
	}
	return "csv:" + strings.Join(parts, ","), nil
}

func (s *CSVDir) readFile(name string) (models.RawTable, error) {
	f, err := os.Open(filepath.Join(s.dir, FileNames[name]))
	if err != nil {
		return models.RawTable{}, fmt.Errorf("open %s: %w: %w", name, models.ErrSourceUnavailable, err)
	}
	defer f.Close()
	return ReadCSV(name, f)
}
