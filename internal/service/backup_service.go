package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"chorequest/internal/database"
)

// BackupVersion is written into every export and checked on import
const BackupVersion = "1.0"

// backupTables lists the tables in dependency order. Sessions are left out;
// restored families sign in again.
var backupTables = []string{
	"families",
	"users",
	"tasks",
	"goals",
	"payouts",
	"pets",
	"game_results",
	"calendar_events",
	"push_subscriptions",
}

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string                      `json:"version"`
	ExportedAt time.Time                   `json:"exported_at"`
	Tables     map[string][]map[string]any `json:"tables"`
}

// Count returns how many rows the backup holds for a table
func (b *BackupData) Count(table string) int {
	return len(b.Tables[table])
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Snapshot reads every backed-up table into memory
func (s *BackupService) Snapshot() (*BackupData, error) {
	backup := &BackupData{
		Version:    BackupVersion,
		ExportedAt: time.Now(),
		Tables:     make(map[string][]map[string]any, len(backupTables)),
	}
	for _, table := range backupTables {
		rows, err := s.exportTable(table)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", table, err)
		}
		backup.Tables[table] = rows
	}
	return backup, nil
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup, err := s.Snapshot()
	if err != nil {
		return err
	}

	counts := make([]string, 0, len(backupTables))
	for _, table := range backupTables {
		counts = append(counts, fmt.Sprintf("%d %s", backup.Count(table), table))
	}
	log.Printf("Exported: %s", strings.Join(counts, ", "))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader. Rows keep their
// original IDs and are inserted in a single transaction.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(func(tx *database.Tx) error {
		for _, table := range backupTables {
			rows := backup.Tables[table]
			log.Printf("Importing %d %s...", len(rows), table)
			for _, row := range rows {
				if err := importRow(tx, table, row); err != nil {
					return fmt.Errorf("failed to import %s row %v: %w", table, row["id"], err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, table := range backupTables {
		query := s.db.GetDialect().ResetSequenceQuery(table)
		if query == "" {
			continue
		}
		if _, err := s.db.Exec(query); err != nil {
			log.Printf("Warning: failed to reset id sequence for %s: %v", table, err)
		}
	}

	log.Println("Database import completed successfully")
	return nil
}

// Clear deletes every backed-up row, children before parents
func (s *BackupService) Clear() error {
	return s.db.WithTx(func(tx *database.Tx) error {
		if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
			return fmt.Errorf("failed to clear table sessions: %w", err)
		}
		for i := len(backupTables) - 1; i >= 0; i-- {
			table := backupTables[i]
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}

func (s *BackupService) exportTable(table string) ([]map[string]any, error) {
	rows, err := s.db.Query("SELECT * FROM " + table + " ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func importRow(tx *database.Tx, table string, row map[string]any) error {
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	slices.Sort(columns)

	args := make([]any, len(columns))
	for i, column := range columns {
		args[i] = jsonValue(row[column])
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	_, err := tx.Exec(query, args...)
	return err
}

// jsonValue converts a decoded JSON value back into a driver argument
func jsonValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
