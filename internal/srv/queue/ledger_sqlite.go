package queue

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const ledgerSchema = `CREATE TABLE IF NOT EXISTS contributor_ledger (
	position       INTEGER PRIMARY KEY,
	contributor_id TEXT NOT NULL
)`

// SQLiteLedger keeps the ledger in a sqlite table keyed by playlist position
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (and creates if needed) the ledger database at path.
// The path can be ":memory:".
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger database: %w", err)
	}
	if _, err = db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

func (l *SQLiteLedger) Load() ([]string, error) {
	rows, err := l.db.Query("SELECT contributor_id FROM contributor_ledger ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	ledger := []string{}
	for rows.Next() {
		var contributorId string
		if err = rows.Scan(&contributorId); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		ledger = append(ledger, contributorId)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return ledger, nil
}

func (l *SQLiteLedger) Save(ledger []string) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM contributor_ledger"); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO contributor_ledger (position, contributor_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for position, contributorId := range ledger {
		if _, err = stmt.Exec(position, contributorId); err != nil {
			return fmt.Errorf("failed to insert ledger entry %d: %w", position, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
