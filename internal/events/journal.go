package events

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS events (
	id        INTEGER PRIMARY KEY,
	emitted   TIMESTAMP NOT NULL,
	tx_hash   TEXT NOT NULL,
	name      TEXT NOT NULL,
	fields    TEXT
)`

// postgres wants a sequence-backed id column
const journalSchemaPostgres = `
CREATE TABLE IF NOT EXISTS events (
	id        BIGSERIAL PRIMARY KEY,
	emitted   TIMESTAMP NOT NULL,
	tx_hash   TEXT NOT NULL,
	name      TEXT NOT NULL,
	fields    TEXT
)`

// Journal persists events into a relational store. Supported drivers are
// "sqlite" (modernc, embedded file) and "postgres" (lib/pq).
type Journal struct {
	db     *sql.DB
	insert string
	log    zerolog.Logger
}

// OpenJournal opens the journal database and ensures the schema exists.
// dsn is a file path for sqlite or a connection string for postgres.
func OpenJournal(driver, dsn string, log zerolog.Logger) (*Journal, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open event journal: %w", err)
	}

	schema := journalSchema
	insert := `INSERT INTO events (emitted, tx_hash, name, fields) VALUES (?, ?, ?, ?)`
	if driver == "postgres" {
		schema = journalSchemaPostgres
		insert = `INSERT INTO events (emitted, tx_hash, name, fields) VALUES ($1, $2, $3, $4)`
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event journal schema: %w", err)
	}

	return &Journal{db: db, insert: insert, log: log}, nil
}

// Emit writes the event. Failures are logged and dropped: the journal is an
// observer, it must never fail a committed transaction after the fact.
func (j *Journal) Emit(e Event) {
	fields, err := json.Marshal(e.Fields)
	if err != nil {
		j.log.Error().Err(err).Str("event", e.Name).Msg("failed to encode event fields")
		return
	}

	_, err = j.db.Exec(j.insert, e.Time, e.TxHash, e.Name, string(fields))
	if err != nil {
		j.log.Error().Err(err).Str("event", e.Name).Msg("failed to journal event")
	}
}

// Count returns the number of journaled events, for operational checks.
func (j *Journal) Count() (int64, error) {
	var n int64
	err := j.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

func (j *Journal) Close() error {
	return j.db.Close()
}
