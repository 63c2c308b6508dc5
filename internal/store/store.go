package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"reception_agent/internal/config"
)

// Priority is a closed set; anything else is coerced to Medium on insert.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

var (
	ErrEmptySummary    = errors.New("summary must not be empty")
	ErrEmptyTranscript = errors.New("transcript must not be empty")
)

// Store wraps SQLite access for call records.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS calls (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp DATETIME NOT NULL,
            caller_name TEXT,
            phone TEXT,
            department TEXT,
            priority TEXT NOT NULL DEFAULT 'Medium',
            summary TEXT NOT NULL,
            transcript TEXT NOT NULL,
            response TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_calls_timestamp ON calls(timestamp DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Call represents one persisted call record. Records are append-only; there
// is no update or delete path.
type Call struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	CallerName string    `json:"caller_name"`
	Phone      string    `json:"phone"`
	Department string    `json:"department"`
	Priority   string    `json:"priority"`
	Summary    string    `json:"summary"`
	Transcript string    `json:"transcript"`
	Response   string    `json:"response"`
}

// Insert persists a new record, assigning id and timestamp. Summary and
// transcript must be non-empty; an off-set priority is coerced to Medium.
func (s *Store) Insert(ctx context.Context, call Call) (Call, error) {
	if call.Summary == "" {
		return Call{}, ErrEmptySummary
	}
	if call.Transcript == "" {
		return Call{}, ErrEmptyTranscript
	}
	switch call.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		call.Priority = PriorityMedium
	}
	call.Timestamp = config.Now()

	res, err := s.db.ExecContext(ctx, `INSERT INTO calls(timestamp, caller_name, phone, department, priority, summary, transcript, response)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		call.Timestamp, nullable(call.CallerName), nullable(call.Phone), nullable(call.Department),
		call.Priority, call.Summary, call.Transcript, nullable(call.Response))
	if err != nil {
		return Call{}, fmt.Errorf("insert call: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Call{}, fmt.Errorf("insert call id: %w", err)
	}
	call.ID = id
	return call, nil
}

const callColumns = `id, timestamp, caller_name, phone, department, priority, summary, transcript, response`

// ListCalls returns records newest-first, ties broken by id descending.
func (s *Store) ListCalls(ctx context.Context, offset, limit int) ([]Call, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+callColumns+` FROM calls ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanCalls(rows)
}

// SearchCalls filters case-insensitively over caller name, department,
// summary, and transcript.
func (s *Store) SearchCalls(ctx context.Context, term string, offset, limit int) ([]Call, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT `+callColumns+` FROM calls
        WHERE caller_name LIKE ? COLLATE NOCASE
           OR department LIKE ? COLLATE NOCASE
           OR summary LIKE ? COLLATE NOCASE
           OR transcript LIKE ? COLLATE NOCASE
        ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`,
		pattern, pattern, pattern, pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanCalls(rows)
}

// GetCall returns nil when no record exists for the id.
func (s *Store) GetCall(ctx context.Context, id int64) (*Call, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM calls WHERE id=?`, id)
	call, err := scanCall(row.Scan)
	switch {
	case err == nil:
		return &call, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	default:
		return nil, err
	}
}

func scanCalls(rows *sql.Rows) ([]Call, error) {
	defer rows.Close()
	var calls []Call
	for rows.Next() {
		call, err := scanCall(rows.Scan)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

func scanCall(scan func(...any) error) (Call, error) {
	var c Call
	var callerName, phone, department, response sql.NullString
	if err := scan(&c.ID, &c.Timestamp, &callerName, &phone, &department, &c.Priority, &c.Summary, &c.Transcript, &response); err != nil {
		return Call{}, err
	}
	c.CallerName = callerName.String
	c.Phone = phone.String
	c.Department = department.String
	c.Response = response.String
	return c, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// Health returns err if DB not reachable.
func (s *Store) Health(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}
