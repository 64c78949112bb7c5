package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/textiq/textiq/internal/chat"
)

// SQLiteStore is the keyed Repository backend: one row per archived
// chat, per-record insert and delete instead of whole-file rewrites.
// It is the scaling path for large histories; the JSON FileStore
// remains the default and the interchange format.
//
// The id column is deliberately not a primary key: ids are same-second
// timestamps and may collide, and the store keeps the colliding rows
// just as the file backend keeps colliding array entries. Insertion
// order is preserved through rowid.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and
// initializes the schema.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	// WAL mode allows a reader alongside the single writer
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite doesn't support multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id         TEXT NOT NULL,
		created_at TEXT NOT NULL,
		title      TEXT NOT NULL,
		messages   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chats_id ON chats(id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append archives a conversation as a single row. Empty conversations
// are a silent no-op, matching the file backend.
func (s *SQLiteStore) Append(turns []chat.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	rec := NewArchivedChat(turns, time.Now())
	msgs, err := json.Marshal(rec.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO chats (id, created_at, title, messages) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Timestamp, rec.Title, string(msgs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// List returns all archived chats in insertion order. Rows whose
// message payload fails to parse are skipped, not surfaced.
func (s *SQLiteStore) List() ([]ArchivedChat, error) {
	rows, err := s.db.Query(`SELECT id, created_at, title, messages FROM chats ORDER BY rowid`)
	if err != nil {
		return []ArchivedChat{}, nil
	}
	defer rows.Close()

	chats := []ArchivedChat{}
	for rows.Next() {
		var rec ArchivedChat
		var msgs string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Title, &msgs); err != nil {
			continue
		}
		if err := json.Unmarshal([]byte(msgs), &rec.Messages); err != nil {
			continue
		}
		chats = append(chats, rec)
	}
	return chats, nil
}

// Load returns the turn sequence archived under id; with colliding ids
// the earliest row wins.
func (s *SQLiteStore) Load(id string) ([]chat.Turn, error) {
	var msgs string
	err := s.db.QueryRow(
		`SELECT messages FROM chats WHERE id = ? ORDER BY rowid LIMIT 1`, id,
	).Scan(&msgs)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat %s: %w", id, err)
	}

	var turns []chat.Turn
	if err := json.Unmarshal([]byte(msgs), &turns); err != nil {
		return nil, fmt.Errorf("failed to parse chat %s: %w", id, err)
	}
	return turns, nil
}

// Delete removes every row matching id. Unknown ids are a no-op.
func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM chats WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chat %s: %w", id, err)
	}
	return nil
}
