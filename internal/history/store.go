package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/textiq/textiq/internal/chat"
)

// ErrNotFound is returned when no archived chat exists under the
// requested id.
var ErrNotFound = errors.New("chat not found")

// Repository is the durable archive of past conversations.
//
// Append archives a non-empty conversation; an empty conversation is a
// silent no-op, not an error. List returns the collection in insertion
// order and never fails on a missing or corrupt backing store; that
// case reads as empty history. Load returns ErrNotFound for an unknown
// id; Delete of an unknown id is a no-op.
type Repository interface {
	Append(turns []chat.Turn) error
	List() ([]ArchivedChat, error)
	Load(id string) ([]chat.Turn, error)
	Delete(id string) error
}

// FileStore persists the whole collection as a single JSON array.
// Every mutation is a full read-modify-write of that array, and every
// read re-parses from disk: there is no in-memory mirror, no file
// locking, and no partial-write protection. A second writer on the
// same file can silently win the whole collection (last writer wins).
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given JSON file. The file
// is created lazily on first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Append archives a conversation. Callers are expected to check for an
// empty conversation themselves; appending one does nothing.
func (s *FileStore) Append(turns []chat.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	chats := s.load()
	chats = append(chats, NewArchivedChat(turns, time.Now()))
	return s.save(chats)
}

// List returns all archived chats in insertion order.
func (s *FileStore) List() ([]ArchivedChat, error) {
	return s.load(), nil
}

// Load returns the turn sequence archived under id. With colliding ids
// the first match in insertion order wins.
func (s *FileStore) Load(id string) ([]chat.Turn, error) {
	for _, c := range s.load() {
		if c.ID == id {
			out := make([]chat.Turn, len(c.Messages))
			copy(out, c.Messages)
			return out, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes every record matching id and rewrites the collection.
func (s *FileStore) Delete(id string) error {
	chats := s.load()
	kept := chats[:0]
	for _, c := range chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(chats) {
		return nil
	}
	return s.save(kept)
}

// load re-parses the backing file. Absent, unreadable, unparseable or
// schema-invalid files all read as empty history; corruption is never
// surfaced as an error to callers.
func (s *FileStore) load() []ArchivedChat {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []ArchivedChat{}
	}

	if err := validateHistoryDocument(data); err != nil {
		return []ArchivedChat{}
	}

	var chats []ArchivedChat
	if err := json.Unmarshal(data, &chats); err != nil {
		return []ArchivedChat{}
	}
	if chats == nil {
		return []ArchivedChat{}
	}
	return chats
}

func (s *FileStore) save(chats []ArchivedChat) error {
	data, err := json.MarshalIndent(chats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}
