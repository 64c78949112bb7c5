package history

import (
	"time"

	"github.com/textiq/textiq/internal/chat"
)

const (
	idLayout        = "20060102_150405"
	timestampLayout = "2006-01-02 15:04:05"
	titleLimit      = 50
)

// ArchivedChat is an immutable snapshot of a past conversation.
// The id doubles as the lookup key; it is a second-resolution local
// timestamp, so two archivals within the same second collide. The
// collision is inherited behavior and is not resolved here: lookups
// return the first match in insertion order.
type ArchivedChat struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Title     string      `json:"title"`
	Messages  []chat.Turn `json:"messages"`
}

// NewArchivedChat wraps a conversation for archival at the given time.
func NewArchivedChat(turns []chat.Turn, now time.Time) ArchivedChat {
	msgs := make([]chat.Turn, len(turns))
	copy(msgs, turns)

	return ArchivedChat{
		ID:        now.Format(idLayout),
		Timestamp: now.Format(timestampLayout),
		Title:     deriveTitle(turns),
		Messages:  msgs,
	}
}

// deriveTitle truncates the first turn's content to 50 characters and
// appends an ellipsis marker. The marker is appended unconditionally,
// even when the content fits.
func deriveTitle(turns []chat.Turn) string {
	if len(turns) == 0 {
		return "New Chat"
	}
	runes := []rune(turns[0].Content)
	if len(runes) > titleLimit {
		runes = runes[:titleLimit]
	}
	return string(runes) + "..."
}
