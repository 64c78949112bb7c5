package history

import (
	"strings"
	"testing"
	"time"

	"github.com/textiq/textiq/internal/chat"
)

func TestNewArchivedChatFormats(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	rec := NewArchivedChat([]chat.Turn{{Role: chat.RoleUser, Content: "hello"}}, at)

	if rec.ID != "20250314_150926" {
		t.Errorf("unexpected id: %q", rec.ID)
	}
	if rec.Timestamp != "2025-03-14 15:09:26" {
		t.Errorf("unexpected timestamp: %q", rec.Timestamp)
	}
	if rec.Title != "hello..." {
		t.Errorf("unexpected title: %q", rec.Title)
	}
}

func TestDeriveTitle(t *testing.T) {
	long := strings.Repeat("a", 80)

	cases := []struct {
		name  string
		first string
		want  string
	}{
		{"short content keeps everything", "hi there", "hi there..."},
		{"exactly 50 chars", strings.Repeat("x", 50), strings.Repeat("x", 50) + "..."},
		{"long content truncates to 50", long, strings.Repeat("a", 50) + "..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := deriveTitle([]chat.Turn{{Role: chat.RoleUser, Content: tc.first}})
			if got != tc.want {
				t.Errorf("deriveTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDeriveTitleMultibyte(t *testing.T) {
	// 60 multibyte runes; truncation must not split a UTF-8 sequence.
	content := strings.Repeat("é", 60)
	got := deriveTitle([]chat.Turn{{Role: chat.RoleUser, Content: content}})
	want := strings.Repeat("é", 50) + "..."
	if got != want {
		t.Errorf("deriveTitle = %q, want %q", got, want)
	}
}

func TestNewArchivedChatCopiesMessages(t *testing.T) {
	turns := []chat.Turn{{Role: chat.RoleUser, Content: "hello"}}
	rec := NewArchivedChat(turns, time.Now())

	turns[0].Content = "mutated"
	if rec.Messages[0].Content != "hello" {
		t.Error("archived messages must not alias the source slice")
	}
}
