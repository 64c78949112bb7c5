package history

import (
	"testing"

	"github.com/textiq/textiq/internal/chat"
)

func searchFixture() []ArchivedChat {
	return []ArchivedChat{
		{
			ID:        "20250101_090000",
			Timestamp: "2025-01-01 09:00:00",
			Title:     "baking bread at home...",
			Messages: []chat.Turn{
				{Role: chat.RoleUser, Content: "how do I bake sourdough bread?"},
				{Role: chat.RoleAssistant, Content: "Start with a healthy starter."},
			},
		},
		{
			ID:        "20250102_090000",
			Timestamp: "2025-01-02 09:00:00",
			Title:     "planning a garden...",
			Messages: []chat.Turn{
				{Role: chat.RoleUser, Content: "when should I plant tomatoes?"},
				{Role: chat.RoleAssistant, Content: "After the last frost."},
			},
		},
	}
}

func TestSearchChatsFindsByTranscript(t *testing.T) {
	results, err := SearchChats(searchFixture(), "sourdough", 10)
	if err != nil {
		t.Fatalf("SearchChats failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(results))
	}
	if results[0].ID != "20250101_090000" {
		t.Errorf("wrong chat matched: %q", results[0].ID)
	}
	if results[0].Title != "baking bread at home..." {
		t.Errorf("unexpected title: %q", results[0].Title)
	}
}

func TestSearchChatsFindsByAssistantReply(t *testing.T) {
	results, err := SearchChats(searchFixture(), "frost", 10)
	if err != nil {
		t.Fatalf("SearchChats failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "20250102_090000" {
		t.Fatalf("expected the garden chat, got %+v", results)
	}
}

func TestSearchChatsNoMatch(t *testing.T) {
	results, err := SearchChats(searchFixture(), "quantum", 10)
	if err != nil {
		t.Fatalf("SearchChats failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no hits, got %d", len(results))
	}
}

func TestSearchChatsEmptyQuery(t *testing.T) {
	if _, err := SearchChats(searchFixture(), "   ", 10); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchChatsEmptyHistory(t *testing.T) {
	results, err := SearchChats(nil, "anything", 10)
	if err != nil {
		t.Fatalf("SearchChats on empty history failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no hits, got %d", len(results))
	}
}
