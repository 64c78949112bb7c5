package history

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchResult is one full-text hit over the archived chats.
type SearchResult struct {
	ID        string
	Title     string
	Timestamp string
	Score     float64
}

// SearchChats runs a full-text query over the given archived chats and
// returns up to limit hits, best first. The index is built in memory
// per call: history is always re-read at point of use, so there is no
// persistent index to keep in sync with the file.
func SearchChats(chats []ArchivedChat, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = 10
	}

	index, err := bleve.NewMemOnly(buildChatMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	defer index.Close()

	byID := make(map[string]ArchivedChat, len(chats))
	for i, c := range chats {
		// Colliding ids get distinct doc keys so neither record is lost.
		docID := fmt.Sprintf("%s#%d", c.ID, i)
		byID[docID] = c

		var transcript strings.Builder
		for _, m := range c.Messages {
			transcript.WriteString(m.Content)
			transcript.WriteString("\n")
		}

		doc := map[string]interface{}{
			"chat_id": c.ID,
			"title":   c.Title,
			"text":    transcript.String(),
		}
		if err := index.Index(docID, doc); err != nil {
			return nil, fmt.Errorf("failed to index chat %s: %w", c.ID, err)
		}
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit

	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("history search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		c, ok := byID[hit.ID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			ID:        c.ID,
			Title:     c.Title,
			Timestamp: c.Timestamp,
			Score:     hit.Score,
		})
	}
	return results, nil
}

func buildChatMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	chatMapping := bleve.NewDocumentMapping()

	// Stored identifier, not analyzed
	chatIDField := bleve.NewTextFieldMapping()
	chatIDField.Analyzer = keyword.Name
	chatIDField.Store = true
	chatIDField.Index = true
	chatMapping.AddFieldMappingsAt("chat_id", chatIDField)

	// Searchable text fields
	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = false
	titleField.Index = true
	chatMapping.AddFieldMappingsAt("title", titleField)

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	textField.Store = false
	textField.Index = true
	chatMapping.AddFieldMappingsAt("text", textField)

	indexMapping.DefaultMapping = chatMapping
	return indexMapping
}
