package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string
	// Types restricts results to these document types. Empty means all.
	Types []DocType
	// GenreSlug filters stories by genre; chapters are not filtered.
	GenreSlug string

	Limit  int
	Offset int

	Highlight bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{Limit: 20, Highlight: true}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"tookMs"`
	Hits   []SearchHit  `json:"hits"`
	Genres []FacetCount `json:"genres,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	StoryID    int64             `json:"storyId"`
	ChapterID  int64             `json:"chapterId,omitempty"`
	Name       string            `json:"name"`
	StoryTitle string            `json:"storyTitle,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query. An empty query lists everything.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "_id"})
	req.AddFacet("genre_slug", bleve.NewFacetRequest("genre_slug", 20))
	req.Fields = []string{"type", "story", "name", "story_title", "chapter_id"}

	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("content")
		req.Highlight.AddField("synopsis")
		req.Highlight.AddField("characters")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(t)
		}
		if key, ok := hit.Fields["story"].(string); ok {
			h.StoryID, _ = strconv.ParseInt(key, 10, 64)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			h.Name = n
		}
		if st, ok := hit.Fields["story_title"].(string); ok {
			h.StoryTitle = st
		}
		if c, ok := hit.Fields["chapter_id"].(float64); ok {
			h.ChapterID = int64(c)
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, h)
	}

	if facet, ok := res.Facets["genre_slug"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			out.Genres = append(out.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return out, nil
}

func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		match := func(field string, boost float64) query.Query {
			m := bleve.NewMatchQuery(q)
			m.SetField(field)
			m.SetBoost(boost)
			return m
		}
		text := []query.Query{
			match("name", 3.0),
			match("characters", 2.0),
			match("synopsis", 1.5),
			match("world_rules", 1.0),
			match("content", 1.0),
		}

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)
		text = append(text, fuzzy)

		if len(q) >= 2 && !strings.Contains(q, " ") {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Types) > 0 {
		types := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			types[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(types...))
	}

	if params.GenreSlug != "" {
		gq := bleve.NewTermQuery(params.GenreSlug)
		gq.SetField("genre_slug")
		queries = append(queries, gq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
