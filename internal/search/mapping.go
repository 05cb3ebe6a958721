package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
// Stories are written in Spanish, so text fields use the Spanish analyzer.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = es.AnalyzerName

	doc := bleve.NewDocumentMapping()

	text := func(field string, store, vectors bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = es.AnalyzerName
		fm.Store = store
		fm.IncludeTermVectors = vectors
		doc.AddFieldMappingsAt(field, fm)
	}
	text("name", true, true)
	text("story_title", true, false)
	text("content", false, true)
	text("synopsis", false, true)
	text("world_rules", false, false)
	text("characters", false, true)

	kw := func(field string, store bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		doc.AddFieldMappingsAt(field, fm)
	}
	kw("type", true)
	kw("story", true)
	kw("genre_slug", true)

	chapterID := bleve.NewNumericFieldMapping()
	chapterID.Store = true
	doc.AddFieldMappingsAt("chapter_id", chapterID)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
