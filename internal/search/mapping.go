package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// snowballAnalyzer stems English text with the snowball stemmer.
const snowballAnalyzer = "snowball"

// buildIndexMapping creates the article mapping.
//
// title and content are full text. tags.name and categories.name are single
// keyword terms so a tag "Cold War" only matches "Cold War".
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(snowballAnalyzer, map[string]any{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			en.PossessiveName,
			lowercase.Name,
			en.StopName,
			en.SnowballStemmerName,
		},
	})
	if err != nil {
		return nil, err
	}
	indexMapping.DefaultAnalyzer = snowballAnalyzer

	docMapping := bleve.NewDocumentMapping()

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = snowballAnalyzer
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Large; searchable only.
	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = snowballAnalyzer
	contentFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	docMapping.AddSubDocumentMapping("tags", keywordNameMapping())
	docMapping.AddSubDocumentMapping("categories", keywordNameMapping())

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping, nil
}

func keywordNameMapping() *mapping.DocumentMapping {
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = keyword.Name
	nameFieldMapping.Store = true

	m := bleve.NewDocumentMapping()
	m.AddFieldMappingsAt("name", nameFieldMapping)
	return m
}
