package search

import "github.com/baraza/baraza-server/internal/domain"

// NameRef is a nested {name} object inside a document.
type NameRef struct {
	Name string `json:"name"`
}

// ArticleDocument is the denormalized form of an article pushed to the index.
// Its shape is {id, title, content, tags:[{name}], categories:[{name}]}.
type ArticleDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []NameRef `json:"tags"`
	Categories []NameRef `json:"categories"`
}

// FromArticle builds the document for a, keeping association order.
func FromArticle(a *domain.Article) *ArticleDocument {
	doc := &ArticleDocument{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Tags:       make([]NameRef, 0, len(a.Tags)),
		Categories: make([]NameRef, 0, len(a.Categories)),
	}
	for _, t := range a.Tags {
		doc.Tags = append(doc.Tags, NameRef{Name: t.Name})
	}
	for _, c := range a.Categories {
		doc.Categories = append(doc.Categories, NameRef{Name: c.Name})
	}
	return doc
}

// ToMap converts the document into the field layout the mapping expects.
// Bleve indexes maps by key, so the keys here are the field names.
func (d *ArticleDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"content":    d.Content,
		"tags":       refsToMaps(d.Tags),
		"categories": refsToMaps(d.Categories),
	}
}

func refsToMaps(refs []NameRef) []any {
	out := make([]any, len(refs))
	for i, r := range refs {
		out[i] = map[string]any{"name": r.Name}
	}
	return out
}
