package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTagList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", " , ,, ", []string{}},
		{"trims entries", " history , science", []string{"history", "science"}},
		{"collapses duplicates", "history,science,history", []string{"history", "science"}},
		{"case sensitive", "History,history", []string{"History", "history"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTagList(tt.raw))
		})
	}
}

func TestDiffNames(t *testing.T) {
	link, unlink := DiffNames([]string{"history", "science"}, []string{"science", "art"})
	assert.Equal(t, []string{"art"}, link)
	assert.Equal(t, []string{"history"}, unlink)

	link, unlink = DiffNames([]string{"history"}, []string{"history"})
	assert.Empty(t, link)
	assert.Empty(t, unlink)
}

func TestArticle_TagList(t *testing.T) {
	a := &Article{Tags: []Tag{{Name: "history"}, {Name: "science"}}}
	assert.Equal(t, "history,science", a.TagList())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "arts-culture", Slugify("Arts & Culture"))
	assert.Equal(t, "economie", Slugify("Économie"))
	assert.Equal(t, "sci-fi", Slugify("  Sci--Fi "))
}
