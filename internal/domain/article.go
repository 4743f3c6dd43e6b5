package domain

// Article is a piece of authored content. Tags and Categories are kept in
// association order and only change through the article service.
type Article struct {
	Record
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Summary    string     `json:"summary"`
	CoverImage string     `json:"cover_image,omitempty"`
	UserID     string     `json:"user_id"`
	Tags       []Tag      `json:"tags"`
	Categories []Category `json:"categories"`
}

// TagList renders the article's tags as a comma-separated list.
func (a *Article) TagList() string {
	return JoinTagList(a.Tags)
}

// CategoryIDs returns category IDs in association order.
func (a *Article) CategoryIDs() []string {
	ids := make([]string, len(a.Categories))
	for i, c := range a.Categories {
		ids[i] = c.ID
	}
	return ids
}

// CategoryNames returns category names in association order.
func (a *Article) CategoryNames() []string {
	names := make([]string, len(a.Categories))
	for i, c := range a.Categories {
		names[i] = c.Name
	}
	return names
}

// OwnedBy reports whether userID authored the article.
func (a *Article) OwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}
