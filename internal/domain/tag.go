package domain

import (
	"slices"
	"strings"
	"time"
)

// Tag is a global label. Names are unique and compared exactly; tags are
// never deleted when the last article drops them.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ParseTagList splits a comma-separated tag list. Entries are trimmed,
// blanks are dropped and duplicates collapse onto their first occurrence.
func ParseTagList(raw string) []string {
	names := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// JoinTagList renders tag names as "a,b,c" in association order.
func JoinTagList(tags []Tag) string {
	return strings.Join(TagNames(tags), ",")
}

// TagNames returns the names of tags in order.
func TagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// DiffNames compares a current association with the desired one.
// toLink keeps desired order; toUnlink keeps current order.
func DiffNames(current, desired []string) (toLink, toUnlink []string) {
	for _, name := range desired {
		if !slices.Contains(current, name) {
			toLink = append(toLink, name)
		}
	}
	for _, name := range current {
		if !slices.Contains(desired, name) {
			toUnlink = append(toUnlink, name)
		}
	}
	return toLink, toUnlink
}
