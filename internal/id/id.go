// Package id generates prefixed identifiers for persisted records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Record prefixes. The prefix makes IDs self-describing in logs and URLs.
const (
	PrefixUser               = "usr"
	PrefixArticle            = "art"
	PrefixTag                = "tag"
	PrefixCategory           = "cat"
	PrefixNewsletter         = "nl"
	PrefixCategoryNewsletter = "cnl"
	PrefixSubscriber         = "sub"
)

// Generate returns "<prefix>-<nanoid>", e.g. "art-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	raw, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + raw, nil
}

// MustGenerate is Generate for callers that cannot continue without entropy.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
