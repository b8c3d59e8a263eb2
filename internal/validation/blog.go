// Package validation checks user-supplied identifiers before they reach the database.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxPostTitleLength is the maximum post title length in characters.
	MaxPostTitleLength = 200
	// MaxSlugLength is the maximum post slug length in characters.
	MaxSlugLength = 200
	// MaxTagTitleLength is the maximum tag title length in characters.
	MaxTagTitleLength = 20
)

var postSlugRegex = regexp.MustCompile(`^[\p{Ll}\p{Nd}_-]+$`)

var reservedSlugs = map[string]struct{}{
	"api":      {},
	"health":   {},
	"metrics":  {},
	"media":    {},
	"static":   {},
	"swagger":  {},
	"contacts": {},
}

// ValidatePostSlug validates slug format, length and reserved names.
func ValidatePostSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if utf8.RuneCountInString(slug) > MaxSlugLength {
		return fmt.Errorf("slug must be at most %d characters", MaxSlugLength)
	}
	if !postSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug may contain only lowercase letters, digits, hyphens and underscores")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}
	if _, exists := reservedSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}
	return nil
}

// ValidatePostTitle checks that a post title is present and short enough.
func ValidatePostTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxPostTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxPostTitleLength)
	}
	return nil
}

// ValidateTagTitle validates a normalized (lowercase, trimmed) tag title.
func ValidateTagTitle(title string) error {
	if title == "" {
		return fmt.Errorf("tag title is required")
	}
	if utf8.RuneCountInString(title) > MaxTagTitleLength {
		return fmt.Errorf("tag title must be at most %d characters", MaxTagTitleLength)
	}
	if title != strings.ToLower(title) {
		return fmt.Errorf("tag title must be lowercase")
	}
	if strings.ContainsAny(title, "/?#") {
		return fmt.Errorf("tag title cannot contain '/', '?' or '#'")
	}
	return nil
}
