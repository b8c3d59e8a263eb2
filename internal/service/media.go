package service

import (
	"net/url"
	"strings"

	"sensive/internal/config"
)

// DefaultMediaURL is the public prefix of uploaded files when none is configured.
const DefaultMediaURL = "/media/"

// MediaStorage resolves stored image references to public URLs.
type MediaStorage struct {
	baseURL string
}

// NewMediaStorage builds a MediaStorage from the MEDIA_URL setting.
func NewMediaStorage(cfg *config.Config) *MediaStorage {
	base := DefaultMediaURL
	if cfg != nil && cfg.MediaURL != "" {
		base = cfg.MediaURL
	}
	return &MediaStorage{baseURL: base}
}

// URL returns the public URL for name, or "" when name is empty.
// Absolute http(s) references are returned unchanged.
func (m *MediaStorage) URL(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	joined, err := url.JoinPath(m.baseURL, strings.TrimPrefix(name, "/"))
	if err != nil {
		return m.baseURL + strings.TrimPrefix(name, "/")
	}
	return joined
}
