// Package assets resolves stored object paths into publicly servable URLs.
package assets

import (
	"errors"
	"net/url"
	"strings"

	"github.com/sellora/sellora-backend/pkg/config"
)

// Resolver maps relative asset paths (as stored on product rows) onto the
// public CDN or bucket base URL.
type Resolver struct {
	base *url.URL
}

func NewResolver(cfg config.AssetsConfig) (*Resolver, error) {
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("assets public base url is required")
	}
	base, err := url.Parse(cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("assets public base url must be absolute")
	}
	return &Resolver{base: base}, nil
}

// PublicURL returns the full URL for a stored asset path. An empty path
// yields an empty string so callers can pass optional image fields through.
func (r *Resolver) PublicURL(path string) string {
	if r == nil || path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	joined := *r.base
	joined.Path = strings.TrimSuffix(joined.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return joined.String()
}
