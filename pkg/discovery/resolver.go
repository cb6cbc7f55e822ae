// Package discovery locates candidate sitemaps for a bare site URL.
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"

	"indexnow-go/pkg/fetch"
	"indexnow-go/pkg/logger"
)

// Fetcher is the network capability the resolver probes with.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// conventionalPaths are probed in addition to robots.txt directives. The
// list covers the standard names plus common platform variants.
var conventionalPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/sitemapindex.xml",
	"/wp-sitemap.xml",
	"/page-sitemap.xml",
	"/sitemap/sitemap.xml",
}

// Resolver discovers sitemap locations for a site.
type Resolver struct {
	fetcher Fetcher
	log     *logger.Logger
}

func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		log:     logger.GetLogger().WithField("component", "sitemap_resolver"),
	}
}

// Resolve returns the deduplicated candidate sitemap URLs for siteURL, from
// robots.txt directives and conventional path probes. An empty result is a
// valid outcome; individual probe failures are logged and swallowed.
func (r *Resolver) Resolve(ctx context.Context, siteURL string) ([]string, error) {
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid site URL %q", siteURL)
	}
	if base.Scheme == "" {
		base.Scheme = "https"
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	var candidates []string
	seen := make(map[string]bool)
	add := func(raw string) {
		resolved := r.resolveRef(root, raw)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		candidates = append(candidates, resolved)
	}

	for _, directive := range r.robotsDirectives(ctx, root) {
		add(directive)
	}

	for _, path := range conventionalPaths {
		probe := root.String() + path
		if seen[probe] {
			continue
		}
		resp, err := r.fetcher.Get(ctx, probe)
		if err != nil {
			r.log.WithError(err).WithField("url", probe).Debug("Sitemap probe failed")
			continue
		}
		if resp.StatusCode != 200 || !resp.IsXML() {
			continue
		}
		add(probe)
	}

	r.log.WithFields(map[string]interface{}{
		"site":       root.Host,
		"candidates": len(candidates),
	}).Info("Sitemap discovery finished")

	return candidates, nil
}

// robotsDirectives fetches robots.txt and extracts sitemap references: the
// standard Sitemap: directives via the robotstxt parser, plus a line scan
// for the nonstandard sitemap-index: form some sites use.
func (r *Resolver) robotsDirectives(ctx context.Context, root *url.URL) []string {
	robotsURL := root.String() + "/robots.txt"
	resp, err := r.fetcher.Get(ctx, robotsURL)
	if err != nil {
		r.log.WithError(err).Debug("Failed to fetch robots.txt")
		return nil
	}
	if resp.StatusCode != 200 {
		return nil
	}

	var directives []string

	if data, err := robotstxt.FromBytes(resp.Body); err == nil {
		directives = append(directives, data.Sitemaps...)
	} else {
		r.log.WithError(err).Debug("Failed to parse robots.txt")
	}

	for _, line := range strings.Split(string(resp.Body), "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "sitemap-index:") {
			directives = append(directives, strings.TrimSpace(line[len("sitemap-index:"):]))
		}
	}

	return directives
}

// resolveRef normalizes a directive or probe target against the site root.
func (r *Resolver) resolveRef(root *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := root.ResolveReference(ref)
	if resolved.Host == "" {
		return ""
	}
	return resolved.String()
}
