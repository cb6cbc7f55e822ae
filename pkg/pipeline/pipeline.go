// Package pipeline wires discovery, sitemap expansion, key resolution and
// batch submission into one run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"indexnow-go/pkg/discovery"
	"indexnow-go/pkg/keys"
	"indexnow-go/pkg/logger"
	"indexnow-go/pkg/report"
	"indexnow-go/pkg/sitemap"
	"indexnow-go/pkg/submit"
)

// ErrNoSitemap is returned when discovery finds no candidate sitemap for
// the target site.
var ErrNoSitemap = errors.New("no sitemap discoverable")

type Pipeline struct {
	resolver   *discovery.Resolver
	fetcher    *sitemap.Fetcher
	keyManager *keys.Manager
	submitter  *submit.Submitter
	stats      *report.Stats
	log        *logger.Logger
}

func New(
	resolver *discovery.Resolver,
	fetcher *sitemap.Fetcher,
	keyManager *keys.Manager,
	submitter *submit.Submitter,
	stats *report.Stats,
) *Pipeline {
	return &Pipeline{
		resolver:   resolver,
		fetcher:    fetcher,
		keyManager: keyManager,
		submitter:  submitter,
		stats:      stats,
		log:        logger.GetLogger().WithField("component", "pipeline"),
	}
}

// Run executes one full submission run against target, which is either a
// sitemap URL or a bare site URL. It returns the final stats snapshot; the
// only errors are ErrNoSitemap, keys.ErrCancelled and context failures.
func (p *Pipeline) Run(ctx context.Context, target string, override keys.Key) (report.Snapshot, error) {
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return report.Snapshot{}, fmt.Errorf("invalid target URL %q", target)
	}

	candidates, err := p.candidates(ctx, target, parsed)
	if err != nil {
		return report.Snapshot{}, err
	}
	if len(candidates) == 0 {
		return report.Snapshot{}, ErrNoSitemap
	}

	urls := p.collectURLs(ctx, candidates)

	host := parsed.Host
	key, err := p.keyManager.Resolve(ctx, host, override)
	if err != nil {
		return report.Snapshot{}, err
	}

	if len(urls) > 0 {
		if err := p.submitter.SubmitAll(ctx, host, key, urls); err != nil {
			return report.Snapshot{}, err
		}
	} else {
		p.log.Warn("No URLs found in sitemap, nothing to submit")
	}

	return p.stats.GetSnapshot(), nil
}

// candidates decides whether target already names a sitemap or needs
// discovery against the site root.
func (p *Pipeline) candidates(ctx context.Context, target string, parsed *url.URL) ([]string, error) {
	if looksLikeSitemap(parsed) {
		return []string{target}, nil
	}
	return p.resolver.Resolve(ctx, target)
}

// collectURLs expands every candidate sitemap and deduplicates across them
// while preserving first-seen order.
func (p *Pipeline) collectURLs(ctx context.Context, candidates []string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, candidate := range candidates {
		for _, u := range p.fetcher.FetchAll(ctx, candidate) {
			if seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

func looksLikeSitemap(u *url.URL) bool {
	path := strings.ToLower(u.Path)
	return strings.HasSuffix(path, ".xml") ||
		strings.HasSuffix(path, ".xml.gz") ||
		strings.Contains(path, "sitemap")
}
