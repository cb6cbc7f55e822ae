package sitemap

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"indexnow-go/pkg/fetch"
	"indexnow-go/pkg/logger"
	"indexnow-go/pkg/report"
)

// Downloader is the network capability the fetcher retrieves sitemaps with.
type Downloader interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// maxDepth bounds sitemap-index recursion; indexes pointing at themselves
// exist in the wild.
const maxDepth = 5

// Fetcher retrieves a sitemap and flattens nested indexes into a single
// ordered URL list. The semaphore bounds concurrent network fetches only;
// it is never held across index expansion, so nested indexes cannot
// starve each other of slots.
type Fetcher struct {
	client Downloader
	stats  *report.Stats
	sem    *semaphore.Weighted
	log    *logger.Logger
}

// NewFetcher creates a fetcher whose network-fetch concurrency is
// max(2, concurrency).
func NewFetcher(client Downloader, stats *report.Stats, concurrency int) *Fetcher {
	limit := int64(concurrency)
	if limit < 2 {
		limit = 2
	}
	return &Fetcher{
		client: client,
		stats:  stats,
		sem:    semaphore.NewWeighted(limit),
		log:    logger.GetLogger().WithField("component", "sitemap_fetcher"),
	}
}

// FetchAll returns the flat list of page URLs the sitemap at sitemapURL
// transitively contains, and records the total in urls_found exactly once.
// Fetch and parse failures yield an empty list, never an error.
func (f *Fetcher) FetchAll(ctx context.Context, sitemapURL string) []string {
	urls := f.fetch(ctx, sitemapURL, 0)
	f.stats.AddURLsFound(len(urls))
	f.log.WithFields(map[string]interface{}{
		"sitemap": sitemapURL,
		"count":   len(urls),
	}).Info("Sitemap expanded")
	return urls
}

func (f *Fetcher) fetch(ctx context.Context, sitemapURL string, depth int) []string {
	if depth >= maxDepth {
		f.log.WithField("sitemap", sitemapURL).Warn("Sitemap nesting too deep, stopping recursion")
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	resp, err := f.download(ctx, sitemapURL)
	if err != nil {
		f.log.WithError(err).WithField("sitemap", sitemapURL).Error("Failed to fetch sitemap")
		return nil
	}
	if resp.StatusCode != 200 {
		f.log.WithFields(map[string]interface{}{
			"sitemap": sitemapURL,
			"status":  resp.StatusCode,
		}).Error("Sitemap fetch returned non-200 status")
		return nil
	}

	doc, err := Extract(resp.Body)
	if err != nil {
		f.log.WithError(err).WithField("sitemap", sitemapURL).Error("Failed to parse sitemap")
		return nil
	}

	base, baseErr := url.Parse(sitemapURL)

	if doc.Kind == KindIndex {
		children := doc.URLs
		if baseErr == nil {
			children = resolveAll(base, children)
		}
		return f.fetchChildren(ctx, sitemapURL, children, depth)
	}

	if baseErr == nil {
		return resolveAll(base, doc.URLs)
	}
	return doc.URLs
}

// download performs the single bounded network operation. The semaphore
// slot is released as soon as the response is buffered, before any
// parsing or recursion happens.
func (f *Fetcher) download(ctx context.Context, sitemapURL string) (*fetch.Response, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer f.sem.Release(1)
	return f.client.Get(ctx, sitemapURL)
}

// fetchChildren expands a sitemap index. One goroutine per child; the
// network bound is enforced inside download, so a child that is itself an
// index can expand while other children wait for a fetch slot. Results are
// placed by child position so the concatenation stays deterministic and
// per-child contiguous.
func (f *Fetcher) fetchChildren(ctx context.Context, parent string, children []string, depth int) []string {
	f.log.WithFields(map[string]interface{}{
		"sitemap":  parent,
		"children": len(children),
	}).Info("Processing sitemap index")

	results := make([][]string, len(children))
	var wg sync.WaitGroup

	for i, child := range children {
		if child == "" {
			continue
		}

		wg.Add(1)
		go func(slot int, childURL string) {
			defer wg.Done()
			results[slot] = f.fetch(ctx, childURL, depth+1)
		}(i, child)
	}

	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	flat := make([]string, 0, total)
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat
}

// resolveAll normalizes relative references against the document base.
func resolveAll(base *url.URL, raw []string) []string {
	resolved := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		ref, err := url.Parse(r)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme == "" || abs.Host == "" {
			continue
		}
		resolved = append(resolved, abs.String())
	}
	return resolved
}
