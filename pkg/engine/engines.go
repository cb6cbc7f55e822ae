// Package engine declares the roster of IndexNow provider endpoints.
// Adding a provider means adding one table row; the submitter iterates the
// table and has no engine-specific code paths.
package engine

// Engine describes one IndexNow-compatible submission endpoint.
type Engine struct {
	// ID is the short provider identifier used in logs and reports.
	ID string
	// Endpoint is the submission URL accepting the JSON batch payload.
	Endpoint string
	// SoftRetry403 marks providers that answer 403 while a freshly
	// published key file has not propagated yet; those get a short
	// linear-delay retry instead of an immediate permanent failure.
	SoftRetry403 bool
}

// Default returns the fixed roster of IndexNow-enabled search engines.
func Default() []Engine {
	return []Engine{
		{ID: "indexnow", Endpoint: "https://api.indexnow.org/indexnow", SoftRetry403: true},
		{ID: "bing", Endpoint: "https://www.bing.com/indexnow", SoftRetry403: true},
		{ID: "yandex", Endpoint: "https://yandex.com/indexnow"},
		{ID: "seznam", Endpoint: "https://search.seznam.cz/indexnow"},
		{ID: "naver", Endpoint: "https://searchadvisor.naver.com/indexnow"},
		{ID: "yep", Endpoint: "https://indexnow.yep.com/indexnow"},
	}
}

// IDs returns the identifiers of the given engines in roster order.
func IDs(engines []Engine) []string {
	ids := make([]string, 0, len(engines))
	for _, e := range engines {
		ids = append(ids, e.ID)
	}
	return ids
}
