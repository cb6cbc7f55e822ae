package report

import (
	"sync/atomic"
	"time"
)

// Stats tracks running counters for one submission run. Counters are
// monotonic and safe for concurrent use; SitemapFetcher and BatchSubmitter
// write, the final report reads.
type Stats struct {
	URLsFound             atomic.Uint64
	SuccessfulSubmissions atomic.Uint64
	FailedSubmissions     atomic.Uint64
	RetriedSubmissions    atomic.Uint64
	BatchesProcessed      atomic.Uint64

	StartTime time.Time
}

// NewStats creates a stats instance anchored at the current time.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// AddURLsFound records discovered URLs.
func (s *Stats) AddURLsFound(n int) {
	if n > 0 {
		s.URLsFound.Add(uint64(n))
	}
}

// AddSuccessful records URLs accounted as successfully submitted.
func (s *Stats) AddSuccessful(n int) {
	if n > 0 {
		s.SuccessfulSubmissions.Add(uint64(n))
	}
}

// AddFailed records URLs accounted as failed.
func (s *Stats) AddFailed(n int) {
	if n > 0 {
		s.FailedSubmissions.Add(uint64(n))
	}
}

// IncrementRetried records one retry-triggering response (429 or soft 403).
func (s *Stats) IncrementRetried() {
	s.RetriedSubmissions.Add(1)
}

// IncrementBatches records one fully processed batch.
func (s *Stats) IncrementBatches() {
	s.BatchesProcessed.Add(1)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	URLsFound             uint64        `json:"urls_found"`
	SuccessfulSubmissions uint64        `json:"successful_submissions"`
	FailedSubmissions     uint64        `json:"failed_submissions"`
	RetriedSubmissions    uint64        `json:"retried_submissions"`
	BatchesProcessed      uint64        `json:"batches_processed"`
	Elapsed               time.Duration `json:"elapsed"`
}

// GetSnapshot returns a copy of the current counter values.
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		URLsFound:             s.URLsFound.Load(),
		SuccessfulSubmissions: s.SuccessfulSubmissions.Load(),
		FailedSubmissions:     s.FailedSubmissions.Load(),
		RetriedSubmissions:    s.RetriedSubmissions.Load(),
		BatchesProcessed:      s.BatchesProcessed.Load(),
		Elapsed:               time.Since(s.StartTime),
	}
}

// SuccessRate returns successful submissions as a percentage of URLs found,
// guarding the no-URLs case.
func (sn Snapshot) SuccessRate() float64 {
	if sn.URLsFound == 0 {
		return 0
	}
	return float64(sn.SuccessfulSubmissions) / float64(sn.URLsFound) * 100
}
