package report

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStatsCountersAccumulate(t *testing.T) {
	s := NewStats()
	s.AddURLsFound(100)
	s.AddSuccessful(80)
	s.AddFailed(20)
	s.IncrementRetried()
	s.IncrementRetried()
	s.IncrementBatches()

	snap := s.GetSnapshot()
	if snap.URLsFound != 100 || snap.SuccessfulSubmissions != 80 || snap.FailedSubmissions != 20 {
		t.Errorf("Unexpected counters: %+v", snap)
	}
	if snap.RetriedSubmissions != 2 {
		t.Errorf("Expected 2 retried, got %d", snap.RetriedSubmissions)
	}
	if snap.BatchesProcessed != 1 {
		t.Errorf("Expected 1 batch, got %d", snap.BatchesProcessed)
	}
	if snap.Elapsed < 0 {
		t.Errorf("Elapsed must be non-negative, got %v", snap.Elapsed)
	}
}

func TestStatsNegativeAddsIgnored(t *testing.T) {
	s := NewStats()
	s.AddURLsFound(-5)
	s.AddSuccessful(-1)
	s.AddFailed(-1)

	snap := s.GetSnapshot()
	if snap.URLsFound != 0 || snap.SuccessfulSubmissions != 0 || snap.FailedSubmissions != 0 {
		t.Errorf("Negative adds must be ignored: %+v", snap)
	}
}

func TestStatsConcurrentWrites(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddURLsFound(2)
			s.IncrementRetried()
		}()
	}
	wg.Wait()

	snap := s.GetSnapshot()
	if snap.URLsFound != 100 {
		t.Errorf("Expected 100 URLs found, got %d", snap.URLsFound)
	}
	if snap.RetriedSubmissions != 50 {
		t.Errorf("Expected 50 retried, got %d", snap.RetriedSubmissions)
	}
}

func TestSuccessRate(t *testing.T) {
	snap := Snapshot{URLsFound: 200, SuccessfulSubmissions: 150}
	if got := snap.SuccessRate(); got != 75.0 {
		t.Errorf("Expected 75%%, got %.2f", got)
	}
}

func TestSuccessRateZeroURLs(t *testing.T) {
	snap := Snapshot{}
	if got := snap.SuccessRate(); got != 0 {
		t.Errorf("Expected 0%% for empty run, got %.2f", got)
	}
}

func TestRenderReport(t *testing.T) {
	snap := Snapshot{
		URLsFound:             120,
		SuccessfulSubmissions: 100,
		FailedSubmissions:     20,
		RetriedSubmissions:    3,
		BatchesProcessed:      1,
		Elapsed:               1500 * time.Millisecond,
	}
	out := Render(snap, []string{"indexnow", "bing"})

	for _, want := range []string{
		"URLs found in sitemap:  120",
		"Successful submissions: 100",
		"Failed submissions:     20",
		"Retried submissions:    3",
		"Batches processed:      1",
		"Success rate:           83.33%",
		"indexnow, bing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReportNoURLsOmitsRate(t *testing.T) {
	out := Render(Snapshot{}, []string{"indexnow"})
	if strings.Contains(out, "Success rate") {
		t.Error("Success rate must be omitted when no URLs were found")
	}
}
