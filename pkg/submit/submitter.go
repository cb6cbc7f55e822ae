package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"indexnow-go/pkg/engine"
	"indexnow-go/pkg/keys"
	"indexnow-go/pkg/logger"
	"indexnow-go/pkg/report"
)

// TerminalStatus is the final state of one engine/batch submission.
type TerminalStatus int

const (
	StatusSuccess TerminalStatus = iota
	StatusRateLimitExhausted
	StatusPropagationExhausted
	StatusPermanentFailure
)

// EndpointOutcome records how one engine resolved one batch.
type EndpointOutcome struct {
	Engine  string
	BatchID string
	Status  TerminalStatus
}

func (o EndpointOutcome) Success() bool {
	return o.Status == StatusSuccess
}

// Config tunes one Submitter.
type Config struct {
	Concurrency int
	BatchSize   int
	Pacing      time.Duration
}

// Submitter partitions a URL list into batches and submits each batch to
// every engine concurrently. Batches are strictly sequential; the global
// semaphore bounds in-flight requests across the whole run regardless of
// batch or engine.
type Submitter struct {
	transport Transport
	engines   []engine.Engine
	stats     *report.Stats
	sem       *semaphore.Weighted
	config    Config
	log       *logger.Logger

	// sleep is replaceable so tests drive the retry loop without real
	// backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSubmitter(transport Transport, engines []engine.Engine, stats *report.Stats, config Config) *Submitter {
	if len(engines) == 0 {
		engines = engine.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.BatchSize <= 0 || config.BatchSize > MaxBatchSize {
		config.BatchSize = MaxBatchSize
	}
	return &Submitter{
		transport: transport,
		engines:   engines,
		stats:     stats,
		sem:       semaphore.NewWeighted(int64(config.Concurrency)),
		config:    config,
		log:       logger.GetLogger().WithField("component", "batch_submitter"),
		sleep:     sleepCtx,
	}
}

// SubmitAll runs the full URL list through the batch pipeline. It returns
// an error only for context cancellation; per-engine failures are folded
// into the stats.
func (s *Submitter) SubmitAll(ctx context.Context, host string, key keys.Key, urls []string) error {
	batches := Chunk(host, key, urls, s.config.BatchSize)

	s.log.WithFields(map[string]interface{}{
		"host":       host,
		"urls":       len(urls),
		"batches":    len(batches),
		"batch_size": s.config.BatchSize,
	}).Info("Starting batch submission")

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.submitBatch(ctx, batch, i+1, len(batches))
		s.stats.IncrementBatches()

		// Pacing between successive batches, not between engines.
		if i < len(batches)-1 && s.config.Pacing > 0 {
			if err := s.sleep(ctx, s.config.Pacing); err != nil {
				return err
			}
		}
	}

	return nil
}

// submitBatch fans one batch out to every engine and folds the results
// into the stats proportionally: the protocol acknowledges a batch per
// engine as a unit, so floor(batch * okEngines/totalEngines) URLs count as
// successful and the remainder as failed.
func (s *Submitter) submitBatch(ctx context.Context, batch Batch, number, total int) {
	body, err := json.Marshal(payload{
		Host:    batch.Host,
		Key:     batch.Key.String(),
		URLList: batch.URLs,
	})
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal batch payload")
		s.stats.AddFailed(len(batch.URLs))
		return
	}

	s.log.WithFields(map[string]interface{}{
		"batch":    batch.ID,
		"progress": fmt.Sprintf("%d/%d", number, total),
		"urls":     len(batch.URLs),
	}).Info("Submitting batch")

	outcomes := make([]EndpointOutcome, len(s.engines))
	done := make(chan int, len(s.engines))

	for i, eng := range s.engines {
		go func(slot int, eng engine.Engine) {
			outcomes[slot] = s.submitToEngine(ctx, eng, batch.ID, body)
			done <- slot
		}(i, eng)
	}
	for range s.engines {
		<-done
	}

	successful := 0
	for _, outcome := range outcomes {
		if outcome.Success() {
			successful++
		}
	}

	okURLs := len(batch.URLs) * successful / len(s.engines)
	s.stats.AddSuccessful(okURLs)
	s.stats.AddFailed(len(batch.URLs) - okURLs)

	s.log.WithFields(map[string]interface{}{
		"batch":              batch.ID,
		"successful_engines": successful,
		"total_engines":      len(s.engines),
	}).Info("Batch resolved")
}

// submitToEngine drives the retry policy for one engine until a terminal
// outcome. No error crosses the batch boundary.
func (s *Submitter) submitToEngine(ctx context.Context, eng engine.Engine, batchID string, body []byte) EndpointOutcome {
	engineLog := s.log.WithFields(map[string]interface{}{
		"engine": eng.ID,
		"batch":  batchID,
	})

	// Attempts are counted per status class: 429s and network errors
	// share the backoff schedule, soft 403s have their own short ladder.
	rateAttempts := 0
	softAttempts := 0

	for {
		status := s.post(ctx, eng.Endpoint, body, engineLog)

		var statusAttempt int
		switch status {
		case 429, statusNetworkError:
			rateAttempts++
			statusAttempt = rateAttempts
		case 403:
			softAttempts++
			statusAttempt = softAttempts
		}

		decision := Decide(status, statusAttempt, eng.SoftRetry403)
		if decision.CountRetry {
			s.stats.IncrementRetried()
		}

		switch decision.Outcome {
		case OutcomeSuccess:
			engineLog.Debug("Batch accepted")
			return EndpointOutcome{Engine: eng.ID, BatchID: batchID, Status: StatusSuccess}

		case OutcomePermanent:
			terminal := StatusPermanentFailure
			switch status {
			case 429:
				terminal = StatusRateLimitExhausted
				engineLog.Error("Rate limit retries exhausted")
			case 403:
				if eng.SoftRetry403 {
					terminal = StatusPropagationExhausted
				}
				engineLog.WithField("status", status).Error("Submission failed")
			default:
				engineLog.WithField("status", status).Error("Submission failed")
			}
			return EndpointOutcome{Engine: eng.ID, BatchID: batchID, Status: terminal}

		case OutcomeRetry:
			engineLog.WithFields(map[string]interface{}{
				"status": status,
				"delay":  decision.Delay.String(),
			}).Warn("Transient failure, retrying")
			if err := s.sleep(ctx, decision.Delay); err != nil {
				return EndpointOutcome{Engine: eng.ID, BatchID: batchID, Status: StatusPermanentFailure}
			}
		}
	}
}

// post performs one attempt under the global concurrency semaphore.
// Transport errors collapse to the network-error pseudo-status.
func (s *Submitter) post(ctx context.Context, endpoint string, body []byte, log *logger.Logger) int {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return statusNetworkError
	}
	defer s.sem.Release(1)

	status, err := s.transport.Post(ctx, endpoint, body)
	if err != nil {
		log.WithError(err).Warn("Submission attempt failed")
		return statusNetworkError
	}
	return status
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
