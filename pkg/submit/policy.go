package submit

import "time"

// Outcome is the next action for one engine/batch submission attempt.
type Outcome int

const (
	// OutcomeSuccess: the engine accepted the batch.
	OutcomeSuccess Outcome = iota
	// OutcomeRetry: transient condition, try again after Decision.Delay.
	OutcomeRetry
	// OutcomePermanent: give up on this engine for this batch.
	OutcomePermanent
)

// Decision is the pure result of one retry-policy transition. It carries
// no sleeping or I/O; callers apply Delay themselves.
type Decision struct {
	Outcome Outcome
	Delay   time.Duration
	// CountRetry marks responses that count toward retried_submissions
	// (rate limiting and key-propagation 403s).
	CountRetry bool
}

const (
	// maxRateAttempts bounds 429 retries: 5 total attempts.
	maxRateAttempts = 5
	// maxSoftAttempts bounds soft 403 handling: 2 additional attempts
	// after the first 403.
	maxSoftAttempts = 2

	backoffFloor = 4 * time.Second
	backoffCap   = 60 * time.Second
	softStep     = 10 * time.Second
)

// statusNetworkError is the pseudo-status for transport-level failures;
// they fold into the rate-limit backoff schedule without counting as
// retried submissions.
const statusNetworkError = 0

// BackoffDelay returns the exponential delay for the given 1-based
// attempt: 4s, 8s, 16s, 32s, then capped at 60s.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := backoffFloor << (attempt - 1)
	if delay > backoffCap || delay < backoffFloor {
		return backoffCap
	}
	return delay
}

// Decide maps an HTTP status onto the next action. statusAttempt is the
// 1-based count of times this status class has been observed for the
// current engine/batch, including the response being decided.
func Decide(status int, statusAttempt int, softRetry403 bool) Decision {
	switch {
	case status == 200 || status == 202:
		return Decision{Outcome: OutcomeSuccess}

	case status == 429:
		if statusAttempt >= maxRateAttempts {
			return Decision{Outcome: OutcomePermanent, CountRetry: true}
		}
		return Decision{
			Outcome:    OutcomeRetry,
			Delay:      BackoffDelay(statusAttempt),
			CountRetry: true,
		}

	case status == 403 && softRetry403:
		// Key not yet propagated: linearly spaced re-checks.
		if statusAttempt > maxSoftAttempts {
			return Decision{Outcome: OutcomePermanent}
		}
		return Decision{
			Outcome:    OutcomeRetry,
			Delay:      time.Duration(statusAttempt) * softStep,
			CountRetry: true,
		}

	case status == statusNetworkError:
		if statusAttempt >= maxRateAttempts {
			return Decision{Outcome: OutcomePermanent}
		}
		return Decision{Outcome: OutcomeRetry, Delay: BackoffDelay(statusAttempt)}

	default:
		return Decision{Outcome: OutcomePermanent}
	}
}
