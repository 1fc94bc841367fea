// Package retry runs a unit of work under a bounded-retry policy.
//
// Failures are classified into three groups: ignored failures end the
// whole operation as a success, expected failures consume retry budget,
// and everything else propagates immediately.
package retry

import "fmt"

// Classifier reports whether an error belongs to a failure class.
type Classifier func(err error) bool

type Policy struct {
	// MaxAttempts is the total invocation budget, values below 1
	// are treated as 1.
	MaxAttempts int
	// Expected marks failures worth retrying. A nil Expected
	// treats every failure as retryable.
	Expected Classifier
	// Ignored marks failures that should be absorbed silently,
	// ending the operation as a success. Checked before Expected.
	Ignored Classifier
}

// ExhaustedError wraps the last failure once the attempt budget is spent.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %s", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do invokes work until it succeeds, an unexpected failure occurs, or the
// attempt budget runs out. Retries are immediate, callers needing backoff
// must compose it around the work function themselves.
func Do(policy Policy, work func() error) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempts := 0
	for {
		err := work()
		if err == nil {
			return nil
		}
		if policy.Ignored != nil && policy.Ignored(err) {
			return nil
		}
		if policy.Expected != nil && !policy.Expected(err) {
			return err
		}

		attempts++
		if attempts >= maxAttempts {
			return &ExhaustedError{Attempts: attempts, Err: err}
		}
	}
}
