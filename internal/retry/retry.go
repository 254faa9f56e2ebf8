// Package retry wraps outbound calls with a bounded retry loop and a uniform
// random wait between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	retrygo "github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

// Policy bounds how often and how patiently a call is retried.
type Policy struct {
	MaxAttempts uint          // total attempts, including the first
	MinWait     time.Duration // lower bound of the wait before a retry
	MaxWait     time.Duration // upper bound of the wait before a retry
}

// DefaultPolicy allows 5 attempts with 1s to 10s between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, MinWait: time.Second, MaxWait: 10 * time.Second}
}

// wait picks a duration uniformly from [MinWait, MaxWait].
func (p Policy) wait() time.Duration {
	if p.MaxWait <= p.MinWait {
		return p.MinWait
	}
	return p.MinWait + rand.N(p.MaxWait-p.MinWait+1)
}

// TransientFailure is returned once every attempt has failed.
type TransientFailure struct {
	Attempts uint
	Err      error // last error seen
}

func (e *TransientFailure) Error() string {
	return fmt.Sprintf("remote call failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientFailure) Unwrap() error { return e.Err }

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do stops at once and returns err unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, the policy is exhausted or ctx is done.
func Do[T any](ctx context.Context, policy Policy, log logrus.FieldLogger, op func(ctx context.Context) (T, error)) (T, error) {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	var attempts uint
	result, err := retrygo.DoWithData(
		func() (T, error) {
			attempts++
			return op(ctx)
		},
		retrygo.Context(ctx),
		retrygo.Attempts(policy.MaxAttempts),
		retrygo.LastErrorOnly(true),
		retrygo.RetryIf(func(err error) bool {
			var permanent *permanentError
			return !errors.Is(err, context.Canceled) && !errors.As(err, &permanent)
		}),
		retrygo.DelayType(func(_ uint, _ error, _ *retrygo.Config) time.Duration {
			return policy.wait()
		}),
		retrygo.OnRetry(func(n uint, err error) {
			if n+1 >= policy.MaxAttempts {
				return
			}
			log.WithFields(logrus.Fields{
				"attempt":      n + 1,
				"max_attempts": policy.MaxAttempts,
			}).WithError(err).Warn("remote call failed, retrying")
		}),
	)
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	var permanent *permanentError
	if errors.As(err, &permanent) {
		return result, permanent.err
	}
	return result, &TransientFailure{Attempts: attempts, Err: err}
}
