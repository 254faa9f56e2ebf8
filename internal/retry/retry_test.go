package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("503 service unavailable")

func quietLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

func fastPolicy() Policy {
	return Policy{MaxAttempts: 5}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	for failures := 0; failures < 5; failures++ {
		log, hook := quietLogger()
		calls := 0

		got, err := Do(context.Background(), fastPolicy(), log, func(context.Context) (string, error) {
			calls++
			if calls <= failures {
				return "", errFlaky
			}
			return "ok", nil
		})

		require.NoError(t, err, "failures=%d", failures)
		assert.Equal(t, "ok", got)
		assert.Equal(t, failures+1, calls)
		assert.Len(t, hook.AllEntries(), failures)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	log, _ := quietLogger()
	calls := 0

	_, err := Do(context.Background(), fastPolicy(), log, func(context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})

	var failure *TransientFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, uint(5), failure.Attempts)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 5, calls, "no attempt after the last failure")
}

func TestDo_StopsOnCancel(t *testing.T) {
	log, _ := quietLogger()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, Policy{MaxAttempts: 5, MinWait: time.Hour, MaxWait: time.Hour}, log, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errFlaky
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	log, _ := quietLogger()
	calls := 0

	_, err := Do(context.Background(), Policy{}, log, func(context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyWait_WithinBounds(t *testing.T) {
	p := DefaultPolicy()
	for i := 0; i < 1000; i++ {
		w := p.wait()
		assert.GreaterOrEqual(t, w, time.Second)
		assert.LessOrEqual(t, w, 10*time.Second)
	}
	assert.Equal(t, time.Second, Policy{MinWait: time.Second}.wait())
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	log, _ := quietLogger()
	errRejected := errors.New("401 invalid api key")
	calls := 0

	_, err := Do(context.Background(), fastPolicy(), log, func(context.Context) (int, error) {
		calls++
		return 0, Permanent(errRejected)
	})

	assert.Equal(t, errRejected, err)
	var failure *TransientFailure
	assert.False(t, errors.As(err, &failure))
	assert.Equal(t, 1, calls)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
