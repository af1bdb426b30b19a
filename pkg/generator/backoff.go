package generator

import (
	"context"
	"iter"
	"math/rand/v2"
	"net/http"
	"time"
)

// Backoff は試行回数と待機時間のスケジュールです。
// 待機時間は Initial から試行ごとに倍になり、[0, MaxJitter) のジッターが加算されます。
type Backoff struct {
	MaxAttempts int
	Initial     time.Duration
	MaxJitter   time.Duration
	Jitter      JitterFunc
}

// DefaultBackoff は最大 3 回、10s → 20s の待機を行うスケジュールを返します。
func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts: DefaultMaxAttempts,
		Initial:     DefaultInitialBackoff,
		MaxJitter:   DefaultMaxJitter,
		Jitter:      randomJitter,
	}
}

// Attempts は (試行番号, その試行の前に待つ時間) を順に返します。
// 1 回目の待機は 0 です。ジッターは次の試行に進むときにだけ計算されます。
func (b Backoff) Attempts() iter.Seq2[int, time.Duration] {
	return func(yield func(int, time.Duration) bool) {
		delay := b.Initial
		for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
			var wait time.Duration
			if attempt > 1 {
				wait = delay + b.jitter()
				delay *= 2
			}
			if !yield(attempt, wait) {
				return
			}
		}
	}
}

func (b Backoff) jitter() time.Duration {
	if b.Jitter == nil || b.MaxJitter <= 0 {
		return 0
	}
	return b.Jitter(b.MaxJitter)
}

// IsRetryable は 429 と 5xx のみをリトライ対象とします。
func IsRetryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}

// sleepContext は d だけ待機します。ctx が先に終了した場合はそのエラーを返します。
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
