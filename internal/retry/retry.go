// Package retry は生成 API 呼び出しを有限回の再試行で包む仕組みを提供します。
//
// 失敗は Classify によって次の 4 種類に分類されます。
//   - OutcomeRateLimited: 待機して再試行します。
//   - OutcomeSafetyRejected: 復旧フックがあれば待機・フック実行の後に再試行します。
//   - OutcomeFatal: 即座に元のエラーを返します。
//
// 試行回数を使い切った場合は domain.ErrExhaustedRetries を返します。
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"picture-book-api/internal/config"
	"picture-book-api/internal/domain"
)

// Outcome は1回の呼び出し結果の分類です。
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRateLimited
	OutcomeSafetyRejected
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeSafetyRejected:
		return "safety_rejected"
	default:
		return "fatal"
	}
}

// rateLimitMarker は SDK が型付きエラーを返さない経路向けの予備判定です。
const rateLimitMarker = "429 RESOURCE_EXHAUSTED"

// Classify はエラーを Outcome に分類します。
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, domain.ErrSafetyRejected):
		return OutcomeSafetyRejected
	case strings.Contains(err.Error(), rateLimitMarker):
		return OutcomeRateLimited
	default:
		return OutcomeFatal
	}
}

// SleepFunc は指定時間待機します。ctx がキャンセルされた場合はその理由を返します。
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy は再試行の上限と待機時間です。
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Sleep       SleepFunc
}

// DefaultPolicy は 3 回試行・3 秒待機の固定ポリシーを返します。
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: config.MaxAttempts,
		Backoff:     config.RetryBackoff,
		Sleep:       sleepContext,
	}
}

// RecoverFunc はセーフティフィルタで拒否された後、次の試行の前に呼ばれます。
// エラーを返した場合は再試行せずにそのエラーで終了します。
type RecoverFunc func(ctx context.Context, cause error) error

// Do は op を Policy に従って実行します。
// onSafety が nil の場合、OutcomeSafetyRejected は致命的なエラーとして扱います。
func Do[T any](ctx context.Context, p Policy, name string, op func(ctx context.Context) (T, error), onSafety RecoverFunc) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = config.MaxAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		outcome := Classify(err)
		logger := slog.With("operation", name, "attempt", attempt, "max_attempts", attempts, "outcome", outcome.String())

		if outcome == OutcomeFatal || (outcome == OutcomeSafetyRejected && onSafety == nil) {
			logger.ErrorContext(ctx, "生成APIの呼び出しに失敗しました", "error", err)
			return zero, err
		}

		if attempt == attempts {
			logger.ErrorContext(ctx, "最大試行回数に達しました", "error", err)
			break
		}
		logger.WarnContext(ctx, "生成APIの呼び出しに失敗しました。待機後に再試行します", "error", err, "backoff", p.Backoff)

		if err := sleep(ctx, p.Backoff); err != nil {
			return zero, err
		}

		if outcome == OutcomeSafetyRejected {
			if err := onSafety(ctx, err); err != nil {
				return zero, fmt.Errorf("%s: recovery after safety rejection failed: %w", name, err)
			}
		}
	}

	return zero, fmt.Errorf("%s: %w (%d attempts, last error: %v)", name, domain.ErrExhaustedRetries, attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
