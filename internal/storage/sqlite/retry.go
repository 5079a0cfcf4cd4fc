package sqlite

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kabanhq/kaban/internal/kerrors"
)

// maxBusyRetries and busyBaseDelay implement §4.1's bounded exponential
// backoff: at most 3 attempts, 25ms base.
const (
	maxBusyRetries = 3
	busyBaseDelay  = 25 * time.Millisecond
)

// withBusyRetry runs op, retrying on SQLITE_BUSY/SQLITE_LOCKED with
// bounded exponential backoff. Any other error, or exhaustion of the
// retry budget, is returned immediately (wrapped as BUSY_AFTER_RETRY in
// the latter case).
func (s *Store) withBusyRetry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = busyBaseDelay
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	bctx := backoff.WithContext(b, ctx)

	attempt := 0
	var lastErr error
	err := backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isBusy(err) {
			return backoff.Permanent(err)
		}
		if attempt >= maxBusyRetries {
			return backoff.Permanent(err)
		}
		s.logger.Warn("retrying after SQLITE_BUSY", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, bctx)

	if err == nil {
		return nil
	}
	if isBusy(lastErr) && attempt >= maxBusyRetries {
		return kerrors.Wrap(kerrors.General, lastErr, "BUSY_AFTER_RETRY")
	}
	return err
}
