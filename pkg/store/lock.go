package store

import (
	"context"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const lockRetryDelay = 250 * time.Millisecond

// WithLock runs fn while holding an exclusive lock on path, so that two
// processes sharing a base directory never migrate or seed at once.
func WithLock(ctx context.Context, path string, fn func(ctx context.Context) error) error {
	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return errors.Wrapf(err, "locking %s", path)
	}
	if !locked {
		return errors.Errorf("could not lock %s", path)
	}
	defer fl.Unlock()

	return fn(ctx)
}
