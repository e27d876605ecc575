package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when more than limit goroutines are running.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds %d", n, limit)
		}
		return nil
	}
}

// GCPauseCheck fails when the most recent GC pause exceeded limit.
func GCPauseCheck(limit time.Duration) CheckFunc {
	return func(context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)
		if len(stats.Pause) > 0 && stats.Pause[0] > limit {
			return errors.Errorf("last GC pause %s exceeds %s", stats.Pause[0], limit)
		}
		return nil
	}
}

// MinCountCheck fails while count reports fewer than minimum items, e.g. an
// unseeded catalog.
func MinCountCheck(what string, minimum int, count func(ctx context.Context) (int, error)) CheckFunc {
	return func(ctx context.Context) error {
		n, err := count(ctx)
		if err != nil {
			return errors.Wrapf(err, "count %s", what)
		}
		if n < minimum {
			return errors.Errorf("%s: have %d, want at least %d", what, n, minimum)
		}
		return nil
	}
}
