package utils

import (
	"context"
	"time"

	"go.viam.com/pourdemo/logging"
)

// SlowLogger warns with msg after two seconds and then every few seconds until the returned
// function is called or ctx is done. Use it around calls that block for an unknown time. The
// returned function waits for the logging goroutine to exit.
func SlowLogger(ctx context.Context, msg, fieldName, fieldVal string, logger logging.Logger) func() {
	return slowLogger(ctx, msg, fieldName, fieldVal, logger, 2*time.Second, 3*time.Second, 5*time.Second)
}

func slowLogger(ctx context.Context, msg, fieldName, fieldVal string, logger logging.Logger, intervals ...time.Duration) func() {
	slowTicker := time.NewTicker(intervals[0])
	ctxWithCancel, cancel := context.WithCancel(ctx)
	startTime := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		tick := 0
		for {
			select {
			case <-slowTicker.C:
				elapsed := time.Since(startTime).Round(time.Millisecond).String()
				logger.Warnw(msg, fieldName, fieldVal, "time_elapsed", elapsed)
				if tick++; tick < len(intervals) {
					slowTicker.Reset(intervals[tick])
				}
			case <-ctxWithCancel.Done():
				return
			}
		}
	}()
	return func() {
		slowTicker.Stop()
		cancel()
		<-done
	}
}
