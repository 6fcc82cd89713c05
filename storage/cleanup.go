package storage

import (
	"context"
	"time"

	"github.com/postdeck/postdeck/utils"
)

// StartPendingCleaner launches a background goroutine that garbage-collects
// orphaned pending uploads on a fixed interval after an initial delay.
// A failing pass is logged and the next scheduled run still fires.
// The returned stop function terminates the goroutine.
func StartPendingCleaner(gw *Gateway, initialDelay, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Hour
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-time.After(initialDelay):
		case <-done:
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runCleanupPass(gw)
		for {
			select {
			case <-ticker.C:
				runCleanupPass(gw)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

func runCleanupPass(gw *Gateway) {
	defer func() {
		if r := recover(); r != nil {
			utils.Sugar.Errorf("panic during pending uploads cleanup: %v", r)
		}
	}()

	utils.Sugar.Info("starting scheduled cleanup of pending uploads")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := gw.CleanupPending(ctx); err != nil {
		utils.Sugar.Errorf("failed to cleanup pending uploads: %v", err)
		return
	}
	utils.Sugar.Info("completed scheduled cleanup of pending uploads")
}
