package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/loupe/internal/photos"
	"github.com/five82/loupe/internal/state"
)

const (
	defaultPollInterval = 15 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that checks the photo server
// is reachable and records the result in store. Failures back off
// exponentially up to maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client photos.PageFetcher, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			ping(ctx, store, client)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff. It never returns less than base.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func ping(ctx context.Context, store *state.Store, client photos.PageFetcher) {
	_, err := client.FetchPhotos(ctx, photos.PageQuery{Limit: 1})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("server poll failed: %v", err)
	}
	store.RecordPoll(err)
}
