package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// Schedule starts running the pipeline every interval in the background.
// The first run starts immediately. The caller stops the returned scheduler.
func (r *Runner) Schedule(ctx context.Context, interval time.Duration) (*gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid run interval %v", interval)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	r.logger.Info("Starting scheduler with interval %v", interval)

	_, err := scheduler.Every(interval).Do(func() {
		r.logger.Info("Scheduled pipeline run")
		if _, err := r.Run(ctx); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				r.logger.Info("Skipping scheduled run: %v", err)
				return
			}
			r.logger.Error("Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("error configuring scheduler: %w", err)
	}

	scheduler.StartAsync()
	return scheduler, nil
}

// StartScheduler runs the pipeline every interval until ctx is done
func (r *Runner) StartScheduler(ctx context.Context, interval time.Duration) error {
	scheduler, err := r.Schedule(ctx, interval)
	if err != nil {
		return err
	}

	<-ctx.Done()

	scheduler.Stop()
	r.logger.Info("Scheduler stopped")
	return nil
}
