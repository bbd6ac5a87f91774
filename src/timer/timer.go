package timer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartlift/src/elev"
	"smartlift/src/types"
)

type TimerAction int

const (
	Start TimerAction = iota
	Stop
)

// MotionLoop advances every car by interval each interval until ctx is cancelled.
//   - Stop pauses the loop, Start resumes it
//   - a car held by a dispatcher commit delays its tick, it is never skipped
func MotionLoop(ctx context.Context, reg *elev.Registry, interval time.Duration, action <-chan TimerAction) error {
	if interval <= 0 {
		return fmt.Errorf("%w: tick interval %v", types.ErrInvalidDeltaTime, interval)
	}
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	running := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-action:
			switch a {
			case Start:
				if !running {
					resetTicker(ticker, interval)
					slog.Debug("Motion loop resumed")
				}
				running = true
			case Stop:
				running = false
				slog.Debug("Motion loop paused")
			}
		case <-ticker.C:
			if !running {
				continue
			}
			if err := reg.AdvanceAll(dt); err != nil {
				return err
			}
		}
	}
}

// Stops the ticker, drains a pending tick and restarts it.
func resetTicker(t *time.Ticker, interval time.Duration) {
	t.Stop()
	select {
	case <-t.C:
	default:
	}
	t.Reset(interval)
}
