package trailbg

import (
	"context"
	"time"
)

// Run drives the renderer until ctx is done: every interval it runs Tick and
// passes the composed frame to present (which may be nil). With interval <= 0
// frames run back to back with a nominal 60 Hz dt.
//
// Run returns nil when ctx ends and the first Tick or present error otherwise.
// Windowed hosts call Tick from their own refresh callback instead.
func (r *Renderer) Run(ctx context.Context, interval time.Duration, present func(*Pixmap) error) error {
	step := func(dt float64) error {
		if err := r.Tick(dt); err != nil {
			return err
		}
		if present != nil {
			return present(r.frame)
		}
		return nil
	}

	if interval <= 0 {
		for {
			if ctx.Err() != nil {
				return nil
			}
			if err := step(1.0 / 60); err != nil {
				return err
			}
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := step(dt); err != nil {
				return err
			}
		}
	}
}
