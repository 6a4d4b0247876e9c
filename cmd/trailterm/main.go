// Command trailterm renders the trail background in a terminal with
// half-block cells, two pixels per cell. The mouse drives the pointer.
//
// Keys: p cycles the lighting profile, c clears, q or Esc quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/trailbg"
)

func main() {
	var (
		fps     = flag.Int("fps", 30, "target frame rate")
		profile = flag.String("profile", "soft", "lighting profile (soft, original, tinted)")
		feed    = flag.String("feed", "cycle", "feed policy (cycle, blend)")
		logPath = flag.String("log", "", "write debug logs to this file")
	)
	flag.Parse()

	if err := run(*fps, *profile, *feed, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "trailterm: %v\n", err)
		os.Exit(1)
	}
}

func run(fps int, profileName, feedName, logPath string) error {
	if fps <= 0 {
		return fmt.Errorf("invalid fps %d", fps)
	}
	profile, err := trailbg.ParseProfile(profileName)
	if err != nil {
		return err
	}
	policy, ok := trailbg.ParseFeedPolicy(feedName)
	if !ok {
		return fmt.Errorf("unknown feed policy %q", feedName)
	}

	// The terminal owns stdout and stderr, so logs go to a file.
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		trailbg.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	r, err := trailbg.New(trailbg.WithProfile(profile), trailbg.WithFeedPolicy(policy))
	if err != nil {
		return err
	}
	defer r.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	screen.HideCursor()
	screen.EnableMouse(tcell.MouseMotionEvents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := newTerm(screen, r, profile)
	t.resize()
	go t.pollEvents(cancel)

	return r.Run(ctx, time.Second/time.Duration(fps), t.present)
}
