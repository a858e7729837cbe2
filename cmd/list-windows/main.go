// list-windows writes the sway window list to the snapshot file read by
// hexpanel, and focuses or closes windows on its behalf.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joshuarubin/go-sway"
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/config"
	"github.com/chess10kp/hexpanel/internal/logging"
)

type helper struct {
	client sway.Client
	output string
	logger *zap.Logger
}

func (h *helper) snapshot(ctx context.Context) error {
	tree, err := h.client.GetTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to get tree: %w", err)
	}
	windows := collectWindows(tree)
	if err := writeSnapshot(h.output, windows); err != nil {
		return err
	}
	h.logger.Debug("snapshot written", zap.Int("windows", len(windows)), zap.String("path", h.output))
	return nil
}

// command runs a sway command against one container.
func (h *helper) command(ctx context.Context, id, action string) error {
	conID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid window id %q", id)
	}

	replies, err := h.client.RunCommand(ctx, fmt.Sprintf("[con_id=%d] %s", conID, action))
	if err != nil {
		return fmt.Errorf("failed to %s window %d: %w", action, conID, err)
	}
	for _, r := range replies {
		if !r.Success {
			return fmt.Errorf("sway refused to %s window %d: %s", action, conID, r.Error)
		}
	}
	return nil
}

// windowEvents rewrites the snapshot whenever sway reports a window change.
type windowEvents struct {
	sway.EventHandler
	helper *helper
}

func (w windowEvents) Window(ctx context.Context, e sway.WindowEvent) {
	if err := w.helper.snapshot(ctx); err != nil {
		w.helper.logger.Warn("failed to update snapshot", zap.String("change", string(e.Change)), zap.Error(err))
	}
}

func main() {
	activate := flag.String("activate", "", "focus the window with this id")
	closeID := flag.String("close", "", "close the window with this id")
	watch := flag.Bool("watch", false, "keep the snapshot up to date until interrupted")
	output := flag.String("output", "", "snapshot path (default from hexpanel config)")
	flag.Parse()

	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		cfg = &config.DefaultConfig
	}
	if *output == "" {
		*output = cfg.Windows.SnapshotPath
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		logger = logging.NewDefault()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := sway.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list-windows: failed to connect to sway: %v\n", err)
		os.Exit(1)
	}
	h := &helper{client: client, output: *output, logger: logger.Named("list-windows")}

	if err := run(ctx, h, *activate, *closeID, *watch); err != nil {
		fmt.Fprintf(os.Stderr, "list-windows: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, h *helper, activate, closeID string, watch bool) error {
	switch {
	case activate != "":
		if err := h.command(ctx, activate, "focus"); err != nil {
			return err
		}
		return h.snapshot(ctx)
	case closeID != "":
		if err := h.command(ctx, closeID, "kill"); err != nil {
			return err
		}
		// Give the client a moment to unmap before the next snapshot
		time.Sleep(50 * time.Millisecond)
		return h.snapshot(ctx)
	}

	if err := h.snapshot(ctx); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	err := sway.Subscribe(ctx, windowEvents{EventHandler: sway.NoOpEventHandler(), helper: h}, sway.EventTypeWindow)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
