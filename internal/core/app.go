// Package core wires the panel's collections to the event loop and the IPC
// socket.
package core

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/apps"
	"github.com/chess10kp/hexpanel/internal/catalog"
	"github.com/chess10kp/hexpanel/internal/config"
	"github.com/chess10kp/hexpanel/internal/icons"
	"github.com/chess10kp/hexpanel/internal/listmodel"
	"github.com/chess10kp/hexpanel/internal/logging"
	"github.com/chess10kp/hexpanel/internal/loop"
	"github.com/chess10kp/hexpanel/internal/proc"
	"github.com/chess10kp/hexpanel/internal/tiles"
	"github.com/chess10kp/hexpanel/internal/windows"
)

// Options replaces the system-facing collaborators, mostly for tests.
type Options struct {
	Theme   icons.ThemeLoader
	Table   proc.ProcessTable
	Starter proc.Starter
	Helper  windows.Helper
	Source  windows.Source
	// MonitorInterval enables the loop responsiveness check when positive.
	MonitorInterval time.Duration
}

// App is the panel daemon.
type App struct {
	config  *config.Config
	opts    Options
	logger  *zap.Logger
	loop    *loop.Loop
	icons   *icons.Resolver
	catalog *catalog.Catalog
	tiles   *tiles.Store
	menu    *apps.Directory
	history *apps.History
	windows *windows.Tracker
	hub     *Hub
	handler *Handler
	ipc     *IPCServer
	unwatch []func()
}

func NewApp(cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	logger = logging.OrNop(logger)

	if opts.Table == nil {
		opts.Table = proc.SystemTable{}
	}
	if opts.Starter == nil {
		opts.Starter = proc.DetachedStarter{Logger: logger}
	}
	if opts.Helper == nil {
		opts.Helper = windows.ExecHelper{Name: cfg.Windows.Helper, Starter: opts.Starter}
	}
	if opts.Source == nil {
		opts.Source = windows.INISource{Path: cfg.Windows.SnapshotPath}
	}

	var theme icons.ThemeLoader
	if cfg.Icons.UseTheme {
		theme = opts.Theme
	}
	resolver, err := icons.New(icons.Options{
		ThemeDirs: cfg.Icons.ThemeDirs,
		CacheDir:  cfg.CacheDir,
		ThemeSize: cfg.Icons.ThemeSize,
		MemoSize:  cfg.Icons.MemoCacheSize,
		Theme:     theme,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	history := apps.NewHistory(cfg.Menu.HistoryPath, logger)
	if cfg.Menu.HistoryPath == "" {
		history = nil
	}

	l := loop.New(logger)

	tracker, err := windows.New(windows.Options{
		Source:        opts.Source,
		Helper:        opts.Helper,
		Icons:         resolver,
		Scheduler:     l,
		AppDirs:       cfg.Windows.ApplicationDirs,
		Interval:      cfg.Windows.Interval(),
		Warmup:        cfg.Windows.Warmup(),
		FollowUp:      cfg.Windows.FollowUp(),
		IconCacheSize: cfg.Windows.IconCacheSize,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		config: cfg,
		opts:   opts,
		logger: logger.Named("app"),
		loop:   l,
		icons:  resolver,
		catalog: catalog.New(catalog.Options{
			Path:    cfg.Catalog.Path,
			Icons:   resolver,
			Starter: opts.Starter,
			Logger:  logger,
		}),
		tiles: tiles.New(tiles.Options{
			Path:        cfg.Tiles.Path,
			DefaultSize: cfg.Tiles.DefaultSize,
			Starter:     opts.Starter,
			Logger:      logger,
		}),
		menu: apps.NewDirectory(apps.Options{
			Dirs:    cfg.Menu.ApplicationDirs,
			Workers: cfg.Menu.ParseWorkers,
			Icons:   resolver,
			Starter: opts.Starter,
			History: history,
			Logger:  logger,
		}),
		history: history,
		windows: tracker,
		hub:     NewHub(64, logger),
	}

	a.handler = &Handler{
		Catalog:    a.catalog,
		Selection:  listmodel.NewCursor(),
		Tiles:      a.tiles,
		Menu:       a.menu,
		Windows:    a.windows,
		Icons:      a.icons,
		Toggles:    a.buildToggles(logger),
		OSD:        proc.OSD{Client: cfg.OSD.Client, Starter: opts.Starter},
		MaxResults: cfg.Menu.MaxResults,
		Logger:     logger.Named("handler"),
	}
	a.ipc = NewIPCServer(cfg.SocketPath, a.loop, a.handler, a.hub, logger)
	return a, nil
}

func (a *App) buildToggles(logger *zap.Logger) map[string]proc.Toggle {
	toggles := make(map[string]proc.Toggle, len(a.config.Toggles))
	for _, t := range a.config.Toggles {
		toggles[t.Name] = proc.Toggle{
			Name:     t.Name,
			Fallback: t.Fallback,
			Table:    a.opts.Table,
			Starter:  a.opts.Starter,
			Logger:   logger,
		}
	}
	return toggles
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives. The event
// loop runs on the calling goroutine.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("hexpanel starting")
	a.loop.Post(a.initialize)

	if err := a.ipc.Start(); err != nil {
		a.logger.Error("failed to start IPC server", zap.Error(err))
	}

	if a.config.Windows.WatchSnapshot {
		go func() {
			if err := a.windows.Watch(ctx, a.config.Windows.SnapshotPath, 50*time.Millisecond); err != nil {
				a.logger.Warn("snapshot watching disabled", zap.Error(err))
			}
		}()
	}
	if a.opts.MonitorInterval > 0 {
		go a.monitorLoop(ctx, a.opts.MonitorInterval)
	}

	err := a.loop.Run(ctx)
	a.shutdown()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// initialize runs on the loop.
func (a *App) initialize() {
	a.catalog.Load()
	a.tiles.Load()
	if a.history != nil {
		if err := a.history.Load(); err != nil {
			a.logger.Warn("ignoring launch history", zap.Error(err))
		}
	}
	a.menu.Scan()

	a.unwatch = append(a.unwatch,
		a.hub.Watch("apps", a.catalog),
		a.catalog.Subscribe(a.handler.Selection),
		a.hub.Watch("tiles", a.tiles),
		a.hub.Watch("menu", a.menu),
		a.hub.Watch("windows", a.windows),
	)
	a.windows.Start()
	a.logger.Info("initialization complete",
		zap.Int("pinned", a.catalog.Len()),
		zap.Int("tiles", a.tiles.Len()),
		zap.Int("menu", a.menu.Len()))
}

func (a *App) shutdown() {
	a.logger.Info("shutting down")
	a.windows.Stop()
	for _, unwatch := range a.unwatch {
		unwatch()
	}
	a.unwatch = nil
	a.ipc.Stop()
	_ = a.logger.Sync()
}

// Quit stops Run.
func (a *App) Quit() {
	a.loop.Stop()
}

// monitorLoop warns when a posted probe takes too long to run, which means
// some task is blocking the loop.
func (a *App) monitorLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		a.logger.Debug("runtime stats",
			zap.Int("goroutines", runtime.NumGoroutine()),
			zap.Uint64("alloc_mb", m.Alloc/1024/1024))

		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := a.loop.Call(probeCtx, func() {})
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("event loop appears blocked (probe not run in 2s)")
		}
	}
}
