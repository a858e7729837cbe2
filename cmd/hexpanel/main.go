package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/gotk3/gotk3/gtk"
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/config"
	"github.com/chess10kp/hexpanel/internal/core"
	"github.com/chess10kp/hexpanel/internal/icons/gtktheme"
	"github.com/chess10kp/hexpanel/internal/logging"
)

func init() {
	// GTK calls must stay on the thread that called gtk.Init, and the event
	// loop runs on the main goroutine.
	runtime.LockOSThread()
}

func ensureSingleInstance(pidFile string) error {
	if data, err := os.ReadFile(pidFile); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid != os.Getpid() {
			process, err := os.FindProcess(pid)
			if err == nil {
				// Replace a still-running instance
				if err := process.Signal(syscall.Signal(0)); err == nil {
					process.Signal(syscall.SIGTERM)
				}
			}
		}
	}
	return os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	noTheme := flag.Bool("no-theme", false, "do not load icons from the GTK icon theme")
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexpanel: %v\n", err)
		os.Exit(1)
	}

	path := config.DefaultPath
	if env.Config != "" {
		path = env.Config
	}
	if *configPath != "" {
		path = *configPath
	}

	cfg, err := config.LoadAndValidateConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexpanel: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(env)

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexpanel: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := ensureSingleInstance(cfg.PidFile); err != nil {
		logger.Fatal("failed to ensure single instance", zap.Error(err))
	}
	defer os.Remove(cfg.PidFile)

	var opts core.Options
	if cfg.Icons.UseTheme && !*noTheme {
		gtk.Init(nil)
		theme, err := gtktheme.New(logger)
		if err != nil {
			logger.Warn("GTK icon theme unavailable", zap.Error(err))
		} else {
			opts.Theme = theme
		}
	}

	app, err := core.NewApp(cfg, logger, opts)
	if err != nil {
		logger.Fatal("failed to create application", zap.Error(err))
	}

	if err := app.Run(context.Background()); err != nil {
		logger.Error("application error", zap.Error(err))
		os.Remove(cfg.PidFile)
		os.Exit(1)
	}
}
