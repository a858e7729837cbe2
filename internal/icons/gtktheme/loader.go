// Package gtktheme looks icons up in the GTK icon theme.
//
// gtk.Init must have been called before New.
package gtktheme

import (
	"fmt"
	"os"
	"sync"

	"github.com/gotk3/gotk3/gtk"
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/logging"
)

// Loader implements icons.ThemeLoader on top of the default GTK icon theme.
type Loader struct {
	theme  *gtk.IconTheme
	mu     sync.Mutex
	logger *zap.Logger
}

func New(logger *zap.Logger) (*Loader, error) {
	theme, err := gtk.IconThemeGetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default icon theme: %w", err)
	}
	return &Loader{theme: theme, logger: logging.OrNop(logger).Named("gtktheme")}, nil
}

func (l *Loader) SavePNG(name string, size int, path string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.theme.HasIcon(name) {
		l.logger.Debug("icon not in theme", zap.String("name", name))
		return false, nil
	}

	pixbuf, err := l.theme.LoadIcon(name, size, gtk.ICON_LOOKUP_USE_BUILTIN|gtk.ICON_LOOKUP_FORCE_SIZE)
	if err != nil {
		return false, fmt.Errorf("failed to load icon %q: %w", name, err)
	}
	if pixbuf == nil {
		return false, fmt.Errorf("theme returned no pixbuf for %q", name)
	}

	tempFile := path + ".tmp"
	if err := pixbuf.SavePNG(tempFile, 9); err != nil {
		return false, fmt.Errorf("failed to save icon %q: %w", name, err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return false, fmt.Errorf("failed to move icon into cache: %w", err)
	}
	return true, nil
}
