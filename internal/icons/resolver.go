// Package icons turns icon names from desktop entries into image URIs.
package icons

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/logging"
)

//go:embed placeholder.svg
var placeholderSVG []byte

// ThemeLoader rasterizes a named icon from the desktop icon theme.
type ThemeLoader interface {
	// SavePNG writes the icon called name at size pixels to path. It returns
	// false when the theme has no icon by that name.
	SavePNG(name string, size int, path string) (bool, error)
}

type Options struct {
	ThemeDirs []string
	CacheDir  string
	ThemeSize int
	MemoSize  int
	Theme     ThemeLoader
	Logger    *zap.Logger
}

// Resolver is safe for concurrent use.
type Resolver struct {
	themeDirs []string
	iconDir   string
	size      int
	theme     ThemeLoader
	memo      *lru.Cache[string, string]
	logger    *zap.Logger

	placeholderOnce sync.Once
	placeholder     string
}

func New(opts Options) (*Resolver, error) {
	memoSize := opts.MemoSize
	if memoSize <= 0 {
		memoSize = 500
	}
	memo, err := lru.New[string, string](memoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon memo cache: %w", err)
	}

	size := opts.ThemeSize
	if size <= 0 {
		size = 64
	}

	return &Resolver{
		themeDirs: append([]string(nil), opts.ThemeDirs...),
		iconDir:   filepath.Join(opts.CacheDir, "icons"),
		size:      size,
		theme:     opts.Theme,
		memo:      memo,
		logger:    logging.OrNop(opts.Logger).Named("icons"),
	}, nil
}

// Resolve returns a URI for name from an absolute path or the theme
// directories, falling back to the placeholder. It never returns "".
func (r *Resolver) Resolve(name string) string {
	return r.resolve("plain", name, false)
}

// ResolveThemed is Resolve with an extra lookup in the icon theme, whose
// result is rasterized into the cache directory.
func (r *Resolver) ResolveThemed(name string) string {
	return r.resolve("themed", name, r.theme != nil)
}

// Purge drops every memoized result.
func (r *Resolver) Purge() {
	r.memo.Purge()
}

func (r *Resolver) resolve(mode, name string, themed bool) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return r.Placeholder()
	}

	key := mode + ":" + name
	if uri, ok := r.memo.Get(key); ok {
		return uri
	}

	uri := r.lookup(name, themed)
	r.memo.Add(key, uri)
	return uri
}

func (r *Resolver) lookup(name string, themed bool) string {
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return fileURI(name)
		}
	}

	for _, dir := range r.themeDirs {
		for _, ext := range []string{".png", ".svg"} {
			path := filepath.Join(dir, name+ext)
			if fileExists(path) {
				return fileURI(path)
			}
		}
	}

	if themed {
		if path, ok := r.rasterize(name); ok {
			return fileURI(path)
		}
	}

	r.logger.Debug("icon not found, using placeholder", zap.String("name", name))
	return r.Placeholder()
}

func (r *Resolver) rasterize(name string) (string, bool) {
	path := r.CachePath(name)
	if fileExists(path) {
		return path, true
	}

	if err := os.MkdirAll(r.iconDir, 0755); err != nil {
		r.logger.Error("failed to create icon cache dir", zap.Error(err))
		return "", false
	}

	ok, err := r.theme.SavePNG(name, r.size, path)
	if err != nil {
		r.logger.Warn("failed to rasterize theme icon", zap.String("name", name), zap.Error(err))
		return "", false
	}
	return path, ok
}

// CachePath is where the rasterized theme icon for name is stored.
func (r *Resolver) CachePath(name string) string {
	safe := strings.ReplaceAll(name, string(filepath.Separator), "_")
	return filepath.Join(r.iconDir, fmt.Sprintf("%s_%d.png", safe, r.size))
}

// Placeholder returns the URI of the generic application icon.
func (r *Resolver) Placeholder() string {
	r.placeholderOnce.Do(func() {
		path := filepath.Join(r.iconDir, "placeholder.svg")
		if err := writePlaceholder(path); err != nil {
			r.logger.Warn("failed to write placeholder icon, using data uri", zap.Error(err))
			r.placeholder = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(placeholderSVG)
			return
		}
		r.placeholder = fileURI(path)
	})
	return r.placeholder
}

func writePlaceholder(path string) error {
	if fileExists(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, placeholderSVG, 0644); err != nil {
		return err
	}
	return os.Rename(tempFile, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func fileURI(path string) string {
	return "file://" + path
}
