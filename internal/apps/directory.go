// Package apps builds the launcher menu's alphabetical application list
// from the desktop entries installed on the system.
package apps

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/desktop"
	"github.com/chess10kp/hexpanel/internal/listmodel"
	"github.com/chess10kp/hexpanel/internal/logging"
	"github.com/chess10kp/hexpanel/internal/proc"
)

// App is one menu row.
type App struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Icon        string `json:"icon"`
	DesktopFile string `json:"desktopFile"`
}

type IconResolver interface {
	Resolve(name string) string
}

type Options struct {
	Dirs    []string
	Workers int
	Icons   IconResolver
	Starter proc.Starter
	History *History
	Logger  *zap.Logger
}

// Directory is confined to the event loop.
type Directory struct {
	dirs     []string
	workers  int
	icons    IconResolver
	starter  proc.Starter
	history  *History
	apps     []App
	notifier listmodel.Notifier
	logger   *zap.Logger
}

func NewDirectory(opts Options) *Directory {
	workers := opts.Workers
	if workers <= 0 {
		workers = 10
	}
	return &Directory{
		dirs:    append([]string(nil), opts.Dirs...),
		workers: workers,
		icons:   opts.Icons,
		starter: opts.Starter,
		history: opts.History,
		logger:  logging.OrNop(opts.Logger).Named("apps"),
	}
}

func (d *Directory) Subscribe(o listmodel.Observer) func() {
	return d.notifier.Subscribe(o)
}

func (d *Directory) Len() int { return len(d.apps) }

func (d *Directory) At(i int) (App, bool) {
	if i < 0 || i >= len(d.apps) {
		return App{}, false
	}
	return d.apps[i], true
}

func (d *Directory) Apps() []App {
	return append([]App(nil), d.apps...)
}

// Letter is the upper-cased first letter of the name at i.
func (d *Directory) Letter(i int) string {
	app, ok := d.At(i)
	if !ok {
		return ""
	}
	return letterOf(app.Name)
}

// HeaderVisible reports whether row i starts a new letter group.
func (d *Directory) HeaderVisible(i int) bool {
	if _, ok := d.At(i); !ok {
		return false
	}
	if i == 0 {
		return true
	}
	return d.Letter(i) != d.Letter(i-1)
}

func letterOf(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// Scan rereads every application directory and replaces the list.
func (d *Directory) Scan() {
	start := time.Now()

	files := d.collect()
	d.logger.Debug("found desktop files", zap.Int("files", len(files)))

	var wg sync.WaitGroup
	results := make(chan App, 100)
	semaphore := make(chan struct{}, d.workers)

	for _, path := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if app, ok := d.parse(path); ok {
				results <- app
			}
		}(path)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var apps []App
	for app := range results {
		apps = append(apps, app)
	}

	sort.Slice(apps, func(i, j int) bool {
		a, b := strings.ToLower(apps[i].Name), strings.ToLower(apps[j].Name)
		if a != b {
			return a < b
		}
		return apps[i].DesktopFile < apps[j].DesktopFile
	})

	d.apps = apps
	d.logger.Info("applications loaded", zap.Int("apps", len(apps)), zap.Duration("took", time.Since(start)))
	d.notifier.Reset()
}

// collect lists desktop files by id. A file id found in an earlier
// directory hides the same id in later ones.
func (d *Directory) collect() []string {
	seen := make(map[string]bool)
	var files []string

	for _, dir := range d.dirs {
		err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return filepath.SkipDir
				}
				return nil
			}
			if entry.IsDir() || !strings.HasSuffix(path, ".desktop") {
				return nil
			}

			id := fileID(dir, path)
			if seen[id] {
				return nil
			}
			seen[id] = true
			files = append(files, path)
			return nil
		})
		if err != nil {
			d.logger.Debug("skipping application dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	return files
}

func fileID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
}

func (d *Directory) parse(path string) (App, bool) {
	entry, err := desktop.Parse(path)
	if err != nil {
		d.logger.Debug("skipping unreadable desktop file", zap.String("path", path), zap.Error(err))
		return App{}, false
	}
	if !entry.Launchable() {
		d.logger.Debug("skipping hidden or incomplete entry", zap.String("path", path))
		return App{}, false
	}

	icon := entry.Icon
	if d.icons != nil {
		icon = d.icons.Resolve(entry.Icon)
	}
	return App{
		Name:        entry.Name,
		Command:     entry.Exec,
		Icon:        icon,
		DesktopFile: path,
	}, true
}

// Launch starts the app at i.
func (d *Directory) Launch(i int) error {
	app, ok := d.At(i)
	if !ok {
		d.logger.Warn("launch: index out of range", zap.Int("index", i))
		return fmt.Errorf("no app at index %d", i)
	}
	if d.starter == nil {
		return fmt.Errorf("directory has no process starter")
	}
	if err := proc.LaunchCommand(d.starter, app.Command); err != nil {
		d.logger.Error("launch failed", zap.String("name", app.Name), zap.Error(err))
		return err
	}
	if d.history != nil {
		d.history.Record(app.Name)
	}
	d.logger.Info("launched", zap.String("name", app.Name))
	return nil
}
