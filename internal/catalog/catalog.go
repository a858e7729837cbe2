// Package catalog holds the apps pinned to the taskbar.
package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/desktop"
	"github.com/chess10kp/hexpanel/internal/jsonstore"
	"github.com/chess10kp/hexpanel/internal/listmodel"
	"github.com/chess10kp/hexpanel/internal/logging"
	"github.com/chess10kp/hexpanel/internal/proc"
)

// Entry is a pinned app. Entries have no identity beyond their position.
type Entry struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Exec string `json:"exec"`
}

func (e Entry) empty() bool {
	return e.Name == "" && e.Exec == ""
}

// IconResolver maps icon names to URIs.
type IconResolver interface {
	Resolve(name string) string
}

type Options struct {
	Path    string
	Icons   IconResolver
	Starter proc.Starter
	Logger  *zap.Logger
}

// Catalog is not safe for concurrent use; callers confine it to the event
// loop.
type Catalog struct {
	path     string
	entries  []Entry
	icons    IconResolver
	starter  proc.Starter
	notifier listmodel.Notifier
	logger   *zap.Logger
}

func New(opts Options) *Catalog {
	return &Catalog{
		path:    opts.Path,
		icons:   opts.Icons,
		starter: opts.Starter,
		logger:  logging.OrNop(opts.Logger).Named("catalog"),
	}
}

func (c *Catalog) Subscribe(o listmodel.Observer) func() {
	return c.notifier.Subscribe(o)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the entry at i and whether i was in range.
func (c *Catalog) At(i int) (Entry, bool) {
	if i < 0 || i >= len(c.entries) {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of the current entries.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Load replaces the entries with the persisted file. A missing file means no
// entries; an unreadable or malformed one leaves the current entries alone.
func (c *Catalog) Load() {
	records, exists, err := jsonstore.ReadArray(c.path)
	if err != nil {
		c.logger.Error("failed to load catalog, keeping current entries", zap.String("path", c.path), zap.Error(err))
		return
	}
	if !exists {
		c.logger.Debug("no catalog file", zap.String("path", c.path))
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{
			Name: r.String("name"),
			Icon: r.String("icon"),
			Exec: r.String("exec"),
		})
	}

	c.entries = entries
	c.logger.Info("catalog loaded", zap.Int("entries", len(entries)))
	c.notifier.Reset()
}

// Persist writes every non-empty entry to disk.
func (c *Catalog) Persist() error {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if !e.empty() {
			out = append(out, e)
		}
	}

	data, err := jsonstore.Marshal(out, "")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := jsonstore.WriteFile(c.path, data); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

func (c *Catalog) save() {
	if err := c.Persist(); err != nil {
		c.logger.Error("persist failed", zap.Error(err))
	}
}

// Add appends e.
func (c *Catalog) Add(e Entry) {
	c.entries = append(c.entries, e)
	c.save()

	n := len(c.entries) - 1
	c.notifier.Inserted(listmodel.Row(n))
}

// AddDesktopFile pins the app described by a desktop file. It reports whether
// an entry was added.
func (c *Catalog) AddDesktopFile(path string) bool {
	d, err := desktop.Parse(path)
	if err != nil {
		c.logger.Warn("cannot add desktop file", zap.String("path", path), zap.Error(err))
		return false
	}

	e := Entry{Name: d.Name, Exec: d.Exec, Icon: d.Icon}
	if e.empty() {
		c.logger.Warn("desktop file has no name or exec", zap.String("path", path))
		return false
	}
	if c.icons != nil {
		e.Icon = c.icons.Resolve(d.Icon)
	}

	c.Add(e)
	return true
}

// RemoveAt deletes the entry at i. Out of range indices are ignored.
func (c *Catalog) RemoveAt(i int) bool {
	if i < 0 || i >= len(c.entries) {
		c.logger.Warn("remove: index out of range", zap.Int("index", i), zap.Int("len", len(c.entries)))
		return false
	}

	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.save()
	c.notifier.Removed(listmodel.Row(i))
	return true
}

// MoveTo moves the entry at from so that it ends up at index to.
func (c *Catalog) MoveTo(from, to int) bool {
	n := len(c.entries)
	if from < 0 || from >= n || to < 0 || to >= n {
		c.logger.Warn("move: index out of range", zap.Int("from", from), zap.Int("to", to), zap.Int("len", n))
		return false
	}
	if from == to {
		return false
	}

	e := c.entries[from]
	c.entries = append(c.entries[:from], c.entries[from+1:]...)
	c.entries = append(c.entries[:to], append([]Entry{e}, c.entries[to:]...)...)
	c.save()
	c.notifier.Moved(from, to)
	return true
}

// Launch starts the entry's command detached.
func (c *Catalog) Launch(i int) error {
	e, ok := c.At(i)
	if !ok {
		c.logger.Warn("launch: index out of range", zap.Int("index", i))
		return fmt.Errorf("no entry at index %d", i)
	}
	if c.starter == nil {
		return fmt.Errorf("catalog has no process starter")
	}

	if err := proc.LaunchCommand(c.starter, e.Exec); err != nil {
		c.logger.Error("launch failed", zap.String("name", e.Name), zap.Error(err))
		return err
	}
	c.logger.Info("launched", zap.String("name", e.Name))
	return nil
}
