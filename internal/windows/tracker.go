// Package windows mirrors the compositor's window list from snapshots
// written by an external helper.
package windows

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/desktop"
	"github.com/chess10kp/hexpanel/internal/listmodel"
	"github.com/chess10kp/hexpanel/internal/logging"
	"github.com/chess10kp/hexpanel/internal/loop"
)

// Entry is an open window. ID is the helper's opaque window id.
type Entry struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	AppID   string `json:"app_id"`
	Focused bool   `json:"focused"`
	Icon    string `json:"icon"`
}

type IconResolver interface {
	ResolveThemed(name string) string
}

type Options struct {
	Source    Source
	Helper    Helper
	Icons     IconResolver
	Scheduler loop.Scheduler
	// AppDirs are searched for <app_id>.desktop to find icon names.
	AppDirs       []string
	Interval      time.Duration
	Warmup        time.Duration
	FollowUp      time.Duration
	IconCacheSize int
	Logger        *zap.Logger
}

// Tracker must only be used from the event loop its Scheduler posts to.
type Tracker struct {
	opts       Options
	entries    []Entry
	refreshing bool
	timers     []loop.Timer
	iconCache  *lru.Cache[string, string]
	notifier   listmodel.Notifier
	logger     *zap.Logger
}

func New(opts Options) (*Tracker, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("window tracker needs a snapshot source")
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("window tracker needs a scheduler")
	}
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Warmup <= 0 {
		opts.Warmup = 300 * time.Millisecond
	}
	if opts.FollowUp <= 0 {
		opts.FollowUp = 120 * time.Millisecond
	}
	if opts.IconCacheSize <= 0 {
		opts.IconCacheSize = 256
	}

	cache, err := lru.New[string, string](opts.IconCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create window icon cache: %w", err)
	}

	return &Tracker{
		opts:      opts,
		iconCache: cache,
		logger:    logging.OrNop(opts.Logger).Named("windows"),
	}, nil
}

func (t *Tracker) Subscribe(o listmodel.Observer) func() {
	return t.notifier.Subscribe(o)
}

func (t *Tracker) Len() int { return len(t.entries) }

func (t *Tracker) At(i int) (Entry, bool) {
	if i < 0 || i >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[i], true
}

func (t *Tracker) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Start refreshes now, once more after the warmup delay, and then on every
// interval until Stop.
func (t *Tracker) Start() {
	t.Stop()
	t.Refresh()
	t.timers = append(t.timers,
		t.opts.Scheduler.After(t.opts.Warmup, t.Refresh),
		t.opts.Scheduler.Every(t.opts.Interval, t.Refresh),
	)
	t.logger.Info("window tracking started", zap.Duration("interval", t.opts.Interval))
}

func (t *Tracker) Stop() {
	for _, timer := range t.timers {
		timer.Stop()
	}
	t.timers = nil
}

// Refresh re-reads the snapshot. When the window ids are unchanged the rows
// are updated in place; any other difference resets the list.
func (t *Tracker) Refresh() {
	if t.refreshing {
		t.logger.Debug("refresh already in progress, skipping")
		return
	}
	t.refreshing = true
	defer func() { t.refreshing = false }()

	records, ok, err := t.opts.Source.Read()
	if err != nil {
		t.logger.Error("failed to read window snapshot", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	next := make([]Entry, len(records))
	for i, r := range records {
		next[i] = Entry{
			ID:      r.ID,
			Title:   r.Title,
			AppID:   r.AppID,
			Focused: r.Focused,
			Icon:    t.iconFor(r.AppID),
		}
	}

	if sameIDs(t.entries, next) {
		t.entries = next
		if n := len(next); n > 0 {
			t.notifier.Changed(listmodel.Range{First: 0, Last: n - 1})
		}
		return
	}

	t.entries = next
	t.notifier.Reset()
}

func sameIDs(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func (t *Tracker) iconFor(appID string) string {
	if icon, ok := t.iconCache.Get(appID); ok {
		return icon
	}

	var icon string
	name := desktop.IconForAppID(appID, t.opts.AppDirs)
	if t.opts.Icons != nil {
		icon = t.opts.Icons.ResolveThemed(name)
	}
	t.iconCache.Add(appID, icon)
	return icon
}

// PurgeIcons forgets cached app id icons, e.g. after new apps are installed.
func (t *Tracker) PurgeIcons() {
	t.iconCache.Purge()
}

// Activate focuses the window at i.
func (t *Tracker) Activate(i int) error {
	return t.command(i, "--activate")
}

// Close asks the window at i to close.
func (t *Tracker) Close(i int) error {
	return t.command(i, "--close")
}

func (t *Tracker) command(i int, flag string) error {
	e, ok := t.At(i)
	if !ok {
		t.logger.Warn("window index out of range", zap.String("action", flag), zap.Int("index", i), zap.Int("len", len(t.entries)))
		return fmt.Errorf("no window at index %d", i)
	}
	if t.opts.Helper == nil {
		t.logger.Warn("no window helper configured", zap.String("action", flag))
		return ErrHelperMissing
	}

	if err := t.opts.Helper.Start(flag, e.ID); err != nil {
		t.logger.Warn("window helper failed", zap.String("action", flag), zap.String("id", e.ID), zap.Error(err))
		return err
	}

	t.opts.Scheduler.After(t.opts.FollowUp, t.Refresh)
	return nil
}
