// Package tiles stores the launcher's free-form tile grid.
package tiles

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/desktop"
	"github.com/chess10kp/hexpanel/internal/jsonstore"
	"github.com/chess10kp/hexpanel/internal/listmodel"
	"github.com/chess10kp/hexpanel/internal/logging"
	"github.com/chess10kp/hexpanel/internal/proc"
)

const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Tile is one launcher tile. Size is free-form; the view knows small,
// medium and large.
type Tile struct {
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	DesktopFile string  `json:"desktopFile"`
	Command     string  `json:"command"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        string  `json:"size"`
}

func (t Tile) empty() bool {
	return t.Name == "" && t.Command == "" && t.DesktopFile == ""
}

type Options struct {
	Path        string
	DefaultSize string
	Starter     proc.Starter
	Logger      *zap.Logger
}

// Store is confined to the event loop.
type Store struct {
	path        string
	defaultSize string
	tiles       []Tile
	starter     proc.Starter
	notifier    listmodel.Notifier
	logger      *zap.Logger
}

func New(opts Options) *Store {
	size := opts.DefaultSize
	if size == "" {
		size = SizeMedium
	}
	return &Store{
		path:        opts.Path,
		defaultSize: size,
		starter:     opts.Starter,
		logger:      logging.OrNop(opts.Logger).Named("tiles"),
	}
}

func (s *Store) Subscribe(o listmodel.Observer) func() {
	return s.notifier.Subscribe(o)
}

func (s *Store) Len() int { return len(s.tiles) }

func (s *Store) At(i int) (Tile, bool) {
	if !s.inRange(i) {
		return Tile{}, false
	}
	return s.tiles[i], true
}

func (s *Store) Tiles() []Tile {
	return append([]Tile(nil), s.tiles...)
}

func (s *Store) inRange(i int) bool {
	return i >= 0 && i < len(s.tiles)
}

func (s *Store) Load() {
	records, exists, err := jsonstore.ReadArray(s.path)
	if err != nil {
		s.logger.Error("failed to load tiles, keeping current tiles", zap.String("path", s.path), zap.Error(err))
		return
	}
	if !exists {
		s.logger.Debug("no tiles file", zap.String("path", s.path))
	}

	tiles := make([]Tile, 0, len(records))
	for _, r := range records {
		t := Tile{
			Name:        r.String("name"),
			Icon:        r.String("icon"),
			DesktopFile: r.String("desktopFile"),
			Command:     r.String("command"),
			X:           r.Float("x"),
			Y:           r.Float("y"),
			Size:        r.String("size"),
		}
		if t.Size == "" {
			t.Size = s.defaultSize
		}
		tiles = append(tiles, t)
	}

	s.tiles = tiles
	s.logger.Info("tiles loaded", zap.Int("tiles", len(tiles)))
	s.notifier.Reset()
}

func (s *Store) Persist() error {
	out := make([]Tile, 0, len(s.tiles))
	for _, t := range s.tiles {
		if !t.empty() {
			out = append(out, t)
		}
	}

	data, err := jsonstore.Marshal(out, "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal tiles: %w", err)
	}
	if err := jsonstore.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("failed to save tiles: %w", err)
	}
	return nil
}

func (s *Store) save() {
	if err := s.Persist(); err != nil {
		s.logger.Error("persist failed", zap.Error(err))
	}
}

// AddFromDesktopFile places a tile for the desktop file at (x, y). The tile
// keeps the raw icon name and is named after the file when the entry has no
// Name.
func (s *Store) AddFromDesktopFile(path string, x, y float64) bool {
	d, err := desktop.Parse(path)
	if err != nil {
		s.logger.Warn("cannot add tile", zap.String("path", path), zap.Error(err))
		return false
	}

	name := d.Name
	if name == "" {
		name = baseName(path)
	}

	s.tiles = append(s.tiles, Tile{
		Name:        name,
		Icon:        d.Icon,
		DesktopFile: path,
		Command:     d.Exec,
		X:           x,
		Y:           y,
		Size:        s.defaultSize,
	})
	s.save()

	n := len(s.tiles) - 1
	s.notifier.Inserted(listmodel.Row(n))
	return true
}

// baseName is the file name up to its first dot, so org.gnome.Foo.desktop
// becomes "org".
func baseName(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

func (s *Store) UpdatePosition(i int, x, y float64) bool {
	if !s.inRange(i) {
		s.logger.Warn("move: index out of range", zap.Int("index", i), zap.Int("len", len(s.tiles)))
		return false
	}

	s.tiles[i].X = x
	s.tiles[i].Y = y
	s.save()
	s.notifier.Changed(listmodel.Row(i), "x", "y")
	return true
}

func (s *Store) Resize(i int, size string) bool {
	if !s.inRange(i) {
		s.logger.Warn("resize: index out of range", zap.Int("index", i), zap.Int("len", len(s.tiles)))
		return false
	}
	if size == "" {
		s.logger.Warn("resize: empty size", zap.Int("index", i))
		return false
	}

	s.tiles[i].Size = size
	s.save()
	s.notifier.Changed(listmodel.Row(i), "size")
	return true
}

func (s *Store) RemoveAt(i int) bool {
	if !s.inRange(i) {
		s.logger.Warn("remove: index out of range", zap.Int("index", i), zap.Int("len", len(s.tiles)))
		return false
	}

	s.tiles = append(s.tiles[:i], s.tiles[i+1:]...)
	s.save()
	s.notifier.Removed(listmodel.Row(i))
	return true
}

// Launch runs the tile's command, or the Exec of its desktop file when the
// tile has no command of its own.
func (s *Store) Launch(i int) error {
	t, ok := s.At(i)
	if !ok {
		s.logger.Warn("launch: index out of range", zap.Int("index", i))
		return fmt.Errorf("no tile at index %d", i)
	}
	if s.starter == nil {
		return fmt.Errorf("tile store has no process starter")
	}

	cmdline := t.Command
	if strings.TrimSpace(cmdline) == "" && t.DesktopFile != "" {
		d, err := desktop.Parse(t.DesktopFile)
		if err != nil {
			return fmt.Errorf("tile %q: %w", t.Name, err)
		}
		cmdline = d.Exec
	}

	if err := proc.LaunchCommand(s.starter, cmdline); err != nil {
		s.logger.Error("launch failed", zap.String("name", t.Name), zap.Error(err))
		return err
	}
	s.logger.Info("launched", zap.String("name", t.Name))
	return nil
}
