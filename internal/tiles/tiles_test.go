package tiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chess10kp/hexpanel/internal/listmodel"
)

type fakeStarter struct {
	programs []string
}

func (f *fakeStarter) Start(program string, args []string) error {
	f.programs = append(f.programs, program)
	return nil
}

func writeDesktop(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newStore(t *testing.T) (*Store, *listmodel.Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hexlauncher", "launcher_tiles.json")
	s := New(Options{Path: path, Starter: &fakeStarter{}})
	rec := &listmodel.Recorder{}
	s.Subscribe(rec)
	return s, rec, path
}

func TestAddFromDesktopFile(t *testing.T) {
	s, rec, _ := newStore(t)
	dir := t.TempDir()
	path := writeDesktop(t, dir, "foo.desktop", "[Desktop Entry]\nName=Foo\nExec=foo %U\nIcon=foo-icon\n")

	require.True(t, s.AddFromDesktopFile(path, 10, 20))

	assert.Equal(t, []Tile{{
		Name: "Foo", Icon: "foo-icon", DesktopFile: path, Command: "foo ",
		X: 10, Y: 20, Size: SizeMedium,
	}}, s.Tiles())
	assert.Equal(t, []listmodel.Event{{Kind: listmodel.KindInserted, Range: listmodel.Row(0)}}, rec.Events)
}

func TestAddFromDesktopFileNameDefault(t *testing.T) {
	s, _, _ := newStore(t)
	path := writeDesktop(t, t.TempDir(), "org.example.Tool.desktop", "[Desktop Entry]\nExec=tool\n")

	require.True(t, s.AddFromDesktopFile(path, 0, 0))
	tile, ok := s.At(0)
	require.True(t, ok)
	assert.Equal(t, "org", tile.Name)
}

func TestAddFromUnreadableFileIsNoop(t *testing.T) {
	s, rec, path := newStore(t)
	assert.False(t, s.AddFromDesktopFile(filepath.Join(t.TempDir(), "gone.desktop"), 1, 1))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, rec.Events)
	assert.NoFileExists(t, path)
}

func TestUpdatePositionAndResize(t *testing.T) {
	s, rec, _ := newStore(t)
	path := writeDesktop(t, t.TempDir(), "a.desktop", "[Desktop Entry]\nName=A\nExec=a\n")
	require.True(t, s.AddFromDesktopFile(path, 0, 0))
	rec.Clear()

	require.True(t, s.UpdatePosition(0, 120, 80))
	require.True(t, s.Resize(0, SizeLarge))
	assert.False(t, s.Resize(0, ""))
	assert.False(t, s.UpdatePosition(1, 0, 0))
	assert.False(t, s.Resize(-1, SizeSmall))

	assert.Equal(t, []listmodel.Event{
		{Kind: listmodel.KindChanged, Range: listmodel.Row(0), Fields: []string{"x", "y"}},
		{Kind: listmodel.KindChanged, Range: listmodel.Row(0), Fields: []string{"size"}},
	}, rec.Events)

	tile, _ := s.At(0)
	assert.Equal(t, 120.0, tile.X)
	assert.Equal(t, 80.0, tile.Y)
	assert.Equal(t, SizeLarge, tile.Size)
}

func TestRemoveAt(t *testing.T) {
	s, rec, _ := newStore(t)
	dir := t.TempDir()
	require.True(t, s.AddFromDesktopFile(writeDesktop(t, dir, "a.desktop", "[Desktop Entry]\nName=A\nExec=a\n"), 0, 0))
	require.True(t, s.AddFromDesktopFile(writeDesktop(t, dir, "b.desktop", "[Desktop Entry]\nName=B\nExec=b\n"), 0, 0))
	rec.Clear()

	assert.False(t, s.RemoveAt(5))
	require.True(t, s.RemoveAt(0))
	tile, _ := s.At(0)
	assert.Equal(t, "B", tile.Name)
	assert.Equal(t, []listmodel.Kind{listmodel.KindRemoved}, rec.Kinds())
}

func TestLoadDefaultsAndRoundTrip(t *testing.T) {
	s, rec, path := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name":"A","command":"a","x":"left","y":7},
		{"name":"B","command":"b","x":3,"y":4,"size":"small"},
		{"icon":"orphan"}
	]`), 0644))

	s.Load()
	assert.Equal(t, []listmodel.Kind{listmodel.KindReset}, rec.Kinds())
	assert.Equal(t, []Tile{
		{Name: "A", Command: "a", X: 0, Y: 7, Size: SizeMedium},
		{Name: "B", Command: "b", X: 3, Y: 4, Size: SizeSmall},
		{Icon: "orphan", Size: SizeMedium},
	}, s.Tiles())

	require.NoError(t, s.Persist())
	reloaded := New(Options{Path: path})
	reloaded.Load()
	assert.Equal(t, s.Tiles()[:2], reloaded.Tiles())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    {\n        \"name\": \"A\"")

	require.NoError(t, reloaded.Persist())
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestFractionalPositionsSurviveWriteThrough(t *testing.T) {
	s, _, path := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"A","command":"a","x":12.75,"y":-3.5}]`), 0644))

	s.Load()
	tile, ok := s.At(0)
	require.True(t, ok)
	assert.Equal(t, 12.75, tile.X)
	assert.Equal(t, -3.5, tile.Y)

	require.True(t, s.Resize(0, SizeLarge))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"x": 12.75`)
	assert.Contains(t, string(data), `"y": -3.5`)

	require.True(t, s.UpdatePosition(0, 40.25, 0.5))
	reloaded := New(Options{Path: path})
	reloaded.Load()
	tile, _ = reloaded.At(0)
	assert.Equal(t, 40.25, tile.X)
	assert.Equal(t, 0.5, tile.Y)
}

func TestLoadMalformedKeepsState(t *testing.T) {
	s, _, path := newStore(t)
	require.True(t, s.AddFromDesktopFile(writeDesktop(t, t.TempDir(), "a.desktop", "[Desktop Entry]\nName=A\nExec=a\n"), 0, 0))

	require.NoError(t, os.WriteFile(path, []byte(`{"tiles":[]}`), 0644))
	s.Load()
	assert.Equal(t, 1, s.Len())
}

func TestLaunchUsesDesktopFileWhenNoCommand(t *testing.T) {
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "tool"), []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", bin)

	desktopFile := writeDesktop(t, t.TempDir(), "tool.desktop", "[Desktop Entry]\nName=Tool\nExec=tool %f\n")
	path := filepath.Join(t.TempDir(), "tiles.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Tool","desktopFile":"`+desktopFile+`"}]`), 0644))

	starter := &fakeStarter{}
	s := New(Options{Path: path, Starter: starter})
	s.Load()

	require.NoError(t, s.Launch(0))
	assert.Error(t, s.Launch(3))
	assert.Equal(t, []string{filepath.Join(bin, "tool")}, starter.programs)
}
