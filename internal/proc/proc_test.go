package proc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type started struct {
	program string
	args    []string
}

type fakeStarter struct {
	calls []started
	err   error
}

func (f *fakeStarter) Start(program string, args []string) error {
	f.calls = append(f.calls, started{program, args})
	return f.err
}

type fakeTable struct {
	running map[string]bool
	killed  []string
	err     error
}

func (f *fakeTable) Running(name string) (bool, error) {
	return f.running[name], f.err
}

func (f *fakeTable) KillAll(name string) error {
	f.killed = append(f.killed, name)
	return nil
}

func makeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func TestSplitCommand(t *testing.T) {
	t.Setenv("HEXPANEL_TEST_DIR", "/opt/tools")

	tests := []struct {
		in   string
		want []string
	}{
		{"xterm", []string{"xterm"}},
		{"foo %U", []string{"foo"}},
		{`sh -c "echo hi"`, []string{"sh", "-c", "echo hi"}},
		{"$HEXPANEL_TEST_DIR/run --flag", []string{"/opt/tools/run", "--flag"}},
		{"${HEXPANEL_TEST_DIR}/run", []string{"/opt/tools/run"}},
	}
	for _, tt := range tests {
		got, err := SplitCommand(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSplitCommandEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "%U %f"} {
		_, err := SplitCommand(in)
		assert.ErrorIs(t, err, ErrEmptyCommand, in)
	}
}

func TestLaunchCommandResolvesPath(t *testing.T) {
	dir := t.TempDir()
	path := makeExecutable(t, dir, "myterm")
	t.Setenv("PATH", dir)

	s := &fakeStarter{}
	require.NoError(t, LaunchCommand(s, "myterm -e top %F"))
	require.Len(t, s.calls, 1)
	assert.Equal(t, path, s.calls[0].program)
	assert.Equal(t, []string{"-e", "top"}, s.calls[0].args)
}

func TestLaunchCommandUnresolvable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	s := &fakeStarter{}
	assert.Error(t, LaunchCommand(s, "definitely-not-installed"))
	assert.Error(t, LaunchCommand(s, "/no/such/program"))
	assert.Empty(t, s.calls)
}

func TestFindExecutable(t *testing.T) {
	dir := t.TempDir()
	path := makeExecutable(t, dir, "tool")
	plain := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(plain, nil, 0644))

	got, err := FindExecutable(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = FindExecutable(plain)
	assert.Error(t, err)
	_, err = FindExecutable(dir)
	assert.Error(t, err)
}

func TestToggleKillsRunning(t *testing.T) {
	table := &fakeTable{running: map[string]bool{"nmqt": true}}
	s := &fakeStarter{}

	Toggle{Name: "nmqt", Fallback: "/usr/bin/nmqt", Table: table, Starter: s}.Run()

	assert.Equal(t, []string{"nmqt"}, table.killed)
	assert.Empty(t, s.calls)
}

func TestToggleLaunchesFromPath(t *testing.T) {
	dir := t.TempDir()
	path := makeExecutable(t, dir, "blueman-manager")
	t.Setenv("PATH", dir)

	table := &fakeTable{}
	s := &fakeStarter{}
	Toggle{Name: "blueman-manager", Fallback: "/usr/bin/blueman-manager", Table: table, Starter: s}.Run()

	require.Len(t, s.calls, 1)
	assert.Equal(t, path, s.calls[0].program)
	assert.Empty(t, table.killed)
}

func TestToggleUsesFallback(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	s := &fakeStarter{}
	Toggle{Name: "Win10Menu", Fallback: "/usr/bin/Win10Menu", Table: &fakeTable{}, Starter: s}.Run()

	require.Len(t, s.calls, 1)
	assert.Equal(t, "/usr/bin/Win10Menu", s.calls[0].program)
}

func TestToggleSurvivesFailures(t *testing.T) {
	s := &fakeStarter{err: errors.New("boom")}
	t.Setenv("PATH", t.TempDir())

	Toggle{Name: "x", Table: &fakeTable{err: errors.New("no /proc")}, Starter: s}.Run()
	assert.Empty(t, s.calls)

	Toggle{Name: "x", Table: &fakeTable{}, Starter: s}.Run()
	assert.Empty(t, s.calls, "no program and no fallback")

	Toggle{Name: "x", Fallback: "/bin/x", Table: &fakeTable{}, Starter: s}.Run()
	assert.Len(t, s.calls, 1)
}

func TestOSDFire(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	s := &fakeStarter{}
	osd := OSD{Client: "osd-client", Starter: s}

	require.NoError(t, osd.Fire("volup"))
	require.NoError(t, osd.Fire("dispdown"))
	assert.Error(t, osd.Fire("louder"))

	require.Len(t, s.calls, 2)
	assert.Equal(t, "osd-client", s.calls[0].program)
	assert.Equal(t, []string{"--volup"}, s.calls[0].args)
	assert.Equal(t, []string{"--dispdown"}, s.calls[1].args)
}
