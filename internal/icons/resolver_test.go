package icons

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTheme struct {
	icons map[string]bool
	calls []string
}

func (f *fakeTheme) SavePNG(name string, size int, path string) (bool, error) {
	f.calls = append(f.calls, name)
	if !f.icons[name] {
		return false, nil
	}
	return true, os.WriteFile(path, []byte("png"), 0644)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func newResolver(t *testing.T, theme ThemeLoader, dirs ...string) *Resolver {
	t.Helper()
	r, err := New(Options{ThemeDirs: dirs, CacheDir: t.TempDir(), Theme: theme})
	require.NoError(t, err)
	return r
}

func TestEmptyNameIsPlaceholder(t *testing.T) {
	r := newResolver(t, nil)

	uri := r.Resolve("")
	assert.Equal(t, r.Placeholder(), uri)
	assert.True(t, strings.HasPrefix(uri, "file://"))
	assert.True(t, strings.HasSuffix(uri, "placeholder.svg"))
	assert.FileExists(t, strings.TrimPrefix(uri, "file://"))
}

func TestAbsolutePathBeatsThemeDirs(t *testing.T) {
	themeDir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "custom.png")
	touch(t, abs)
	touch(t, filepath.Join(themeDir, abs+".png"))

	r := newResolver(t, nil, themeDir)
	assert.Equal(t, "file://"+abs, r.Resolve(abs))
}

func TestThemeDirOrderAndExtensions(t *testing.T) {
	big := t.TempDir()
	small := t.TempDir()
	touch(t, filepath.Join(small, "term.png"))
	touch(t, filepath.Join(big, "term.svg"))
	touch(t, filepath.Join(big, "edit.png"))
	touch(t, filepath.Join(big, "edit.svg"))

	r := newResolver(t, nil, big, small)
	assert.Equal(t, "file://"+filepath.Join(big, "term.svg"), r.Resolve("term"))
	assert.Equal(t, "file://"+filepath.Join(big, "edit.png"), r.Resolve("edit"))
}

func TestMissingIconFallsBackToPlaceholder(t *testing.T) {
	r := newResolver(t, nil, t.TempDir())
	assert.Equal(t, r.Placeholder(), r.Resolve("does-not-exist"))
	assert.Equal(t, r.Placeholder(), r.Resolve("/no/such/file.png"))
}

func TestResolveThemedRasterizesAndCaches(t *testing.T) {
	theme := &fakeTheme{icons: map[string]bool{"firefox": true}}
	r := newResolver(t, theme)

	uri := r.ResolveThemed("firefox")
	assert.Equal(t, "file://"+r.CachePath("firefox"), uri)
	assert.True(t, strings.HasSuffix(uri, "firefox_64.png"))

	r.Purge()
	assert.Equal(t, uri, r.ResolveThemed("firefox"))
	assert.Equal(t, []string{"firefox"}, theme.calls, "existing cache file skips the theme")

	assert.Equal(t, r.Placeholder(), r.ResolveThemed("unknown"))
}

func TestResolveNeverUsesTheme(t *testing.T) {
	theme := &fakeTheme{icons: map[string]bool{"firefox": true}}
	r := newResolver(t, theme)

	assert.Equal(t, r.Placeholder(), r.Resolve("firefox"))
	assert.Empty(t, theme.calls)
}

func TestResultsAreMemoized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.png")
	touch(t, path)

	r := newResolver(t, nil, dir)
	first := r.Resolve("app")
	require.NoError(t, os.Remove(path))
	assert.Equal(t, first, r.Resolve("app"))

	r.Purge()
	assert.Equal(t, r.Placeholder(), r.Resolve("app"))
}
