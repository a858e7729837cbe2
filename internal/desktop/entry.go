// Package desktop reads freedesktop.org desktop entry files.
package desktop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrNotFound = errors.New("desktop file not found")

const (
	mainSection   = "[Desktop Entry]"
	actionSection = "[Desktop Action"
)

// Entry holds the fields of the main [Desktop Entry] section that the panel
// uses. Exec already has its field codes removed.
type Entry struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Exec      string `json:"exec"`
	NoDisplay bool   `json:"no_display"`
}

// Launchable reports whether the entry belongs in an application list.
func (e Entry) Launchable() bool {
	return !e.NoDisplay && e.Name != "" && e.Exec != ""
}

// Parse reads the desktop entry at path.
func Parse(path string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to open desktop file: %w", err)
	}
	defer f.Close()

	entry, err := ParseReader(f)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return entry, nil
}

// ParseReader reads a desktop entry. Only keys inside [Desktop Entry] count,
// the first occurrence of a key wins, and parsing ends at the first
// [Desktop Action ...] group.
func ParseReader(r io.Reader) (Entry, error) {
	var (
		entry                        Entry
		inMain                       bool
		haveName, haveIcon, haveExec bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if strings.HasPrefix(line, actionSection) {
				break
			}
			inMain = line == mainSection
			continue
		}
		if !inMain {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "Name":
			if !haveName {
				entry.Name, haveName = value, true
			}
		case "Icon":
			if !haveIcon {
				entry.Icon, haveIcon = value, true
			}
		case "Exec":
			if !haveExec {
				entry.Exec, haveExec = StripFieldCodes(value), true
			}
		case "NoDisplay", "Hidden":
			if strings.EqualFold(strings.TrimSpace(value), "true") {
				entry.NoDisplay = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Entry{}, err
	}

	return entry, nil
}

// StripFieldCodes removes %f, %U and the other desktop entry field codes
// from an Exec value. Surrounding whitespace is left alone.
func StripFieldCodes(exec string) string {
	if !strings.Contains(exec, "%") {
		return exec
	}

	var b strings.Builder
	b.Grow(len(exec))
	for i := 0; i < len(exec); i++ {
		if exec[i] == '%' && i+1 < len(exec) && isFieldCode(exec[i+1]) {
			i++
			continue
		}
		b.WriteByte(exec[i])
	}
	return b.String()
}

func isFieldCode(c byte) bool {
	return strings.IndexByte("fFuUdDnNickvVmM", c) >= 0
}
