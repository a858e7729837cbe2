package desktop

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FindByAppID returns the path of <appID>.desktop, or failing that
// <lower(appID)>.desktop, in the first directory of dirs that has one.
func FindByAppID(appID string, dirs []string) (string, error) {
	if appID == "" {
		return "", ErrNotFound
	}

	names := []string{appID + ".desktop"}
	if lower := strings.ToLower(appID); lower != appID {
		names = append(names, lower+".desktop")
	}

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", ErrNotFound
}

// IconForAppID returns the first Icon= value of the desktop file matching
// appID, or "" if there is none. Unlike ParseReader it does not care which
// group the key is in.
func IconForAppID(appID string, dirs []string) string {
	path, err := FindByAppID(appID, dirs)
	if err != nil {
		return ""
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if value, ok := strings.CutPrefix(line, "Icon="); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
