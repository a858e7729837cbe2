package windows

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Record is one window as reported by the helper.
type Record struct {
	ID      string
	Title   string
	AppID   string
	Focused bool
}

// Source reads the current window snapshot. ok is false when there is no
// snapshot yet.
type Source interface {
	Read() (records []Record, ok bool, err error)
}

// INISource reads a windows.ini snapshot: one group per window, named after
// the window id, with Title, AppID and Focused keys. Records come back in
// the order the groups appear in the file (the helper writes sway tree
// order), not sorted by id.
type INISource struct {
	Path string
}

func (s INISource) Read() ([]Record, bool, error) {
	if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, s.Path)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read window snapshot: %w", err)
	}

	var records []Record
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		records = append(records, Record{
			ID:      sec.Name(),
			Title:   sec.Key("Title").String(),
			AppID:   sec.Key("AppID").String(),
			Focused: sec.Key("Focused").MustBool(false),
		})
	}
	return records, true, nil
}
