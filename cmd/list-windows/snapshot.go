package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joshuarubin/go-sway"
	"gopkg.in/ini.v1"
)

type window struct {
	ID      int64
	Title   string
	AppID   string
	Focused bool
}

// collectWindows lists every view in the tree, tiled and floating, in tree
// order.
func collectWindows(root *sway.Node) []window {
	var out []window
	var walk func(n *sway.Node)
	walk = func(n *sway.Node) {
		if n == nil {
			return
		}
		if isView(n) {
			out = append(out, window{
				ID:      n.ID,
				Title:   n.Name,
				AppID:   appID(n),
				Focused: n.Focused,
			})
		}
		for _, child := range n.Nodes {
			walk(child)
		}
		for _, child := range n.FloatingNodes {
			walk(child)
		}
	}
	walk(root)
	return out
}

func isView(n *sway.Node) bool {
	if n.Type != sway.NodeCon && n.Type != sway.NodeFloatingCon {
		return false
	}
	return n.AppID != nil || n.WindowProperties != nil
}

// appID is the Wayland app_id, or the X11 class for Xwayland windows.
func appID(n *sway.Node) string {
	if n.AppID != nil && *n.AppID != "" {
		return *n.AppID
	}
	if n.WindowProperties != nil {
		return n.WindowProperties.Class
	}
	return ""
}

func init() {
	ini.PrettyFormat = false
}

// writeSnapshot replaces path with one group per window.
func writeSnapshot(path string, windows []window) error {
	f := ini.Empty(ini.LoadOptions{IgnoreInlineComment: true})
	for _, w := range windows {
		sec, err := f.NewSection(strconv.FormatInt(w.ID, 10))
		if err != nil {
			return fmt.Errorf("failed to add window %d: %w", w.ID, err)
		}
		sec.Key("Title").SetValue(w.Title)
		sec.Key("AppID").SetValue(w.AppID)
		sec.Key("Focused").SetValue(strconv.FormatBool(w.Focused))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	tempFile := path + ".tmp"
	if err := f.SaveTo(tempFile); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
