package core

import (
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/apps"
	"github.com/chess10kp/hexpanel/internal/catalog"
	"github.com/chess10kp/hexpanel/internal/icons"
	"github.com/chess10kp/hexpanel/internal/listmodel"
	"github.com/chess10kp/hexpanel/internal/logging"
	"github.com/chess10kp/hexpanel/internal/proc"
	"github.com/chess10kp/hexpanel/internal/tiles"
	"github.com/chess10kp/hexpanel/internal/windows"
)

// Handler answers requests. It touches the collections directly, so Handle
// must run on the event loop.
type Handler struct {
	Catalog *catalog.Catalog
	// Selection follows the selected catalog row. Nil disables apps:select.
	Selection  *listmodel.Cursor
	Tiles      *tiles.Store
	Menu       *apps.Directory
	Windows    *windows.Tracker
	Icons      *icons.Resolver
	Toggles    map[string]proc.Toggle
	OSD        proc.OSD
	MaxResults int
	Logger     *zap.Logger
}

// MenuRow is a menu app with its section header info.
type MenuRow struct {
	apps.App
	Letter        string `json:"letter"`
	HeaderVisible bool   `json:"headerVisible"`
}

func (h *Handler) Handle(req Request) Response {
	logging.OrNop(h.Logger).Debug("handling request", zap.Stringer("request", req))

	switch req.Domain {
	case "apps":
		return h.handleApps(req)
	case "windows":
		return h.handleWindows(req)
	case "tiles":
		return h.handleTiles(req)
	case "menu":
		return h.handleMenu(req)
	case "toggle":
		return h.handleToggle(req)
	case "osd":
		if err := h.OSD.Fire(req.Verb); err != nil {
			return errResponse("%v", err)
		}
		return okResponse(nil)
	}
	return errResponse("unknown domain %q", req.Domain)
}

func (h *Handler) handleApps(req Request) Response {
	c := h.Catalog
	if c == nil {
		return errResponse("catalog is not available")
	}

	switch req.Verb {
	case "list":
		return okResponse(c.Entries())
	case "add":
		if req.Rest == "" {
			return errResponse("apps:add needs a desktop file path")
		}
		if !c.AddDesktopFile(req.Rest) {
			return errResponse("could not add %s", req.Rest)
		}
		return okResponse(c.Len() - 1)
	case "remove":
		args, err := req.Ints(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if !c.RemoveAt(args[0]) {
			return errResponse("no app at index %d", args[0])
		}
		return okResponse(nil)
	case "move":
		args, err := req.Ints(2)
		if err != nil {
			return errResponse("%v", err)
		}
		if args[0] == args[1] {
			if _, ok := c.At(args[0]); ok {
				return okResponse(nil)
			}
		}
		if !c.MoveTo(args[0], args[1]) {
			return errResponse("cannot move %d to %d", args[0], args[1])
		}
		return okResponse(nil)
	case "launch":
		args, err := req.Ints(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if err := c.Launch(args[0]); err != nil {
			return errResponse("%v", err)
		}
		return okResponse(nil)
	case "select":
		if h.Selection == nil {
			return errResponse("selection is not available")
		}
		args, err := req.Ints(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if _, ok := c.At(args[0]); !ok && args[0] >= 0 {
			return errResponse("no app at index %d", args[0])
		}
		h.Selection.Set(args[0])
		return okResponse(h.Selection.Index())
	case "selected":
		if h.Selection == nil {
			return errResponse("selection is not available")
		}
		return okResponse(h.Selection.Index())
	}
	return errResponse("unknown apps command %q", req.Verb)
}

func (h *Handler) handleWindows(req Request) Response {
	w := h.Windows
	if w == nil {
		return errResponse("window tracking is not available")
	}

	switch req.Verb {
	case "list":
		return okResponse(w.Entries())
	case "refresh":
		w.Refresh()
		return okResponse(w.Entries())
	case "activate", "close":
		args, err := req.Ints(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if req.Verb == "activate" {
			err = w.Activate(args[0])
		} else {
			err = w.Close(args[0])
		}
		if err != nil {
			return errResponse("%v", err)
		}
		return okResponse(nil)
	}
	return errResponse("unknown windows command %q", req.Verb)
}

func (h *Handler) handleTiles(req Request) Response {
	s := h.Tiles
	if s == nil {
		return errResponse("tiles are not available")
	}

	switch req.Verb {
	case "list":
		return okResponse(s.Tiles())
	case "add":
		x, y, path, err := req.PointThenText()
		if err != nil {
			return errResponse("%v", err)
		}
		if !s.AddFromDesktopFile(path, x, y) {
			return errResponse("could not add tile for %s", path)
		}
		return okResponse(s.Len() - 1)
	case "move":
		i, x, y, err := req.IndexAndPoint()
		if err != nil {
			return errResponse("%v", err)
		}
		if !s.UpdatePosition(i, x, y) {
			return errResponse("no tile at index %d", i)
		}
		return okResponse(nil)
	case "resize":
		idx, size, err := req.IntsThenText(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if !s.Resize(idx[0], size) {
			return errResponse("cannot resize tile %d", idx[0])
		}
		return okResponse(nil)
	case "remove":
		args, err := req.Ints(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if !s.RemoveAt(args[0]) {
			return errResponse("no tile at index %d", args[0])
		}
		return okResponse(nil)
	case "launch":
		args, err := req.Ints(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if err := s.Launch(args[0]); err != nil {
			return errResponse("%v", err)
		}
		return okResponse(nil)
	}
	return errResponse("unknown tiles command %q", req.Verb)
}

func (h *Handler) handleMenu(req Request) Response {
	m := h.Menu
	if m == nil {
		return errResponse("menu is not available")
	}

	switch req.Verb {
	case "list":
		return okResponse(h.menuRows())
	case "rescan":
		// Newly installed apps bring icons that earlier lookups missed.
		if h.Icons != nil {
			h.Icons.Purge()
		}
		if h.Windows != nil {
			h.Windows.PurgeIcons()
		}
		m.Scan()
		return okResponse(m.Len())
	case "search":
		return okResponse(m.Search(req.Rest, h.MaxResults))
	case "recent":
		return okResponse(m.Recent(h.MaxResults))
	case "launch":
		args, err := req.Ints(1)
		if err != nil {
			return errResponse("%v", err)
		}
		if err := m.Launch(args[0]); err != nil {
			return errResponse("%v", err)
		}
		return okResponse(nil)
	}
	return errResponse("unknown menu command %q", req.Verb)
}

func (h *Handler) menuRows() []MenuRow {
	m := h.Menu
	rows := make([]MenuRow, m.Len())
	for i := range rows {
		app, _ := m.At(i)
		rows[i] = MenuRow{App: app, Letter: m.Letter(i), HeaderVisible: m.HeaderVisible(i)}
	}
	return rows
}

func (h *Handler) handleToggle(req Request) Response {
	t, ok := h.Toggles[req.Verb]
	if !ok {
		return errResponse("unknown toggle %q", req.Verb)
	}
	t.Run()
	return okResponse(nil)
}
