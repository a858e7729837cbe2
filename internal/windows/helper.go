package windows

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/chess10kp/hexpanel/internal/proc"
)

var ErrHelperMissing = errors.New("window helper not found")

// Helper asks the compositor to act on a window. Start returns once the
// request is under way; the result shows up in the next snapshot.
type Helper interface {
	Start(args ...string) error
}

// ExecHelper starts the helper binary detached, looking it up on PATH every
// call so it may be installed after the daemon starts.
type ExecHelper struct {
	Name    string
	Starter proc.Starter
}

func (h ExecHelper) Start(args ...string) error {
	path, err := exec.LookPath(h.Name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrHelperMissing, h.Name)
	}

	starter := h.Starter
	if starter == nil {
		starter = proc.DetachedStarter{}
	}
	return starter.Start(path, args)
}
