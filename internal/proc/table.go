package proc

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessTable queries and signals running processes by exact name.
type ProcessTable interface {
	Running(name string) (bool, error)
	KillAll(name string) error
}

// SystemTable reads the live process table through gopsutil.
type SystemTable struct{}

func (SystemTable) Running(name string) (bool, error) {
	procs, err := process.Processes()
	if err != nil {
		return false, fmt.Errorf("failed to list processes: %w", err)
	}
	for _, p := range procs {
		if n, err := p.Name(); err == nil && n == name {
			return true, nil
		}
	}
	return false, nil
}

func (SystemTable) KillAll(name string) error {
	procs, err := process.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	var errs []error
	killed := 0
	for _, p := range procs {
		n, err := p.Name()
		if err != nil || n != name {
			continue
		}
		if err := p.Kill(); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", p.Pid, err))
			continue
		}
		killed++
	}
	if killed == 0 && len(errs) == 0 {
		return fmt.Errorf("no process named %s", name)
	}
	return errors.Join(errs...)
}
