// Package proc launches, finds and toggles external programs.
package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/desktop"
	"github.com/chess10kp/hexpanel/internal/logging"
)

var ErrEmptyCommand = errors.New("empty command")

// Starter starts a program without waiting for it.
type Starter interface {
	Start(program string, args []string) error
}

// DetachedStarter starts programs in their own session so they outlive the
// panel. Children are reaped in the background.
type DetachedStarter struct {
	Logger *zap.Logger
}

func (s DetachedStarter) Start(program string, args []string) error {
	cmd := exec.Command(program, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}

	logger := logging.OrNop(s.Logger).Named("proc")
	logger.Debug("started detached process", zap.String("program", program), zap.Int("pid", cmd.Process.Pid))
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("detached process exited", zap.String("program", program), zap.Error(err))
		}
	}()
	return nil
}

// FindExecutable returns program itself when it is a path to an executable
// file, otherwise its location on PATH.
func FindExecutable(program string) (string, error) {
	if strings.ContainsRune(program, filepath.Separator) {
		info, err := os.Stat(program)
		if err != nil {
			return "", fmt.Errorf("executable not found: %w", err)
		}
		if info.IsDir() || info.Mode()&0111 == 0 {
			return "", fmt.Errorf("%s is not executable", program)
		}
		return program, nil
	}
	return exec.LookPath(program)
}

// SplitCommand strips desktop entry field codes from cmdline and splits it
// into words, expanding $VAR and ${VAR}.
func SplitCommand(cmdline string) ([]string, error) {
	cmdline = strings.TrimSpace(desktop.StripFieldCodes(cmdline))
	if cmdline == "" {
		return nil, ErrEmptyCommand
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = true
	args, err := parser.Parse(cmdline)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", cmdline, err)
	}
	if len(args) == 0 || args[0] == "" {
		return nil, ErrEmptyCommand
	}
	return args, nil
}

// LaunchCommand splits cmdline, resolves its program and starts it.
func LaunchCommand(s Starter, cmdline string) error {
	args, err := SplitCommand(cmdline)
	if err != nil {
		return err
	}

	program, err := FindExecutable(args[0])
	if err != nil {
		return fmt.Errorf("cannot launch %q: %w", args[0], err)
	}
	return s.Start(program, args[1:])
}
