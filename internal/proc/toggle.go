package proc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/logging"
)

// Toggle kills every process called Name if one is running, and starts it
// otherwise. Fallback is tried when Name is not on PATH.
type Toggle struct {
	Name     string
	Fallback string
	Table    ProcessTable
	Starter  Starter
	Logger   *zap.Logger
}

// Run never fails; problems are logged.
func (t Toggle) Run() {
	logger := logging.OrNop(t.Logger).Named("toggle").With(zap.String("name", t.Name))

	running, err := t.Table.Running(t.Name)
	if err != nil {
		logger.Error("failed to query process table", zap.Error(err))
		return
	}

	if running {
		if err := t.Table.KillAll(t.Name); err != nil {
			logger.Warn("failed to stop process", zap.Error(err))
			return
		}
		logger.Info("stopped")
		return
	}

	program, err := t.program()
	if err != nil {
		logger.Warn("nothing to launch", zap.Error(err))
		return
	}
	if err := t.Starter.Start(program, nil); err != nil {
		logger.Error("failed to launch", zap.String("program", program), zap.Error(err))
		return
	}
	logger.Info("launched", zap.String("program", program))
}

func (t Toggle) program() (string, error) {
	if path, err := FindExecutable(t.Name); err == nil {
		return path, nil
	}
	if t.Fallback != "" {
		return t.Fallback, nil
	}
	return "", fmt.Errorf("%s not found on PATH and no fallback set", t.Name)
}
