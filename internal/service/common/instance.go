//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process of the same executable is alive.
var ErrAlreadyRunning = errors.New("another instance is already running")

// EnsureSingleInstance fails when another process runs the current executable.
func EnsureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	return findOtherInstance(os.Getpid(), filepath.Base(executable), processList)
}

// findOtherInstance looks for a process other than self named like executable.
func findOtherInstance(self int, executable string, processList []ps.Process) error {
	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if !strings.EqualFold(process.Executable(), executable) {
			continue
		}

		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, executable, process.Pid())
	}

	return nil
}
