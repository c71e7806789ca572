//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// TestDetectActor ensures hostname and username are detected and non-empty.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	a, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, a.Hostname)
	require.NotEmpty(t, a.Username)
}

// fakeProcess is a static ps.Process.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

// TestFindOtherInstance verifies the current process is ignored and names match case-insensitively.
func TestFindOtherInstance(t *testing.T) {
	t.Parallel()

	processList := []ps.Process{
		fakeProcess{pid: 10, executable: "loadbank-hmi"},
		fakeProcess{pid: 11, executable: "bash"},
	}

	require.NoError(t, findOtherInstance(10, "loadbank-hmi", processList))

	processList = append(processList, fakeProcess{pid: 12, executable: "LoadBank-HMI"})

	err := findOtherInstance(10, "loadbank-hmi", processList)
	require.True(t, errors.Is(err, ErrAlreadyRunning))
	require.Contains(t, err.Error(), "pid 12")
}
