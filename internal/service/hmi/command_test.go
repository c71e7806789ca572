package hmi

import (
	"bytes"
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/remote/remotetest"
)

// TestRun_ConsoleShowsControllerAlarms drives the whole display against an
// in-memory controller and checks the console output.
func TestRun_ConsoleShowsControllerAlarms(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		settings := &config.Config{ControllerAddress: "127.0.0.1:50051"}
		require.NoError(t, config.Validate(settings))

		table := remotetest.NewTable()
		table.SetActive(alarm.ActiveAlarm{ID: 3, Severity: alarm.SeverityCritical, Name: "Cooling fan failure"})

		var console bytes.Buffer

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() {
			done <- run(ctx, settings, table, &console)
		}()

		time.Sleep(time.Second)
		synctest.Wait()

		cancel()
		require.NoError(t, <-done)
		require.Contains(t, console.String(), "Cooling fan failure")
		require.Contains(t, console.String(), "LoadBank alarms")
	})
}

// TestRun_MissingSettings verifies Run fails fast without a settings file.
func TestRun_MissingSettings(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: t.TempDir() + "/missing.yaml"})
	require.Error(t, err)
}
