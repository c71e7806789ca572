package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/remote"
	"github.com/oshokin/loadbank-hmi/internal/render/panel"
	repository "github.com/oshokin/loadbank-hmi/internal/repository/controller"
	"github.com/oshokin/loadbank-hmi/internal/service/alarms"
	"github.com/oshokin/loadbank-hmi/internal/service/common"
	"github.com/oshokin/loadbank-hmi/internal/service/simulator"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

// freeAddress reserves a loopback port for a test server.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startSimulator runs the real controller simulator from a scenario image.
// The returned stop func waits for the server to shut down.
func startSimulator(t *testing.T, addr, scenarioPath string, image *alarm.ControllerImage) (stop func()) {
	t.Helper()

	require.NoError(t, repository.NewFileRepository(scenarioPath).Save(context.Background(), image))

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		ControllerAddress: addr,
		Timeout:           time.Second,
		ScenarioFile:      scenarioPath,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- simulator.Run(ctx, &simulator.Options{ConfigPath: cfgPath})
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, waitFor, tick)

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// startDisplay runs an alarm session against the controller at addr.
func startDisplay(t *testing.T, addr string) (*alarms.Session, *panel.Board, func()) {
	t.Helper()

	client, err := common.Dial(context.Background(), addr,
		common.WithCallTimeout(time.Second),
		common.WithActor(&alarm.Actor{Hostname: "integration", Username: "operator"}))
	require.NoError(t, err)

	board := panel.NewBoard(config.DefaultMaxActiveRows, config.DefaultMaxHistoryRows)
	session := alarms.NewSession(client, board, alarms.Options{
		PollInterval:    20 * time.Millisecond,
		BlinkInterval:   50 * time.Millisecond,
		TriggerInterval: 20 * time.Millisecond,
		AckHold:         30 * time.Millisecond,
		ResetHold:       60 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- session.Run(ctx)
	}()

	return session, board, func() {
		cancel()
		require.NoError(t, <-done)
		require.NoError(t, client.Close())
	}
}

func visibleIDs(state panel.State) []int {
	var ids []int

	for _, slot := range state.Active {
		if slot.Visible {
			ids = append(ids, slot.View.AlarmID)
		}
	}

	return ids
}

// TestDisplay_AgainstSimulator drives the full acknowledge and reset cycle
// through the real gRPC transport.
func TestDisplay_AgainstSimulator(t *testing.T) {
	t.Parallel()

	addr := freeAddress(t)
	scenarioPath := filepath.Join(t.TempDir(), "controller.json")

	stopSimulator := startSimulator(t, addr, scenarioPath, &alarm.ControllerImage{
		Active: []alarm.RaisedAlarm{
			{ActiveAlarm: alarm.ActiveAlarm{ID: 7, Severity: alarm.SeverityWarning, Name: "Phase imbalance"}},
			{ActiveAlarm: alarm.ActiveAlarm{ID: 2, Severity: alarm.SeverityCritical, Name: "Main breaker trip"}},
			{ActiveAlarm: alarm.ActiveAlarm{ID: 9, Severity: alarm.SeverityCritical, Name: "Overtemperature"}},
		},
		NextID: 10,
	})
	defer stopSimulator()

	session, board, stopDisplay := startDisplay(t, addr)
	defer stopDisplay()

	require.Eventually(t, func() bool {
		return len(visibleIDs(board.State())) == 3
	}, waitFor, tick)

	require.Equal(t, []int{2, 9, 7}, visibleIDs(board.State()))
	require.Eventually(t, func() bool {
		return board.State().Counters.Total == "3"
	}, waitFor, tick)

	ctx := context.Background()

	require.NoError(t, session.Acknowledge(ctx, 9))
	require.Eventually(t, func() bool {
		a, ok := alarm.FindActive(session.Snapshot().Active, 9)
		return ok && a.Acknowledged
	}, waitFor, tick)

	require.ErrorIs(t, session.Acknowledge(ctx, 9), alarms.ErrAlreadyAcknowledged)

	require.NoError(t, session.AcknowledgeAll(ctx))
	require.Eventually(t, func() bool {
		return alarm.CountUnacknowledged(session.Snapshot().Active) == 0
	}, waitFor, tick)

	require.NoError(t, session.Reset(ctx))
	require.Eventually(t, func() bool {
		return len(session.Snapshot().Active) == 0 && board.State().NoAlarms
	}, waitFor, tick)

	require.NoError(t, session.SelectTab(alarm.TabHistory))
	require.Eventually(t, func() bool {
		return len(session.Snapshot().History) == 3
	}, waitFor, tick)

	require.NoError(t, session.OpenClearDialog())
	require.NoError(t, session.ConfirmClearHistory(ctx))
	require.Eventually(t, func() bool {
		return len(session.Snapshot().History) == 0 && board.State().NoHistory
	}, waitFor, tick)

	image, err := repository.NewFileRepository(scenarioPath).Load(ctx)
	require.NoError(t, err)
	require.Empty(t, image.Active)
	require.Empty(t, image.History)
}

// TestClient_AgainstSimulator checks raw variable access through the real server.
func TestClient_AgainstSimulator(t *testing.T) {
	t.Parallel()

	addr := freeAddress(t)
	stop := startSimulator(t, addr, filepath.Join(t.TempDir(), "controller.json"), &alarm.ControllerImage{
		Active: []alarm.RaisedAlarm{
			{ActiveAlarm: alarm.ActiveAlarm{ID: 1, Severity: alarm.SeverityCritical, Name: "Emergency stop"}},
		},
	})
	defer stop()

	client, err := common.Dial(context.Background(), addr, common.WithCallTimeout(time.Second))
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	ctx := context.Background()

	v, err := client.Read(ctx, remote.AlarmListCount)
	require.NoError(t, err)

	count, ok := remote.AsInt(v)
	require.True(t, ok)
	require.Equal(t, 1, count)

	v, err = client.Read(ctx, remote.Indexed(remote.AlarmList, 1))
	require.NoError(t, err)

	first, ok := remote.DecodeActiveAlarm(v)
	require.True(t, ok)
	require.Equal(t, "Emergency stop", first.Name)

	_, err = client.Read(ctx, remote.Indexed(remote.AlarmList, 2))
	require.ErrorIs(t, err, remote.ErrAbsent)

	_, err = client.Read(ctx, remote.NewestAlarmID)
	require.ErrorIs(t, err, remote.ErrAbsent)

	require.Error(t, client.Write(ctx, remote.AlarmList, true))
}
