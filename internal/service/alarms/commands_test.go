package alarms

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/observability/metrics"
	"github.com/oshokin/loadbank-hmi/internal/remote"
	"github.com/oshokin/loadbank-hmi/internal/remote/remotetest"
)

var errTestWrite = errors.New("test write error")

// TestAcknowledge_PulsesAddressedFlag verifies true then false on the
// alarm's own acknowledge flag, one hold apart.
func TestAcknowledge_PulsesAddressedFlag(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()
		table.SetActive(warning(3), critical(5))

		m := metrics.New(prometheus.NewRegistry())
		session, _, stop := runSession(t, table, testOptions(), WithMetrics(m))

		defer stop()

		require.NoError(t, session.Acknowledge(t.Context(), 5))

		writes := table.Writes()
		require.Len(t, writes, 1)
		require.Equal(t, remote.Indexed(remote.AlarmAck, 5), writes[0].Name)
		require.Equal(t, true, writes[0].Value)

		settle(100 * time.Millisecond)

		writes = table.Writes()
		require.Len(t, writes, 2)
		require.Equal(t, remote.Indexed(remote.AlarmAck, 5), writes[1].Name)
		require.Equal(t, false, writes[1].Value)
		require.Equal(t, 100*time.Millisecond, writes[1].At.Sub(writes[0].At))

		require.InDelta(t, 1, testutil.ToFloat64(
			m.CommandPulses.WithLabelValues(CommandAcknowledge, metrics.PulseDelivered)), 0)
		require.InDelta(t, 1, testutil.ToFloat64(
			m.CommandPulses.WithLabelValues(CommandAcknowledge, metrics.PulseReleased)), 0)

		// The snapshot only changes on a later poll.
		active, ok := alarm.FindActive(session.Snapshot().Active, 5)
		require.True(t, ok)
		require.False(t, active.Acknowledged)
	})
}

// TestAcknowledge_Guards verifies unknown and already acknowledged alarms are refused without writes.
func TestAcknowledge_Guards(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		acked := warning(4)
		acked.Acknowledged = true

		table := remotetest.NewTable()
		table.SetActive(acked, critical(1))

		session, _, stop := runSession(t, table, testOptions())
		defer stop()

		require.ErrorIs(t, session.Acknowledge(t.Context(), 99), ErrUnknownAlarm)
		require.ErrorIs(t, session.Acknowledge(t.Context(), 4), ErrAlreadyAcknowledged)

		_, err := session.AcknowledgeRow(t.Context(), 2)
		require.ErrorIs(t, err, ErrAlreadyAcknowledged)

		_, err = session.AcknowledgeRow(t.Context(), 3)
		require.ErrorIs(t, err, ErrRowEmpty)

		_, err = session.AcknowledgeRow(t.Context(), 0)
		require.ErrorIs(t, err, ErrRowEmpty)

		require.Empty(t, table.Writes())
	})
}

// TestAcknowledgeRow_ResolvesSortedRow verifies a row number maps to the alarm painted in it.
func TestAcknowledgeRow_ResolvesSortedRow(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()
		table.SetActive(warning(7), critical(2), critical(9))

		session, _, stop := runSession(t, table, testOptions())
		defer stop()

		id, err := session.AcknowledgeRow(t.Context(), 2)
		require.NoError(t, err)
		require.Equal(t, 9, id)

		writes := table.Writes()
		require.Len(t, writes, 1)
		require.Equal(t, remote.Indexed(remote.AlarmAck, 9), writes[0].Name)
	})
}

// TestReset_LongerHold verifies the reset flag is held for the reset hold.
func TestReset_LongerHold(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()

		session, _, stop := runSession(t, table, testOptions())
		defer stop()

		require.NoError(t, session.Reset(t.Context()))

		settle(499 * time.Millisecond)
		require.Len(t, table.Writes(), 1)

		settle(time.Millisecond)

		writes := table.Writes()
		require.Len(t, writes, 2)
		require.Equal(t, remote.ResetCmd, writes[1].Name)
		require.Equal(t, false, writes[1].Value)
		require.Equal(t, 500*time.Millisecond, writes[1].At.Sub(writes[0].At))
	})
}

// TestClearHistory_Dialog verifies cancel writes nothing and confirm pulses the flag.
func TestClearHistory_Dialog(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()

		session, rec, stop := runSession(t, table, testOptions())
		defer stop()

		require.NoError(t, session.OpenClearDialog())
		require.True(t, session.Snapshot().ClearDialog)

		_, _, _, dialog, _ := rec.snapshot()
		require.True(t, dialog)

		require.NoError(t, session.CancelClearDialog())
		require.False(t, session.Snapshot().ClearDialog)
		require.Empty(t, table.Writes())

		require.NoError(t, session.OpenClearDialog())
		require.NoError(t, session.ConfirmClearHistory(t.Context()))

		_, _, _, dialog, _ = rec.snapshot()
		require.False(t, dialog)

		settle(100 * time.Millisecond)

		writes := table.Writes()
		require.Len(t, writes, 2)
		require.Equal(t, remote.AlarmClearHistory, writes[0].Name)
		require.Equal(t, true, writes[0].Value)
		require.Equal(t, false, writes[1].Value)
	})
}

// TestPulse_WriteFailure verifies a failed true-write is reported, never
// retried and still released after the hold.
func TestPulse_WriteFailure(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()
		table.FailWrites(remote.AlarmAckAll, errTestWrite)

		m := metrics.New(prometheus.NewRegistry())
		session, _, stop := runSession(t, table, testOptions(), WithMetrics(m))

		defer stop()

		require.ErrorIs(t, session.AcknowledgeAll(t.Context()), errTestWrite)

		// The controller is reachable again by the time the release is due.
		table.FailWrites(remote.AlarmAckAll, nil)
		settle(time.Second)

		attempts := table.Attempts()
		require.Len(t, attempts, 2)
		require.Equal(t, true, attempts[0].Value)
		require.ErrorIs(t, attempts[0].Err, errTestWrite)
		require.Equal(t, false, attempts[1].Value)
		require.NoError(t, attempts[1].Err)
		require.Equal(t, 100*time.Millisecond, attempts[1].At.Sub(attempts[0].At))

		require.InDelta(t, 1, testutil.ToFloat64(
			m.CommandPulses.WithLabelValues(CommandAcknowledgeAll, metrics.PulseFailed)), 0)
		require.InDelta(t, 1, testutil.ToFloat64(
			m.CommandPulses.WithLabelValues(CommandAcknowledgeAll, metrics.PulseReleased)), 0)
	})
}

// TestPulse_ReleaseFailure verifies a failed release is counted and not retried.
func TestPulse_ReleaseFailure(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()
		table.FailWrites(remote.ResetCmd, errTestWrite)

		m := metrics.New(prometheus.NewRegistry())
		session, _, stop := runSession(t, table, testOptions(), WithMetrics(m))

		defer stop()

		require.ErrorIs(t, session.Reset(t.Context()), errTestWrite)

		settle(2 * time.Second)

		attempts := table.Attempts()
		require.Len(t, attempts, 2)
		require.Equal(t, true, attempts[0].Value)
		require.Equal(t, false, attempts[1].Value)
		require.Empty(t, table.Writes())
		require.InDelta(t, 2, testutil.ToFloat64(
			m.CommandPulses.WithLabelValues(CommandReset, metrics.PulseFailed)), 0)
	})
}

// TestClearHistory_RequiresDialog verifies confirming without an open
// confirmation writes nothing.
func TestClearHistory_RequiresDialog(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()

		session, _, stop := runSession(t, table, testOptions())
		defer stop()

		require.ErrorIs(t, session.ConfirmClearHistory(t.Context()), ErrDialogClosed)

		require.NoError(t, session.OpenClearDialog())
		require.NoError(t, session.CancelClearDialog())
		require.ErrorIs(t, session.ConfirmClearHistory(t.Context()), ErrDialogClosed)

		settle(time.Second)
		require.Empty(t, table.Attempts())

		require.NoError(t, session.OpenClearDialog())
		require.NoError(t, session.ConfirmClearHistory(t.Context()))
		require.ErrorIs(t, session.ConfirmClearHistory(t.Context()), ErrDialogClosed)

		settle(100 * time.Millisecond)
		require.Len(t, table.Attempts(), 2)
	})
}

// TestAcknowledgeAll_RoundTrip verifies that once the controller applies the
// command, the next poll leaves no unacknowledged rows.
func TestAcknowledgeAll_RoundTrip(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		alarms := []alarm.ActiveAlarm{critical(1), warning(2), critical(3)}

		table := remotetest.NewTable()
		table.SetActive(alarms...)
		table.Set(remote.UnackCount, float64(len(alarms)))
		table.OnWrite(func(name string, value any) {
			if name != remote.AlarmAckAll || value != true {
				return
			}

			acked := make([]alarm.ActiveAlarm, 0, len(alarms))
			for _, a := range alarms {
				a.Acknowledged = true
				acked = append(acked, a)
			}

			table.SetActive(acked...)
			table.Set(remote.UnackCount, float64(0))
		})

		session, rec, stop := runSession(t, table, testOptions())
		defer stop()

		require.Equal(t, 3, alarm.CountUnacknowledged(session.Snapshot().Active))

		require.NoError(t, session.AcknowledgeAll(t.Context()))
		settle(250 * time.Millisecond)

		snap := session.Snapshot()
		require.Zero(t, alarm.CountUnacknowledged(snap.Active))
		require.Equal(t, Count{Value: 0, Valid: true}, snap.Counts.Unacknowledged)

		rec.mu.Lock()
		defer rec.mu.Unlock()

		for row := 1; row <= 3; row++ {
			require.Equal(t, "✓ ACK", rec.active[row].view.AckText)
			require.False(t, rec.active[row].view.AckEnabled)
		}
	})
}

// TestPulse_ReleasedAfterTeardown verifies the session waits for pending releases.
func TestPulse_ReleasedAfterTeardown(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		table := remotetest.NewTable()

		session, _, stop := runSession(t, table, testOptions())

		require.NoError(t, session.Reset(t.Context()))
		stop()

		writes := table.Writes()
		require.Len(t, writes, 2)
		require.Equal(t, false, writes[1].Value)
	})
}
