package alarms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	"github.com/oshokin/loadbank-hmi/internal/observability/metrics"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

// Command names used in logs and metrics.
const (
	CommandAcknowledge    = "acknowledge"
	CommandAcknowledgeAll = "acknowledge_all"
	CommandClearHistory   = "clear_history"
	CommandReset          = "reset"
)

// Acknowledge pulses the acknowledge flag of alarm id. Only an alarm shown as
// unacknowledged in the current snapshot can be acknowledged; the snapshot
// itself changes only when a later poll sees the controller's update.
func (s *Session) Acknowledge(ctx context.Context, id int) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	a, ok := alarm.FindActive(s.active, id)
	s.mu.Unlock()

	return s.acknowledge(ctx, a, ok, id)
}

// AcknowledgeRow acknowledges the alarm shown in row (1-based) and returns its id.
func (s *Session) AcknowledgeRow(ctx context.Context, row int) (int, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}

	if row < 1 || row > min(len(s.active), s.opts.MaxActiveRows) {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: row %d", ErrRowEmpty, row)
	}

	a := s.active[row-1]
	s.mu.Unlock()

	return a.ID, s.acknowledge(ctx, a, true, a.ID)
}

func (s *Session) acknowledge(ctx context.Context, a alarm.ActiveAlarm, found bool, id int) error {
	if !found {
		return fmt.Errorf("%w: #%d", ErrUnknownAlarm, id)
	}

	if a.Acknowledged {
		return fmt.Errorf("%w: #%d", ErrAlreadyAcknowledged, id)
	}

	ctx = logger.WithKV(ctx, "alarm_id", id)

	return s.pulse(ctx, CommandAcknowledge, remote.Indexed(remote.AlarmAck, id), s.opts.AckHold)
}

// AcknowledgeAll pulses the acknowledge-all flag.
func (s *Session) AcknowledgeAll(ctx context.Context) error {
	return s.pulse(ctx, CommandAcknowledgeAll, remote.AlarmAckAll, s.opts.AckHold)
}

// Reset pulses the system reset flag with the longer reset hold.
func (s *Session) Reset(ctx context.Context) error {
	return s.pulse(ctx, CommandReset, remote.ResetCmd, s.opts.ResetHold)
}

// OpenClearDialog shows the clear-history confirmation.
func (s *Session) OpenClearDialog() error {
	return s.setClearDialog(true)
}

// CancelClearDialog hides the clear-history confirmation without a write.
func (s *Session) CancelClearDialog() error {
	return s.setClearDialog(false)
}

// ConfirmClearHistory hides the confirmation and pulses the clear-history
// flag. It fails with ErrDialogClosed unless the confirmation is showing.
func (s *Session) ConfirmClearHistory(ctx context.Context) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	if !s.clearDialog {
		s.mu.Unlock()
		return ErrDialogClosed
	}

	s.clearDialog = false
	s.renderer.ShowClearDialog(false)
	s.mu.Unlock()

	return s.pulse(ctx, CommandClearHistory, remote.AlarmClearHistory, s.opts.AckHold)
}

func (s *Session) setClearDialog(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	s.clearDialog = visible
	s.renderer.ShowClearDialog(visible)

	return nil
}

// pulse writes true to name and schedules the write of false after hold,
// whether or not the true-write reported success: a failed call may still
// have reached the controller. The true-write is never retried. The release
// outlives ctx so a flag is never left latched.
func (s *Session) pulse(ctx context.Context, command, name string, hold time.Duration) error {
	ctx = logger.WithFields(ctx,
		"command", command,
		"name", name,
		"pulse_id", uuid.NewString())

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrSessionClosed
	}

	err := s.remote.Write(ctx, name, true)
	if err != nil {
		s.metrics.ObservePulse(command, metrics.PulseFailed)
		logger.WarnKV(ctx, "Command write failed", "error", err)
	} else {
		s.metrics.ObservePulse(command, metrics.PulseDelivered)
		logger.InfoKV(ctx, "Command pulse delivered", "hold", hold)
	}

	releaseCtx := context.WithoutCancel(ctx)
	release := func() { s.release(releaseCtx, command, name, hold) }

	if !s.spawn(release) {
		go release()
	}

	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

func (s *Session) release(ctx context.Context, command, name string, hold time.Duration) {
	timer := time.NewTimer(hold)
	defer timer.Stop()

	<-timer.C

	if err := s.remote.Write(ctx, name, false); err != nil {
		s.metrics.ObservePulse(command, metrics.PulseFailed)
		logger.WarnKV(ctx, "Command release failed", "error", err)

		return
	}

	s.metrics.ObservePulse(command, metrics.PulseReleased)
	logger.DebugKV(ctx, "Command pulse released")
}
