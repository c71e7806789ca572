package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	"github.com/oshokin/loadbank-hmi/internal/service/alarms"
)

func getPanelHandler(board Panel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, board.State())
	}
}

func getAlarmsHandler(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, toSnapshotDTO(engine.Snapshot()))
	}
}

func selectTabHandler(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab, err := alarm.ParseTab(chi.URLParam(r, "tab"))
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}

		if err = engine.SelectTab(tab); err != nil {
			writeCommandError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func acknowledgeHandler(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "alarmID"))
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}

		if err = engine.Acknowledge(r.Context(), id); err != nil {
			writeCommandError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusAccepted, commandDTO{AlarmID: id})
	}
}

func acknowledgeRowHandler(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := strconv.Atoi(chi.URLParam(r, "row"))
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}

		id, err := engine.AcknowledgeRow(r.Context(), row)
		if err != nil {
			writeCommandError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusAccepted, commandDTO{AlarmID: id})
	}
}

func commandHandler(command func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := command(r.Context()); err != nil {
			writeCommandError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func dialogHandler(toggle func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := toggle(); err != nil {
			writeCommandError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// writeCommandError maps session errors to HTTP statuses. Anything else is a
// failed controller write.
func writeCommandError(ctx context.Context, w http.ResponseWriter, err error) {
	code := http.StatusBadGateway

	switch {
	case errors.Is(err, alarms.ErrUnknownAlarm), errors.Is(err, alarms.ErrRowEmpty):
		code = http.StatusNotFound
	case errors.Is(err, alarms.ErrAlreadyAcknowledged), errors.Is(err, alarms.ErrDialogClosed):
		code = http.StatusConflict
	case errors.Is(err, alarms.ErrSessionClosed):
		code = http.StatusServiceUnavailable
	}

	writeError(ctx, w, code, err)
}

func writeError(ctx context.Context, w http.ResponseWriter, code int, err error) {
	logger.DebugKV(ctx, "Request failed", "status", code, "error", err)
	writeJSON(ctx, w, code, errorDTO{Error: err.Error()})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WarnKV(ctx, "Unable to write response", "error", err)
	}
}
