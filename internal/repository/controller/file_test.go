package controller

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	image, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, image)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal image.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "controller.json")
	repo := NewFileRepository(file)

	raisedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	want := &alarm.ControllerImage{
		Active: []alarm.RaisedAlarm{{
			ActiveAlarm: alarm.ActiveAlarm{
				ID:          4,
				Severity:    alarm.SeverityCritical,
				OccurredAt:  "09:26:53",
				Name:        "Overtemperature",
				Description: "Element bank 2 above 180 °C",
			},
			RaisedAt: raisedAt,
		}},
		History: []alarm.HistoryRecord{{
			OccurredAt:      "08:00:00",
			ClearedAt:       "08:02:30",
			Name:            "Low airflow",
			DurationSeconds: 150,
			WasAcknowledged: true,
			Severity:        alarm.SeverityWarning,
		}},
		NextID: 5,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_HandWrittenScenario loads a scenario without optional keys
// and derives the next id from the active list.
func TestFileRepository_HandWrittenScenario(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "scenario.json")
	scenario := `{
  "Active": [
    {"ID": 7, "Severity": 2, "Name": "Phase imbalance", "Acknowledged": true},
    {"ID": 2, "Severity": 1, "Name": "Main breaker trip"}
  ]
}`
	require.NoError(t, os.WriteFile(file, []byte(scenario), 0o600))

	image, err := NewFileRepository(file).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, image.Active, 2)
	require.True(t, image.Active[0].Acknowledged)
	require.True(t, image.Active[1].RaisedAt.IsZero())
	require.Empty(t, image.History)
	require.Equal(t, 8, image.NextID)
}

// TestFileRepository_Malformed rejects sections with the wrong shape.
func TestFileRepository_Malformed(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"Active": [1, 2]}`), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.ErrorIs(t, err, errMalformed)

	require.NoError(t, os.WriteFile(file, []byte(`not json`), 0o600))

	_, err = NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
}
