package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leslesan/geniuz-api/internal/models"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestResolveWindowDefaults(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	window, err := resolveWindow("", "", 30, now)
	require.NoError(t, err)
	assert.Equal(t, now, window.End)
	assert.Equal(t, now.AddDate(0, 0, -30), window.Start)
}

func TestResolveWindowExplicitBounds(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	window, err := resolveWindow("2024-02-01", "2024-03-01", 30, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), window.End)

	window, err = resolveWindow("2024-02-01T06:30:00Z", "", 30, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 6, 30, 0, 0, time.UTC), window.Start)
	assert.Equal(t, now, window.End)
}

func TestResolveWindowRejectsMalformedInput(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := resolveWindow("not-a-date", "", 30, now)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErr.Code)

	_, err = resolveWindow("", "2024/01/01", 30, now)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)
}

func TestResolveWindowRejectsInvertedRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := resolveWindow("2024-03-01", "2024-02-01", 30, now)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)

	_, err = resolveWindow("2024-02-01", "2024-02-01", 30, now)
	require.Error(t, err)
}

func TestPrecedingWindow(t *testing.T) {
	window := models.TimeWindow{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	prev := precedingWindow(window)
	assert.Equal(t, window.Start, prev.End)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), prev.Start)
}

func TestPrecedingWindowRoundsUpPartialDays(t *testing.T) {
	window := models.TimeWindow{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 2, 6, 0, 0, 0, time.UTC),
	}

	prev := precedingWindow(window)
	assert.Equal(t, window.Start, prev.End)
	assert.Equal(t, window.Start.AddDate(0, 0, -2), prev.Start)
}

func TestPrecedingWindowFloorsAtOneDay(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	window := models.TimeWindow{Start: start, End: start.Add(2 * time.Hour)}

	prev := precedingWindow(window)
	assert.Equal(t, start, prev.End)
	assert.Equal(t, start.AddDate(0, 0, -1), prev.Start)
}

func TestDeltaPct(t *testing.T) {
	assert.Nil(t, deltaPct(100, 0))
	assert.Nil(t, deltaPct(0, 0))

	up := deltaPct(150, 100)
	require.NotNil(t, up)
	assert.InDelta(t, 50, *up, 1e-9)

	down := deltaPct(50, 100)
	require.NotNil(t, down)
	assert.InDelta(t, -50, *down, 1e-9)

	flat := deltaPct(100, 100)
	require.NotNil(t, flat)
	assert.InDelta(t, 0, *flat, 1e-9)
}

func TestProgressCompleted(t *testing.T) {
	cases := []struct {
		name string
		rec  models.ProgressRecord
		want bool
	}{
		{"all tasks done", models.ProgressRecord{TotalTasks: 5, TasksDone: 5}, true},
		{"tasks over total", models.ProgressRecord{TotalTasks: 5, TasksDone: 7}, true},
		{"tasks remaining", models.ProgressRecord{TotalTasks: 5, TasksDone: 4}, false},
		{"tasks win over percent", models.ProgressRecord{TotalTasks: 5, TasksDone: 4, Percent: floatPtr(100)}, false},
		{"percent complete", models.ProgressRecord{Percent: floatPtr(100)}, true},
		{"percent over cap", models.ProgressRecord{Percent: floatPtr(120)}, true},
		{"percent partial", models.ProgressRecord{Percent: floatPtr(99.9)}, false},
		{"no signal", models.ProgressRecord{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, progressCompleted(tc.rec))
		})
	}
}

func TestProgressPercent(t *testing.T) {
	assert.InDelta(t, 50, progressPercent(models.ProgressRecord{TotalTasks: 4, TasksDone: 2}), 1e-9)
	assert.InDelta(t, 100, progressPercent(models.ProgressRecord{TotalTasks: 4, TasksDone: 6}), 1e-9)
	assert.InDelta(t, 75, progressPercent(models.ProgressRecord{Percent: floatPtr(75)}), 1e-9)
	assert.InDelta(t, 100, progressPercent(models.ProgressRecord{Percent: floatPtr(250)}), 1e-9)
	assert.InDelta(t, 0, progressPercent(models.ProgressRecord{Percent: floatPtr(-10)}), 1e-9)
	assert.InDelta(t, 0, progressPercent(models.ProgressRecord{}), 1e-9)

	// task counts win over a stored percent
	assert.InDelta(t, 25, progressPercent(models.ProgressRecord{TotalTasks: 4, TasksDone: 1, Percent: floatPtr(90)}), 1e-9)
}
