package service

import (
	"math"
	"strings"
	"time"

	"github.com/leslesan/geniuz-api/internal/models"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
)

// dateLayouts are the accepted formats for startDate/endDate query params.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// resolveWindow builds the current reporting window from optional bounds.
// Each bound defaults independently: a missing end is now, a missing start
// is now minus the lookback. Malformed input fails here, before any fetch.
func resolveWindow(startRaw, endRaw string, lookbackDays int, now time.Time) (models.TimeWindow, error) {
	if lookbackDays < 1 {
		lookbackDays = 30
	}
	now = now.UTC()

	end := now
	if raw := strings.TrimSpace(endRaw); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return models.TimeWindow{}, appErrors.Wrap(err, appErrors.ErrInvalidRange.Code, appErrors.ErrInvalidRange.Status, "malformed endDate")
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -lookbackDays)
	if raw := strings.TrimSpace(startRaw); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return models.TimeWindow{}, appErrors.Wrap(err, appErrors.ErrInvalidRange.Code, appErrors.ErrInvalidRange.Status, "malformed startDate")
		}
		start = parsed
	}

	if !start.Before(end) {
		return models.TimeWindow{}, appErrors.Clone(appErrors.ErrInvalidRange, "startDate must be before endDate")
	}

	return models.TimeWindow{Start: start, End: end}, nil
}

// precedingWindow returns the same-length window ending exactly where w
// begins. Length is the window duration in whole days, rounded up, with a
// one-day floor.
func precedingWindow(w models.TimeWindow) models.TimeWindow {
	days := int(math.Ceil(w.End.Sub(w.Start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return models.TimeWindow{
		Start: w.Start.AddDate(0, 0, -days),
		End:   w.Start,
	}
}

// deltaPct returns the period-over-period change in percent, or nil when the
// base is zero so callers never see Inf or NaN.
func deltaPct(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := (current - previous) / previous * 100
	return &v
}

// progressCompleted applies the completion rule: an explicit task total wins,
// then an explicit percentage, otherwise the record is incomplete.
func progressCompleted(rec models.ProgressRecord) bool {
	if rec.TotalTasks > 0 {
		return rec.TasksDone >= rec.TotalTasks
	}
	if rec.Percent != nil {
		return *rec.Percent >= 100
	}
	return false
}

// progressPercent normalises a record into [0, 100] using the same priority
// order as progressCompleted.
func progressPercent(rec models.ProgressRecord) float64 {
	if rec.TotalTasks > 0 {
		return clampPercent(float64(rec.TasksDone) / float64(rec.TotalTasks) * 100)
	}
	if rec.Percent != nil {
		return clampPercent(*rec.Percent)
	}
	return 0
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
