package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leslesan/geniuz-api/internal/dto"
	"github.com/leslesan/geniuz-api/internal/models"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	PaymentsInWindow(ctx context.Context, w models.TimeWindow) ([]models.PaymentRecord, error)
	ProgressInWindow(ctx context.Context, w models.TimeWindow) ([]models.ProgressRecord, error)
	SubmissionsInWindow(ctx context.Context, w models.TimeWindow) ([]models.SubmissionRecord, error)
	EnrollmentsInWindow(ctx context.Context, w models.TimeWindow) ([]models.EnrollmentRecord, error)
	EnrollmentCountInWindow(ctx context.Context, w models.TimeWindow) (int, error)
	CountClasses(ctx context.Context) (int, error)
	CountMentors(ctx context.Context) (int, error)
	CountFaculties(ctx context.Context) (int, error)
	CountMaterials(ctx context.Context) (int, error)
	CountAssignments(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
}

// AnalyticsService computes dashboard KPIs over a reporting window, with
// cache integration for the snapshot payload.
type AnalyticsService struct {
	repo         AnalyticsRepository
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	lookbackDays int
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, lookbackDays int, cacheTTL time.Duration) *AnalyticsService {
	if lookbackDays < 1 {
		lookbackDays = 30
	}
	return &AnalyticsService{
		repo:         repo,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		lookbackDays: lookbackDays,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// Overview aggregates the KPI snapshot for the requested window. The boolean
// indicates whether the snapshot originated from cache.
func (s *AnalyticsService) Overview(ctx context.Context, startRaw, endRaw string) (*models.KPISnapshot, bool, error) {
	window, err := resolveWindow(startRaw, endRaw, s.lookbackDays, s.now())
	if err != nil {
		return nil, false, err
	}
	previous := precedingWindow(window)

	cacheKey := fmt.Sprintf("analytics:overview:%s:%s",
		window.Start.UTC().Format(time.RFC3339), window.End.UTC().Format(time.RFC3339))
	var cached models.KPISnapshot
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	var (
		payCur, payPrev   []models.PaymentRecord
		progCur, progPrev []models.ProgressRecord
		subCur, subPrev   []models.SubmissionRecord
		enrollCur         int
		enrollPrev        int
		refs              models.ReferenceCounts
	)

	fetchStart := time.Now()
	err = runConcurrently(ctx,
		func(ctx context.Context) (err error) {
			payCur, err = s.repo.PaymentsInWindow(ctx, window)
			return err
		},
		func(ctx context.Context) (err error) {
			payPrev, err = s.repo.PaymentsInWindow(ctx, previous)
			return err
		},
		func(ctx context.Context) (err error) {
			progCur, err = s.repo.ProgressInWindow(ctx, window)
			return err
		},
		func(ctx context.Context) (err error) {
			progPrev, err = s.repo.ProgressInWindow(ctx, previous)
			return err
		},
		func(ctx context.Context) (err error) {
			subCur, err = s.repo.SubmissionsInWindow(ctx, window)
			return err
		},
		func(ctx context.Context) (err error) {
			subPrev, err = s.repo.SubmissionsInWindow(ctx, previous)
			return err
		},
		func(ctx context.Context) (err error) {
			enrollCur, err = s.repo.EnrollmentCountInWindow(ctx, window)
			return err
		},
		func(ctx context.Context) (err error) {
			enrollPrev, err = s.repo.EnrollmentCountInWindow(ctx, previous)
			return err
		},
		func(ctx context.Context) (err error) {
			refs.Classes, err = s.repo.CountClasses(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			refs.Mentors, err = s.repo.CountMentors(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			refs.Faculties, err = s.repo.CountFaculties(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			refs.Materials, err = s.repo.CountMaterials(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			refs.Assignments, err = s.repo.CountAssignments(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			refs.Users, err = s.repo.CountUsers(ctx)
			return err
		},
	)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("analytics aggregation failed", zap.Error(err))
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrAggregation.Code, appErrors.ErrAggregation.Status, appErrors.ErrAggregation.Message)
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_overview", time.Since(fetchStart))
	}

	current := reduceKPIs(payCur, progCur, subCur, enrollCur)
	baseline := reduceKPIs(payPrev, progPrev, subPrev, enrollPrev)

	current.Deltas = models.KPIDeltas{
		RevenuePct:          deltaPct(current.TotalRevenue, baseline.TotalRevenue),
		ActiveStudentsPct:   deltaPct(float64(current.ActiveStudents), float64(baseline.ActiveStudents)),
		CompletedClassesPct: deltaPct(float64(current.CompletedClasses), float64(baseline.CompletedClasses)),
		AvgProgressPct:      deltaPct(current.AvgProgressPercent, baseline.AvgProgressPercent),
		EnrollPct:           deltaPct(float64(current.EnrollCount), float64(baseline.EnrollCount)),
	}

	snapshot := &models.KPISnapshot{
		Window:          window,
		KPIs:            current,
		ReferenceCounts: refs,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, snapshot, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache overview snapshot", zap.Error(err))
		}
	}
	return snapshot, false, nil
}

// MonthlyEnrollments buckets a year's enrollments into twelve monthly counts.
func (s *AnalyticsService) MonthlyEnrollments(ctx context.Context, year int) (*dto.MonthlyEnrollmentsResponse, error) {
	year = s.normaliseYear(year)
	window := yearWindow(year)

	start := time.Now()
	enrollments, err := s.repo.EnrollmentsInWindow(ctx, window)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_monthly_enrollments", time.Since(start))
	}

	counts := make([]int, 12)
	for _, e := range enrollments {
		at := e.EnrolledAt.UTC()
		if at.Year() != year {
			continue
		}
		counts[int(at.Month())-1]++
	}
	return &dto.MonthlyEnrollmentsResponse{Months: monthLabels(year), Counts: counts}, nil
}

// MonthlyRevenue buckets a year's succeeded payments into twelve monthly sums.
func (s *AnalyticsService) MonthlyRevenue(ctx context.Context, year int) (*dto.MonthlyRevenueResponse, error) {
	year = s.normaliseYear(year)
	window := yearWindow(year)

	start := time.Now()
	payments, err := s.repo.PaymentsInWindow(ctx, window)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_monthly_revenue", time.Since(start))
	}

	revenues := make([]float64, 12)
	for _, p := range payments {
		at := p.PaidAt.UTC()
		if at.Year() != year {
			continue
		}
		revenues[int(at.Month())-1] += p.Amount
	}
	return &dto.MonthlyRevenueResponse{Months: monthLabels(year), Revenues: revenues}, nil
}

// SystemMetrics returns the runtime instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) normaliseYear(year int) int {
	if year <= 0 {
		return s.now().UTC().Year()
	}
	return year
}

func yearWindow(year int) models.TimeWindow {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return models.TimeWindow{Start: start, End: start.AddDate(1, 0, 0)}
}

func monthLabels(year int) []string {
	labels := make([]string, 12)
	for i := 0; i < 12; i++ {
		labels[i] = fmt.Sprintf("%s %d", time.Month(i+1).String()[:3], year)
	}
	return labels
}

// runConcurrently executes the tasks in parallel and returns the first
// failure, if any. Results are only valid when it returns nil.
func runConcurrently(ctx context.Context, tasks ...func(context.Context) error) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(tasks))
	for _, task := range tasks {
		wg.Add(1)
		go func(run func(context.Context) error) {
			defer wg.Done()
			if err := run(ctx); err != nil {
				errCh <- err
			}
		}(task)
	}
	wg.Wait()
	close(errCh)
	return <-errCh
}

// reduceKPIs folds the window's rows into the headline figures.
func reduceKPIs(payments []models.PaymentRecord, progress []models.ProgressRecord, submissions []models.SubmissionRecord, enrollCount int) models.KPISet {
	var revenue float64
	for _, p := range payments {
		revenue += p.Amount
	}

	active := make(map[string]struct{})
	for _, p := range progress {
		active[p.UserID] = struct{}{}
	}
	for _, sub := range submissions {
		active[sub.UserID] = struct{}{}
	}

	type userClass struct {
		userID  string
		classID string
	}
	completed := make(map[userClass]struct{})
	bestPercent := make(map[string]float64)
	for _, p := range progress {
		if progressCompleted(p) {
			completed[userClass{p.UserID, p.ClassID}] = struct{}{}
		}
		pct := progressPercent(p)
		if best, ok := bestPercent[p.UserID]; !ok || pct > best {
			bestPercent[p.UserID] = pct
		}
	}

	var avgProgress float64
	if len(bestPercent) > 0 {
		var sum float64
		for _, pct := range bestPercent {
			sum += pct
		}
		avgProgress = sum / float64(len(bestPercent))
	}

	return models.KPISet{
		TotalRevenue:       revenue,
		ActiveStudents:     len(active),
		CompletedClasses:   len(completed),
		AvgProgressPercent: avgProgress,
		EnrollCount:        enrollCount,
	}
}
