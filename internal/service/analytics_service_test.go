package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leslesan/geniuz-api/internal/models"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
)

type fakeRowSource struct {
	payments    map[models.TimeWindow][]models.PaymentRecord
	progress    map[models.TimeWindow][]models.ProgressRecord
	submissions map[models.TimeWindow][]models.SubmissionRecord
	enrollments map[models.TimeWindow][]models.EnrollmentRecord
	enrollCount map[models.TimeWindow]int

	classes, mentors, faculties, materials, assignments, users int

	failPayments    error
	failSubmissions error
	failCounts      error
}

func (f *fakeRowSource) PaymentsInWindow(_ context.Context, w models.TimeWindow) ([]models.PaymentRecord, error) {
	if f.failPayments != nil {
		return nil, f.failPayments
	}
	return f.payments[w], nil
}

func (f *fakeRowSource) ProgressInWindow(_ context.Context, w models.TimeWindow) ([]models.ProgressRecord, error) {
	return f.progress[w], nil
}

func (f *fakeRowSource) SubmissionsInWindow(_ context.Context, w models.TimeWindow) ([]models.SubmissionRecord, error) {
	if f.failSubmissions != nil {
		return nil, f.failSubmissions
	}
	return f.submissions[w], nil
}

func (f *fakeRowSource) EnrollmentsInWindow(_ context.Context, w models.TimeWindow) ([]models.EnrollmentRecord, error) {
	return f.enrollments[w], nil
}

func (f *fakeRowSource) EnrollmentCountInWindow(_ context.Context, w models.TimeWindow) (int, error) {
	return f.enrollCount[w], nil
}

func (f *fakeRowSource) CountClasses(context.Context) (int, error) {
	if f.failCounts != nil {
		return 0, f.failCounts
	}
	return f.classes, nil
}
func (f *fakeRowSource) CountMentors(context.Context) (int, error)     { return f.mentors, nil }
func (f *fakeRowSource) CountFaculties(context.Context) (int, error)   { return f.faculties, nil }
func (f *fakeRowSource) CountMaterials(context.Context) (int, error)   { return f.materials, nil }
func (f *fakeRowSource) CountAssignments(context.Context) (int, error) { return f.assignments, nil }
func (f *fakeRowSource) CountUsers(context.Context) (int, error)       { return f.users, nil }

type memoryCache struct {
	store map[string][]byte
	gets  int
	hits  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.gets++
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	m.hits++
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(context.Context, string) error {
	m.store = map[string][]byte{}
	return nil
}

func newTestAnalyticsService(rows *fakeRowSource, cache *CacheService) *AnalyticsService {
	svc := NewAnalyticsService(rows, cache, nil, zap.NewNop(), 30, time.Minute)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func testWindows(t *testing.T) (models.TimeWindow, models.TimeWindow) {
	t.Helper()
	current := models.TimeWindow{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	return current, precedingWindow(current)
}

func TestOverviewAggregation(t *testing.T) {
	current, previous := testWindows(t)

	rows := &fakeRowSource{
		payments: map[models.TimeWindow][]models.PaymentRecord{
			current:  {{Amount: 120, Status: models.PaymentSucceeded}, {Amount: 80, Status: models.PaymentSucceeded}},
			previous: {{Amount: 100, Status: models.PaymentSucceeded}},
		},
		progress: map[models.TimeWindow][]models.ProgressRecord{
			current: {
				{UserID: "alice", ClassID: "go-101", TotalTasks: 5, TasksDone: 2},
				{UserID: "alice", ClassID: "go-102", Percent: floatPtr(100)},
				{UserID: "bob", ClassID: "go-101", TotalTasks: 5, TasksDone: 5},
				{UserID: "bob", ClassID: "go-101", TotalTasks: 5, TasksDone: 5},
			},
		},
		submissions: map[models.TimeWindow][]models.SubmissionRecord{
			current: {{UserID: "bob", ClassID: "go-101"}, {UserID: "carol", ClassID: "go-103"}},
		},
		enrollCount: map[models.TimeWindow]int{current: 12, previous: 10},
		classes:     4, mentors: 3, faculties: 2, materials: 9, assignments: 7, users: 40,
	}

	svc := newTestAnalyticsService(rows, nil)
	snapshot, cacheHit, err := svc.Overview(context.Background(), "2024-02-01", "2024-03-01")
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, current, snapshot.Window)
	assert.InDelta(t, 200, snapshot.KPIs.TotalRevenue, 1e-9)

	// union of progress and submission users: alice, bob, carol
	assert.Equal(t, 3, snapshot.KPIs.ActiveStudents)

	// bob/go-101 counts once despite two completed rows, alice/go-102 by percent
	assert.Equal(t, 2, snapshot.KPIs.CompletedClasses)

	// best-per-user: alice 100, bob 100 -> 100
	assert.InDelta(t, 100, snapshot.KPIs.AvgProgressPercent, 1e-9)

	assert.Equal(t, 12, snapshot.KPIs.EnrollCount)
	assert.Equal(t, models.ReferenceCounts{Classes: 4, Mentors: 3, Faculties: 2, Materials: 9, Assignments: 7, Users: 40}, snapshot.ReferenceCounts)

	require.NotNil(t, snapshot.KPIs.Deltas.RevenuePct)
	assert.InDelta(t, 100, *snapshot.KPIs.Deltas.RevenuePct, 1e-9)
	require.NotNil(t, snapshot.KPIs.Deltas.EnrollPct)
	assert.InDelta(t, 20, *snapshot.KPIs.Deltas.EnrollPct, 1e-9)

	// previous window had no progress or submissions, so those bases are zero
	assert.Nil(t, snapshot.KPIs.Deltas.ActiveStudentsPct)
	assert.Nil(t, snapshot.KPIs.Deltas.CompletedClassesPct)
	assert.Nil(t, snapshot.KPIs.Deltas.AvgProgressPct)
}

func TestOverviewBestProgressPerUser(t *testing.T) {
	current, _ := testWindows(t)

	rows := &fakeRowSource{
		progress: map[models.TimeWindow][]models.ProgressRecord{
			current: {
				{UserID: "alice", ClassID: "a", Percent: floatPtr(40)},
				{UserID: "alice", ClassID: "b", Percent: floatPtr(100)},
				{UserID: "bob", ClassID: "a", Percent: floatPtr(40)},
			},
		},
	}

	svc := newTestAnalyticsService(rows, nil)
	snapshot, _, err := svc.Overview(context.Background(), "2024-02-01", "2024-03-01")
	require.NoError(t, err)

	// mean of alice's best (100) and bob's best (40)
	assert.InDelta(t, 70, snapshot.KPIs.AvgProgressPercent, 1e-9)
}

func TestOverviewSingleFailureFailsWhole(t *testing.T) {
	rows := &fakeRowSource{
		failSubmissions: errors.New("connection reset"),
		classes:         4,
	}

	svc := newTestAnalyticsService(rows, nil)
	snapshot, _, err := svc.Overview(context.Background(), "2024-02-01", "2024-03-01")
	require.Error(t, err)
	assert.Nil(t, snapshot)
	assert.Equal(t, appErrors.ErrAggregation.Code, appErrors.FromError(err).Code)
}

func TestOverviewInvalidRangeBeforeFetch(t *testing.T) {
	rows := &fakeRowSource{failPayments: errors.New("must not be called")}

	svc := newTestAnalyticsService(rows, nil)
	_, _, err := svc.Overview(context.Background(), "bogus", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)
}

func TestOverviewCacheHitShortCircuits(t *testing.T) {
	current, previous := testWindows(t)
	rows := &fakeRowSource{
		enrollCount: map[models.TimeWindow]int{current: 5, previous: 1},
	}

	backing := newMemoryCache()
	cache := NewCacheService(backing, nil, time.Minute, zap.NewNop(), true)
	svc := newTestAnalyticsService(rows, cache)

	first, hit, err := svc.Overview(context.Background(), "2024-02-01", "2024-03-01")
	require.NoError(t, err)
	assert.False(t, hit)

	rows.failPayments = errors.New("db down")
	second, hit, err := svc.Overview(context.Background(), "2024-02-01", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.KPIs.EnrollCount, second.KPIs.EnrollCount)
}

func TestMonthlyEnrollments(t *testing.T) {
	window := yearWindow(2024)
	rows := &fakeRowSource{
		enrollments: map[models.TimeWindow][]models.EnrollmentRecord{
			window: {
				{ID: "1", EnrolledAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
				{ID: "2", EnrolledAt: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)},
				{ID: "3", EnrolledAt: time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)},
			},
		},
	}

	svc := newTestAnalyticsService(rows, nil)
	res, err := svc.MonthlyEnrollments(context.Background(), 2024)
	require.NoError(t, err)

	require.Len(t, res.Months, 12)
	require.Len(t, res.Counts, 12)
	assert.Equal(t, "Jan 2024", res.Months[0])
	assert.Equal(t, 2, res.Counts[0])
	assert.Equal(t, 1, res.Counts[11])
	assert.Equal(t, 0, res.Counts[5])
}

func TestMonthlyRevenue(t *testing.T) {
	window := yearWindow(2024)
	rows := &fakeRowSource{
		payments: map[models.TimeWindow][]models.PaymentRecord{
			window: {
				{Amount: 100, PaidAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
				{Amount: 50, PaidAt: time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)},
				{Amount: 75, PaidAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
	}

	svc := newTestAnalyticsService(rows, nil)
	res, err := svc.MonthlyRevenue(context.Background(), 2024)
	require.NoError(t, err)

	assert.InDelta(t, 150, res.Revenues[2], 1e-9)
	assert.InDelta(t, 75, res.Revenues[6], 1e-9)
	assert.InDelta(t, 0, res.Revenues[0], 1e-9)
}

func TestMonthlyDefaultsToCurrentYear(t *testing.T) {
	rows := &fakeRowSource{enrollments: map[models.TimeWindow][]models.EnrollmentRecord{}}
	svc := newTestAnalyticsService(rows, nil)

	res, err := svc.MonthlyEnrollments(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Jan 2024", res.Months[0])
}
