package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrActivityNotFound is returned when an activity cannot be located.
var ErrActivityNotFound = errors.New("activity not found")

// Cursor models the pagination token for activity listings.
type Cursor struct {
	Timestamp time.Time
	ID        string
}

// Period buckets dashboard metrics.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Start returns the beginning of the period containing now.
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodWeekly:
		return day.AddDate(0, 0, -6)
	case PeriodMonthly:
		return day.AddDate(0, 0, -29)
	default:
		return day
	}
}

// DailySummary backs the daily effort counter widget.
type DailySummary struct {
	Total int
	Goal  int
}

// TeamMemberStats is one row of the team overview: a member and their effort
// total for the day.
type TeamMemberStats struct {
	UserID      string
	DisplayName string
	Total       int
}

// TypeCount pairs an activity type with its aggregate count.
type TypeCount struct {
	Type  ActivityType
	Count int
}

// PeriodMetrics holds per-type counts for one dashboard period.
type PeriodMetrics struct {
	Period     Period
	ByType     []TypeCount
	TotalCount int
}

// ActivityRepository captures persistence operations for activities and the
// aggregates derived from them.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) error
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Activity, *Cursor, error)
	EffortTotal(ctx context.Context, userID string, since time.Time) (int, error)
	EffortTotalsByUser(ctx context.Context, since time.Time) ([]TeamMemberStats, error)
	CountsByType(ctx context.Context, userID string, since time.Time) ([]TypeCount, error)
}

// Service orchestrates activity workflows for the portal.
type Service struct {
	repo      ActivityRepository
	dailyGoal int
}

// NewService constructs a Service. dailyGoal below 1 falls back to the
// default of 10 efforts per day.
func NewService(repo ActivityRepository, dailyGoal int) *Service {
	if dailyGoal < 1 {
		dailyGoal = 10
	}
	return &Service{repo: repo, dailyGoal: dailyGoal}
}

// LogActivityInput captures a validated submission from the form layer.
type LogActivityInput struct {
	Type      ActivityType
	Timestamp time.Time
	Notes     string
	UserID    string
	LOID      string
	Count     *int
}

// LogActivity persists one activity record under the submitting user.
func (s *Service) LogActivity(ctx context.Context, input LogActivityInput) (*Activity, error) {
	now := time.Now().UTC()
	activity := Activity{
		ID:        uuid.NewString(),
		Type:      input.Type,
		Timestamp: input.Timestamp.UTC(),
		Notes:     input.Notes,
		UserID:    input.UserID,
		LOID:      input.LOID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Type.Countable() && input.Count != nil {
		count := ClampCount(*input.Count)
		activity.Count = &count
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListActivities fetches a user's activities with cursor pagination, newest first.
func (s *Service) ListActivities(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Activity, *Cursor, error) {
	return s.repo.ListByUser(ctx, userID, cursor, limit)
}

// DailySummary reports today's effort total against the configured goal.
func (s *Service) DailySummary(ctx context.Context, userID string, now time.Time) (DailySummary, error) {
	total, err := s.repo.EffortTotal(ctx, userID, PeriodDaily.Start(now))
	if err != nil {
		return DailySummary{}, err
	}
	return DailySummary{Total: total, Goal: s.dailyGoal}, nil
}

// TeamOverview reports today's effort totals for every member, busiest first.
func (s *Service) TeamOverview(ctx context.Context, now time.Time) ([]TeamMemberStats, error) {
	return s.repo.EffortTotalsByUser(ctx, PeriodDaily.Start(now))
}

// Metrics aggregates a user's activity counts by type over the given period.
func (s *Service) Metrics(ctx context.Context, userID string, period Period, now time.Time) (PeriodMetrics, error) {
	counts, err := s.repo.CountsByType(ctx, userID, period.Start(now))
	if err != nil {
		return PeriodMetrics{}, err
	}

	metrics := PeriodMetrics{Period: period, ByType: counts}
	for _, tc := range counts {
		metrics.TotalCount += tc.Count
	}
	return metrics, nil
}
