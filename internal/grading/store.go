package grading

import (
	"context"
	"time"

	"github.com/reachhk/engage/internal/models"
)

// Store: сессии оценивания, алерты и серии.
type Store interface {
	SubmissionByID(ctx context.Context, id string) (*models.Submission, error)
	MarkSubmissionGraded(ctx context.Context, id string) error
	InsertGradingSession(ctx context.Context, gs *models.GradingSession) error
	// RecentScores returns adjusted scores of graded submissions, newest first.
	RecentScores(ctx context.Context, studentID string, limit int) ([]float64, error)

	InsertAlert(ctx context.Context, a *models.PerformanceAlert) error
	MarkAlertSentToNGO(ctx context.Context, alertID string, at time.Time) error
	AlertsForParent(ctx context.Context, parentID string, unresolvedOnly bool) ([]models.PerformanceAlert, error)
	// ResolveAlert reports false when no unresolved alert matched.
	ResolveAlert(ctx context.Context, alertID string, at time.Time) (bool, error)

	Streak(ctx context.Context, ownerID, studentID, streakType string) (*models.UserStreak, error)
	InsertStreak(ctx context.Context, s *models.UserStreak) error
	UpdateStreak(ctx context.Context, s *models.UserStreak) error
	StreaksForStudent(ctx context.Context, studentID string) ([]models.UserStreak, error)
}
