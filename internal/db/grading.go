package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reachhk/engage/internal/ctxutil"
	"github.com/reachhk/engage/internal/grading"
	"github.com/reachhk/engage/internal/models"
)

var _ grading.Store = (*GradingRepo)(nil)

type GradingRepo struct {
	db *sql.DB
}

func NewGradingRepo(database *sql.DB) *GradingRepo {
	return &GradingRepo{db: database}
}

// InsertSubmission: работы создаёт внешний слой; здесь для сидов и тестов.
func (r *GradingRepo) InsertSubmission(ctx context.Context, s *models.Submission) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	status := s.Status
	if status == "" {
		status = models.SubmissionSubmitted
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO submissions (id, student_id, parent_id, content, status, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.StudentID, s.ParentID, s.Content, status, s.SubmittedAt)
	return err
}

func (r *GradingRepo) SubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var s models.Submission
	err := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, parent_id, content, status, submitted_at
		FROM submissions WHERE id = $1`, id,
	).Scan(&s.ID, &s.StudentID, &s.ParentID, &s.Content, &s.Status, &s.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GradingRepo) MarkSubmissionGraded(ctx context.Context, id string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE submissions SET status = $2 WHERE id = $1`, id, models.SubmissionGraded)
	return err
}

func (r *GradingRepo) InsertGradingSession(ctx context.Context, gs *models.GradingSession) error {
	criteria, err := json.Marshal(gs.GradingCriteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ai_grading_sessions (
			id, submission_id, model_used, raw_score, adjusted_score, confidence_level,
			grading_criteria, ai_feedback, personalized_suggestions, processing_time_ms, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9,$10,$11)`,
		gs.ID, gs.SubmissionID, gs.ModelUsed, gs.RawScore, gs.AdjustedScore, gs.ConfidenceLevel,
		string(criteria), gs.AIFeedback, gs.PersonalizedSuggestions, gs.ProcessingTimeMs, gs.CreatedAt)
	return err
}

// RecentScores: последняя оценка каждой проверенной работы, новые сверху.
func (r *GradingRepo) RecentScores(ctx context.Context, studentID string, limit int) ([]float64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.adjusted_score
		FROM submissions s
		JOIN LATERAL (
			SELECT adjusted_score
			FROM ai_grading_sessions
			WHERE submission_id = s.id
			ORDER BY created_at DESC
			LIMIT 1
		) g ON TRUE
		WHERE s.student_id = $1 AND s.status = $2
		ORDER BY s.submitted_at DESC
		LIMIT $3`, studentID, models.SubmissionGraded, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *GradingRepo) InsertAlert(ctx context.Context, a *models.PerformanceAlert) error {
	trigger, err := json.Marshal(a.TriggerData)
	if err != nil {
		return fmt.Errorf("marshal trigger: %w", err)
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO performance_alerts (
			id, student_id, parent_id, alert_type, severity, message, trigger_data,
			is_resolved, sent_to_ngo, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9,$10)`,
		a.ID, a.StudentID, a.ParentID, a.AlertType, string(a.Severity), a.Message, string(trigger),
		a.IsResolved, a.SentToNGO, a.CreatedAt)
	return err
}

func (r *GradingRepo) MarkAlertSentToNGO(ctx context.Context, alertID string, at time.Time) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		UPDATE performance_alerts SET sent_to_ngo = TRUE, ngo_notified_at = $2 WHERE id = $1`,
		alertID, at)
	return err
}

func (r *GradingRepo) AlertsForParent(ctx context.Context, parentID string, unresolvedOnly bool) ([]models.PerformanceAlert, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, parent_id, alert_type, severity, message, trigger_data,
		       is_resolved, resolved_at, sent_to_ngo, ngo_notified_at, created_at
		FROM performance_alerts
		WHERE parent_id = $1 AND (NOT $2 OR is_resolved = FALSE)
		ORDER BY created_at DESC`, parentID, unresolvedOnly)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PerformanceAlert
	for rows.Next() {
		var (
			a       models.PerformanceAlert
			trigger []byte
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ParentID, &a.AlertType, &a.Severity, &a.Message, &trigger,
			&a.IsResolved, &a.ResolvedAt, &a.SentToNGO, &a.NGONotifiedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(trigger) > 0 {
			if err := json.Unmarshal(trigger, &a.TriggerData); err != nil {
				return nil, fmt.Errorf("alert %s trigger_data: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *GradingRepo) ResolveAlert(ctx context.Context, alertID string, at time.Time) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `
		UPDATE performance_alerts SET is_resolved = TRUE, resolved_at = $2
		WHERE id = $1 AND is_resolved = FALSE`, alertID, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const streakColumns = `id, owner_id, student_id, streak_type, current_streak, longest_streak, last_activity_date, created_at, updated_at`

func scanStreak(row interface{ Scan(...any) error }) (*models.UserStreak, error) {
	var (
		s    models.UserStreak
		last sql.NullTime
	)
	err := row.Scan(&s.ID, &s.OwnerID, &s.StudentID, &s.StreakType, &s.CurrentStreak,
		&s.LongestStreak, &last, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if last.Valid {
		d := last.Time
		s.LastActivityDate = &d
	}
	return &s, nil
}

func (r *GradingRepo) Streak(ctx context.Context, ownerID, studentID, streakType string) (*models.UserStreak, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanStreak(r.db.QueryRowContext(ctx, `
		SELECT `+streakColumns+`
		FROM user_streaks
		WHERE owner_id = $1 AND student_id = $2 AND streak_type = $3`, ownerID, studentID, streakType))
}

func (r *GradingRepo) InsertStreak(ctx context.Context, s *models.UserStreak) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_streaks (`+streakColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.OwnerID, s.StudentID, s.StreakType, s.CurrentStreak, s.LongestStreak,
		s.LastActivityDate, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *GradingRepo) UpdateStreak(ctx context.Context, s *models.UserStreak) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_streaks
		SET current_streak = $2, longest_streak = $3, last_activity_date = $4, updated_at = $5
		WHERE id = $1`,
		s.ID, s.CurrentStreak, s.LongestStreak, s.LastActivityDate, s.UpdatedAt)
	return err
}

func (r *GradingRepo) StreaksForStudent(ctx context.Context, studentID string) ([]models.UserStreak, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+streakColumns+`
		FROM user_streaks
		WHERE student_id = $1
		ORDER BY updated_at`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.UserStreak
	for rows.Next() {
		s, err := scanStreak(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
