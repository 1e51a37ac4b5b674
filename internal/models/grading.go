package models

import "time"

type Submission struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	ParentID    string    `db:"parent_id"`
	Content     string    `db:"content"`
	Status      string    `db:"status"` // submitted|graded
	SubmittedAt time.Time `db:"submitted_at"`
}

const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

type GradingSession struct {
	ID                      string             `db:"id"`
	SubmissionID            string             `db:"submission_id"`
	ModelUsed               string             `db:"model_used"`
	RawScore                float64            `db:"raw_score"`
	AdjustedScore           float64            `db:"adjusted_score"`
	ConfidenceLevel         float64            `db:"confidence_level"`
	GradingCriteria         map[string]float64 `db:"grading_criteria"`
	AIFeedback              string             `db:"ai_feedback"`
	PersonalizedSuggestions string             `db:"personalized_suggestions"`
	ProcessingTimeMs        int64              `db:"processing_time_ms"`
	CreatedAt               time.Time          `db:"created_at"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Escalates: high/critical уходят во внешнюю организацию (NGO).
func (s Severity) Escalates() bool {
	return s == SeverityHigh || s == SeverityCritical
}

const (
	AlertLowScore             = "low_score"
	AlertDecliningPerformance = "declining_performance"
	AlertStreakBroken         = "streak_broken"
)

type PerformanceAlert struct {
	ID            string         `db:"id"`
	StudentID     string         `db:"student_id"`
	ParentID      string         `db:"parent_id"`
	AlertType     string         `db:"alert_type"`
	Severity      Severity       `db:"severity"`
	Message       string         `db:"message"`
	TriggerData   map[string]any `db:"trigger_data"`
	IsResolved    bool           `db:"is_resolved"`
	ResolvedAt    *time.Time     `db:"resolved_at"`
	SentToNGO     bool           `db:"sent_to_ngo"`
	NGONotifiedAt *time.Time     `db:"ngo_notified_at"`
	CreatedAt     time.Time      `db:"created_at"`
}

type UserStreak struct {
	ID               string     `db:"id"`
	OwnerID          string     `db:"owner_id"`
	StudentID        string     `db:"student_id"`
	StreakType       string     `db:"streak_type"`
	CurrentStreak    int        `db:"current_streak"`
	LongestStreak    int        `db:"longest_streak"`
	LastActivityDate *time.Time `db:"last_activity_date"` // дата без времени
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}
