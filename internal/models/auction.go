package models

import "time"

type TimeAuctionExperience struct {
	ID                   string     `db:"id"`
	Title                string     `db:"title"`
	Description          string     `db:"description"`
	Category             string     `db:"category"`
	Organizer            string     `db:"organizer"`
	HoursRequired        float64    `db:"hours_required"`
	MaxParticipants      int        `db:"max_participants"`
	IsVirtual            bool       `db:"is_virtual"`
	Location             *string    `db:"location"`
	ExperienceDate       time.Time  `db:"experience_date"`
	RegistrationDeadline *time.Time `db:"registration_deadline"`
	IsActive             bool       `db:"is_active"`
	CreatedAt            time.Time  `db:"created_at"`
}

type VolunteerHourLog struct {
	ID                string     `db:"id"`
	VolunteerID       string     `db:"volunteer_id"`
	ActivityType      string     `db:"activity_type"`
	HoursEarned       float64    `db:"hours_earned"`
	Description       *string    `db:"description"`
	IsVerified        bool       `db:"is_verified"`
	VerifiedBy        *string    `db:"verified_by"`
	VerificationNotes *string    `db:"verification_notes"`
	VerifiedAt        *time.Time `db:"verified_at"`
	CreatedAt         time.Time  `db:"created_at"`
}

type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusConfirmed  RegistrationStatus = "confirmed"
	StatusCompleted  RegistrationStatus = "completed"
	StatusCancelled  RegistrationStatus = "cancelled"
)

type ExperienceRegistration struct {
	ID               string             `db:"id"`
	ExperienceID     string             `db:"experience_id"`
	VolunteerID      string             `db:"volunteer_id"`
	HoursSpent       float64            `db:"hours_spent"`
	Status           RegistrationStatus `db:"registration_status"`
	CompletionRating *int               `db:"completion_rating"`
	Feedback         *string            `db:"feedback"`
	RegisteredAt     time.Time          `db:"registered_at"`
	CompletedAt      *time.Time         `db:"completed_at"`
}

type RegistrationWithExperience struct {
	Registration ExperienceRegistration
	Experience   TimeAuctionExperience
}

type VolunteerBadge struct {
	ID               string    `db:"id"`
	VolunteerID      string    `db:"volunteer_id"`
	BadgeType        string    `db:"badge_type"`
	BadgeLevel       string    `db:"badge_level"`
	HoursRequirement float64   `db:"hours_requirement"`
	QualityScore     float64   `db:"quality_score"`
	EarnedAt         time.Time `db:"earned_at"`
}

type LeaderboardEntry struct {
	VolunteerID   string  `json:"volunteer_id"`
	Name          string  `json:"name"`
	TotalHours    float64 `json:"total_hours"`
	ActivityCount int     `json:"activity_count"`
}

type ActivityBreakdown struct {
	Hours float64 `json:"hours"`
	Count int     `json:"count"`
}

type PendingVerification struct {
	Log           VolunteerHourLog
	VolunteerName string
}

type VolunteerStats struct {
	TotalHours        float64                      `json:"total_hours"`
	SpentHours        float64                      `json:"spent_hours"`
	AvailableHours    float64                      `json:"available_hours"`
	QualityScore      float64                      `json:"quality_score"`
	BadgesCount       int                          `json:"badges_count"`
	LatestBadge       *VolunteerBadge              `json:"latest_badge"`
	ActivityBreakdown map[string]ActivityBreakdown `json:"activity_breakdown"`
}
