package timeauction

import (
	"context"
	"time"

	"github.com/reachhk/engage/internal/models"
)

type ExperienceFilter struct {
	Category  string
	IsVirtual *bool
	// ActiveOnly оставляет активные, у которых дедлайн не прошёл относительно Now.
	ActiveOnly bool
	Now        time.Time
}

// RegistrationUpdate: поля, выставляемые вместе со сменой статуса.
type RegistrationUpdate struct {
	CompletedAt *time.Time
	Rating      *int
	Feedback    *string
}

// Store: каталог, журнал часов, регистрации и значки волонтёров.
type Store interface {
	InsertExperience(ctx context.Context, e *models.TimeAuctionExperience) error
	ExperienceByID(ctx context.Context, id string) (*models.TimeAuctionExperience, error)
	ListExperiences(ctx context.Context, f ExperienceFilter) ([]models.TimeAuctionExperience, error)
	SetExperienceActive(ctx context.Context, id string, active bool) (bool, error)

	InsertHourLog(ctx context.Context, l *models.VolunteerHourLog) error
	// VerifyHourLog marks an unverified log verified and returns its volunteer.
	VerifyHourLog(ctx context.Context, logID, verifierID string, notes *string, at time.Time) (volunteerID string, ok bool, err error)
	PendingVerifications(ctx context.Context) ([]models.PendingVerification, error)
	UpsertUser(ctx context.Context, u models.User) error

	SumVerifiedHours(ctx context.Context, volunteerID string) (float64, error)
	SumCompletedHoursSpent(ctx context.Context, volunteerID string) (float64, error)
	// AverageCompletionRating averages ratings of completed registrations; n is the rated count.
	AverageCompletionRating(ctx context.Context, volunteerID string) (avg float64, n int, err error)
	VerifiedHoursByActivity(ctx context.Context, volunteerID string) (map[string]models.ActivityBreakdown, error)

	RegistrationExists(ctx context.Context, experienceID, volunteerID string) (bool, error)
	CountActiveRegistrations(ctx context.Context, experienceID string) (int, error)
	InsertRegistration(ctx context.Context, r *models.ExperienceRegistration) error
	// TransitionRegistration sets status to `to` only when the current status is in `from`.
	TransitionRegistration(ctx context.Context, id string, from []models.RegistrationStatus, to models.RegistrationStatus, upd RegistrationUpdate) (bool, error)
	RegistrationsForVolunteer(ctx context.Context, volunteerID string) ([]models.RegistrationWithExperience, error)

	BadgeExists(ctx context.Context, volunteerID, badgeType, badgeLevel string) (bool, error)
	InsertBadge(ctx context.Context, b *models.VolunteerBadge) error
	BadgesForVolunteer(ctx context.Context, volunteerID string) ([]models.VolunteerBadge, error)

	// VerifiedHoursLeaderboard sums verified hours per volunteer created at or after since (nil: all time).
	VerifiedHoursLeaderboard(ctx context.Context, since *time.Time, limit int) ([]models.LeaderboardEntry, error)
}

// LeaderboardCache: необязательный кэш лидерборда (cache-aside).
type LeaderboardCache interface {
	Get(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, bool, error)
	Set(ctx context.Context, period string, limit int, entries []models.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}
