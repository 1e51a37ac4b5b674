package timeauction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/logging"
	"github.com/reachhk/engage/internal/models"
)

const DefaultLeaderboardLimit = 10

var validate = validator.New(validator.WithRequiredStructEnabled())

type Service struct {
	store Store
	cache LeaderboardCache
	log   *zap.Logger
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Service)

// WithCache включает кэш лидерборда; nil оставляет работу без кэша.
func WithCache(c LeaderboardCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: logging.OrNop(log), loc: time.Local, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func invalid(op string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrInvalidInput, verrs)
	}
	return fmt.Errorf("%s: %w: %v", op, models.ErrInvalidInput, err)
}

// ---- catalog ----

type NewExperience struct {
	Title                string  `validate:"required,max=200"`
	Description          string  `validate:"max=5000"`
	Category             string  `validate:"required,max=50"`
	Organizer            string  `validate:"required,max=200"`
	HoursRequired        float64 `validate:"gte=0"`
	MaxParticipants      int     `validate:"gte=1"`
	IsVirtual            bool
	Location             string     `validate:"max=300"`
	ExperienceDate       time.Time  `validate:"required"`
	RegistrationDeadline *time.Time `validate:"omitempty"`
}

func (s *Service) CreateExperience(ctx context.Context, in NewExperience) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", invalid("create experience", err)
	}
	if in.RegistrationDeadline != nil && in.RegistrationDeadline.After(in.ExperienceDate) {
		return "", fmt.Errorf("create experience: %w: registration deadline after experience date", models.ErrInvalidInput)
	}
	e := &models.TimeAuctionExperience{
		ID:                   uuid.NewString(),
		Title:                in.Title,
		Description:          in.Description,
		Category:             in.Category,
		Organizer:            in.Organizer,
		HoursRequired:        in.HoursRequired,
		MaxParticipants:      in.MaxParticipants,
		IsVirtual:            in.IsVirtual,
		ExperienceDate:       in.ExperienceDate,
		RegistrationDeadline: in.RegistrationDeadline,
		IsActive:             true,
		CreatedAt:            s.now(),
	}
	if in.Location != "" {
		loc := in.Location
		e.Location = &loc
	}
	if err := s.store.InsertExperience(ctx, e); err != nil {
		return "", fmt.Errorf("create experience: %w", err)
	}
	s.log.Info("experience created", zap.String("experience_id", e.ID), zap.String("category", e.Category))
	return e.ID, nil
}

func (s *Service) GetExperience(ctx context.Context, id string) (*models.TimeAuctionExperience, error) {
	e, err := s.store.ExperienceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get experience: %w", err)
	}
	return e, nil
}

type Filter struct {
	Category   string
	IsVirtual  *bool
	ActiveOnly bool
}

// ListExperiences returns matching experiences ordered by experience date.
func (s *Service) ListExperiences(ctx context.Context, f Filter) ([]models.TimeAuctionExperience, error) {
	out, err := s.store.ListExperiences(ctx, ExperienceFilter{
		Category:   f.Category,
		IsVirtual:  f.IsVirtual,
		ActiveOnly: f.ActiveOnly,
		Now:        s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	return out, nil
}

func (s *Service) SetExperienceActive(ctx context.Context, id string, active bool) (bool, error) {
	ok, err := s.store.SetExperienceActive(ctx, id, active)
	if err != nil {
		return false, fmt.Errorf("set experience active: %w", err)
	}
	return ok, nil
}

// ---- hours ----

type hourLogInput struct {
	VolunteerID  string  `validate:"required"`
	ActivityType string  `validate:"required,max=50"`
	Hours        float64 `validate:"gt=0,lte=24"`
}

// LogVolunteerHours records unverified hours and re-evaluates badges.
func (s *Service) LogVolunteerHours(ctx context.Context, volunteerID, activity string, hours float64, description string) (string, error) {
	if err := validate.Struct(hourLogInput{VolunteerID: volunteerID, ActivityType: activity, Hours: hours}); err != nil {
		return "", invalid("log volunteer hours", err)
	}
	l := &models.VolunteerHourLog{
		ID:           uuid.NewString(),
		VolunteerID:  volunteerID,
		ActivityType: activity,
		HoursEarned:  hours,
		CreatedAt:    s.now(),
	}
	if description != "" {
		l.Description = &description
	}
	if err := s.store.InsertHourLog(ctx, l); err != nil {
		return "", fmt.Errorf("log volunteer hours: %w", err)
	}
	if _, err := s.EvaluateBadges(ctx, volunteerID); err != nil {
		return "", fmt.Errorf("log volunteer hours: %w", err)
	}
	return l.ID, nil
}

// VerifyVolunteerHours marks an unverified log as verified. Already
// verified or missing logs report false. If badge re-evaluation fails after
// the log was verified, it returns true together with the error: the
// verification itself is already stored.
func (s *Service) VerifyVolunteerHours(ctx context.Context, logID, verifierID, notes string) (bool, error) {
	var n *string
	if notes != "" {
		n = &notes
	}
	volunteerID, ok, err := s.store.VerifyHourLog(ctx, logID, verifierID, n, s.now())
	if err != nil {
		return false, fmt.Errorf("verify volunteer hours: %w", err)
	}
	if !ok {
		return false, nil
	}
	s.log.Info("hours verified",
		zap.String("log_id", logID),
		zap.String("volunteer_id", volunteerID),
		zap.String("verified_by", verifierID))

	if _, err := s.EvaluateBadges(ctx, volunteerID); err != nil {
		return true, fmt.Errorf("verify volunteer hours: %w", err)
	}
	s.invalidateLeaderboard(ctx)
	return true, nil
}

func (s *Service) HoursBalance(ctx context.Context, volunteerID string) (float64, error) {
	v, err := s.store.SumVerifiedHours(ctx, volunteerID)
	if err != nil {
		return 0, fmt.Errorf("hours balance: %w", err)
	}
	return v, nil
}

func (s *Service) HoursSpent(ctx context.Context, volunteerID string) (float64, error) {
	v, err := s.store.SumCompletedHoursSpent(ctx, volunteerID)
	if err != nil {
		return 0, fmt.Errorf("hours spent: %w", err)
	}
	return v, nil
}

// AvailableHours = max(0, verified − spent on completed experiences).
func (s *Service) AvailableHours(ctx context.Context, volunteerID string) (float64, error) {
	earned, err := s.HoursBalance(ctx, volunteerID)
	if err != nil {
		return 0, err
	}
	spent, err := s.HoursSpent(ctx, volunteerID)
	if err != nil {
		return 0, err
	}
	return max(0, earned-spent), nil
}

// UpsertVolunteer saves a volunteer's display name and drops cached
// leaderboards, which carry names.
func (s *Service) UpsertVolunteer(ctx context.Context, u models.User) error {
	if u.Role == "" {
		u.Role = models.Volunteer
	}
	if err := s.store.UpsertUser(ctx, u); err != nil {
		return fmt.Errorf("upsert volunteer: %w", err)
	}
	s.invalidateLeaderboard(ctx)
	return nil
}

func (s *Service) PendingVerifications(ctx context.Context) ([]models.PendingVerification, error) {
	out, err := s.store.PendingVerifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending verifications: %w", err)
	}
	return out, nil
}
