package timeauction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/metrics"
	"github.com/reachhk/engage/internal/models"
)

// Исходы регистрации (метка метрики).
const (
	outcomeOK           = "ok"
	outcomeNotFound     = "not_found"
	outcomeInactive     = "inactive"
	outcomePastDeadline = "past_deadline"
	outcomeNoHours      = "insufficient_hours"
	outcomeDuplicate    = "duplicate"
	outcomeFull         = "full"
)

// RegisterForExperience spends nothing up front: it locks the experience's
// current hours_required into the registration. Hours count as spent once
// the registration is completed.
func (s *Service) RegisterForExperience(ctx context.Context, volunteerID, experienceID string) (bool, error) {
	outcome, err := s.register(ctx, volunteerID, experienceID)
	if err != nil {
		return false, fmt.Errorf("register for experience: %w", err)
	}
	metrics.Registrations.WithLabelValues(outcome).Inc()
	if outcome != outcomeOK {
		s.log.Debug("registration rejected",
			zap.String("volunteer_id", volunteerID),
			zap.String("experience_id", experienceID),
			zap.String("reason", outcome))
		return false, nil
	}
	return true, nil
}

func (s *Service) register(ctx context.Context, volunteerID, experienceID string) (string, error) {
	exp, err := s.store.ExperienceByID(ctx, experienceID)
	if err != nil {
		return "", err
	}
	if exp == nil {
		return outcomeNotFound, nil
	}
	if !exp.IsActive {
		return outcomeInactive, nil
	}
	now := s.now()
	if exp.RegistrationDeadline != nil && now.After(*exp.RegistrationDeadline) {
		return outcomePastDeadline, nil
	}

	available, err := s.AvailableHours(ctx, volunteerID)
	if err != nil {
		return "", err
	}
	if available < exp.HoursRequired {
		return outcomeNoHours, nil
	}

	exists, err := s.store.RegistrationExists(ctx, experienceID, volunteerID)
	if err != nil {
		return "", err
	}
	if exists {
		return outcomeDuplicate, nil
	}

	active, err := s.store.CountActiveRegistrations(ctx, experienceID)
	if err != nil {
		return "", err
	}
	if active >= exp.MaxParticipants {
		return outcomeFull, nil
	}

	r := &models.ExperienceRegistration{
		ID:           uuid.NewString(),
		ExperienceID: experienceID,
		VolunteerID:  volunteerID,
		HoursSpent:   exp.HoursRequired,
		Status:       models.StatusRegistered,
		RegisteredAt: now,
	}
	if err := s.store.InsertRegistration(ctx, r); err != nil {
		return "", err
	}
	s.log.Info("volunteer registered",
		zap.String("volunteer_id", volunteerID),
		zap.String("experience_id", experienceID),
		zap.Float64("hours", r.HoursSpent))
	return outcomeOK, nil
}

// transitions: допустимые исходные статусы для каждого целевого.
var transitions = map[models.RegistrationStatus][]models.RegistrationStatus{
	models.StatusConfirmed: {models.StatusRegistered},
	models.StatusCompleted: {models.StatusConfirmed},
	models.StatusCancelled: {models.StatusRegistered, models.StatusConfirmed},
}

// CanTransition reports whether a registration may move from one status to another.
func CanTransition(from, to models.RegistrationStatus) bool {
	for _, f := range transitions[to] {
		if f == from {
			return true
		}
	}
	return false
}

func (s *Service) ConfirmRegistration(ctx context.Context, registrationID string) (bool, error) {
	ok, err := s.store.TransitionRegistration(ctx, registrationID,
		transitions[models.StatusConfirmed], models.StatusConfirmed, RegistrationUpdate{})
	if err != nil {
		return false, fmt.Errorf("confirm registration: %w", err)
	}
	return ok, nil
}

// CompleteExperience closes a confirmed registration. rating is optional
// and must be within 1..5 when present.
func (s *Service) CompleteExperience(ctx context.Context, registrationID string, rating *int, feedback string) (bool, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return false, fmt.Errorf("complete experience: %w: rating %d out of 1..5", models.ErrInvalidInput, *rating)
	}
	now := s.now()
	upd := RegistrationUpdate{CompletedAt: &now, Rating: rating}
	if feedback != "" {
		upd.Feedback = &feedback
	}
	ok, err := s.store.TransitionRegistration(ctx, registrationID,
		transitions[models.StatusCompleted], models.StatusCompleted, upd)
	if err != nil {
		return false, fmt.Errorf("complete experience: %w", err)
	}
	return ok, nil
}

func (s *Service) CancelRegistration(ctx context.Context, registrationID string) (bool, error) {
	ok, err := s.store.TransitionRegistration(ctx, registrationID,
		transitions[models.StatusCancelled], models.StatusCancelled, RegistrationUpdate{})
	if err != nil {
		return false, fmt.Errorf("cancel registration: %w", err)
	}
	return ok, nil
}

// VolunteerRegistrations returns registrations with their experience, newest first.
func (s *Service) VolunteerRegistrations(ctx context.Context, volunteerID string) ([]models.RegistrationWithExperience, error) {
	out, err := s.store.RegistrationsForVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("volunteer registrations: %w", err)
	}
	return out, nil
}
