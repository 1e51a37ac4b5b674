package timeauction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/metrics"
	"github.com/reachhk/engage/internal/models"
)

// QualityScore: средняя оценка завершённых регистраций, 3.0 если оценок нет.
func (s *Service) QualityScore(ctx context.Context, volunteerID string) (float64, error) {
	avg, n, err := s.store.AverageCompletionRating(ctx, volunteerID)
	if err != nil {
		return 0, fmt.Errorf("quality score: %w", err)
	}
	if n == 0 {
		return DefaultQualityScore, nil
	}
	return avg, nil
}

// EvaluateBadges awards every qualifying (tier, level) badge the volunteer
// does not hold yet and returns the newly inserted ones.
func (s *Service) EvaluateBadges(ctx context.Context, volunteerID string) ([]models.VolunteerBadge, error) {
	total, err := s.HoursBalance(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("evaluate badges: %w", err)
	}
	quality, err := s.QualityScore(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("evaluate badges: %w", err)
	}

	var awarded []models.VolunteerBadge
	for _, tier := range BadgeTiers {
		if !tier.Qualifies(total, quality) {
			continue
		}
		level := BadgeLevels[BadgeLevelIndex(total, tier.Hours)]
		exists, err := s.store.BadgeExists(ctx, volunteerID, tier.Type, level)
		if err != nil {
			return nil, fmt.Errorf("evaluate badges: %w", err)
		}
		if exists {
			continue
		}
		b := models.VolunteerBadge{
			ID:               uuid.NewString(),
			VolunteerID:      volunteerID,
			BadgeType:        tier.Type,
			BadgeLevel:       level,
			HoursRequirement: tier.Hours,
			QualityScore:     quality,
			EarnedAt:         s.now(),
		}
		if err := s.store.InsertBadge(ctx, &b); err != nil {
			return nil, fmt.Errorf("evaluate badges: insert: %w", err)
		}
		metrics.BadgesAwarded.WithLabelValues(tier.Type, level).Inc()
		s.log.Info("badge awarded",
			zap.String("volunteer_id", volunteerID),
			zap.String("type", tier.Type),
			zap.String("level", level))
		awarded = append(awarded, b)
	}
	return awarded, nil
}

// VolunteerBadges returns badges newest first.
func (s *Service) VolunteerBadges(ctx context.Context, volunteerID string) ([]models.VolunteerBadge, error) {
	out, err := s.store.BadgesForVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("volunteer badges: %w", err)
	}
	return out, nil
}

func (s *Service) VolunteerStats(ctx context.Context, volunteerID string) (*models.VolunteerStats, error) {
	total, err := s.HoursBalance(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	spent, err := s.HoursSpent(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	quality, err := s.QualityScore(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	badges, err := s.VolunteerBadges(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.store.VerifiedHoursByActivity(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("volunteer stats: %w", err)
	}
	if breakdown == nil {
		breakdown = map[string]models.ActivityBreakdown{}
	}

	st := &models.VolunteerStats{
		TotalHours:        total,
		SpentHours:        spent,
		AvailableHours:    max(0, total-spent),
		QualityScore:      quality,
		BadgesCount:       len(badges),
		ActivityBreakdown: breakdown,
	}
	if len(badges) > 0 {
		latest := badges[0]
		st.LatestBadge = &latest
	}
	return st, nil
}
