package grading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reachhk/engage/internal/models"
)

// civilDate: календарная дата как полночь UTC.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) today() time.Time {
	return civilDate(s.now().In(s.loc))
}

// UpdateStreak records one day's outcome for a streak.
//
// A successful day continues the streak only when the last activity was
// yesterday; a repeat on the same day changes nothing; any other gap
// restarts at 1. An unsuccessful day zeroes the streak and, if it was
// running, raises a low streak_broken alert for the owner.
func (s *Service) UpdateStreak(ctx context.Context, ownerID, studentID, streakType string, successful bool) error {
	st, err := s.store.Streak(ctx, ownerID, studentID, streakType)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	today := s.today()
	now := s.now()

	if st == nil {
		st = &models.UserStreak{
			ID:         uuid.NewString(),
			OwnerID:    ownerID,
			StudentID:  studentID,
			StreakType: streakType,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if successful {
			st.CurrentStreak = 1
			st.LongestStreak = 1
			st.LastActivityDate = &today
		}
		if err := s.store.InsertStreak(ctx, st); err != nil {
			return fmt.Errorf("update streak: insert: %w", err)
		}
		return nil
	}

	if successful {
		var last time.Time
		if st.LastActivityDate != nil {
			last = civilDate(*st.LastActivityDate)
		}
		switch {
		case st.LastActivityDate != nil && last.Equal(today):
			return nil
		case st.LastActivityDate != nil && last.Equal(today.AddDate(0, 0, -1)):
			st.CurrentStreak++
		default:
			st.CurrentStreak = 1
		}
		st.LastActivityDate = &today
		st.LongestStreak = max(st.LongestStreak, st.CurrentStreak)
	} else {
		if st.CurrentStreak > 0 {
			msg := fmt.Sprintf("%s streak of %d days was broken.", streakTitle(streakType), st.CurrentStreak)
			if err := s.createAlert(ctx, studentID, ownerID, models.AlertStreakBroken, models.SeverityLow, msg,
				map[string]any{"streak_type": streakType, "broken_streak": st.CurrentStreak},
			); err != nil {
				return fmt.Errorf("update streak: %w", err)
			}
			s.log.Info("streak broken",
				zap.String("student_id", studentID),
				zap.String("streak_type", streakType),
				zap.Int("length", st.CurrentStreak))
		}
		st.CurrentStreak = 0
	}
	st.UpdatedAt = now

	if err := s.store.UpdateStreak(ctx, st); err != nil {
		return fmt.Errorf("update streak: save: %w", err)
	}
	return nil
}

// streakTitle: "daily_reading" → "Daily Reading".
func streakTitle(streakType string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(streakType, "_", " "))
}
