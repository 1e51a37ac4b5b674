package grading

import (
	"context"
	"fmt"
)

const (
	analyticsWindow = 10
	trendMargin     = 5.0

	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

type StreakSummary struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type Analytics struct {
	RecentScores     []float64                `json:"recent_scores"`
	AverageScore     float64                  `json:"average_score"`
	Streaks          map[string]StreakSummary `json:"streaks"`
	ImprovementTrend string                   `json:"improvement_trend"`
	TotalSubmissions int                      `json:"total_submissions"`
}

// Trend compares the newest three scores with the next two (newest first).
func Trend(scores []float64) string {
	if len(scores) < 5 {
		return TrendStable
	}
	recent := mean(scores[:3])
	older := mean(scores[3:5])
	switch {
	case recent > older+trendMargin:
		return TrendImproving
	case recent < older-trendMargin:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func (s *Service) StudentAnalytics(ctx context.Context, studentID string) (*Analytics, error) {
	scores, err := s.store.RecentScores(ctx, studentID, analyticsWindow)
	if err != nil {
		return nil, fmt.Errorf("student analytics: scores: %w", err)
	}
	streaks, err := s.store.StreaksForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("student analytics: streaks: %w", err)
	}

	out := &Analytics{
		RecentScores:     scores,
		AverageScore:     mean(scores),
		Streaks:          make(map[string]StreakSummary, len(streaks)),
		ImprovementTrend: Trend(scores),
		TotalSubmissions: len(scores),
	}
	if out.RecentScores == nil {
		out.RecentScores = []float64{}
	}
	for _, st := range streaks {
		out.Streaks[st.StreakType] = StreakSummary{Current: st.CurrentStreak, Longest: st.LongestStreak}
	}
	return out, nil
}
