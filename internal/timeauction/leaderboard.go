package timeauction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/ctxutil"
	"github.com/reachhk/engage/internal/metrics"
	"github.com/reachhk/engage/internal/models"
)

// Leaderboard ranks volunteers by verified hours within the period,
// highest first. Results are served from the cache when one is set.
func (s *Service) Leaderboard(ctx context.Context, period Period, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx, string(period), limit)
		switch {
		case err != nil:
			metrics.LeaderboardCache.WithLabelValues("error").Inc()
			s.log.Warn("leaderboard cache get", zap.String("period", string(period)), zap.Error(err))
		case ok:
			metrics.LeaderboardCache.WithLabelValues("hit").Inc()
			return entries, nil
		default:
			metrics.LeaderboardCache.WithLabelValues("miss").Inc()
		}
	}

	entries, err := s.computeLeaderboard(ctx, period, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, string(period), limit, entries); err != nil {
			s.log.Warn("leaderboard cache set", zap.String("period", string(period)), zap.Error(err))
		}
	}
	return entries, nil
}

// RefreshLeaderboard пересчитывает и кладёт в кэш, минуя чтение из него.
func (s *Service) RefreshLeaderboard(ctx context.Context, period Period, limit int) error {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	entries, err := s.computeLeaderboard(ctx, period, limit)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Set(ctx, string(period), limit, entries); err != nil {
		return fmt.Errorf("refresh leaderboard: %w", err)
	}
	op, _ := ctxutil.Op(ctx)
	s.log.Debug("leaderboard refreshed",
		zap.String("period", string(period)),
		zap.Int("entries", len(entries)),
		zap.String("op", op))
	return nil
}

func (s *Service) computeLeaderboard(ctx context.Context, period Period, limit int) ([]models.LeaderboardEntry, error) {
	since := windowStart(period, s.now().In(s.loc))
	entries, err := s.store.VerifiedHoursLeaderboard(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("leaderboard cache invalidate", zap.Error(err))
	}
}
