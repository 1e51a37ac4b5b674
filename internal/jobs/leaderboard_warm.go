package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/reachhk/engage/internal/timeauction"
)

const LeaderboardWarmJob = "leaderboard_warm"

type LeaderboardRefresher interface {
	RefreshLeaderboard(ctx context.Context, period timeauction.Period, limit int) error
}

// WarmLeaderboard пересчитывает кэш для каждого периода; ошибка одного
// периода не мешает остальным.
func WarmLeaderboard(svc LeaderboardRefresher, limit int) Job {
	return func(ctx context.Context) error {
		var errs []error
		for _, p := range timeauction.Periods {
			if err := svc.RefreshLeaderboard(ctx, p, limit); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p, err))
			}
		}
		return errors.Join(errs...)
	}
}
