package export

import (
	"context"
	"fmt"
	"time"

	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/timeauction"
)

// Source: то, что нужно выгрузке от сервиса time auction.
type Source interface {
	Leaderboard(ctx context.Context, period timeauction.Period, limit int) ([]models.LeaderboardEntry, error)
	VolunteerStats(ctx context.Context, volunteerID string) (*models.VolunteerStats, error)
}

var (
	leaderboardHeader = []string{"Rank", "Volunteer", "Volunteer ID", "Verified hours", "Activities"}
	statsHeader       = []string{
		"Volunteer", "Volunteer ID", "Total hours", "Spent hours", "Available hours",
		"Quality score", "Badges", "Latest badge", "Top activity",
	}
)

// LeaderboardSheet renders one period's ranking.
func LeaderboardSheet(period timeauction.Period, entries []models.LeaderboardEntry) SheetSpec {
	rows := make([][]any, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []any{i + 1, e.Name, e.VolunteerID, e.TotalHours, e.ActivityCount})
	}
	return SheetSpec{Title: string(period), Header: leaderboardHeader, Rows: rows}
}

// StatsRow: строка листа Volunteers.
func StatsRow(name, volunteerID string, st *models.VolunteerStats) []any {
	latest := ""
	if st.LatestBadge != nil {
		latest = st.LatestBadge.BadgeType + " " + st.LatestBadge.BadgeLevel
	}
	top, topHours := "", 0.0
	for activity, b := range st.ActivityBreakdown {
		if b.Hours > topHours || (b.Hours == topHours && activity < top) {
			top, topHours = activity, b.Hours
		}
	}
	return []any{
		name, volunteerID, st.TotalHours, st.SpentHours, st.AvailableHours,
		st.QualityScore, st.BadgesCount, latest, top,
	}
}

// LeaderboardReport builds a workbook with a ranking sheet per period and a
// Volunteers sheet with stats for everyone who appears in any ranking.
func LeaderboardReport(ctx context.Context, src Source, periods []timeauction.Period, limit int) (*Workbook, error) {
	if len(periods) == 0 {
		periods = timeauction.Periods
	}
	var (
		sheets []SheetSpec
		order  []models.LeaderboardEntry
		seen   = map[string]bool{}
	)
	for _, p := range periods {
		entries, err := src.Leaderboard(ctx, p, limit)
		if err != nil {
			return nil, fmt.Errorf("leaderboard report %s: %w", p, err)
		}
		sheets = append(sheets, LeaderboardSheet(p, entries))
		for _, e := range entries {
			if !seen[e.VolunteerID] {
				seen[e.VolunteerID] = true
				order = append(order, e)
			}
		}
	}

	stats := SheetSpec{Title: "Volunteers", Header: statsHeader}
	for _, e := range order {
		st, err := src.VolunteerStats(ctx, e.VolunteerID)
		if err != nil {
			return nil, fmt.Errorf("leaderboard report stats %s: %w", e.VolunteerID, err)
		}
		stats.Rows = append(stats.Rows, StatsRow(e.Name, e.VolunteerID, st))
	}
	sheets = append(sheets, stats)
	return NewWorkbook(sheets)
}

// WriteLeaderboardReport saves a single-period report to path, or to a dated
// file in the working directory when path is empty. Returns the path used.
func WriteLeaderboardReport(ctx context.Context, src Source, period timeauction.Period, limit int, path string, now time.Time) (string, error) {
	wb, err := LeaderboardReport(ctx, src, []timeauction.Period{period}, limit)
	if err != nil {
		return "", err
	}
	defer func() { _ = wb.Close() }()
	if path == "" {
		path = BuildLeaderboardFilename(string(period), now)
	}
	if err := wb.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}
