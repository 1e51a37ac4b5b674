package timeauction

import (
	"fmt"
	"time"

	"github.com/reachhk/engage/internal/models"
)

type Period string

const (
	AllTime   Period = "all_time"
	ThisMonth Period = "this_month"
	ThisWeek  Period = "this_week"
)

var Periods = []Period{AllTime, ThisMonth, ThisWeek}

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case AllTime, ThisMonth, ThisWeek:
		return p, nil
	case "":
		return AllTime, nil
	}
	return "", fmt.Errorf("period %q: %w", s, models.ErrInvalidInput)
}

// StartOfWeek: понедельник 00:00 в часовом поясе t.
func StartOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	d := t.AddDate(0, 0, -(wd - 1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth: первое число 00:00 в часовом поясе t.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// windowStart returns the lower bound for verified logs; nil means no bound.
// Unknown periods fall back to all time.
func windowStart(p Period, now time.Time) *time.Time {
	var t time.Time
	switch p {
	case ThisMonth:
		t = StartOfMonth(now)
	case ThisWeek:
		t = StartOfWeek(now)
	default:
		return nil
	}
	return &t
}
