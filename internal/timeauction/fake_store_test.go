package timeauction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/reachhk/engage/internal/models"
)

type fakeStore struct {
	users         map[string]string // id → full name
	experiences   map[string]*models.TimeAuctionExperience
	logs          []*models.VolunteerHourLog
	registrations []*models.ExperienceRegistration
	badges        []models.VolunteerBadge
	badgeErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]string{},
		experiences: map[string]*models.TimeAuctionExperience{},
	}
}

func (f *fakeStore) InsertExperience(_ context.Context, e *models.TimeAuctionExperience) error {
	cp := *e
	f.experiences[e.ID] = &cp
	return nil
}

func (f *fakeStore) ExperienceByID(_ context.Context, id string) (*models.TimeAuctionExperience, error) {
	e, ok := f.experiences[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) ListExperiences(_ context.Context, flt ExperienceFilter) ([]models.TimeAuctionExperience, error) {
	var out []models.TimeAuctionExperience
	for _, e := range f.experiences {
		if flt.ActiveOnly && (!e.IsActive || (e.RegistrationDeadline != nil && e.RegistrationDeadline.Before(flt.Now))) {
			continue
		}
		if flt.Category != "" && e.Category != flt.Category {
			continue
		}
		if flt.IsVirtual != nil && e.IsVirtual != *flt.IsVirtual {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExperienceDate.Before(out[j].ExperienceDate) })
	return out, nil
}

func (f *fakeStore) SetExperienceActive(_ context.Context, id string, active bool) (bool, error) {
	e, ok := f.experiences[id]
	if !ok {
		return false, nil
	}
	e.IsActive = active
	return true, nil
}

func (f *fakeStore) InsertHourLog(_ context.Context, l *models.VolunteerHourLog) error {
	cp := *l
	f.logs = append(f.logs, &cp)
	return nil
}

func (f *fakeStore) VerifyHourLog(_ context.Context, logID, verifierID string, notes *string, at time.Time) (string, bool, error) {
	for _, l := range f.logs {
		if l.ID == logID && !l.IsVerified {
			l.IsVerified = true
			l.VerifiedBy = &verifierID
			l.VerificationNotes = notes
			t := at
			l.VerifiedAt = &t
			return l.VolunteerID, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeStore) PendingVerifications(_ context.Context) ([]models.PendingVerification, error) {
	var out []models.PendingVerification
	for i := len(f.logs) - 1; i >= 0; i-- {
		l := f.logs[i]
		name, ok := f.users[l.VolunteerID]
		if l.IsVerified || !ok {
			continue
		}
		out = append(out, models.PendingVerification{Log: *l, VolunteerName: name})
	}
	return out, nil
}

func (f *fakeStore) SumVerifiedHours(_ context.Context, volunteerID string) (float64, error) {
	var sum float64
	for _, l := range f.logs {
		if l.VolunteerID == volunteerID && l.IsVerified {
			sum += l.HoursEarned
		}
	}
	return sum, nil
}

func (f *fakeStore) SumCompletedHoursSpent(_ context.Context, volunteerID string) (float64, error) {
	var sum float64
	for _, r := range f.registrations {
		if r.VolunteerID == volunteerID && r.Status == models.StatusCompleted {
			sum += r.HoursSpent
		}
	}
	return sum, nil
}

func (f *fakeStore) AverageCompletionRating(_ context.Context, volunteerID string) (float64, int, error) {
	var sum, n int
	for _, r := range f.registrations {
		if r.VolunteerID == volunteerID && r.Status == models.StatusCompleted && r.CompletionRating != nil {
			sum += *r.CompletionRating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (f *fakeStore) VerifiedHoursByActivity(_ context.Context, volunteerID string) (map[string]models.ActivityBreakdown, error) {
	out := map[string]models.ActivityBreakdown{}
	for _, l := range f.logs {
		if l.VolunteerID != volunteerID || !l.IsVerified {
			continue
		}
		b := out[l.ActivityType]
		b.Hours += l.HoursEarned
		b.Count++
		out[l.ActivityType] = b
	}
	return out, nil
}

func (f *fakeStore) RegistrationExists(_ context.Context, experienceID, volunteerID string) (bool, error) {
	for _, r := range f.registrations {
		if r.ExperienceID == experienceID && r.VolunteerID == volunteerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CountActiveRegistrations(_ context.Context, experienceID string) (int, error) {
	n := 0
	for _, r := range f.registrations {
		if r.ExperienceID == experienceID && (r.Status == models.StatusRegistered || r.Status == models.StatusConfirmed) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) InsertRegistration(_ context.Context, r *models.ExperienceRegistration) error {
	cp := *r
	f.registrations = append(f.registrations, &cp)
	return nil
}

func (f *fakeStore) TransitionRegistration(_ context.Context, id string, from []models.RegistrationStatus, to models.RegistrationStatus, upd RegistrationUpdate) (bool, error) {
	for _, r := range f.registrations {
		if r.ID != id {
			continue
		}
		for _, st := range from {
			if r.Status == st {
				r.Status = to
				if upd.CompletedAt != nil {
					r.CompletedAt = upd.CompletedAt
				}
				if upd.Rating != nil {
					r.CompletionRating = upd.Rating
				}
				if upd.Feedback != nil {
					r.Feedback = upd.Feedback
				}
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func (f *fakeStore) RegistrationsForVolunteer(_ context.Context, volunteerID string) ([]models.RegistrationWithExperience, error) {
	var out []models.RegistrationWithExperience
	for i := len(f.registrations) - 1; i >= 0; i-- {
		r := f.registrations[i]
		e, ok := f.experiences[r.ExperienceID]
		if r.VolunteerID != volunteerID || !ok {
			continue
		}
		out = append(out, models.RegistrationWithExperience{Registration: *r, Experience: *e})
	}
	return out, nil
}

func (f *fakeStore) UpsertUser(_ context.Context, u models.User) error {
	f.users[u.ID] = u.FullName
	return nil
}

func (f *fakeStore) BadgeExists(_ context.Context, volunteerID, badgeType, badgeLevel string) (bool, error) {
	if f.badgeErr != nil {
		return false, f.badgeErr
	}
	for _, b := range f.badges {
		if b.VolunteerID == volunteerID && b.BadgeType == badgeType && b.BadgeLevel == badgeLevel {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertBadge(_ context.Context, b *models.VolunteerBadge) error {
	f.badges = append(f.badges, *b)
	return nil
}

func (f *fakeStore) BadgesForVolunteer(_ context.Context, volunteerID string) ([]models.VolunteerBadge, error) {
	var out []models.VolunteerBadge
	for i := len(f.badges) - 1; i >= 0; i-- {
		if f.badges[i].VolunteerID == volunteerID {
			out = append(out, f.badges[i])
		}
	}
	return out, nil
}

func (f *fakeStore) VerifiedHoursLeaderboard(_ context.Context, since *time.Time, limit int) ([]models.LeaderboardEntry, error) {
	agg := map[string]*models.LeaderboardEntry{}
	for _, l := range f.logs {
		if !l.IsVerified || (since != nil && l.CreatedAt.Before(*since)) {
			continue
		}
		name, ok := f.users[l.VolunteerID]
		if !ok {
			continue
		}
		e, ok := agg[l.VolunteerID]
		if !ok {
			e = &models.LeaderboardEntry{VolunteerID: l.VolunteerID, Name: name}
			agg[l.VolunteerID] = e
		}
		e.TotalHours += l.HoursEarned
		e.ActivityCount++
	}
	out := make([]models.LeaderboardEntry, 0, len(agg))
	for _, e := range agg {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalHours > out[j].TotalHours })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memCache: кэш лидерборда в памяти для тестов.
type memCache struct {
	data        map[string][]models.LeaderboardEntry
	gets        int
	invalidated int
}

func newMemCache() *memCache { return &memCache{data: map[string][]models.LeaderboardEntry{}} }

func cacheKey(period string, limit int) string { return fmt.Sprintf("%s|%d", period, limit) }

func (c *memCache) Get(_ context.Context, period string, limit int) ([]models.LeaderboardEntry, bool, error) {
	c.gets++
	e, ok := c.data[cacheKey(period, limit)]
	return e, ok, nil
}

func (c *memCache) Set(_ context.Context, period string, limit int, entries []models.LeaderboardEntry) error {
	c.data[cacheKey(period, limit)] = entries
	return nil
}

func (c *memCache) Invalidate(_ context.Context) error {
	c.invalidated++
	c.data = map[string][]models.LeaderboardEntry{}
	return nil
}
