package timeauction

import (
	"fmt"
	"time"

	"github.com/reachhk/engage/internal/models"
)

var now0 = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC) // среда

func newTestService(st *fakeStore, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return now0 }), WithLocation(time.UTC)}, opts...)
	return NewService(st, nil, opts...)
}

func seedVerified(st *fakeStore, volunteerID string, hours float64, at time.Time) {
	st.logs = append(st.logs, &models.VolunteerHourLog{
		ID:           fmt.Sprintf("log-%d", len(st.logs)),
		VolunteerID:  volunteerID,
		ActivityType: "tutoring",
		HoursEarned:  hours,
		IsVerified:   true,
		CreatedAt:    at,
	})
}

func seedExperience(st *fakeStore, id string, hours float64, maxP int, mut func(e *models.TimeAuctionExperience)) {
	e := &models.TimeAuctionExperience{
		ID:              id,
		Title:           "Museum tour " + id,
		Category:        "culture",
		HoursRequired:   hours,
		MaxParticipants: maxP,
		IsActive:        true,
		ExperienceDate:  now0.AddDate(0, 1, 0),
	}
	if mut != nil {
		mut(e)
	}
	st.experiences[id] = e
}

func seedRegistration(st *fakeStore, id, expID, volunteerID string, status models.RegistrationStatus, hours float64, rating *int) {
	st.registrations = append(st.registrations, &models.ExperienceRegistration{
		ID: id, ExperienceID: expID, VolunteerID: volunteerID,
		HoursSpent: hours, Status: status, CompletionRating: rating,
	})
}

func intp(v int) *int { return &v }
