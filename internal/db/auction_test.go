//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachhk/engage/internal/db"
	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/timeauction"
)

func logVerified(t *testing.T, svc *timeauction.Service, volunteerID string, hours float64) {
	t.Helper()
	ctx := context.Background()
	for hours > 0 {
		h := min(hours, 24)
		id, err := svc.LogVolunteerHours(ctx, volunteerID, "tutoring", h, "")
		require.NoError(t, err)
		ok, err := svc.VerifyVolunteerHours(ctx, id, "admin", "")
		require.NoError(t, err)
		require.True(t, ok)
		hours -= h
	}
}

func TestAuctionRepo_LeaderboardOrder(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)
	svc := timeauction.NewService(db.NewAuctionRepo(database), nil)

	mustSeedUser(t, database, "v30", "Thirty", models.Volunteer)
	mustSeedUser(t, database, "v10", "Ten", models.Volunteer)
	require.NoError(t, svc.UpsertVolunteer(ctx, models.User{ID: "v20", FullName: "Twenty"}))
	logVerified(t, svc, "v30", 30)
	logVerified(t, svc, "v10", 10)
	logVerified(t, svc, "v20", 20)

	// непроверенные часы в рейтинг не попадают
	_, err := svc.LogVolunteerHours(ctx, "v10", "events", 24, "")
	require.NoError(t, err)

	got, err := svc.Leaderboard(ctx, timeauction.AllTime, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Thirty", got[0].Name)
	assert.Equal(t, 30.0, got[0].TotalHours)
	assert.Equal(t, 2, got[0].ActivityCount)
	assert.Equal(t, "Twenty", got[1].Name)
	assert.Equal(t, 20.0, got[1].TotalHours)

	week, err := svc.Leaderboard(ctx, timeauction.ThisWeek, 10)
	require.NoError(t, err)
	assert.Len(t, week, 3)

	pending, err := svc.PendingVerifications(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Ten", pending[0].VolunteerName)
}

func TestAuctionRepo_RegistrationFlow(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)
	svc := timeauction.NewService(db.NewAuctionRepo(database), nil)

	deadline := time.Now().Add(48 * time.Hour)
	expID, err := svc.CreateExperience(ctx, timeauction.NewExperience{
		Title:                "Radio studio visit",
		Category:             "media",
		Organizer:            "Community FM",
		HoursRequired:        10,
		MaxParticipants:      1,
		Location:             "Studio 2",
		ExperienceDate:       time.Now().Add(72 * time.Hour),
		RegistrationDeadline: &deadline,
	})
	require.NoError(t, err)

	logVerified(t, svc, "vol-a", 10)
	logVerified(t, svc, "vol-b", 12)

	ok, err := svc.RegisterForExperience(ctx, "vol-a", expID)
	require.NoError(t, err)
	require.True(t, ok, "exact hours")

	ok, err = svc.RegisterForExperience(ctx, "vol-a", expID)
	require.NoError(t, err)
	assert.False(t, ok, "duplicate")

	ok, err = svc.RegisterForExperience(ctx, "vol-b", expID)
	require.NoError(t, err)
	assert.False(t, ok, "capacity")

	regs, err := svc.VolunteerRegistrations(ctx, "vol-a")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	regID := regs[0].Registration.ID
	assert.Equal(t, "Radio studio visit", regs[0].Experience.Title)
	require.NotNil(t, regs[0].Experience.Location)

	ok, err = svc.ConfirmRegistration(ctx, regID)
	require.NoError(t, err)
	require.True(t, ok)
	rating := 5
	ok, err = svc.CompleteExperience(ctx, regID, &rating, "loved it")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = svc.CancelRegistration(ctx, regID)
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err := svc.VolunteerStats(ctx, "vol-a")
	require.NoError(t, err)
	assert.Equal(t, 10.0, stats.TotalHours)
	assert.Equal(t, 10.0, stats.SpentHours)
	assert.Equal(t, 0.0, stats.AvailableHours)
	assert.Equal(t, 5.0, stats.QualityScore)
	assert.Equal(t, models.ActivityBreakdown{Hours: 10, Count: 1}, stats.ActivityBreakdown["tutoring"])

	inPerson := false
	list, err := svc.ListExperiences(ctx, timeauction.Filter{ActiveOnly: true, IsVirtual: &inPerson})
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = svc.SetExperienceActive(ctx, expID, false)
	require.NoError(t, err)
	list, err = svc.ListExperiences(ctx, timeauction.Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAuctionRepo_BadgesIdempotent(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)
	svc := timeauction.NewService(db.NewAuctionRepo(database), nil)

	logVerified(t, svc, "vol", 12)
	logVerified(t, svc, "vol", 8)
	badges, err := svc.VolunteerBadges(ctx, "vol")
	require.NoError(t, err)
	// 12 ч → helper bronze, 20 ч → helper silver
	require.Len(t, badges, 2)
	assert.ElementsMatch(t, []string{"bronze", "silver"}, []string{badges[0].BadgeLevel, badges[1].BadgeLevel})

	again, err := svc.EvaluateBadges(ctx, "vol")
	require.NoError(t, err)
	assert.Empty(t, again)
	badges, err = svc.VolunteerBadges(ctx, "vol")
	require.NoError(t, err)
	assert.Len(t, badges, 2)
}
