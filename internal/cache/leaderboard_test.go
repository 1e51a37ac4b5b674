//go:build testutil
// +build testutil

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachhk/engage/internal/cache"
	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/testutil/testdb"
)

func startRedis(t *testing.T) *testdb.RedisHandle {
	t.Helper()
	h, err := testdb.StartRedis(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h
}

func TestLeaderboard_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	h := startRedis(t)
	lb := cache.NewLeaderboard(h.Client, cache.WithPrefix("t:lb:"))

	_, ok, err := lb.Get(ctx, "all_time", 10)
	require.NoError(t, err)
	assert.False(t, ok)

	entries := []models.LeaderboardEntry{
		{VolunteerID: "v1", Name: "Ann", TotalHours: 12.5, ActivityCount: 3},
		{VolunteerID: "v2", Name: "Bo", TotalHours: 4, ActivityCount: 1},
	}
	require.NoError(t, lb.Set(ctx, "all_time", 10, entries))
	require.NoError(t, lb.Set(ctx, "this_week", 10, nil))
	require.NoError(t, h.Client.Set(ctx, "other:key", "keep", 0).Err())

	got, ok, err := lb.Get(ctx, "all_time", 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entries, got)

	// пустой срез тоже попадание
	got, ok, err = lb.Get(ctx, "this_week", 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	_, ok, err = lb.Get(ctx, "all_time", 5)
	require.NoError(t, err)
	assert.False(t, ok, "limit is part of the key")

	require.NoError(t, lb.Invalidate(ctx))
	_, ok, err = lb.Get(ctx, "all_time", 10)
	require.NoError(t, err)
	assert.False(t, ok)
	v, err := h.Client.Get(ctx, "other:key").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", v)
}

func TestLeaderboard_TTL(t *testing.T) {
	ctx := context.Background()
	h := startRedis(t)
	lb := cache.NewLeaderboard(h.Client, cache.WithTTL(time.Minute))

	require.NoError(t, lb.Set(ctx, "this_month", 3, []models.LeaderboardEntry{{VolunteerID: "v"}}))
	ttl, err := h.Client.TTL(ctx, cache.DefaultPrefix+"this_month:3").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := cache.Connect(context.Background(), "not-a-url")
	require.Error(t, err)
}
