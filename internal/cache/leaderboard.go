package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reachhk/engage/internal/ctxutil"
	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/timeauction"
)

const (
	DefaultPrefix = "engage:leaderboard:"
	DefaultTTL    = 5 * time.Minute
	scanBatch     = 100
)

var _ timeauction.LeaderboardCache = (*Leaderboard)(nil)

// Leaderboard хранит готовые срезы лидерборда как JSON-строки с TTL.
// Ключ: <prefix><period>:<limit>.
type Leaderboard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Leaderboard)

func WithPrefix(p string) Option {
	return func(l *Leaderboard) {
		if p != "" {
			l.prefix = p
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(l *Leaderboard) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func NewLeaderboard(client *redis.Client, opts ...Option) *Leaderboard {
	l := &Leaderboard{client: client, prefix: DefaultPrefix, ttl: DefaultTTL}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opt)
	pctx, cancel := ctxutil.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (l *Leaderboard) key(period string, limit int) string {
	return fmt.Sprintf("%s%s:%d", l.prefix, period, limit)
}

func (l *Leaderboard) Get(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, bool, error) {
	data, err := l.client.Get(ctx, l.key(period, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("leaderboard cache decode: %w", err)
	}
	return entries, true, nil
}

func (l *Leaderboard) Set(ctx context.Context, period string, limit int, entries []models.LeaderboardEntry) error {
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("leaderboard cache encode: %w", err)
	}
	return l.client.Set(ctx, l.key(period, limit), data, l.ttl).Err()
}

// Invalidate удаляет все закэшированные срезы под префиксом.
func (l *Leaderboard) Invalidate(ctx context.Context) error {
	iter := l.client.Scan(ctx, 0, l.prefix+"*", scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return l.client.Del(ctx, keys...).Err()
}
