package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/app"
	"github.com/reachhk/engage/internal/cache"
	"github.com/reachhk/engage/internal/config"
	"github.com/reachhk/engage/internal/db"
	"github.com/reachhk/engage/internal/export"
	"github.com/reachhk/engage/internal/jobs"
	"github.com/reachhk/engage/internal/logging"
	"github.com/reachhk/engage/internal/observability"
	"github.com/reachhk/engage/internal/timeauction"
)

const release = "engage@dev"

func main() {
	exportPath := flag.String("export-leaderboard", "", "write leaderboard workbook to this path and exit")
	periodFlag := flag.String("period", string(timeauction.AllTime), "leaderboard period: all_time|this_month|this_week")
	limit := flag.Int("limit", timeauction.DefaultLeaderboardLimit, "leaderboard size")
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database); err != nil {
		observability.CaptureErr(err)
		logger.Fatal("migrate", zap.Error(err))
	}
	if *migrateOnly {
		logger.Info("migrations applied")
		return
	}

	var (
		rdb     *redis.Client
		lbCache timeauction.LeaderboardCache
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, leaderboard cache disabled", zap.Error(err))
			rdb = nil
		} else {
			defer func() { _ = rdb.Close() }()
			lbCache = cache.NewLeaderboard(rdb, cache.WithTTL(cfg.LeaderboardCacheTTL))
		}
	}

	svc := app.NewServices(database, cfg, lg, lbCache)

	if *exportPath != "" {
		period, err := timeauction.ParsePeriod(*periodFlag)
		if err != nil {
			logger.Fatal("bad -period", zap.Error(err))
		}
		path, err := export.WriteLeaderboardReport(ctx, svc.Auction, period, *limit, *exportPath, time.Now().In(cfg.Location))
		if err != nil {
			observability.CaptureErr(err)
			logger.Fatal("export leaderboard", zap.Error(err))
		}
		logger.Info("leaderboard exported", zap.String("path", path), zap.String("period", string(period)))
		return
	}

	checks := []app.Check{{Name: "db", Ping: func(ctx context.Context) error { return db.Ping(ctx, database) }}}
	if rdb != nil {
		checks = append(checks, app.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	}
	app.StartHTTP(ctx, cfg.HTTPAddr, lg.Module("http"), checks...)

	runner := jobs.New(ctx, lg.Module("jobs"))
	if lbCache != nil {
		runner.Every(cfg.LeaderboardWarmInterval, jobs.LeaderboardWarmJob, true, jobs.WarmLeaderboard(svc.Auction, timeauction.DefaultLeaderboardLimit))
	}

	logger.Info("engage started",
		zap.String("env", cfg.Env),
		zap.String("http", cfg.HTTPAddr),
		zap.Bool("leaderboard_cache", lbCache != nil))

	<-ctx.Done()
	runner.Wait()
	logger.Info("engage stopped")
}
