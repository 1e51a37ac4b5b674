package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExperienceAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engage", Name: "pet_experience_awarded_total", Help: "Experience points awarded to pets",
	}, []string{"activity"})
	PetLevelUps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "engage", Name: "pet_level_ups_total", Help: "Pet level-ups",
	})
	ShopPurchases = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engage", Name: "pet_shop_purchases_total", Help: "Pet shop purchase attempts",
	}, []string{"result"})

	GradingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "engage", Name: "grading_duration_seconds", Help: "Grading oracle latency",
		Buckets: prometheus.DefBuckets,
	})
	AlertsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engage", Name: "alerts_created_total", Help: "Performance alerts created",
	}, []string{"type", "severity"})
	NotifyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "engage", Name: "alert_notify_errors_total", Help: "Failed alert notifications",
	})

	Registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engage", Name: "experience_registrations_total", Help: "Experience registration attempts",
	}, []string{"outcome"})
	BadgesAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engage", Name: "volunteer_badges_awarded_total", Help: "Volunteer badges awarded",
	}, []string{"type", "level"})
	LeaderboardCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engage", Name: "leaderboard_cache_total", Help: "Leaderboard cache lookups",
	}, []string{"result"})

	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "engage", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		ExperienceAwarded, PetLevelUps, ShopPurchases,
		GradingDuration, AlertsCreated, NotifyErrors,
		Registrations, BadgesAwarded, LeaderboardCache,
		DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveGrading(d time.Duration) { GradingDuration.Observe(d.Seconds()) }
