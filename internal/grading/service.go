package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/ctxutil"
	"github.com/reachhk/engage/internal/logging"
	"github.com/reachhk/engage/internal/metrics"
	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/observability"
)

const (
	DefaultModel = "gemma"

	lowScoreThreshold  = 60.0
	highSeverityBelow  = 40.0
	declineWindow      = 5
	declineRecentCount = 3
	declineMargin      = 15.0

	notifyTimeout = 10 * time.Second
)

type Service struct {
	store    Store
	oracle   Oracle
	notifier Notifier
	log      *zap.Logger
	model    string
	loc      *time.Location
	now      func() time.Time
}

type Option func(*Service)

func WithModel(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.model = name
		}
	}
}

// WithLocation задаёт часовой пояс, в котором считаются «сегодня»/«вчера» для серий.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService собирает сервис. nil oracle → HeuristicOracle, nil notifier → LogNotifier.
func NewService(store Store, oracle Oracle, notifier Notifier, log *zap.Logger, opts ...Option) *Service {
	log = logging.OrNop(log)
	if oracle == nil {
		oracle = HeuristicOracle{}
	}
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	s := &Service{
		store:    store,
		oracle:   oracle,
		notifier: notifier,
		log:      log,
		model:    DefaultModel,
		loc:      time.Local,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GradeSubmission grades content with the oracle, stores the session,
// marks the submission graded and evaluates alert rules.
func (s *Service) GradeSubmission(ctx context.Context, submissionID, content string, gc Context) (*models.GradingSession, error) {
	started := s.now()
	res, err := s.oracle.Grade(ctx, content, gc)
	if err != nil {
		return nil, fmt.Errorf("grade submission: oracle: %w", err)
	}
	elapsed := s.now().Sub(started)
	metrics.ObserveGrading(elapsed)

	gs := &models.GradingSession{
		ID:                      uuid.NewString(),
		SubmissionID:            submissionID,
		ModelUsed:               s.model,
		RawScore:                res.RawScore,
		AdjustedScore:           res.AdjustedScore,
		ConfidenceLevel:         res.Confidence,
		GradingCriteria:         res.Criteria,
		AIFeedback:              res.Feedback,
		PersonalizedSuggestions: res.Suggestions,
		ProcessingTimeMs:        elapsed.Milliseconds(),
		CreatedAt:               s.now(),
	}
	if err := s.store.InsertGradingSession(ctx, gs); err != nil {
		return nil, fmt.Errorf("grade submission: save session: %w", err)
	}
	if err := s.store.MarkSubmissionGraded(ctx, submissionID); err != nil {
		return nil, fmt.Errorf("grade submission: mark graded: %w", err)
	}
	s.log.Info("submission graded",
		zap.String("submission_id", submissionID),
		zap.Float64("score", gs.AdjustedScore),
		zap.Duration("took", elapsed))

	if err := s.checkPerformanceAlerts(ctx, submissionID, res.AdjustedScore); err != nil {
		return nil, fmt.Errorf("grade submission: alerts: %w", err)
	}
	return gs, nil
}

// LowScoreSeverity возвращает уровень алерта low_score; ok=false: алерт не нужен.
func LowScoreSeverity(score float64) (models.Severity, bool) {
	if score >= lowScoreThreshold {
		return "", false
	}
	if score < highSeverityBelow {
		return models.SeverityHigh, true
	}
	return models.SeverityMedium, true
}

// Decline compares the average of the newest three scores with the rest.
// scores are newest first. With exactly three scores there is nothing to
// compare against and no decline is reported.
func Decline(scores []float64) (recentAvg, olderAvg float64, declined bool) {
	if len(scores) < declineRecentCount {
		return 0, 0, false
	}
	recentAvg = mean(scores[:declineRecentCount])
	olderAvg = recentAvg
	if len(scores) > declineRecentCount {
		olderAvg = mean(scores[declineRecentCount:])
	}
	return recentAvg, olderAvg, recentAvg < olderAvg-declineMargin
}

func (s *Service) checkPerformanceAlerts(ctx context.Context, submissionID string, score float64) error {
	sub, err := s.store.SubmissionByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	if sev, ok := LowScoreSeverity(score); ok {
		if err := s.createAlert(ctx, sub.StudentID, sub.ParentID, models.AlertLowScore, sev,
			fmt.Sprintf("Student scored %.1f%% on recent assignment. Consider additional support.", score),
			map[string]any{"score": score, "submission_id": submissionID},
		); err != nil {
			return err
		}
	}

	scores, err := s.store.RecentScores(ctx, sub.StudentID, declineWindow)
	if err != nil {
		return err
	}
	if recent, older, declined := Decline(scores); declined {
		if err := s.createAlert(ctx, sub.StudentID, sub.ParentID, models.AlertDecliningPerformance, models.SeverityMedium,
			fmt.Sprintf("Student's performance has declined from %.1f%% to %.1f%% average.", older, recent),
			map[string]any{"recent_average": recent, "previous_average": older},
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) createAlert(ctx context.Context, studentID, parentID, typ string, sev models.Severity, msg string, trigger map[string]any) error {
	a := &models.PerformanceAlert{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		ParentID:    parentID,
		AlertType:   typ,
		Severity:    sev,
		Message:     msg,
		TriggerData: trigger,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertAlert(ctx, a); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	metrics.AlertsCreated.WithLabelValues(typ, string(sev)).Inc()
	s.log.Info("performance alert",
		zap.String("student_id", studentID),
		zap.String("type", typ),
		zap.String("severity", string(sev)))

	if !sev.Escalates() {
		return nil
	}
	at := s.now()
	if err := s.store.MarkAlertSentToNGO(ctx, a.ID, at); err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}
	a.SentToNGO = true
	a.NGONotifiedAt = &at
	s.notify(ctx, *a)
	return nil
}

// notify: best effort: ошибка доставки не влияет на результат операции.
func (s *Service) notify(ctx context.Context, a models.PerformanceAlert) {
	nctx, cancel := ctxutil.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyAlert(nctx, a); err != nil {
		metrics.NotifyErrors.Inc()
		s.log.Warn("alert notify failed", zap.String("alert_id", a.ID), zap.Error(err))
		observability.CaptureErrWithTags(err, map[string]string{
			"op":         "grading.notify",
			"alert_type": a.AlertType,
		})
	}
}

// Alerts returns a parent's alerts, newest first.
func (s *Service) Alerts(ctx context.Context, parentID string, unresolvedOnly bool) ([]models.PerformanceAlert, error) {
	out, err := s.store.AlertsForParent(ctx, parentID, unresolvedOnly)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	return out, nil
}

func (s *Service) ResolveAlert(ctx context.Context, alertID string) (bool, error) {
	ok, err := s.store.ResolveAlert(ctx, alertID, s.now())
	if err != nil {
		return false, fmt.Errorf("resolve alert: %w", err)
	}
	return ok, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
