package grading

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/reachhk/engage/internal/models"
)

type gradedScore struct {
	studentID string
	score     float64
	at        time.Time
}

type fakeStore struct {
	submissions map[string]*models.Submission
	sessions    []models.GradingSession
	scores      []gradedScore
	alerts      []*models.PerformanceAlert
	streaks     map[string]*models.UserStreak
	seq         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		submissions: map[string]*models.Submission{},
		streaks:     map[string]*models.UserStreak{},
	}
}

func streakKey(owner, student, typ string) string { return owner + "|" + student + "|" + typ }

func (f *fakeStore) SubmissionByID(_ context.Context, id string) (*models.Submission, error) {
	s, ok := f.submissions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) MarkSubmissionGraded(_ context.Context, id string) error {
	if s, ok := f.submissions[id]; ok {
		s.Status = models.SubmissionGraded
	}
	return nil
}

func (f *fakeStore) InsertGradingSession(_ context.Context, gs *models.GradingSession) error {
	f.sessions = append(f.sessions, *gs)
	if s, ok := f.submissions[gs.SubmissionID]; ok {
		f.seq++
		f.scores = append(f.scores, gradedScore{
			studentID: s.StudentID,
			score:     gs.AdjustedScore,
			at:        time.Unix(int64(1_000_000+f.seq), 0),
		})
	}
	return nil
}

func (f *fakeStore) RecentScores(_ context.Context, studentID string, limit int) ([]float64, error) {
	var rows []gradedScore
	for _, s := range f.scores {
		if s.studentID == studentID {
			rows = append(rows, s)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].at.After(rows[j].at) })
	var out []float64
	for i, r := range rows {
		if i == limit {
			break
		}
		out = append(out, r.score)
	}
	return out, nil
}

func (f *fakeStore) InsertAlert(_ context.Context, a *models.PerformanceAlert) error {
	cp := *a
	f.alerts = append(f.alerts, &cp)
	return nil
}

func (f *fakeStore) MarkAlertSentToNGO(_ context.Context, alertID string, at time.Time) error {
	for _, a := range f.alerts {
		if a.ID == alertID {
			a.SentToNGO = true
			t := at
			a.NGONotifiedAt = &t
			return nil
		}
	}
	return errors.New("alert not found")
}

func (f *fakeStore) AlertsForParent(_ context.Context, parentID string, unresolvedOnly bool) ([]models.PerformanceAlert, error) {
	var out []models.PerformanceAlert
	for i := len(f.alerts) - 1; i >= 0; i-- {
		a := f.alerts[i]
		if a.ParentID != parentID || (unresolvedOnly && a.IsResolved) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) ResolveAlert(_ context.Context, alertID string, at time.Time) (bool, error) {
	for _, a := range f.alerts {
		if a.ID == alertID && !a.IsResolved {
			a.IsResolved = true
			t := at
			a.ResolvedAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Streak(_ context.Context, owner, student, typ string) (*models.UserStreak, error) {
	s, ok := f.streaks[streakKey(owner, student, typ)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) InsertStreak(_ context.Context, s *models.UserStreak) error {
	cp := *s
	f.streaks[streakKey(s.OwnerID, s.StudentID, s.StreakType)] = &cp
	return nil
}

func (f *fakeStore) UpdateStreak(_ context.Context, s *models.UserStreak) error {
	cp := *s
	f.streaks[streakKey(s.OwnerID, s.StudentID, s.StreakType)] = &cp
	return nil
}

func (f *fakeStore) StreaksForStudent(_ context.Context, studentID string) ([]models.UserStreak, error) {
	var out []models.UserStreak
	for _, s := range f.streaks {
		if s.StudentID == studentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// fixedOracle отдаёт заранее заданные баллы по очереди.
type fixedOracle struct {
	scores []float64
	err    error
	calls  int
}

func (o *fixedOracle) Grade(_ context.Context, _ string, _ Context) (Result, error) {
	if o.err != nil {
		return Result{}, o.err
	}
	sc := o.scores[o.calls%len(o.scores)]
	o.calls++
	return Result{RawScore: sc, AdjustedScore: sc, Confidence: 0.9, Criteria: map[string]float64{"structure": 80}}, nil
}

type recordingNotifier struct {
	got []models.PerformanceAlert
	err error
}

func (n *recordingNotifier) NotifyAlert(_ context.Context, a models.PerformanceAlert) error {
	n.got = append(n.got, a)
	return n.err
}
