package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/reachhk/engage/internal/ctxutil"
	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/timeauction"
)

var _ timeauction.Store = (*AuctionRepo)(nil)

type AuctionRepo struct {
	db *sql.DB
}

func NewAuctionRepo(database *sql.DB) *AuctionRepo {
	return &AuctionRepo{db: database}
}

// ---- experiences ----

const experienceColumns = `id, title, description, category, organizer, hours_required, max_participants,
	is_virtual, location, experience_date, registration_deadline, is_active, created_at`

func scanExperience(row interface{ Scan(...any) error }) (*models.TimeAuctionExperience, error) {
	var (
		e        models.TimeAuctionExperience
		deadline sql.NullTime
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Organizer, &e.HoursRequired,
		&e.MaxParticipants, &e.IsVirtual, &e.Location, &e.ExperienceDate, &deadline, &e.IsActive, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		d := deadline.Time
		e.RegistrationDeadline = &d
	}
	return &e, nil
}

func (r *AuctionRepo) InsertExperience(ctx context.Context, e *models.TimeAuctionExperience) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO time_auction_experiences (`+experienceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.ID, e.Title, e.Description, e.Category, e.Organizer, e.HoursRequired, e.MaxParticipants,
		e.IsVirtual, e.Location, e.ExperienceDate, e.RegistrationDeadline, e.IsActive, e.CreatedAt)
	return err
}

func (r *AuctionRepo) ExperienceByID(ctx context.Context, id string) (*models.TimeAuctionExperience, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanExperience(r.db.QueryRowContext(ctx,
		`SELECT `+experienceColumns+` FROM time_auction_experiences WHERE id = $1`, id))
}

func (r *AuctionRepo) ListExperiences(ctx context.Context, f timeauction.ExperienceFilter) ([]models.TimeAuctionExperience, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var isVirtual sql.NullBool
	if f.IsVirtual != nil {
		isVirtual = sql.NullBool{Bool: *f.IsVirtual, Valid: true}
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+experienceColumns+`
		FROM time_auction_experiences
		WHERE (NOT $1 OR (is_active AND (registration_deadline IS NULL OR registration_deadline >= $2)))
		  AND ($3 = '' OR category = $3)
		  AND ($4::boolean IS NULL OR is_virtual = $4)
		ORDER BY experience_date ASC`,
		f.ActiveOnly, f.Now, f.Category, isVirtual)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.TimeAuctionExperience
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *AuctionRepo) SetExperienceActive(ctx context.Context, id string, active bool) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE time_auction_experiences SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ---- hour logs ----

func (r *AuctionRepo) InsertHourLog(ctx context.Context, l *models.VolunteerHourLog) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO volunteer_hour_logs (id, volunteer_id, activity_type, hours_earned, description, is_verified, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		l.ID, l.VolunteerID, l.ActivityType, l.HoursEarned, l.Description, l.IsVerified, l.CreatedAt)
	return err
}

func (r *AuctionRepo) VerifyHourLog(ctx context.Context, logID, verifierID string, notes *string, at time.Time) (string, bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var volunteerID string
	err := r.db.QueryRowContext(ctx, `
		UPDATE volunteer_hour_logs
		SET is_verified = TRUE, verified_by = $2, verification_notes = $3, verified_at = $4
		WHERE id = $1 AND is_verified = FALSE
		RETURNING volunteer_id`, logID, verifierID, notes, at,
	).Scan(&volunteerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return volunteerID, true, nil
}

func (r *AuctionRepo) UpsertUser(ctx context.Context, u models.User) error {
	return UpsertUser(ctx, r.db, u)
}

func (r *AuctionRepo) PendingVerifications(ctx context.Context) ([]models.PendingVerification, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.volunteer_id, l.activity_type, l.hours_earned, l.description, l.created_at, u.full_name
		FROM volunteer_hour_logs l
		JOIN users u ON u.id = l.volunteer_id
		WHERE l.is_verified = FALSE
		ORDER BY l.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PendingVerification
	for rows.Next() {
		var p models.PendingVerification
		l := &p.Log
		if err := rows.Scan(&l.ID, &l.VolunteerID, &l.ActivityType, &l.HoursEarned, &l.Description, &l.CreatedAt, &p.VolunteerName); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *AuctionRepo) SumVerifiedHours(ctx context.Context, volunteerID string) (float64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var v float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(hours_earned), 0)
		FROM volunteer_hour_logs
		WHERE volunteer_id = $1 AND is_verified = TRUE`, volunteerID).Scan(&v)
	return v, err
}

func (r *AuctionRepo) SumCompletedHoursSpent(ctx context.Context, volunteerID string) (float64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var v float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(hours_spent), 0)
		FROM experience_registrations
		WHERE volunteer_id = $1 AND registration_status = $2`, volunteerID, string(models.StatusCompleted)).Scan(&v)
	return v, err
}

func (r *AuctionRepo) AverageCompletionRating(ctx context.Context, volunteerID string) (float64, int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var (
		avg sql.NullFloat64
		n   int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT AVG(completion_rating)::float8, COUNT(completion_rating)
		FROM experience_registrations
		WHERE volunteer_id = $1 AND registration_status = $2 AND completion_rating IS NOT NULL`,
		volunteerID, string(models.StatusCompleted)).Scan(&avg, &n)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, n, nil
}

func (r *AuctionRepo) VerifiedHoursByActivity(ctx context.Context, volunteerID string) (map[string]models.ActivityBreakdown, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT activity_type, SUM(hours_earned), COUNT(*)
		FROM volunteer_hour_logs
		WHERE volunteer_id = $1 AND is_verified = TRUE
		GROUP BY activity_type`, volunteerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := map[string]models.ActivityBreakdown{}
	for rows.Next() {
		var (
			typ string
			b   models.ActivityBreakdown
		)
		if err := rows.Scan(&typ, &b.Hours, &b.Count); err != nil {
			return nil, err
		}
		out[typ] = b
	}
	return out, rows.Err()
}

// ---- registrations ----

func (r *AuctionRepo) RegistrationExists(ctx context.Context, experienceID, volunteerID string) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM experience_registrations WHERE experience_id = $1 AND volunteer_id = $2
		)`, experienceID, volunteerID).Scan(&ok)
	return ok, err
}

func (r *AuctionRepo) CountActiveRegistrations(ctx context.Context, experienceID string) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM experience_registrations
		WHERE experience_id = $1 AND registration_status = ANY($2)`,
		experienceID, pq.Array(statusStrings(models.StatusRegistered, models.StatusConfirmed))).Scan(&n)
	return n, err
}

func (r *AuctionRepo) InsertRegistration(ctx context.Context, reg *models.ExperienceRegistration) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO experience_registrations (
			id, experience_id, volunteer_id, hours_spent, registration_status, registered_at
		) VALUES ($1,$2,$3,$4,$5,$6)`,
		reg.ID, reg.ExperienceID, reg.VolunteerID, reg.HoursSpent, string(reg.Status), reg.RegisteredAt)
	return err
}

func (r *AuctionRepo) TransitionRegistration(ctx context.Context, id string, from []models.RegistrationStatus, to models.RegistrationStatus, upd timeauction.RegistrationUpdate) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `
		UPDATE experience_registrations
		SET registration_status = $3,
		    completed_at      = COALESCE($4, completed_at),
		    completion_rating = COALESCE($5, completion_rating),
		    feedback          = COALESCE($6, feedback)
		WHERE id = $1 AND registration_status = ANY($2)`,
		id, pq.Array(statusStrings(from...)), string(to), upd.CompletedAt, upd.Rating, upd.Feedback)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *AuctionRepo) RegistrationsForVolunteer(ctx context.Context, volunteerID string) ([]models.RegistrationWithExperience, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.experience_id, r.volunteer_id, r.hours_spent, r.registration_status,
		       r.completion_rating, r.feedback, r.registered_at, r.completed_at,
		       e.id, e.title, e.description, e.category, e.organizer, e.hours_required, e.max_participants,
		       e.is_virtual, e.location, e.experience_date, e.registration_deadline, e.is_active, e.created_at
		FROM experience_registrations r
		JOIN time_auction_experiences e ON e.id = r.experience_id
		WHERE r.volunteer_id = $1
		ORDER BY r.registered_at DESC`, volunteerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.RegistrationWithExperience
	for rows.Next() {
		var (
			x        models.RegistrationWithExperience
			rating   sql.NullInt64
			deadline sql.NullTime
		)
		reg, e := &x.Registration, &x.Experience
		if err := rows.Scan(&reg.ID, &reg.ExperienceID, &reg.VolunteerID, &reg.HoursSpent, &reg.Status,
			&rating, &reg.Feedback, &reg.RegisteredAt, &reg.CompletedAt,
			&e.ID, &e.Title, &e.Description, &e.Category, &e.Organizer, &e.HoursRequired, &e.MaxParticipants,
			&e.IsVirtual, &e.Location, &e.ExperienceDate, &deadline, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int64)
			reg.CompletionRating = &v
		}
		if deadline.Valid {
			d := deadline.Time
			e.RegistrationDeadline = &d
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// ---- badges ----

func (r *AuctionRepo) BadgeExists(ctx context.Context, volunteerID, badgeType, badgeLevel string) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM volunteer_badges
			WHERE volunteer_id = $1 AND badge_type = $2 AND badge_level = $3
		)`, volunteerID, badgeType, badgeLevel).Scan(&ok)
	return ok, err
}

// InsertBadge: уникальный ключ страхует от двойной выдачи при гонке.
func (r *AuctionRepo) InsertBadge(ctx context.Context, b *models.VolunteerBadge) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO volunteer_badges (id, volunteer_id, badge_type, badge_level, hours_requirement, quality_score, earned_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (volunteer_id, badge_type, badge_level) DO NOTHING`,
		b.ID, b.VolunteerID, b.BadgeType, b.BadgeLevel, b.HoursRequirement, b.QualityScore, b.EarnedAt)
	return err
}

func (r *AuctionRepo) BadgesForVolunteer(ctx context.Context, volunteerID string) ([]models.VolunteerBadge, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, volunteer_id, badge_type, badge_level, hours_requirement, quality_score, earned_at
		FROM volunteer_badges
		WHERE volunteer_id = $1
		ORDER BY earned_at DESC, hours_requirement DESC`, volunteerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.VolunteerBadge
	for rows.Next() {
		var b models.VolunteerBadge
		if err := rows.Scan(&b.ID, &b.VolunteerID, &b.BadgeType, &b.BadgeLevel, &b.HoursRequirement, &b.QualityScore, &b.EarnedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- leaderboard ----

func (r *AuctionRepo) VerifiedHoursLeaderboard(ctx context.Context, since *time.Time, limit int) ([]models.LeaderboardEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var from sql.NullTime
	if since != nil {
		from = sql.NullTime{Time: *since, Valid: true}
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.volunteer_id, u.full_name, SUM(l.hours_earned) AS total_hours, COUNT(*) AS activity_count
		FROM volunteer_hour_logs l
		JOIN users u ON u.id = l.volunteer_id
		WHERE l.is_verified = TRUE
		  AND ($1::timestamptz IS NULL OR l.created_at >= $1)
		GROUP BY l.volunteer_id, u.full_name
		ORDER BY total_hours DESC, l.volunteer_id
		LIMIT $2`, from, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.VolunteerID, &e.Name, &e.TotalHours, &e.ActivityCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func statusStrings(ss ...models.RegistrationStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
