package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/reachhk/engage/internal/ctxutil"
	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/pet"
)

var _ pet.Store = (*PetRepo)(nil)

type PetRepo struct {
	db *sql.DB
}

func NewPetRepo(database *sql.DB) *PetRepo {
	return &PetRepo{db: database}
}

const petColumns = `id, owner_id, name, type, level, experience_points, health, happiness, last_fed, created_at, updated_at`

func scanPet(row interface{ Scan(...any) error }) (*models.Pet, error) {
	var p models.Pet
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Type, &p.Level, &p.ExperiencePoint,
		&p.Health, &p.Happiness, &p.LastFed, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PetRepo) InsertPet(ctx context.Context, p *models.Pet) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.OwnerID, p.Name, p.Type, p.Level, p.ExperiencePoint,
		p.Health, p.Happiness, p.LastFed, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PetRepo) PetByOwner(ctx context.Context, ownerID string) (*models.Pet, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanPet(r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_id = $1`, ownerID))
}

// GetOrCreatePet вставляет питомца по умолчанию, если у владельца его нет;
// при гонке побеждает уже существующая запись.
func (r *PetRepo) GetOrCreatePet(ctx context.Context, defaults *models.Pet) (*models.Pet, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (owner_id) DO NOTHING`,
		defaults.ID, defaults.OwnerID, defaults.Name, defaults.Type, defaults.Level, defaults.ExperiencePoint,
		defaults.Health, defaults.Happiness, defaults.LastFed, defaults.CreatedAt, defaults.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return scanPet(r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_id = $1`, defaults.OwnerID))
}

func (r *PetRepo) UpdatePet(ctx context.Context, p *models.Pet) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET level = $2, experience_points = $3, health = $4, happiness = $5,
		    last_fed = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Level, p.ExperiencePoint, p.Health, p.Happiness, p.LastFed, p.UpdatedAt)
	return err
}

func (r *PetRepo) InsertExperienceLog(ctx context.Context, l *models.ExperienceLog) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO experience_logs (id, owner_id, pet_id, activity_type, exp_gained, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		l.ID, l.OwnerID, l.PetID, l.ActivityType, l.ExpGained, l.Description, l.CreatedAt)
	return err
}

func (r *PetRepo) ExperienceLogs(ctx context.Context, ownerID string, limit int) ([]models.ExperienceLog, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, pet_id, activity_type, exp_gained, description, created_at
		FROM experience_logs
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.ExperienceLog
	for rows.Next() {
		var l models.ExperienceLog
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.PetID, &l.ActivityType, &l.ExpGained, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const itemColumns = `id, name, type, rarity, cost_exp, effect_health, effect_happiness, description, is_available, created_at`

func scanItem(row interface{ Scan(...any) error }) (*models.PetItem, error) {
	var it models.PetItem
	err := row.Scan(&it.ID, &it.Name, &it.Type, &it.Rarity, &it.CostExp, &it.EffectHealth,
		&it.EffectHappiness, &it.Description, &it.IsAvailable, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PetRepo) ItemByID(ctx context.Context, itemID string) (*models.PetItem, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM pet_items WHERE id = $1`, itemID))
}

func (r *PetRepo) AvailableItems(ctx context.Context) ([]models.PetItem, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM pet_items
		WHERE is_available = TRUE
		ORDER BY cost_exp, name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PetItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *PetRepo) InsertItem(ctx context.Context, it *models.PetItem) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_items (`+itemColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		it.ID, it.Name, it.Type, it.Rarity, it.CostExp, it.EffectHealth,
		it.EffectHappiness, it.Description, it.IsAvailable, it.CreatedAt)
	return err
}

func (r *PetRepo) InventoryItem(ctx context.Context, ownerID, itemID string) (*models.UserPetItem, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var u models.UserPetItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, pet_id, item_id, quantity, created_at
		FROM user_pet_items
		WHERE owner_id = $1 AND item_id = $2`, ownerID, itemID,
	).Scan(&u.ID, &u.OwnerID, &u.PetID, &u.ItemID, &u.Quantity, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PetRepo) AdjustInventory(ctx context.Context, ownerID, petID, itemID string, delta int, now time.Time) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_pet_items (id, owner_id, pet_id, item_id, quantity, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (owner_id, item_id)
		DO UPDATE SET quantity = user_pet_items.quantity + EXCLUDED.quantity`,
		uuid.NewString(), ownerID, petID, itemID, delta, now)
	return err
}

// Inventory: позиции с quantity > 0 вместе с карточкой каталога.
func (r *PetRepo) Inventory(ctx context.Context, ownerID string) ([]models.InventoryEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.quantity,
		       i.id, i.name, i.type, i.rarity, i.cost_exp, i.effect_health,
		       i.effect_happiness, i.description, i.is_available, i.created_at
		FROM user_pet_items u
		JOIN pet_items i ON i.id = u.item_id
		WHERE u.owner_id = $1 AND u.quantity > 0
		ORDER BY i.name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.InventoryEntry
	for rows.Next() {
		var e models.InventoryEntry
		it := &e.Item
		if err := rows.Scan(&e.Quantity, &it.ID, &it.Name, &it.Type, &it.Rarity, &it.CostExp,
			&it.EffectHealth, &it.EffectHappiness, &it.Description, &it.IsAvailable, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
