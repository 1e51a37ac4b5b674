package pet

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/logging"
	"github.com/reachhk/engage/internal/metrics"
	"github.com/reachhk/engage/internal/models"
)

const (
	levelUpBonus   = 20
	decayPeriod    = 24 * time.Hour
	decayPerPeriod = 10
	defaultHistory = 10
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: logging.OrNop(log), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) newPet(ownerID, name, typ string) *models.Pet {
	if name == "" {
		name = models.DefaultPetName
	}
	if typ == "" {
		typ = models.DefaultPetType
	}
	now := s.now()
	return &models.Pet{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Name:            name,
		Type:            typ,
		Level:           1,
		ExperiencePoint: 0,
		Health:          models.MaxStat,
		Happiness:       models.MaxStat,
		LastFed:         now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CreatePet inserts a pet with default stats and returns its id.
func (s *Service) CreatePet(ctx context.Context, ownerID, name, typ string) (string, error) {
	p := s.newPet(ownerID, name, typ)
	if err := s.store.InsertPet(ctx, p); err != nil {
		return "", fmt.Errorf("create pet: %w", err)
	}
	s.log.Info("pet created", zap.String("owner_id", ownerID), zap.String("pet_id", p.ID))
	return p.ID, nil
}

func (s *Service) GetPet(ctx context.Context, ownerID string) (*models.Pet, error) {
	p, err := s.store.PetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get pet: %w", err)
	}
	return p, nil
}

// AddExperience awards experience, creating the pet on first award.
// On level-up health and happiness get a bonus capped at 100.
func (s *Service) AddExperience(ctx context.Context, ownerID, activity string, amount int, description string) (bool, error) {
	p, err := s.store.GetOrCreatePet(ctx, s.newPet(ownerID, "", ""))
	if err != nil {
		return false, fmt.Errorf("add experience: %w", err)
	}
	if p == nil {
		return false, nil
	}

	now := s.now()
	entry := &models.ExperienceLog{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		PetID:        p.ID,
		ActivityType: activity,
		ExpGained:    amount,
		CreatedAt:    now,
	}
	if description != "" {
		entry.Description = &description
	}
	if err := s.store.InsertExperienceLog(ctx, entry); err != nil {
		return false, fmt.Errorf("add experience: log: %w", err)
	}

	// опыт: валюта магазина, ниже нуля не опускается
	total := max(0, p.ExperiencePoint+amount)
	level := LevelFor(total)
	if level > p.Level {
		p.Health = clampStat(p.Health + levelUpBonus)
		p.Happiness = clampStat(p.Happiness + levelUpBonus)
		metrics.PetLevelUps.Inc()
		s.log.Info("pet level up",
			zap.String("owner_id", ownerID),
			zap.Int("from", p.Level),
			zap.Int("to", level))
	}
	p.ExperiencePoint = total
	p.Level = level
	p.UpdatedAt = now

	if err := s.store.UpdatePet(ctx, p); err != nil {
		return false, fmt.Errorf("add experience: update pet: %w", err)
	}
	if amount > 0 {
		metrics.ExperienceAwarded.WithLabelValues(activity).Add(float64(amount))
	}
	return true, nil
}

// FeedPet uses one unit of an owned item on the pet.
func (s *Service) FeedPet(ctx context.Context, ownerID, itemID string) (bool, error) {
	p, err := s.store.PetByOwner(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("feed pet: %w", err)
	}
	if p == nil {
		return false, nil
	}
	owned, err := s.store.InventoryItem(ctx, ownerID, itemID)
	if err != nil {
		return false, fmt.Errorf("feed pet: inventory: %w", err)
	}
	if owned == nil || owned.Quantity <= 0 {
		return false, nil
	}
	item, err := s.store.ItemByID(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("feed pet: item: %w", err)
	}
	if item == nil {
		return false, nil
	}

	now := s.now()
	p.Health = clampStat(p.Health + item.EffectHealth)
	p.Happiness = clampStat(p.Happiness + item.EffectHappiness)
	p.LastFed = now
	p.UpdatedAt = now
	if err := s.store.UpdatePet(ctx, p); err != nil {
		return false, fmt.Errorf("feed pet: update pet: %w", err)
	}
	if err := s.store.AdjustInventory(ctx, ownerID, p.ID, itemID, -1, now); err != nil {
		return false, fmt.Errorf("feed pet: inventory: %w", err)
	}
	return true, nil
}

// BuyItem spends experience on a shop item. Level is not recalculated.
func (s *Service) BuyItem(ctx context.Context, ownerID, itemID string) (bool, error) {
	p, err := s.store.PetByOwner(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("buy item: %w", err)
	}
	if p == nil {
		metrics.ShopPurchases.WithLabelValues("no_pet").Inc()
		return false, nil
	}
	item, err := s.store.ItemByID(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("buy item: item: %w", err)
	}
	if item == nil || !item.IsAvailable {
		metrics.ShopPurchases.WithLabelValues("unavailable").Inc()
		return false, nil
	}
	if p.ExperiencePoint < item.CostExp {
		metrics.ShopPurchases.WithLabelValues("insufficient_exp").Inc()
		return false, nil
	}

	now := s.now()
	p.ExperiencePoint -= item.CostExp
	p.UpdatedAt = now
	if err := s.store.UpdatePet(ctx, p); err != nil {
		return false, fmt.Errorf("buy item: update pet: %w", err)
	}
	if err := s.store.AdjustInventory(ctx, ownerID, p.ID, itemID, 1, now); err != nil {
		return false, fmt.Errorf("buy item: inventory: %w", err)
	}
	metrics.ShopPurchases.WithLabelValues("ok").Inc()
	return true, nil
}

// UpdatePetStatus применяет ленивое падение счастья: -10 за каждые полные
// сутки без кормления. last_fed не сдвигается, поэтому повторный вызов
// считает потерю от той же точки.
func (s *Service) UpdatePetStatus(ctx context.Context, ownerID string) (bool, error) {
	p, err := s.store.PetByOwner(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("update pet status: %w", err)
	}
	if p == nil {
		return false, nil
	}
	now := s.now()
	since := now.Sub(p.LastFed)
	if since <= decayPeriod {
		return false, nil
	}
	loss := int(since/decayPeriod) * decayPerPeriod
	if loss > p.Happiness {
		loss = p.Happiness
	}
	p.Happiness = clampStat(p.Happiness - loss)
	p.UpdatedAt = now
	if err := s.store.UpdatePet(ctx, p); err != nil {
		return false, fmt.Errorf("update pet status: %w", err)
	}
	return true, nil
}

// ExperienceHistory returns the newest experience awards first.
func (s *Service) ExperienceHistory(ctx context.Context, ownerID string, limit int) ([]models.ExperienceLog, error) {
	if limit <= 0 {
		limit = defaultHistory
	}
	logs, err := s.store.ExperienceLogs(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("experience history: %w", err)
	}
	return logs, nil
}

func (s *Service) ShopItems(ctx context.Context) ([]models.PetItem, error) {
	items, err := s.store.AvailableItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("shop items: %w", err)
	}
	return items, nil
}

func (s *Service) Inventory(ctx context.Context, ownerID string) ([]models.InventoryEntry, error) {
	inv, err := s.store.Inventory(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	return inv, nil
}

// NewItem: позиция каталога от администратора.
type NewItem struct {
	Name            string `validate:"required,max=100"`
	Type            string `validate:"required,oneof=food toy accessory"`
	Rarity          string `validate:"required,oneof=common rare epic legendary"`
	CostExp         int    `validate:"gte=0"`
	EffectHealth    int    `validate:"gte=-100,lte=100"`
	EffectHappiness int    `validate:"gte=-100,lte=100"`
	Description     string `validate:"max=500"`
}

func (s *Service) AddShopItem(ctx context.Context, in NewItem) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", fmt.Errorf("add shop item: %w: %v", models.ErrInvalidInput, err)
	}
	it := &models.PetItem{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Type:            models.ItemType(in.Type),
		Rarity:          in.Rarity,
		CostExp:         in.CostExp,
		EffectHealth:    in.EffectHealth,
		EffectHappiness: in.EffectHappiness,
		Description:     in.Description,
		IsAvailable:     true,
		CreatedAt:       s.now(),
	}
	if err := s.store.InsertItem(ctx, it); err != nil {
		return "", fmt.Errorf("add shop item: %w", err)
	}
	return it.ID, nil
}
