package pet

import (
	"context"
	"time"

	"github.com/reachhk/engage/internal/models"
)

// Store: хранилище питомцев, журнала опыта, каталога и инвентаря.
// Отсутствие записи возвращается как nil без ошибки.
type Store interface {
	InsertPet(ctx context.Context, p *models.Pet) error
	PetByOwner(ctx context.Context, ownerID string) (*models.Pet, error)
	// GetOrCreatePet returns the owner's pet, inserting defaults when none exists.
	GetOrCreatePet(ctx context.Context, defaults *models.Pet) (*models.Pet, error)
	UpdatePet(ctx context.Context, p *models.Pet) error

	InsertExperienceLog(ctx context.Context, l *models.ExperienceLog) error
	ExperienceLogs(ctx context.Context, ownerID string, limit int) ([]models.ExperienceLog, error)

	ItemByID(ctx context.Context, itemID string) (*models.PetItem, error)
	AvailableItems(ctx context.Context) ([]models.PetItem, error)
	InsertItem(ctx context.Context, it *models.PetItem) error

	InventoryItem(ctx context.Context, ownerID, itemID string) (*models.UserPetItem, error)
	// AdjustInventory adds delta to the owner's quantity, creating the row on first purchase.
	AdjustInventory(ctx context.Context, ownerID, petID, itemID string, delta int, now time.Time) error
	Inventory(ctx context.Context, ownerID string) ([]models.InventoryEntry, error)
}
