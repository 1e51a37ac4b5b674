package models

import "time"

const (
	DefaultPetName = "My Learning Buddy"
	DefaultPetType = "dragon"

	MaxStat = 100
)

type Pet struct {
	ID              string    `db:"id"`
	OwnerID         string    `db:"owner_id"`
	Name            string    `db:"name"`
	Type            string    `db:"type"`
	Level           int       `db:"level"`
	ExperiencePoint int       `db:"experience_points"`
	Health          int       `db:"health"`
	Happiness       int       `db:"happiness"`
	LastFed         time.Time `db:"last_fed"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type ExperienceLog struct {
	ID           string    `db:"id"`
	OwnerID      string    `db:"owner_id"`
	PetID        string    `db:"pet_id"`
	ActivityType string    `db:"activity_type"`
	ExpGained    int       `db:"exp_gained"`
	Description  *string   `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
}

type ItemType string

const (
	ItemFood      ItemType = "food"
	ItemToy       ItemType = "toy"
	ItemAccessory ItemType = "accessory"
)

type PetItem struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Type            ItemType  `db:"type"`
	Rarity          string    `db:"rarity"`
	CostExp         int       `db:"cost_exp"`
	EffectHealth    int       `db:"effect_health"`
	EffectHappiness int       `db:"effect_happiness"`
	Description     string    `db:"description"`
	IsAvailable     bool      `db:"is_available"`
	CreatedAt       time.Time `db:"created_at"`
}

// UserPetItem: позиция инвентаря владельца.
type UserPetItem struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	PetID     string    `db:"pet_id"`
	ItemID    string    `db:"item_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
}

type InventoryEntry struct {
	Quantity int
	Item     PetItem
}
