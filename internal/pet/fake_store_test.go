package pet

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/reachhk/engage/internal/models"
)

type fakeStore struct {
	pets      map[string]*models.Pet // by owner
	logs      []models.ExperienceLog
	items     map[string]*models.PetItem
	inventory map[string]*models.UserPetItem // owner|item

	failUpdate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pets:      map[string]*models.Pet{},
		items:     map[string]*models.PetItem{},
		inventory: map[string]*models.UserPetItem{},
	}
}

func (f *fakeStore) InsertPet(_ context.Context, p *models.Pet) error {
	if _, ok := f.pets[p.OwnerID]; ok {
		return errors.New("duplicate owner")
	}
	cp := *p
	f.pets[p.OwnerID] = &cp
	return nil
}

func (f *fakeStore) PetByOwner(_ context.Context, ownerID string) (*models.Pet, error) {
	p, ok := f.pets[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetOrCreatePet(ctx context.Context, defaults *models.Pet) (*models.Pet, error) {
	if _, ok := f.pets[defaults.OwnerID]; !ok {
		if err := f.InsertPet(ctx, defaults); err != nil {
			return nil, err
		}
	}
	return f.PetByOwner(ctx, defaults.OwnerID)
}

func (f *fakeStore) UpdatePet(_ context.Context, p *models.Pet) error {
	if f.failUpdate {
		return errors.New("store down")
	}
	cp := *p
	f.pets[p.OwnerID] = &cp
	return nil
}

func (f *fakeStore) InsertExperienceLog(_ context.Context, l *models.ExperienceLog) error {
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeStore) ExperienceLogs(_ context.Context, ownerID string, limit int) ([]models.ExperienceLog, error) {
	var out []models.ExperienceLog
	for _, l := range f.logs {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ItemByID(_ context.Context, itemID string) (*models.PetItem, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeStore) AvailableItems(_ context.Context) ([]models.PetItem, error) {
	var out []models.PetItem
	for _, it := range f.items {
		if it.IsAvailable {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CostExp < out[j].CostExp })
	return out, nil
}

func (f *fakeStore) InsertItem(_ context.Context, it *models.PetItem) error {
	cp := *it
	f.items[it.ID] = &cp
	return nil
}

func (f *fakeStore) InventoryItem(_ context.Context, ownerID, itemID string) (*models.UserPetItem, error) {
	inv, ok := f.inventory[ownerID+"|"+itemID]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) AdjustInventory(_ context.Context, ownerID, petID, itemID string, delta int, now time.Time) error {
	key := ownerID + "|" + itemID
	if inv, ok := f.inventory[key]; ok {
		inv.Quantity += delta
		return nil
	}
	f.inventory[key] = &models.UserPetItem{
		ID: key, OwnerID: ownerID, PetID: petID, ItemID: itemID, Quantity: delta, CreatedAt: now,
	}
	return nil
}

func (f *fakeStore) Inventory(_ context.Context, ownerID string) ([]models.InventoryEntry, error) {
	var out []models.InventoryEntry
	for _, inv := range f.inventory {
		if inv.OwnerID != ownerID || inv.Quantity <= 0 {
			continue
		}
		if it, ok := f.items[inv.ItemID]; ok {
			out = append(out, models.InventoryEntry{Quantity: inv.Quantity, Item: *it})
		}
	}
	return out, nil
}
