// Package collection provides the cache of a user's owned games.
//
// Writes replace or extend the cached list in a single transaction and are
// serialized per Repository, so a sync never leaves a half-written list
// behind.
//
// # Usage
//
//	repo := collection.NewRepository(db)
//	err := repo.ReplaceAll(ctx, items)
//	items, err := repo.List(ctx)
package collection

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/mrlokans/bgsync/internal/entities"
)

// Repository handles all collection cache operations.
type Repository struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewRepository creates a new collection repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll swaps the cached collection for items, keeping their order.
func (r *Repository) ReplaceAll(ctx context.Context, items []entities.CollectionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearItems(tx); err != nil {
			return err
		}
		return insertItems(tx, items, 0)
	})
}

// Append adds items after the ones already cached.
func (r *Repository) Append(ctx context.Context, items []entities.CollectionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextPosition(tx)
		if err != nil {
			return err
		}
		return insertItems(tx, items, next)
	})
}

// Clear removes every cached item.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return clearItems(r.db.WithContext(ctx))
}

// List returns the cached collection in upstream order.
func (r *Repository) List(ctx context.Context) ([]entities.CollectionItem, error) {
	var items []entities.CollectionItem
	err := r.db.WithContext(ctx).Order("position ASC").Find(&items).Error
	return items, err
}

// ListByKind returns the cached items of one kind in upstream order.
func (r *Repository) ListByKind(ctx context.Context, kind string) ([]entities.CollectionItem, error) {
	var items []entities.CollectionItem
	err := r.db.WithContext(ctx).Where("kind = ?", kind).Order("position ASC").Find(&items).Error
	return items, err
}

// Count returns the number of cached items.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.CollectionItem{}).Count(&count).Error
	return count, err
}

func clearItems(tx *gorm.DB) error {
	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.CollectionItem{}).Error
}

func nextPosition(tx *gorm.DB) (int, error) {
	var maxPos int
	err := tx.Model(&entities.CollectionItem{}).Select("COALESCE(MAX(position), -1)").Row().Scan(&maxPos)
	return maxPos + 1, err
}

func insertItems(tx *gorm.DB, items []entities.CollectionItem, start int) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]entities.CollectionItem, len(items))
	for i, item := range items {
		item.ID = 0
		item.Position = start + i
		rows[i] = item
	}
	return tx.CreateInBatches(&rows, 200).Error
}
