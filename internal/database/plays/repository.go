// Package plays provides the cache of a user's play history.
//
// Page 1 of a history replaces the cache; later pages are appended after
// it. Each write runs in one transaction and writes are serialized per
// Repository.
package plays

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/mrlokans/bgsync/internal/entities"
)

// Repository handles all play cache operations.
type Repository struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewRepository creates a new plays repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll swaps the cached history for plays.
func (r *Repository) ReplaceAll(ctx context.Context, plays []entities.Play) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearPlays(tx); err != nil {
			return err
		}
		return insertPlays(tx, plays, 0)
	})
}

// Append adds plays after the cached history.
func (r *Repository) Append(ctx context.Context, plays []entities.Play) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		err := tx.Model(&entities.Play{}).Select("COALESCE(MAX(position), -1)").Row().Scan(&maxPos)
		if err != nil {
			return err
		}
		return insertPlays(tx, plays, maxPos+1)
	})
}

// Clear removes every cached play and its players.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(clearPlays)
}

// List returns cached plays with their players in upstream order. A
// non-positive limit returns everything from offset on.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.Play, error) {
	query := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("position ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var plays []entities.Play
	err := query.Find(&plays).Error
	return plays, err
}

// Count returns the number of cached plays.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Play{}).Count(&count).Error
	return count, err
}

// TotalQuantity sums the play counts of every cached play.
func (r *Repository) TotalQuantity(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entities.Play{}).Select("COALESCE(SUM(quantity), 0)").Row().Scan(&total)
	return total, err
}

func clearPlays(tx *gorm.DB) error {
	global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := global.Delete(&entities.PlayPlayer{}).Error; err != nil {
		return err
	}
	return global.Delete(&entities.Play{}).Error
}

func insertPlays(tx *gorm.DB, plays []entities.Play, start int) error {
	if len(plays) == 0 {
		return nil
	}
	rows := make([]entities.Play, len(plays))
	for i, play := range plays {
		play.ID = 0
		play.Position = start + i
		players := make([]entities.PlayPlayer, len(play.Players))
		for j, p := range play.Players {
			p.ID = 0
			p.PlayID = 0
			p.Position = j
			players[j] = p
		}
		play.Players = players
		rows[i] = play
	}
	return tx.CreateInBatches(&rows, 100).Error
}
