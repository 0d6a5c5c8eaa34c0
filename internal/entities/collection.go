package entities

import "time"

// Collection item kinds
const (
	ItemKindBaseGame  = "boardgame"
	ItemKindExpansion = "expansion"
)

// CollectionItem is one owned game in the cached collection. Position keeps
// the order in which the upstream returned the items.
type CollectionItem struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	Position      int       `gorm:"index" json:"-"`
	ExternalID    int       `gorm:"index" json:"external_id"`
	Kind          string    `gorm:"size:20;index" json:"kind"`
	Name          string    `gorm:"size:512" json:"name"`
	YearPublished *int      `json:"year_published,omitempty"`
	ThumbnailURL  *string   `gorm:"size:1024" json:"thumbnail_url,omitempty"`
	CreatedAt     time.Time `json:"cached_at"`
}

func (CollectionItem) TableName() string {
	return "collection_items"
}
