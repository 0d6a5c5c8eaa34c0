package entities

import "time"

// Play is one logged play session from the user's history
type Play struct {
	ID            uint         `gorm:"primaryKey" json:"-"`
	Position      int          `gorm:"index" json:"-"`
	ExternalID    int          `gorm:"index" json:"external_id"`
	Date          time.Time    `json:"date"`
	Quantity      int          `json:"quantity"`
	LengthMinutes *int         `json:"length_minutes,omitempty"`
	Incomplete    bool         `json:"incomplete"`
	Location      *string      `gorm:"size:512" json:"location,omitempty"`
	GameID        int          `gorm:"index" json:"game_id"`
	GameName      string       `gorm:"size:512" json:"game_name"`
	Comments      *string      `gorm:"type:text" json:"comments,omitempty"`
	Players       []PlayPlayer `gorm:"foreignKey:PlayID;constraint:OnDelete:CASCADE" json:"players"`
	CreatedAt     time.Time    `json:"cached_at"`
}

func (Play) TableName() string {
	return "plays"
}

type PlayPlayer struct {
	ID            uint    `gorm:"primaryKey" json:"-"`
	PlayID        uint    `gorm:"index" json:"-"`
	Position      int     `json:"-"`
	Name          string  `gorm:"size:255" json:"name"`
	Username      *string `gorm:"size:255" json:"username,omitempty"`
	UserID        *int    `json:"user_id,omitempty"`
	StartPosition *string `gorm:"size:50" json:"start_position,omitempty"`
	Color         *string `gorm:"size:50" json:"color,omitempty"`
	Score         *string `gorm:"size:50" json:"score,omitempty"`
	Won           bool    `json:"won"`
}

func (PlayPlayer) TableName() string {
	return "play_players"
}
