package bgg

import "time"

// PlaysPageSize is the fixed number of plays the upstream returns per page
const PlaysPageSize = 100

// ItemKind distinguishes the two collection sub-fetches
type ItemKind string

const (
	ItemKindBaseGame  ItemKind = "boardgame"
	ItemKindExpansion ItemKind = "expansion"
)

// CollectionItem is one owned item as reported by the upstream
type CollectionItem struct {
	ExternalID    int
	Kind          ItemKind
	Name          string
	YearPublished *int
	ThumbnailURL  *string
}

// Play is one logged play session
type Play struct {
	ExternalID    int
	Date          time.Time
	Quantity      int
	LengthMinutes *int
	Incomplete    bool
	Location      *string
	GameID        int
	GameName      string
	Comments      *string
	Players       []Player
}

// Player is one participant of a play, in the order the upstream lists them
type Player struct {
	Name          string
	Username      *string
	UserID        *int
	StartPosition *string
	Color         *string
	Score         *string
	Won           bool
}

// PageMeta describes where a plays page sits in the full history
type PageMeta struct {
	TotalCount int
	PageNumber int
}

// HasMorePages reports whether a page after this one exists
func (m PageMeta) HasMorePages() bool {
	return m.TotalCount > m.PageNumber*PlaysPageSize
}

// PlaysPage is the parsed result of a single plays request
type PlaysPage struct {
	Plays []Play
	Meta  PageMeta
}
