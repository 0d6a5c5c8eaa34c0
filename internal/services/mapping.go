package services

import (
	"github.com/mrlokans/bgsync/internal/bgg"
	"github.com/mrlokans/bgsync/internal/entities"
)

func collectionToEntities(items []bgg.CollectionItem) []entities.CollectionItem {
	out := make([]entities.CollectionItem, len(items))
	for i, item := range items {
		out[i] = entities.CollectionItem{
			ExternalID:    item.ExternalID,
			Kind:          string(item.Kind),
			Name:          item.Name,
			YearPublished: item.YearPublished,
			ThumbnailURL:  item.ThumbnailURL,
		}
	}
	return out
}

func playsToEntities(plays []bgg.Play) []entities.Play {
	out := make([]entities.Play, len(plays))
	for i, p := range plays {
		players := make([]entities.PlayPlayer, len(p.Players))
		for j, pl := range p.Players {
			players[j] = entities.PlayPlayer{
				Name:          pl.Name,
				Username:      pl.Username,
				UserID:        pl.UserID,
				StartPosition: pl.StartPosition,
				Color:         pl.Color,
				Score:         pl.Score,
				Won:           pl.Won,
			}
		}
		out[i] = entities.Play{
			ExternalID:    p.ExternalID,
			Date:          p.Date,
			Quantity:      p.Quantity,
			LengthMinutes: p.LengthMinutes,
			Incomplete:    p.Incomplete,
			Location:      p.Location,
			GameID:        p.GameID,
			GameName:      p.GameName,
			Comments:      p.Comments,
			Players:       players,
		}
	}
	return out
}

func countKinds(items []bgg.CollectionItem) (baseGames, expansions int) {
	for _, item := range items {
		if item.Kind == bgg.ItemKindExpansion {
			expansions++
		} else {
			baseGames++
		}
	}
	return baseGames, expansions
}
