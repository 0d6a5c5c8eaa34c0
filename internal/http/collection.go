package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bgsync/internal/entities"
)

type CollectionController struct {
	reader CollectionReader
}

func NewCollectionController(reader CollectionReader) *CollectionController {
	return &CollectionController{reader: reader}
}

// CollectionResponse lists cached items in upstream order: base games
// first, then expansions.
type CollectionResponse struct {
	Items      []entities.CollectionItem `json:"items"`
	Count      int                       `json:"count"`
	BaseGames  int                       `json:"base_games"`
	Expansions int                       `json:"expansions"`
}

// GetCollection handles GET /api/collection?kind=boardgame|expansion
func (cc *CollectionController) GetCollection(c *gin.Context) {
	var (
		items []entities.CollectionItem
		err   error
	)

	switch kind := c.Query("kind"); kind {
	case "":
		items, err = cc.reader.List(c.Request.Context())
	case entities.ItemKindBaseGame, entities.ItemKindExpansion:
		items, err = cc.reader.ListByKind(c.Request.Context(), kind)
	default:
		respondBadRequest(c, "invalid kind: must be boardgame or expansion")
		return
	}
	if err != nil {
		respondInternalError(c, err, "list collection")
		return
	}

	resp := CollectionResponse{Items: items, Count: len(items)}
	for _, item := range items {
		if item.Kind == entities.ItemKindExpansion {
			resp.Expansions++
		} else {
			resp.BaseGames++
		}
	}
	c.IndentedJSON(http.StatusOK, resp)
}
