package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PlaysController struct {
	reader PlaysReader
}

func NewPlaysController(reader PlaysReader) *PlaysController {
	return &PlaysController{reader: reader}
}

// GetPlays handles GET /api/plays?limit=N&offset=M
// Plays are returned most recent first, as the upstream lists them.
func (pc *PlaysController) GetPlays(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	total, err := pc.reader.Count(ctx)
	if err != nil {
		respondInternalError(c, err, "count plays")
		return
	}
	plays, err := pc.reader.List(ctx, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list plays")
		return
	}

	c.IndentedJSON(http.StatusOK, newPaginatedResponse(plays, total, limit, offset))
}

// GetStats handles GET /api/plays/stats
func (pc *PlaysController) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	records, err := pc.reader.Count(ctx)
	if err != nil {
		respondInternalError(c, err, "count plays")
		return
	}
	sessions, err := pc.reader.TotalQuantity(ctx)
	if err != nil {
		respondInternalError(c, err, "sum play quantity")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"records":  records,
		"sessions": sessions,
	})
}
