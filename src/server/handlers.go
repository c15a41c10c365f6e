package server

import (
	"errors"
	"net/http"
	"strings"

	"deal-observer/src/helpers"
	"deal-observer/src/models"

	"github.com/gin-gonic/gin"
)

// Successful responses may be shared-cached briefly and revalidated in the
// background; quote data goes stale within minutes.
const cacheHint = "s-maxage=300, stale-while-revalidate=60"

// -----------------------------------------------------------------------------
// Search
// -----------------------------------------------------------------------------

func (s *APIServer) getSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	results, err := s.Deals.SearchByTitle(c.Request.Context(), query, s.Config.Deals.SearchResults)
	if err != nil {
		s.Logger.Error("Search failed for %q: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	// Games only; DLC and package entries are excluded. Entries without a
	// type are kept, the aggregator omits it for plain games.
	games := make([]models.MGame, 0, len(results))
	for _, item := range results {
		if item.Type == "game" || item.Type == "" {
			games = append(games, item)
		}
	}

	c.Header("Cache-Control", cacheHint)
	c.JSON(http.StatusOK, models.MSearchResponse{Data: games})
}

// -----------------------------------------------------------------------------
// Quote
// -----------------------------------------------------------------------------

type quoteRequest struct {
	ItadID string `json:"itadId"`
}

func (s *APIServer) postQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itadId required"})
		return
	}
	if req.ItadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itadId required"})
		return
	}

	result, err := s.Assembler.BuildQuote(c.Request.Context(), req.ItadID)
	if err != nil {
		var validation *helpers.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
			return
		}
		// The caller gets one generic retryable condition, not the
		// internal cause.
		s.Logger.Error("Quote failed for %s: %v", req.ItadID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quote failed"})
		return
	}

	c.Header("Cache-Control", cacheHint)
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------
// Health / Config
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"name":     s.Config.Name,
		"source":   s.Deals.Name(),
		"demoMode": s.Config.Deals.DemoMode,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	// Credential must never reach an untrusted caller.
	redacted := *s.Config
	redacted.Deals.APIKey = ""
	redacted.Storage.DBConnectionString = ""
	c.JSON(http.StatusOK, redacted)
}

// -----------------------------------------------------------------------------
// Favorites
// -----------------------------------------------------------------------------

func (s *APIServer) getFavorites(c *gin.Context) {
	list, err := s.Favorites.List()
	if err != nil {
		s.Logger.Error("Favorites list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "favorites unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "count": len(list)})
}

// -----------------------------------------------------------------------------

func (s *APIServer) postFavoriteToggle(c *gin.Context) {
	var game models.MFavorite
	if err := c.ShouldBindJSON(&game); err != nil || game.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "favorite id required"})
		return
	}

	added, err := s.Favorites.Toggle(game)
	if err != nil {
		s.Logger.Error("Favorite toggle failed for %s: %v", game.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "favorites unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": game.ID, "favorite": added})
}

// -----------------------------------------------------------------------------

func (s *APIServer) deleteFavorite(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "favorite id required"})
		return
	}

	if err := s.Favorites.Remove(id); err != nil {
		s.Logger.Error("Favorite delete failed for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "favorites unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}
