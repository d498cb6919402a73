package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/tmdb"
	"github.com/user/filmy/internal/utils"
)

// personalizedCacheTTL bounds staleness of the cached personalized
// response. The cache key carries the rating count, so new ratings
// miss the cache anyway.
const personalizedCacheTTL = 10 * time.Minute

// Search queries the catalog. type=movie, tv, or both when omitted.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		utils.BadRequest(c, "query is required")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	contentType := c.Query("type")

	ctx := c.Request.Context()
	var results []model.CandidateItem
	if contentType == "" || contentType == model.TypeMovie {
		movies, err := h.Catalog.SearchMovies(ctx, query, page)
		if err != nil {
			h.catalogError(c, err)
			return
		}
		results = append(results, movies...)
	}
	if contentType == "" || contentType == model.TypeTV {
		shows, err := h.Catalog.SearchTV(ctx, query, page)
		if err != nil {
			h.catalogError(c, err)
			return
		}
		results = append(results, shows...)
	}

	// Surface what is already rated so the UI can mark it.
	type searchResult struct {
		model.CandidateItem
		AlreadyRated bool `json:"already_rated"`
	}
	out := make([]searchResult, 0, len(results))
	for _, item := range results {
		out = append(out, searchResult{
			CandidateItem: item,
			AlreadyRated:  h.Store.IsAlreadyRated(item.ID, item.Type),
		})
	}
	utils.Success(c, out)
}

// Recommendations serves the next batch from the session's pools.
func (h *Handler) Recommendations(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "20"))
	if count < 1 || count > 100 {
		count = 20
	}

	pm := h.poolManager(c)
	batch := pm.EndlessRecommendations(c.Request.Context(), count)
	utils.Success(c, gin.H{
		"items": batch,
		"count": len(batch),
	})
}

// Personalized serves the taste-driven recommendations, cached in
// Redis per rating-count so the response survives across sessions.
func (h *Handler) Personalized(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("personalized:%d:%d", h.Store.Count(), limit)
	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var items []model.CandidateItem
			if json.Unmarshal([]byte(cached), &items) == nil {
				utils.Success(c, gin.H{"items": items, "count": len(items), "cached": true})
				return
			}
		}
	}

	items := h.Engine.PersonalizedRecommendations(ctx, limit)
	if items == nil {
		utils.SuccessWithMessage(c, "rate a few things you liked first", gin.H{
			"items": []model.CandidateItem{},
			"count": 0,
		})
		return
	}

	if h.Redis != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := h.Redis.Set(ctx, cacheKey, payload, personalizedCacheTTL).Err(); err != nil {
				log.Printf("[Recommendations] cache write: %v", err)
			}
		}
	}
	utils.Success(c, gin.H{"items": items, "count": len(items)})
}

// PoolStats reports the session's pool depths.
func (h *Handler) PoolStats(c *gin.Context) {
	utils.Success(c, h.poolManager(c).PoolStats())
}

// ResetRecommendations forgets the session's dealt-items history so
// the stream starts over.
func (h *Handler) ResetRecommendations(c *gin.Context) {
	h.poolManager(c).ClearUsed()
	utils.SuccessWithMessage(c, "recommendation history cleared", nil)
}

func (h *Handler) catalogError(c *gin.Context, err error) {
	if errors.Is(err, tmdb.ErrUnavailable) {
		utils.ServiceUnavailable(c, "catalog unavailable, try again later")
		return
	}
	log.Printf("[Recommendations] catalog: %v", err)
	utils.InternalServerError(c, "catalog request failed")
}
