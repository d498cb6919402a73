package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/user/filmy/internal/tmdb"
	"github.com/user/filmy/internal/utils"
)

type trackSeenRequest struct {
	TMDBID             int    `json:"tmdb_id" binding:"required"`
	Type               string `json:"type" binding:"required,mediatype"`
	Viewer             string `json:"viewer" binding:"required,oneof=Toby Taz Both"`
	RecommendationType string `json:"recommendation_type"`
}

type coupleRatingRequest struct {
	TMDBID     int    `json:"tmdb_id" binding:"required"`
	Type       string `json:"type" binding:"required,mediatype"`
	TobyRating int    `json:"toby_rating" binding:"min=1,max=4"`
	TazRating  int    `json:"taz_rating" binding:"min=1,max=4"`
}

// TrackSeen records who has watched an item.
func (h *Handler) TrackSeen(c *gin.Context) {
	var req trackSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	item, err := h.Catalog.Details(c.Request.Context(), req.Type, req.TMDBID)
	if err != nil {
		if errors.Is(err, tmdb.ErrUnavailable) {
			utils.ServiceUnavailable(c, "catalog unavailable, try again later")
			return
		}
		utils.NotFound(c, "unknown catalog item")
		return
	}

	if err := h.Store.TrackViewing(*item, req.Viewer, req.RecommendationType); err != nil {
		log.Printf("[Couple] track %d/%s: %v", req.TMDBID, req.Type, err)
		utils.InternalServerError(c, "could not track viewing")
		return
	}

	h.mirrorRating(req.TMDBID, req.Type)
	rec, _ := h.Store.Get(req.TMDBID, req.Type)
	utils.SuccessWithMessage(c, "viewing tracked", rec)
}

// CoupleRate stores both viewers' scores for a tracked item and
// derives the blended couple score.
func (h *Handler) CoupleRate(c *gin.Context) {
	var req coupleRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	found, err := h.Store.AddCoupleRating(req.TMDBID, req.Type, req.TobyRating, req.TazRating)
	if err != nil {
		log.Printf("[Couple] rate %d/%s: %v", req.TMDBID, req.Type, err)
		utils.InternalServerError(c, "could not save couple rating")
		return
	}
	if !found {
		utils.NotFound(c, "track the item as seen before rating it together")
		return
	}

	h.mirrorRating(req.TMDBID, req.Type)
	rec, _ := h.Store.Get(req.TMDBID, req.Type)
	utils.SuccessWithMessage(c, "couple rating saved", rec)
}

// Compatibility returns the couple taste report.
func (h *Handler) Compatibility(c *gin.Context) {
	utils.Success(c, h.Analyzer.Compatibility())
}

// CoupleRecommendations serves picks for watching together, using the
// strategy the compatibility score calls for.
func (h *Handler) CoupleRecommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, strategy := h.Analyzer.Recommendations(c.Request.Context(), limit)
	utils.Success(c, gin.H{
		"items":    items,
		"count":    len(items),
		"strategy": strategy,
	})
}

// JointRatings lists everything both viewers have rated together.
func (h *Handler) JointRatings(c *gin.Context) {
	utils.Success(c, h.Store.JointRatings())
}
