package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/user/filmy/internal/model"
	"github.com/user/filmy/internal/tmdb"
	"github.com/user/filmy/internal/utils"
)

type addRatingRequest struct {
	TMDBID      int    `json:"tmdb_id" binding:"required"`
	Type        string `json:"type" binding:"required,mediatype"`
	Rating      int    `json:"rating" binding:"min=-2,max=4"`
	CustomLabel string `json:"custom_label"`
}

type updateRatingRequest struct {
	Rating      int    `json:"rating" binding:"min=-2,max=4"`
	CustomLabel string `json:"custom_label"`
}

// AddRating rates a catalog item. Rating the same item twice updates
// the existing record in place; the store never holds two rows for one
// (tmdb_id, type) pair.
func (h *Handler) AddRating(c *gin.Context) {
	var req addRatingRequest
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

	updated, err := h.Store.Add(*item, req.Rating, req.CustomLabel)
	if err != nil {
		log.Printf("[Ratings] add %d/%s: %v", req.TMDBID, req.Type, err)
		utils.InternalServerError(c, "could not save rating")
		return
	}

	message := "rating added"
	if updated {
		message = "rating updated"
	}
	h.mirrorRating(req.TMDBID, req.Type)
	rec, _ := h.Store.Get(req.TMDBID, req.Type)
	utils.SuccessWithMessage(c, message, rec)
}

// UpdateRating changes an existing record's rating.
func (h *Handler) UpdateRating(c *gin.Context) {
	tmdbID, contentType, ok := ratingKey(c)
	if !ok {
		return
	}

	var req updateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	found, err := h.Store.Update(tmdbID, contentType, req.Rating, req.CustomLabel)
	if err != nil {
		log.Printf("[Ratings] update %d/%s: %v", tmdbID, contentType, err)
		utils.InternalServerError(c, "could not save rating")
		return
	}
	if !found {
		utils.NotFound(c, "no rating for this item")
		return
	}

	h.mirrorRating(tmdbID, contentType)
	rec, _ := h.Store.Get(tmdbID, contentType)
	utils.SuccessWithMessage(c, "rating updated", rec)
}

// DeleteRating removes a record.
func (h *Handler) DeleteRating(c *gin.Context) {
	tmdbID, contentType, ok := ratingKey(c)
	if !ok {
		return
	}

	found, err := h.Store.Delete(tmdbID, contentType)
	if err != nil {
		log.Printf("[Ratings] delete %d/%s: %v", tmdbID, contentType, err)
		utils.InternalServerError(c, "could not delete rating")
		return
	}
	if !found {
		utils.NotFound(c, "no rating for this item")
		return
	}
	utils.SuccessWithMessage(c, "rating deleted", nil)
}

// ListRatings returns the table, optionally filtered by type and a
// minimum score.
func (h *Handler) ListRatings(c *gin.Context) {
	contentType := c.Query("type")
	if contentType != "" && contentType != model.TypeMovie && contentType != model.TypeTV {
		utils.BadRequest(c, "type must be movie or tv")
		return
	}

	if minStr := c.Query("min"); minStr != "" {
		min, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			utils.BadRequest(c, "min must be a number")
			return
		}
		utils.Success(c, h.Store.RatingsByScore(min, contentType))
		return
	}

	ratings := h.Store.All()
	if contentType != "" {
		filtered := ratings[:0]
		for _, rec := range ratings {
			if rec.Type == contentType {
				filtered = append(filtered, rec)
			}
		}
		ratings = filtered
	}
	utils.Success(c, ratings)
}

// GetRating returns one record.
func (h *Handler) GetRating(c *gin.Context) {
	tmdbID, contentType, ok := ratingKey(c)
	if !ok {
		return
	}

	rec, found := h.Store.Get(tmdbID, contentType)
	if !found {
		utils.NotFound(c, "no rating for this item")
		return
	}
	utils.Success(c, rec)
}

// Stats returns the aggregate rating statistics.
func (h *Handler) Stats(c *gin.Context) {
	utils.Success(c, h.Store.Statistics())
}

// CompactJournal rewrites the journal file to one row per record.
func (h *Handler) CompactJournal(c *gin.Context) {
	if err := h.Store.Compact(); err != nil {
		log.Printf("[Ratings] compact: %v", err)
		utils.InternalServerError(c, "could not compact journal")
		return
	}
	utils.SuccessWithMessage(c, "journal compacted", gin.H{"records": h.Store.Count()})
}

// ratingKey reads the item identity from the path and query. Writes
// the error response itself when the request is malformed.
func ratingKey(c *gin.Context) (int, string, bool) {
	tmdbID, err := strconv.Atoi(c.Param("id"))
	if err != nil || tmdbID == 0 {
		utils.BadRequest(c, "invalid item id")
		return 0, "", false
	}
	contentType := c.DefaultQuery("type", model.TypeMovie)
	if contentType != model.TypeMovie && contentType != model.TypeTV {
		utils.BadRequest(c, "type must be movie or tv")
		return 0, "", false
	}
	return tmdbID, contentType, true
}
