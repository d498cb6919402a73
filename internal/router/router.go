package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/user/filmy/internal/handler"
	"github.com/user/filmy/internal/middleware"
	"github.com/user/filmy/internal/model"
)

// RegisterRoutes registers the whole HTTP surface.
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	registerValidators()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ratings": h.Store.Count()})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		api.GET("/me", h.Me)
		api.GET("/search", h.Search)
		api.GET("/stats", h.Stats)

		api.GET("/recommendations", h.Recommendations)
		api.GET("/recommendations/personalized", h.Personalized)
		api.GET("/recommendations/pools", h.PoolStats)
		api.POST("/recommendations/reset", h.ResetRecommendations)

		api.GET("/ratings", h.ListRatings)
		api.POST("/ratings", h.AddRating)
		api.GET("/ratings/:id", h.GetRating)
		api.PUT("/ratings/:id", h.UpdateRating)
		api.DELETE("/ratings/:id", h.DeleteRating)
		api.POST("/ratings/compact", h.CompactJournal)

		api.POST("/couple/seen", h.TrackSeen)
		api.POST("/couple/ratings", h.CoupleRate)
		api.GET("/couple/ratings", h.JointRatings)
		api.GET("/couple/compatibility", h.Compatibility)
		api.GET("/couple/recommendations", h.CoupleRecommendations)

		api.POST("/sync/push", h.PushMirror)
		api.POST("/sync/pull", h.PullMirror)
	}
}

// registerValidators adds the custom binding validators.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == model.TypeMovie || value == model.TypeTV
	})
}
