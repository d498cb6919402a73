package handler

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/user/filmy/internal/middleware"
	"github.com/user/filmy/internal/utils"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
	Password string `json:"password" binding:"required,min=8"`
	Viewer   string `json:"viewer" binding:"required,oneof=Toby Taz"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a viewer account. The system is built for exactly
// two people, so registration closes once both accounts exist.
func (h *Handler) Register(c *gin.Context) {
	if h.Repos == nil {
		utils.ServiceUnavailable(c, "account database not configured")
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	count, err := h.Repos.User.Count()
	if err != nil {
		utils.InternalServerError(c, "could not check accounts")
		return
	}
	if count >= 2 {
		utils.BadRequest(c, "registration is closed")
		return
	}

	existing, err := h.Repos.User.FindByUsername(req.Username)
	if err != nil {
		utils.InternalServerError(c, "could not check username")
		return
	}
	if existing != nil {
		utils.BadRequest(c, "username already taken")
		return
	}

	user, err := h.Repos.User.Create(req.Username, req.Password, req.Viewer)
	if err != nil {
		log.Printf("[Auth] create user: %v", err)
		utils.InternalServerError(c, "could not create account")
		return
	}

	utils.SuccessWithMessage(c, "account created", gin.H{
		"id":       user.ID,
		"username": user.Username,
		"viewer":   user.Viewer,
	})
}

// Login verifies credentials and issues the JWT cookie.
func (h *Handler) Login(c *gin.Context) {
	if h.Repos == nil {
		utils.ServiceUnavailable(c, "account database not configured")
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.Repos.User.FindByUsername(req.Username)
	if err != nil {
		utils.InternalServerError(c, "could not load account")
		return
	}
	if user == nil || !h.Repos.User.CheckPassword(user, req.Password) {
		utils.Unauthorized(c, "invalid username or password")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, user.Viewer, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "could not issue token")
		return
	}

	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)
	utils.Success(c, gin.H{
		"token":    token,
		"username": user.Username,
		"viewer":   user.Viewer,
	})
}

// Logout clears the token cookie and drops the session's warm pools.
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if id, _ := session.Get("pool_id").(string); id != "" {
		utils.CacheDelete("pools:" + id)
	}
	c.SetCookie("token", "", -1, "/", "", false, true)
	utils.SuccessWithMessage(c, "logged out", nil)
}

// Me returns the authenticated identity.
func (h *Handler) Me(c *gin.Context) {
	utils.Success(c, gin.H{
		"user_id":  middleware.GetUserID(c),
		"username": c.GetString("username"),
		"viewer":   middleware.GetViewer(c),
	})
}
