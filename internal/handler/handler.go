package handler

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/user/filmy/internal/config"
	"github.com/user/filmy/internal/repository"
	"github.com/user/filmy/internal/service"
	"github.com/user/filmy/internal/store"
	"github.com/user/filmy/internal/tmdb"
	"github.com/user/filmy/internal/utils"
)

// poolSessionTTL bounds how long an idle session keeps its pools warm.
const poolSessionTTL = 2 * time.Hour

// Handler wires the HTTP surface to the rating store, the catalog and
// the recommendation services. Repos and Redis are nil when the mirror
// database or the response cache is not configured; the deployment
// degrades instead of failing.
type Handler struct {
	Config   *config.Config
	Store    *store.Store
	Catalog  *tmdb.Client
	Engine   *service.IntelligentEngine
	Analyzer *service.CoupleAnalyzer
	Mirror   *service.MirrorService
	Repos    *repository.Repositories
	Redis    *redis.Client
}

// NewHandler builds the handler and its service graph.
func NewHandler(cfg *config.Config, st *store.Store, catalog *tmdb.Client, repos *repository.Repositories, rdb *redis.Client) *Handler {
	h := &Handler{
		Config:   cfg,
		Store:    st,
		Catalog:  catalog,
		Engine:   service.NewIntelligentEngine(catalog, st),
		Analyzer: service.NewCoupleAnalyzer(catalog, st),
		Repos:    repos,
		Redis:    rdb,
	}
	if repos != nil {
		h.Mirror = service.NewMirrorService(st, repos.Mirror)
	}
	return h
}

// poolManager returns the session's pool manager, creating one on
// first use. Pools are per session so two browsers do not steal each
// other's stream position.
func (h *Handler) poolManager(c *gin.Context) *service.PoolManager {
	session := sessions.Default(c)
	id, _ := session.Get("pool_id").(string)
	if id == "" {
		id = newSessionID()
		session.Set("pool_id", id)
		// Save errors only lose pool continuity, never data.
		_ = session.Save()
	}

	key := "pools:" + id
	if cached, ok := utils.CacheGet(key); ok {
		if pm, ok := cached.(*service.PoolManager); ok {
			return pm
		}
	}
	pm := service.NewPoolManager(h.Catalog, h.Store, h.Engine)
	utils.CacheSet(key, pm, poolSessionTTL)
	return pm
}

// mirrorRating copies one record to the remote mirror after a local
// write. Best effort: a mirror outage never fails the request, the
// next bulk push reconciles.
func (h *Handler) mirrorRating(tmdbID int, contentType string) {
	if h.Mirror == nil {
		return
	}
	rec, ok := h.Store.Get(tmdbID, contentType)
	if !ok {
		return
	}
	if err := h.Mirror.UpsertOne(&rec); err != nil {
		log.Printf("[Mirror] %v", err)
	}
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(buf)
}
