package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/user/filmy/internal/utils"
)

// PushMirror replaces the remote mirror with the local table.
func (h *Handler) PushMirror(c *gin.Context) {
	if h.Mirror == nil {
		utils.ServiceUnavailable(c, "mirror database not configured")
		return
	}

	pushed, err := h.Mirror.Push()
	if err != nil {
		log.Printf("[Sync] push: %v", err)
		utils.InternalServerError(c, "mirror push failed")
		return
	}
	utils.SuccessWithMessage(c, "mirror updated", gin.H{"pushed": pushed})
}

// PullMirror replaces the local table with the remote mirror. The
// remote wins wholesale; local-only rows are lost.
func (h *Handler) PullMirror(c *gin.Context) {
	if h.Mirror == nil {
		utils.ServiceUnavailable(c, "mirror database not configured")
		return
	}

	pulled, err := h.Mirror.Pull()
	if err != nil {
		log.Printf("[Sync] pull: %v", err)
		utils.InternalServerError(c, "mirror pull failed")
		return
	}
	utils.SuccessWithMessage(c, "local table replaced", gin.H{"pulled": pulled})
}
