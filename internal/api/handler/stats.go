package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats reports how many participants are online and how many pair
// sessions are live. The numbers come from a consistent hub snapshot.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Hub.Stats())
}
