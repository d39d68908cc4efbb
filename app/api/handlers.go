package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feedcast/app/feed"
)

func NewHandler(cache FeedCache) *Handler {
	return &Handler{
		cache: cache,
	}
}

// GetFeed serves the cached output of one feed definition. Failures are left
// to the error middleware.
func (h *Handler) GetFeed(def feed.Definition) gin.HandlerFunc {
	contentType := feed.ContentType(def.Type)

	return func(c *gin.Context) {
		body, err := h.cache.Get(c.Request.Context(), def.Index)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Data(http.StatusOK, contentType, []byte(body))
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"feeds":     len(h.cache.Definitions()),
		"cached":    h.cache.Cached(),
	}

	c.JSON(http.StatusOK, health)
}
