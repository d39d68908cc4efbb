package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP engine with one route per feed definition
func NewServer(handler *Handler) *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())
	r.Use(errorMiddleware())

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	healthPath := "/health"

	for _, def := range handler.cache.Definitions() {
		r.GET(def.Path, handler.GetFeed(def))
		slog.Debug("Feed route registered", "path", def.Path, "type", string(def.Type))

		if def.Path == healthPath {
			healthPath = ""
		}
	}

	if healthPath != "" {
		r.GET(healthPath, handler.GetHealth)
	} else {
		slog.Warn("Health endpoint disabled, path is used by a feed", "path", "/health")
	}
}

// errorMiddleware turns errors recorded by handlers into a generic response.
func errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}

		slog.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "error", err)

		if !c.Writer.Written() {
			c.JSON(status, gin.H{"error": http.StatusText(status)})
		}
	}
}
