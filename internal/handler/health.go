package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the transaction store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports server liveness and store connectivity. It always answers 200.
func Health(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		db := "connected"
		if p == nil || p.Ping(ctx) != nil {
			db = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"server":    "running",
			"database":  db,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}
