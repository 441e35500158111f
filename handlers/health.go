package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns a simple health status for uptime monitoring and load balancers.
// It is intentionally lightweight and unauthenticated.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "elite-concierge",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
