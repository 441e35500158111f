package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AliNMackie/blackcard-concierge-ai/pkg/appenv"
)

// CORSMiddleware configures CORS headers. Outside production any origin is
// allowed so the PWA dev server can talk to the mock directly. In
// production the incoming Origin is reflected only when listed in the
// comma-separated ALLOWED_ORIGINS env var.
func CORSMiddleware() gin.HandlerFunc {
	isProd := appenv.IsProduction() || gin.Mode() == gin.ReleaseMode

	allowed := make(map[string]struct{})
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin := strings.TrimSpace(o); origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	const allowedMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	const allowedHeaders = "Origin, Content-Type, Authorization, X-Elite-Key"

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Header("Vary", "Origin")

		switch {
		case !isProd:
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", allowedMethods)
			c.Header("Access-Control-Allow-Headers", allowedHeaders)
		case origin != "":
			if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", allowedMethods)
				c.Header("Access-Control-Allow-Headers", allowedHeaders)
			}
		}

		if c.Request.Method == http.MethodOptions {
			// Preflight: if the origin was not allowed the headers above are
			// absent and the browser blocks the request.
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
