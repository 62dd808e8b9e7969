package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenCORS allows any origin. Affiliate networks fire postbacks from
// arbitrary hosts, so the postback routes are deliberately open.
func OpenCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
