package middleware

import (
	"net/http"

	"github.com/Devraj069/TaskWin/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// Error converts errors attached to the gin context into the structured
// BaseError JSON shape. Unclassified errors become a generic 500 so internal
// details never leak to callers.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil || c.Writer.Written() {
			return
		}

		if v, ok := err.Err.(errutil.BaseError); ok {
			c.JSON(v.Code.HTTPStatus(), v.JSON())
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    errutil.StatusInternal,
				"message": "internal server error",
			},
		})
	}
}
