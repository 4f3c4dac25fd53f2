// File: internal/middleware/error.go
package middleware

import (
	"net/http"

	"chantier_backend/internal/common"

	"github.com/gin-gonic/gin"
)

var errMethodNotAllowed = common.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL.")

// ErrorHandler answers unmatched routes and methods with the API error shape.
// Handlers write their own errors through common.RespondWithError.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		switch c.Writer.Status() {
		case http.StatusNotFound:
			notFoundErr := common.ErrNotFound.WithDetails("The requested endpoint does not exist.")
			c.AbortWithStatusJSON(notFoundErr.StatusCode, notFoundErr)
		case http.StatusMethodNotAllowed:
			c.AbortWithStatusJSON(errMethodNotAllowed.StatusCode, errMethodNotAllowed)
		}
	}
}
