package middleware

import (
	"log"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/gin-gonic/gin"
)

// RespondError writes {"error": msg} with the status of err's kind. Internal
// errors are logged in full and reported generically.
func RespondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": apperror.PublicMessage(err)})
}
