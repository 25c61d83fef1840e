package productcontroller

import (
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

func DeleteProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
