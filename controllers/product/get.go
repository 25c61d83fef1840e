package productcontroller

import (
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

// GetProductByID handles /products/:id
func GetProductByID(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := catalog.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GetProductByName handles /products/search/name?name=
func GetProductByName(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := catalog.GetProductByName(c.Request.Context(), c.Query("name"))
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func GetProductsByCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.ProductsByCategory(c.Request.Context(), c.Param("categoryId"))
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
