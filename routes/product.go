package routes

import (
	productcontroller "github.com/Adarsh0311/shopsphere-backend/controllers/product"
	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes registers the public read-only catalog.
func SetupCatalogRoutes(api *gin.RouterGroup, d Deps) {
	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.Catalog))
		products.GET("/search/name", productcontroller.GetProductByName(d.Catalog))
		products.GET("/price-range", productcontroller.GetProductsByPriceRange(d.Catalog))
		products.GET("/category/:categoryId", productcontroller.GetProductsByCategory(d.Catalog))
		products.GET("/:id", productcontroller.GetProductByID(d.Catalog))
	}

	categories := api.Group("/categories")
	{
		categories.GET("", productcontroller.GetCategories(d.Catalog))
		categories.GET("/search/name", productcontroller.GetCategoryByName(d.Catalog))
		categories.GET("/:id", productcontroller.GetCategory(d.Catalog))
	}
}
