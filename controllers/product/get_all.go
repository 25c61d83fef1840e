package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseDecimalQuery(c *gin.Context, key string) (*decimal.Decimal, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + key})
		return nil, false
	}
	return &d, true
}

// GetProducts lists the catalog.
// Query: search, category_id, min_price, max_price, low_stock
func GetProducts(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.ProductFilter{
			Search:     c.Query("search"),
			CategoryID: c.Query("category_id"),
		}

		var ok bool
		if filter.MinPrice, ok = parseDecimalQuery(c, "min_price"); !ok {
			return
		}
		if filter.MaxPrice, ok = parseDecimalQuery(c, "max_price"); !ok {
			return
		}

		if v := c.Query("low_stock"); v != "" {
			threshold, err := strconv.Atoi(v)
			if err != nil || threshold < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid low_stock"})
				return
			}
			filter.LowStock = &threshold
		}

		products, err := catalog.ListProducts(c.Request.Context(), filter)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GetProductsByPriceRange handles /products/price-range?min=&max=
func GetProductsByPriceRange(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		minPrice, err := decimal.NewFromString(c.Query("min"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min"})
			return
		}
		maxPrice, err := decimal.NewFromString(c.Query("max"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max"})
			return
		}

		products, err := catalog.ProductsByPriceRange(c.Request.Context(), minPrice, maxPrice)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GetLowStockProducts handles /admin/products/low-stock?threshold=
func GetLowStockProducts(catalog *services.CatalogService, defaultThreshold int) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold := defaultThreshold
		if v := c.Query("threshold"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
				return
			}
			threshold = n
		}

		products, err := catalog.LowStockProducts(c.Request.Context(), threshold)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
