package productcontroller

import (
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

func GetCategories(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := catalog.ListCategories(c.Request.Context())
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func GetCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := catalog.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func GetCategoryByName(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		category, err := catalog.GetCategoryByName(c.Request.Context(), name)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func CreateCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		category, err := catalog.CreateCategory(c.Request.Context(), req)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		category, err := catalog.UpdateCategory(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
			middleware.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
