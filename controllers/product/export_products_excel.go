package productcontroller

import (
	"bytes"
	"net/http"

	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func ExportProductsToExcel(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Buffered so a failure can still be reported as JSON.
		var buf bytes.Buffer
		if err := catalog.ExportProducts(c.Request.Context(), &buf); err != nil {
			middleware.RespondError(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
