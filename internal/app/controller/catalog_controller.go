package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// GetProducts GET /api/catalog/products
func (ctrl *CatalogController) GetProducts(c *gin.Context) {
	products, err := ctrl.catalogService.GetProducts(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Catalog lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		respondServiceError(c, err, "get catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}
