package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/product/model"
	"catalog-importer/internal/domains/product/service"
	"catalog-importer/internal/shared/response"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// GetDetail godoc
// GET /api/v1/products/:sku
func (h *ProductHandler) GetDetail(c *gin.Context) {
	view, err := h.service.GetDetail(c.Request.Context(), c.Param("sku"))
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, view)
	case errors.Is(err, model.ErrProductNotFound):
		response.NotFound(c, "product not found")
	case errors.Is(err, model.ErrEmptySKU):
		response.BadRequest(c, "sku is required")
	default:
		log.Error().Err(err).Str("sku", c.Param("sku")).Msg("get product detail failed")
		response.InternalError(c)
	}
}
