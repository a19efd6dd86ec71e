package handler

import (
	"errors"
	"net/http"
	"strconv"

	"stolarpos/internal/apierror"
	"stolarpos/internal/dto"
	"stolarpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body dto.CreateProductRequest true "Product"
// @Success  201 {object} dto.ProductResponse
// @Failure  409 {object} apierror.APIError
// @Failure  422 {object} apierror.ValidationError
// @Router   /products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		productError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    name     query string false "name contains"
// @Param    category query string false "category"
// @Param    page     query int    false "page"
// @Param    limit    query int    false "page size"
// @Success  200 {object} dto.ProductListResponse
// @Router   /products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByBarcode godoc
// @Summary  Look a product up by barcode
// @Tags     products
// @Produce  json
// @Param    barcode path string true "barcode"
// @Success  200 {object} dto.ProductResponse
// @Failure  404 {object} apierror.APIError
// @Router   /products/barcode/{barcode} [get]
func (h *ProductsHandler) GetByBarcode(c *gin.Context) {
	resp, err := h.svc.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		productError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdjustStock godoc
// @Summary      Adjust stock
// @Description  Applies a signed delta; the result never goes below zero.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id   path string                 true "product id"
// @Param        body body dto.AdjustStockRequest true "Adjustment"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /products/{id}/stock [patch]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		productError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock godoc
// @Summary  Products at or below their low-stock threshold
// @Tags     products
// @Produce  json
// @Success  200 {array} dto.ProductResponse
// @Router   /products/low-stock [get]
func (h *ProductsHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movements godoc
// @Summary  Stock movement history of a product
// @Tags     products
// @Produce  json
// @Param    id    path  string true  "product id"
// @Param    page  query int    false "page"
// @Param    limit query int    false "page size"
// @Success  200 {object} map[string]interface{}
// @Router   /products/{id}/movements [get]
func (h *ProductsHandler) Movements(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	movements, total, err := h.svc.Movements(c.Request.Context(), id, page, limit)
	if err != nil {
		productError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movements, "total": total})
}

func productError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrDuplicateBarcode):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
