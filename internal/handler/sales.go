package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"stolarpos/internal/apierror"
	"stolarpos/internal/dto"
	"stolarpos/internal/middleware"
	"stolarpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary      Record a sale
// @Description  Stores the sale and decrements stock for every item whose barcode matches a product, never below zero. Offline replays carrying an already-seen offlineId return the stored sale.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateSaleRequest true "Sale"
// @Success      201  {object} dto.CreateSaleResponse
// @Success      200  {object} dto.CreateSaleResponse "offlineId already ingested"
// @Failure      400  {object} apierror.SaleResult
// @Failure      422  {object} apierror.SaleResult
// @Failure      500  {object} apierror.SaleResult
// @Router       /sales [post]
// @Router       /sales/create [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.SaleFailure("invalid sale payload: "+err.Error()))
		return
	}
	if fields := validationFields(&req); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.SaleFailure("invalid sale: "+describeFields(fields)))
		return
	}

	resp, duplicate, err := h.svc.RecordSale(c.Request.Context(), req)
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Msg("sale ingestion failed")
		c.JSON(http.StatusInternalServerError, apierror.SaleFailure("failed to record sale"))
		return
	}
	if duplicate {
		c.JSON(http.StatusOK, dto.CreateSaleResponse{Success: true, Message: "sale already recorded", Sale: resp})
		return
	}
	c.JSON(http.StatusCreated, dto.CreateSaleResponse{Success: true, Message: "sale recorded", Sale: resp})
}

// List godoc
// @Summary  List all sales, newest first
// @Tags     sales
// @Produce  json
// @Success  200 {array} dto.SaleResponse
// @Router   /sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	sales, err := h.svc.ListSales(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// Recent godoc
// @Summary  Recent sales
// @Tags     sales
// @Produce  json
// @Param    limit query int false "page size (default 10)"
// @Param    page  query int false "1-based page (default 1)"
// @Success  200 {array} dto.RecentSale
// @Router   /sales/recent [get]
func (h *SalesHandler) Recent(c *gin.Context) {
	var q dto.RecentSalesQuery
	if !bindQuery(c, &q) {
		return
	}
	sales, err := h.svc.RecentSales(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// Summary godoc
// @Summary  Daily sales summary
// @Tags     sales
// @Produce  json
// @Param    date path string true "YYYY-MM-DD"
// @Success  200 {object} dto.SalesSummary
// @Failure  400 {object} apierror.APIError
// @Router   /sales/summary/{date} [get]
func (h *SalesHandler) Summary(c *gin.Context) {
	summary, err := h.svc.DailySummary(c.Request.Context(), c.Param("date"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Get godoc
// @Summary  Get one sale
// @Tags     sales
// @Produce  json
// @Param    id path string true "sale id"
// @Success  200 {object} dto.SaleResponse
// @Failure  404 {object} apierror.APIError
// @Router   /sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sale, err := h.svc.FindSale(c.Request.Context(), id)
	if err != nil {
		h.saleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Refund godoc
// @Summary      Refund a sale
// @Description  Marks the sale refunded and restores stock for its items.
// @Tags         sales
// @Produce      json
// @Param        id path string true "sale id"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /sales/{id}/refund [post]
func (h *SalesHandler) Refund(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sale, err := h.svc.RefundSale(c.Request.Context(), id)
	if err != nil {
		h.saleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Receipt godoc
// @Summary  Download the PDF receipt of a sale
// @Tags     sales
// @Produce  application/pdf
// @Param    id path string true "sale id"
// @Success  200 {file} file
// @Failure  404 {object} apierror.APIError
// @Router   /sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	path, err := h.svc.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		h.saleError(c, err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("receipt-%s.pdf", id))
}

func (h *SalesHandler) saleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrAlreadyRefunded):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// describeFields renders validation failures as "field:tag, ..." in stable order.
func describeFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for f, tag := range fields {
		parts = append(parts, f+":"+tag)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
