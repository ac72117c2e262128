package handler

import (
	"net/http"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Dashboard godoc
// @Summary Dashboard summary stats
// @Description Cached snapshot of today's sales, month revenue/expenses, outstanding debt and low-stock count.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardStatsResponse
// @Router /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	var rng dto.ReportRange
	if !bindQuery(c, &rng) {
		return
	}
	resp, err := h.svc.SalesSummary(c.Request.Context(), rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) TopProducts(c *gin.Context) {
	var rng dto.ReportRange
	if !bindQuery(c, &rng) {
		return
	}
	resp, err := h.svc.TopProducts(c.Request.Context(), rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) PaymentMethods(c *gin.Context) {
	var rng dto.ReportRange
	if !bindQuery(c, &rng) {
		return
	}
	resp, err := h.svc.PaymentMethodBreakdown(c.Request.Context(), rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) ExpenseCategories(c *gin.Context) {
	var rng dto.ReportRange
	if !bindQuery(c, &rng) {
		return
	}
	resp, err := h.svc.ExpenseBreakdown(c.Request.Context(), rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
