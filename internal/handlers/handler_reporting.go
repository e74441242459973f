package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(reportingService portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: reportingService,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/summary", h.getFinancialSummary)
		reports.GET("/analytics", h.getAnalytics)
	}
}

// getTrialBalance godoc
// @Summary Trial balance
// @Description Balances of every account as of the period end, as of asOf, or today
// @Tags reports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   periodId query string false "Period ID, wins over asOf"
// @Param   asOf query string false "Cutoff date (YYYY-MM-DD)"
// @Success 200 {object} domain.TrialBalance
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to generate trial balance"
// @Router /companies/{company_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid trial balance parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	asOf, err := parseOptionalDate(params.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date"})
		return
	}
	if params.PeriodID != nil && *params.PeriodID == "" {
		params.PeriodID = nil
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), tenant, params.PeriodID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getProfitAndLoss godoc
// @Summary Profit and loss
// @Description Revenue and expense movement within a period, excluding its closing journal
// @Tags reports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   periodId query string true "Period ID"
// @Success 200 {object} domain.ProfitAndLoss
// @Failure 400 {object} map[string]string "periodId is required"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to generate profit and loss report"
// @Router /companies/{company_id}/reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	periodID, ok := requirePeriodID(c)
	if !ok {
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), tenant, periodID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Balance sheet
// @Description Assets, liabilities and equity as of the period end
// @Tags reports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   periodId query string true "Period ID"
// @Success 200 {object} domain.BalanceSheet
// @Failure 400 {object} map[string]string "periodId is required"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to generate balance sheet"
// @Router /companies/{company_id}/reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	periodID, ok := requirePeriodID(c)
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), tenant, periodID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getFinancialSummary godoc
// @Summary Financial summary
// @Description Headline figures and ratios of a period
// @Tags reports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   periodId query string true "Period ID"
// @Success 200 {object} domain.FinancialSummary
// @Failure 400 {object} map[string]string "periodId is required"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to generate financial summary"
// @Router /companies/{company_id}/reports/summary [get]
func (h *reportingHandler) getFinancialSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	periodID, ok := requirePeriodID(c)
	if !ok {
		return
	}

	report, err := h.reportingService.FinancialSummary(c.Request.Context(), tenant, periodID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate financial summary")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getAnalytics godoc
// @Summary Income analytics
// @Description Revenue, expense and signed net income of the most recent periods, oldest first
// @Tags reports
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Number of periods (default 6)"
// @Success 200 {array} domain.PeriodAnalytics
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to generate analytics"
// @Router /companies/{company_id}/reports/analytics [get]
func (h *reportingHandler) getAnalytics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.AnalyticsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	series, err := h.reportingService.Analytics(c.Request.Context(), tenant, params.Limit)
	if err != nil {
		respondError(c, logger, err, "Failed to generate analytics")
		return
	}
	if series == nil {
		series = []domain.PeriodAnalytics{}
	}
	c.JSON(http.StatusOK, series)
}

func requirePeriodID(c *gin.Context) (string, bool) {
	periodID := c.Query("periodId")
	if periodID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodId query parameter is required"})
		return "", false
	}
	return periodID, true
}
