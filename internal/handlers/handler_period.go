package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// periodHandler handles HTTP requests related to accounting periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(periodService portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: periodService}
}

func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/current", h.currentPeriod)
		periods.GET("/:period_id", h.getPeriod)
		periods.POST("/:period_id/close", h.closePeriod)
		periods.DELETE("/:period_id", h.deletePeriod)
	}
}

// createPeriod godoc
// @Summary Create an accounting period
// @Description Adds an open period. Its range must not overlap an existing period.
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   period body dto.CreatePeriodRequest true "Period details"
// @Success 201 {object} domain.AccountingPeriod
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Overlaps an existing period"
// @Failure 422 {object} map[string]string "End before start"
// @Failure 500 {object} map[string]string "Failed to create period"
// @Router /companies/{company_id}/periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, actor, ok := requestScope(c)
	if !ok {
		return
	}
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	start, err := time.Parse(dto.DateFormat, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
		return
	}
	end, err := time.Parse(dto.DateFormat, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), tenant, req.Name, start, end, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create period")
		return
	}

	logger.Info("Accounting period created", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, period)
}

// listPeriods godoc
// @Summary List accounting periods
// @Description Lists periods by start date with the number of journals posted into each
// @Tags periods
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   year query int false "Only periods starting in this year"
// @Success 200 {array} domain.PeriodSummary
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Router /companies/{company_id}/periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.ListPeriodsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	periods, err := h.periodService.ListPeriods(c.Request.Context(), tenant, params.ToFilter())
	if err != nil {
		respondError(c, logger, err, "Failed to list periods")
		return
	}
	if periods == nil {
		periods = []domain.PeriodSummary{}
	}
	c.JSON(http.StatusOK, periods)
}

// currentPeriod godoc
// @Summary Get the period containing a date
// @Description Returns the period whose range contains date, today when omitted
// @Tags periods
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} domain.AccountingPeriod
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "No period covers the date"
// @Router /companies/{company_id}/periods/current [get]
func (h *periodHandler) currentPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dto.DateFormat, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
			return
		}
		date = parsed
	}

	period, err := h.periodService.CurrentPeriod(c.Request.Context(), tenant, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoPeriod) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondError(c, logger, err, "Failed to find current period")
		return
	}
	c.JSON(http.StatusOK, period)
}

// getPeriod godoc
// @Summary Get an accounting period
// @Tags periods
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   period_id path string true "Period ID"
// @Success 200 {object} domain.AccountingPeriod
// @Failure 404 {object} map[string]string "Period not found"
// @Router /companies/{company_id}/periods/{period_id} [get]
func (h *periodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	period, err := h.periodService.GetPeriod(c.Request.Context(), tenant, c.Param("period_id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve period")
		return
	}
	c.JSON(http.StatusOK, period)
}

// closePeriod godoc
// @Summary Close an accounting period
// @Description Books the closing journal into retained earnings and marks the period closed
// @Tags periods
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   period_id path string true "Period ID"
// @Success 200 {object} domain.CloseResult
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Period already closed"
// @Failure 422 {object} map[string]string "No equity account for retained earnings"
// @Failure 500 {object} map[string]string "Failed to close period"
// @Router /companies/{company_id}/periods/{period_id}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	periodID := c.Param("period_id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", periodID))

	tenant, actor, ok := requestScope(c)
	if !ok {
		return
	}

	result, err := h.periodService.ClosePeriod(c.Request.Context(), tenant, periodID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to close period")
		return
	}

	logger.Info("Accounting period closed", slog.String("net_income", result.NetIncome.String()))
	c.JSON(http.StatusOK, result)
}

// deletePeriod godoc
// @Summary Delete an accounting period
// @Description Removes a period no journal was posted into. Periods with journals must be closed instead.
// @Tags periods
// @Param   company_id path string true "Company ID"
// @Param   period_id path string true "Period ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Period has journals"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to delete period"
// @Router /companies/{company_id}/periods/{period_id} [delete]
func (h *periodHandler) deletePeriod(c *gin.Context) {
	periodID := c.Param("period_id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", periodID))

	tenant, actor, ok := requestScope(c)
	if !ok {
		return
	}
	if err := h.periodService.DeletePeriod(c.Request.Context(), tenant, periodID, actor); err != nil {
		respondError(c, logger, err, "Failed to delete period")
		return
	}
	c.Status(http.StatusNoContent)
}
