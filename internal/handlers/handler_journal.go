package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

// journalHandler handles HTTP requests related to journals.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// registerJournalRoutes registers routes related to journals.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.postJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:journal_id", h.getJournal)
		journals.POST("/:journal_id/reverse", h.reverseJournal)
	}
}

// postJournal godoc
// @Summary Post a journal
// @Description Validates a balanced journal against period and account rules and commits it under the next number
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   journal body dto.CreateJournalRequest true "Journal and its lines"
// @Success 201 {object} domain.Journal
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Concurrent post took the number"
// @Failure 422 {object} map[string]string "Rejected by a posting rule"
// @Failure 500 {object} map[string]string "Failed to post journal"
// @Router /companies/{company_id}/journals [post]
func (h *journalHandler) postJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, actor, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	candidate, err := req.ToCandidate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	journal, err := h.journalService.PostJournal(c.Request.Context(), tenant, candidate, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to post journal")
		return
	}

	logger.Info("Journal posted", slog.String("journal_id", journal.JournalID), slog.String("number", journal.Number))
	c.JSON(http.StatusCreated, journal)
}

// listJournals godoc
// @Summary List journals
// @Description Returns one page of journals ordered by date then number
// @Tags journals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   periodId query string false "Period ID"
// @Param   accountId query string false "Only journals touching this account"
// @Param   reversed query bool false "Filter on the reversed flag"
// @Param   search query string false "Matches description, reference or number"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list journals"
// @Router /companies/{company_id}/journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListJournals", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	filter := domain.JournalFilter{
		PeriodID:  params.PeriodID,
		AccountID: params.AccountID,
		Reversed:  params.Reversed,
		Search:    params.Search,
		Limit:     params.Limit,
	}
	var err error
	if filter.From, err = parseOptionalDate(params.From); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	if filter.To, err = parseOptionalDate(params.To); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}
	if params.NextToken != nil && *params.NextToken != "" {
		cursor, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nextToken"})
			return
		}
		filter.After = cursor
	}

	journals, err := h.journalService.ListJournals(c.Request.Context(), tenant, filter)
	if err != nil {
		respondError(c, logger, err, "Failed to list journals")
		return
	}

	logger.Debug("Journals listed", slog.Int("count", len(journals)))
	c.JSON(http.StatusOK, dto.ListJournalsResponse{
		Journals:  journals,
		NextToken: pagination.NextToken(journals, params.Limit),
	})
}

// getJournal godoc
// @Summary Get a journal
// @Description Retrieves a journal and its lines by journal ID
// @Tags journals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   journal_id path string true "Journal ID"
// @Success 200 {object} domain.Journal
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to retrieve journal"
// @Router /companies/{company_id}/journals/{journal_id} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}

	journal, err := h.journalService.GetJournal(c.Request.Context(), tenant, journalID)
	if err != nil {
		respondError(c, logger.With(slog.String("journal_id", journalID)), err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, journal)
}

// reverseJournal godoc
// @Summary Reverse a journal
// @Description Posts the mirror image of a journal dated today and links the two
// @Tags journals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   journal_id path string true "Journal ID"
// @Success 201 {object} domain.Journal
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal already reversed"
// @Failure 422 {object} map[string]string "Period closed or no period for today"
// @Failure 500 {object} map[string]string "Failed to reverse journal"
// @Router /companies/{company_id}/journals/{journal_id}/reverse [post]
func (h *journalHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journal_id")
	logger = logger.With(slog.String("journal_id", journalID))

	tenant, actor, ok := requestScope(c)
	if !ok {
		return
	}

	reversal, err := h.journalService.ReverseJournal(c.Request.Context(), tenant, journalID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal")
		return
	}

	logger.Info("Journal reversed", slog.String("reversal_id", reversal.JournalID), slog.String("number", reversal.Number))
	c.JSON(http.StatusCreated, reversal)
}
