package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvc
}

func newLedgerHandler(ledgerService portssvc.LedgerSvc) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvc) {
	h := newLedgerHandler(ledgerService)

	accounts := rg.Group("/accounts/:account_id")
	{
		accounts.GET("/balance", h.getAccountBalance)
		accounts.GET("/transactions", h.getAccountTransactions)
		accounts.GET("/activity", h.getAccountActivity)
	}
	rg.GET("/balances", h.getAllBalances)
}

// getAccountBalance godoc
// @Summary Account balance
// @Tags ledger
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Param   asOf query string false "Cutoff date (YYYY-MM-DD)"
// @Success 200 {object} domain.AccountBalance
// @Failure 400 {object} map[string]string "Invalid asOf date"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /companies/{company_id}/accounts/{account_id}/balance [get]
func (h *ledgerHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("account_id")))

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	asOf, err := parseOptionalDate(params.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date"})
		return
	}

	balance, err := h.ledgerService.AccountBalance(c.Request.Context(), tenant, c.Param("account_id"), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate account balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// getAccountTransactions godoc
// @Summary Account transactions
// @Description Lines of the account in a date window, each with its running balance
// @Tags ledger
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /companies/{company_id}/accounts/{account_id}/transactions [get]
func (h *ledgerHandler) getAccountTransactions(c *gin.Context) {
	accountID := c.Param("account_id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.DateRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	from, err := parseOptionalDate(params.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, err := parseOptionalDate(params.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}

	entries, err := h.ledgerService.AccountTransactions(c.Request.Context(), tenant, accountID, from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to list account transactions")
		return
	}

	resp := dto.AccountTransactionsResponse{AccountID: accountID, Entries: slices.Collect(entries)}
	if resp.Entries == nil {
		resp.Entries = []domain.LedgerEntry{}
	}
	c.JSON(http.StatusOK, resp)
}

// getAccountActivity godoc
// @Summary Account activity in a period
// @Description Opening balance, movement and closing balance of the account within a period
// @Tags ledger
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Param   periodId query string true "Period ID"
// @Success 200 {object} domain.AccountActivity
// @Failure 400 {object} map[string]string "periodId is required"
// @Failure 404 {object} map[string]string "Account or period not found"
// @Router /companies/{company_id}/accounts/{account_id}/activity [get]
func (h *ledgerHandler) getAccountActivity(c *gin.Context) {
	accountID := c.Param("account_id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	periodID := c.Query("periodId")
	if periodID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodId query parameter is required"})
		return
	}

	activity, err := h.ledgerService.AccountActivity(c.Request.Context(), tenant, accountID, periodID)
	if err != nil {
		respondError(c, logger, err, "Failed to summarize account activity")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// getAllBalances godoc
// @Summary Balances of all accounts
// @Tags ledger
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   asOf query string false "Cutoff date (YYYY-MM-DD)"
// @Success 200 {object} domain.LedgerBalances
// @Failure 400 {object} map[string]string "Invalid asOf date"
// @Router /companies/{company_id}/balances [get]
func (h *ledgerHandler) getAllBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	asOf, err := parseOptionalDate(params.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date"})
		return
	}

	balances, err := h.ledgerService.AllAccountBalances(c.Request.Context(), tenant, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate balances")
		return
	}
	c.JSON(http.StatusOK, balances)
}
