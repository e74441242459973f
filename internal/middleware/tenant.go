package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// CompanyIDParam is the route parameter naming the tenant.
const CompanyIDParam = "company_id"

const companiesCtxKey = contextKey("companies")

func withAllowedCompanies(ctx context.Context, companies []string) context.Context {
	if len(companies) == 0 {
		return ctx
	}
	return context.WithValue(ctx, companiesCtxKey, companies)
}

// TenantMiddleware resolves the tenant store named by the :company_id route parameter
// and makes it available to handlers through GetTenantFromContext.
// It must run after AuthMiddleware.
func TenantMiddleware(provider portsrepo.TenantProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.Param(CompanyIDParam)
		logger := GetLoggerFromCtx(c.Request.Context()).With(slog.String("company_id", companyID))

		if allowed, ok := c.Request.Context().Value(companiesCtxKey).([]string); ok && !slices.Contains(allowed, companyID) {
			logger.Warn("Token not issued for company")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrForbidden.Error()})
			return
		}

		store, err := provider.ForCompany(c.Request.Context(), companyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Company not found"})
				return
			}
			logger.Error("Failed to resolve tenant store", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(string(tenantCtxKey), store)
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), logger))
		c.Next()
	}
}
