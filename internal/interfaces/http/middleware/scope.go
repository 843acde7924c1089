package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Keys used to store scope information in gin.Context
const (
	CompanyIDKey     = "company_id"
	FinancialYearKey = "financial_year"

	CompanyHeaderKey       = "X-Company-ID"
	FinancialYearHeaderKey = "X-Financial-Year"
)

// financialYearPattern matches Indian-style financial years like "2024-25"
var financialYearPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ScopeMiddlewareConfig holds configuration for scope middleware
type ScopeMiddlewareConfig struct {
	// DefaultFinancialYear is used when the client omits X-Financial-Year
	DefaultFinancialYear string
	// SkipPaths are paths that don't require a scope (e.g., health check)
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultScopeConfig returns default scope middleware configuration
func DefaultScopeConfig() ScopeMiddlewareConfig {
	return ScopeMiddlewareConfig{
		DefaultFinancialYear: "",
		SkipPaths:            []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Logger:               nil,
	}
}

// ScopeMiddleware extracts the (company, financial year) scope from request headers.
// Every ledger route requires X-Company-ID; X-Financial-Year falls back to the
// configured default when omitted.
func ScopeMiddleware() gin.HandlerFunc {
	return ScopeMiddlewareWithConfig(DefaultScopeConfig())
}

// ScopeMiddlewareWithConfig returns scope middleware with custom configuration
func ScopeMiddlewareWithConfig(cfg ScopeMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		companyID := c.GetHeader(CompanyHeaderKey)
		if companyID == "" {
			respondScopeError(c, http.StatusBadRequest, "Company identification required")
			return
		}
		if _, err := uuid.Parse(companyID); err != nil {
			respondScopeError(c, http.StatusBadRequest, "Invalid company ID format")
			return
		}

		financialYear := c.GetHeader(FinancialYearHeaderKey)
		if financialYear == "" {
			financialYear = cfg.DefaultFinancialYear
		}
		if financialYear == "" {
			respondScopeError(c, http.StatusBadRequest, "Financial year required")
			return
		}
		if !financialYearPattern.MatchString(financialYear) {
			respondScopeError(c, http.StatusBadRequest, "Invalid financial year format, expected YYYY-YY")
			return
		}

		// Set scope in gin context for easy access in handlers
		c.Set(CompanyIDKey, companyID)
		c.Set(FinancialYearKey, financialYear)

		// Set in request context for service layer logging
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, log = logger.WithCompanyID(ctx, log, companyID)
		ctx, _ = logger.WithFinancialYear(ctx, log, financialYear)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Scope identified",
				zap.String("company_id", companyID),
				zap.String("financial_year", financialYear),
			)
		}

		c.Next()
	}
}

// respondScopeError sends an error response and aborts the request
func respondScopeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_BAD_REQUEST",
			"message": message,
		},
	})
}

// GetCompanyID retrieves the company ID from gin.Context
func GetCompanyID(c *gin.Context) string {
	if companyID, exists := c.Get(CompanyIDKey); exists {
		if id, ok := companyID.(string); ok {
			return id
		}
	}
	return ""
}

// GetFinancialYear retrieves the financial year from gin.Context
func GetFinancialYear(c *gin.Context) string {
	if fy, exists := c.Get(FinancialYearKey); exists {
		if v, ok := fy.(string); ok {
			return v
		}
	}
	return ""
}

// GetScope retrieves the query scope from gin.Context.
// Returns an error when the scope middleware has not populated the context.
func GetScope(c *gin.Context) (shared.Scope, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return shared.Scope{}, shared.NewDomainError("INVALID_INPUT", "Company scope missing from request")
	}
	id, err := uuid.Parse(companyID)
	if err != nil {
		return shared.Scope{}, shared.NewDomainError("INVALID_INPUT", "Invalid company ID")
	}
	fy := GetFinancialYear(c)
	if fy == "" {
		return shared.Scope{}, shared.NewDomainError("INVALID_INPUT", "Financial year missing from request")
	}
	return shared.NewScope(id, fy), nil
}
