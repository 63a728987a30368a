package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/credicheck/internal/bureau"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
	statsdomain "github.com/smallbiznis/credicheck/internal/stats/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "validation error",
		}
	case errors.Is(err, ledgerdomain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "insufficient_funds",
			Message: "wallet balance does not cover the purchase",
		}
	case errors.Is(err, identitydomain.ErrAlreadyExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	for _, candidate := range []error{
		ErrInvalidRequest,
		identitydomain.ErrInvalidName,
		identitydomain.ErrInvalidPAN,
		identitydomain.ErrInvalidMobile,
		identitydomain.ErrInvalidEmail,
		identitydomain.ErrInvalidRole,
		identitydomain.ErrInvalidID,
		ledgerdomain.ErrInvalidAmount,
		ledgerdomain.ErrInvalidMethod,
		ledgerdomain.ErrInvalidDirection,
		ledgerdomain.ErrInvalidPageToken,
		pricingdomain.ErrInvalidClass,
		pricingdomain.ErrInvalidPrice,
		pricingdomain.ErrIncompleteTable,
		pricingdomain.ErrDuplicatePriceRow,
		reportdomain.ErrInvalidPurpose,
		reportdomain.ErrEmptyBatch,
		reportdomain.ErrInvalidReportID,
		statsdomain.ErrInvalidPartnerID,
		bureau.ErrUnknownBureau,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

func isNotFoundError(err error) bool {
	for _, candidate := range []error{
		identitydomain.ErrNotFound,
		ledgerdomain.ErrWalletNotFound,
		pricingdomain.ErrPriceNotFound,
		reportdomain.ErrConsumerNotFound,
		reportdomain.ErrGeneratorNotFound,
		reportdomain.ErrReportNotFound,
		gorm.ErrRecordNotFound,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// classifyErrorForLog folds an error into (type, code) for the request log.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "internal", payload.Type
	case status == http.StatusPaymentRequired:
		return "payment", payload.Type
	default:
		return "client", payload.Type
	}
}
