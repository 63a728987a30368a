package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/smallbiznis/credicheck/internal/bureau"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "validation_error"},
		{"invalid pan", identitydomain.ErrInvalidPAN, http.StatusBadRequest, "validation_error"},
		{"unknown bureau", bureau.ErrUnknownBureau, http.StatusBadRequest, "validation_error"},
		{"incomplete price table", pricingdomain.ErrIncompleteTable, http.StatusBadRequest, "validation_error"},
		{"bad page token", ledgerdomain.ErrInvalidPageToken, http.StatusBadRequest, "validation_error"},
		{"insufficient funds", ledgerdomain.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
		{"duplicate partner", identitydomain.ErrAlreadyExists, http.StatusConflict, "conflict"},
		{"unknown user", identitydomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unknown report", reportdomain.ErrReportNotFound, http.StatusNotFound, "not_found"},
		{"wrapped sentinel", errors.Join(errors.New("context"), ledgerdomain.ErrWalletNotFound), http.StatusNotFound, "not_found"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, _ := classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal", kind)

	kind, _ = classifyErrorForLog(ledgerdomain.ErrInsufficientFunds)
	assert.Equal(t, "payment", kind)

	kind, _ = classifyErrorForLog(identitydomain.ErrInvalidMobile)
	assert.Equal(t, "client", kind)
}
