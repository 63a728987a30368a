package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/credicheck/internal/bureau"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
	reportdomain "github.com/smallbiznis/credicheck/internal/report/domain"
)

func (s *Server) GenerateReports(c *gin.Context) {
	var req struct {
		ConsumerID  string   `json:"consumer_id"`
		GeneratedBy string   `json:"generated_by"`
		Bureaus     []string `json:"bureaus"`
		Purpose     string   `json:"purpose"`
		Method      string   `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	consumerID, err := parsePathID(req.ConsumerID)
	if err != nil {
		AbortWithError(c, reportdomain.ErrConsumerNotFound)
		return
	}
	generatedBy, err := parsePathID(req.GeneratedBy)
	if err != nil {
		AbortWithError(c, reportdomain.ErrGeneratorNotFound)
		return
	}

	bureaus, err := bureau.ParseSet(req.Bureaus)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !s.allowGeneration(c, generatedBy.String()) {
		return
	}

	result, err := s.reportSvc.Generate(c.Request.Context(), reportdomain.GenerateRequest{
		ConsumerID:  consumerID,
		GeneratedBy: generatedBy,
		Bureaus:     bureaus,
		Purpose:     ledgerdomain.Purpose(strings.ToUpper(strings.TrimSpace(req.Purpose))),
		Method:      ledgerdomain.FundingMethod(strings.ToUpper(strings.TrimSpace(req.Method))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// allowGeneration consults the per-actor limiter. Limiter absence or a denial
// response is handled here; the handler bails out when false is returned.
func (s *Server) allowGeneration(c *gin.Context, actorID string) bool {
	if s.reportLimiter == nil {
		return true
	}

	result, err := s.reportLimiter.Allow(c.Request.Context(), actorID)
	if err != nil || result == nil || result.Allowed {
		return true
	}

	retryAfter := int64(result.RetryAfter / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
		Type:    "rate_limited",
		Message: "too many report requests, slow down",
	}})
	return false
}

func (s *Server) ListReports(c *gin.Context) {
	items, err := s.reportSvc.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetReport(c *gin.Context) {
	record, err := s.reportSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) ListConsumerReports(c *gin.Context) {
	records, err := s.reportSvc.ListByConsumer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
