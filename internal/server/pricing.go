package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/credicheck/internal/bureau"
	pricingdomain "github.com/smallbiznis/credicheck/internal/pricing/domain"
)

func (s *Server) GetPricing(c *gin.Context) {
	entries, err := s.pricingSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) ReplacePricing(c *gin.Context) {
	var req struct {
		Prices []pricingdomain.PriceUpdate `json:"prices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	entries, err := s.pricingSvc.Replace(c.Request.Context(), req.Prices)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) QuotePricing(c *gin.Context) {
	var req struct {
		RequesterClass string   `json:"requester_class"`
		Bureaus        []string `json:"bureaus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	bureaus, err := bureau.ParseSet(req.Bureaus)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	class := pricingdomain.RequesterClass(strings.ToUpper(strings.TrimSpace(req.RequesterClass)))
	quote, err := s.pricingSvc.QuoteFor(c.Request.Context(), class, bureaus)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quote})
}
