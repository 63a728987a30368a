package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
	ledgerdomain "github.com/smallbiznis/credicheck/internal/ledger/domain"
)

func (s *Server) CreatePartner(c *gin.Context) {
	var req identitydomain.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	partner, err := s.identitySvc.CreatePartner(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": partner})
}

func (s *Server) GetPartnerStats(c *gin.Context) {
	result, err := s.statsSvc.Partner(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) GetWallet(c *gin.Context) {
	partnerID, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.ledgerSvc.GetBalance(c.Request.Context(), partnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"partner_id": partnerID.String(),
		"balance":    balance,
	}})
}

func (s *Server) TopupWallet(c *gin.Context) {
	partnerID, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.ledgerSvc.Recharge(c.Request.Context(), partnerID, req.Amount); err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.ledgerSvc.GetBalance(c.Request.Context(), partnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"partner_id": partnerID.String(),
		"balance":    balance,
	}})
}

func (s *Server) AdjustWallet(c *gin.Context) {
	partnerID, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Amount    int64  `json:"amount"`
		Direction string `json:"direction"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	direction := ledgerdomain.Direction(strings.ToUpper(strings.TrimSpace(req.Direction)))
	if err := s.ledgerSvc.AdjustBalance(c.Request.Context(), partnerID, req.Amount, direction, req.Reason); err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.ledgerSvc.GetBalance(c.Request.Context(), partnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"partner_id": partnerID.String(),
		"balance":    balance,
	}})
}

func (s *Server) ListPartnerReports(c *gin.Context) {
	items, err := s.reportSvc.ListByGenerator(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func parsePathID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, ErrInvalidRequest
	}
	return snowflake.ID(value), nil
}
