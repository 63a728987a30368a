package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/credicheck/pkg/db/pagination"
)

func (s *Server) ListTransactions(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	transactions, info, err := s.ledgerSvc.ListAll(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": transactions, "page_info": info})
}

func (s *Server) ListUserTransactions(c *gin.Context) {
	payerID, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	transactions, err := s.ledgerSvc.ListByPayer(c.Request.Context(), payerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": transactions})
}
