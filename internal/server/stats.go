package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetAdminStats(c *gin.Context) {
	result, err := s.statsSvc.Admin(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
