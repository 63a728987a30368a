package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/smallbiznis/credicheck/internal/identity/domain"
)

func (s *Server) RegisterUser(c *gin.Context) {
	var req identitydomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.identitySvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) ListUsers(c *gin.Context) {
	role := identitydomain.Role(strings.ToUpper(strings.TrimSpace(c.Query("role"))))

	users, err := s.identitySvc.List(c.Request.Context(), role)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (s *Server) GetUser(c *gin.Context) {
	user, err := s.identitySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) UpdateUser(c *gin.Context) {
	var req identitydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.identitySvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) DeleteUser(c *gin.Context) {
	if err := s.identitySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.identitySvc.UpdateRole(
		c.Request.Context(),
		c.Param("id"),
		identitydomain.Role(strings.ToUpper(strings.TrimSpace(req.Role))),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
