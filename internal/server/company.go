package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	companydomain "github.com/hearback/hearback/internal/company/domain"
)

type CreateCompanyRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateCompany(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	company, err := s.companySvc.Create(c.Request.Context(), companydomain.CreateRequest{
		Name:      req.Name,
		CreatedBy: userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (s *Server) GetMyCompany(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	company, err := s.companySvc.GetUserCompany(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (s *Server) ListManagers(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	companyID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	managers, err := s.companySvc.ListManagers(c.Request.Context(), userID, companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"managers": managers})
}
