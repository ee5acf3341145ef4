package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
)

type CreateMagicLinkRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateMagicLink(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	companyID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateMagicLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	link, err := s.magicLinkSvc.Create(c.Request.Context(), magicdomain.CreateRequest{
		UserID:    userID,
		CompanyID: companyID,
		Name:      req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (s *Server) ListMagicLinks(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	companyID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	links, err := s.magicLinkSvc.ListByCompany(c.Request.Context(), userID, companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (s *Server) ToggleMagicLink(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	linkID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	link, err := s.magicLinkSvc.Toggle(c.Request.Context(), userID, linkID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (s *Server) ResolveMagicLink(c *gin.Context) {
	link, err := s.magicLinkSvc.ResolvePublic(c.Request.Context(), c.Param("linkId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
