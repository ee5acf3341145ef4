package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/hearback/hearback/internal/invitation/domain"
)

type IssueInvitationRequest struct {
	Email string `json:"email"`
}

func (s *Server) IssueInvitation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	companyID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req IssueInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invitationSvc.Issue(c.Request.Context(), invitationdomain.IssueRequest{
		UserID:    userID,
		CompanyID: companyID,
		Email:     req.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (s *Server) ListPendingInvitations(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	companyID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	invs, err := s.invitationSvc.ListPending(c.Request.Context(), userID, companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invs})
}

func (s *Server) LookupInvitation(c *gin.Context) {
	view, err := s.invitationSvc.Lookup(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	result, err := s.invitationSvc.Accept(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) AcceptInvitationAnonymous(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	result, err := s.invitationSvc.AcceptWithoutAuth(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
