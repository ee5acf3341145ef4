package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	reportdomain "github.com/hearback/hearback/internal/report/domain"
)

type SubmitReportRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	IsAnonymous   bool   `json:"is_anonymous"`
	ReporterName  string `json:"reporter_name"`
	ReporterEmail string `json:"reporter_email"`
}

type UpdateReportRequest struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssignedTo *string `json:"assigned_to"`
	Notes      *string `json:"notes"`
}

func (s *Server) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	report, err := s.reportSvc.Submit(c.Request.Context(), reportdomain.SubmitRequest{
		LinkID:        c.Param("linkId"),
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		IsAnonymous:   req.IsAnonymous,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) ListReports(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	companyID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reports, err := s.reportSvc.ListByCompany(c.Request.Context(), userID, companyID, reportdomain.ListFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) GetReport(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	reportID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.reportSvc.Get(c.Request.Context(), userID, reportID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) UpdateReport(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	reportID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := reportdomain.UpdateRequest{
		Status:   req.Status,
		Priority: req.Priority,
		Notes:    req.Notes,
	}
	if req.AssignedTo != nil {
		assignee, err := snowflake.ParseString(*req.AssignedTo)
		if err != nil {
			AbortWithError(c, newValidationError("assigned_to", "invalid_assigned_to", "invalid user id"))
			return
		}
		update.AssignedTo = &assignee
	}

	report, err := s.reportSvc.UpdateStatus(c.Request.Context(), userID, reportID, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
