package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	companydomain "github.com/hearback/hearback/internal/company/domain"
	identitydomain "github.com/hearback/hearback/internal/identity/domain"
	invitationdomain "github.com/hearback/hearback/internal/invitation/domain"
	magicdomain "github.com/hearback/hearback/internal/magiclink/domain"
	reportdomain "github.com/hearback/hearback/internal/report/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identitydomain.ErrInvalidCredentials),
		errors.Is(err, identitydomain.ErrInvalidSession),
		errors.Is(err, identitydomain.ErrSessionExpired),
		errors.Is(err, identitydomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, companydomain.ErrNotManager):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, reportdomain.ErrInvalidLink):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_link",
			Message: "this link is no longer accepting reports",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, identitydomain.ErrWeakPassword),
		errors.Is(err, companydomain.ErrInvalidName),
		errors.Is(err, invitationdomain.ErrInvalidEmail),
		errors.Is(err, reportdomain.ErrInvalidTitle),
		errors.Is(err, reportdomain.ErrInvalidCategory),
		errors.Is(err, reportdomain.ErrInvalidStatus),
		errors.Is(err, reportdomain.ErrInvalidPriority):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, identitydomain.ErrUserExists),
		errors.Is(err, companydomain.ErrManagerExists),
		errors.Is(err, invitationdomain.ErrInvitationExists),
		errors.Is(err, invitationdomain.ErrInvitationAccepted),
		errors.Is(err, invitationdomain.ErrInvitationExpired),
		errors.Is(err, invitationdomain.ErrEmailMismatch):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, identitydomain.ErrUserNotFound),
		errors.Is(err, companydomain.ErrCompanyNotFound),
		errors.Is(err, invitationdomain.ErrInvitationNotFound),
		errors.Is(err, magicdomain.ErrLinkNotFound),
		errors.Is(err, reportdomain.ErrReportNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, identitydomain.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, invitationdomain.ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, companydomain.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, reportdomain.ErrInvalidTitle):
		return "invalid_title"
	case errors.Is(err, reportdomain.ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, reportdomain.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, reportdomain.ErrInvalidPriority):
		return "invalid_priority"
	default:
		return "invalid_request"
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "weak_password":
		return "password"
	default:
		return strings.TrimPrefix(code, "invalid_")
	}
}
