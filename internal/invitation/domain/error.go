package domain

import "errors"

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExists   = errors.New("a pending invitation already exists for this email")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationAccepted = errors.New("invitation has already been accepted")
	ErrEmailMismatch      = errors.New("invitation was issued for a different email")
	ErrInvalidEmail       = errors.New("invalid email address")
)
