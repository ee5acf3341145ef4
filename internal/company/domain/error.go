package domain

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrNotManager      = errors.New("user is not a manager of this company")
	ErrManagerExists   = errors.New("user is already a manager of this company")
	ErrInvalidName     = errors.New("company name is required")
)
