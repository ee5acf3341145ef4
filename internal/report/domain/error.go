package domain

import "errors"

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrInvalidLink     = errors.New("report link is invalid or inactive")
	ErrInvalidTitle    = errors.New("report title is required")
	ErrInvalidCategory = errors.New("unknown report category")
	ErrInvalidStatus   = errors.New("unknown report status")
	ErrInvalidPriority = errors.New("unknown report priority")
)
