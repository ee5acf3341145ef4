package domain

import "errors"

var ErrLinkNotFound = errors.New("magic link not found")
