package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Driver messages for drivers that never translate their unique
// violations into gorm.ErrDuplicatedKey.
var duplicateKeySignatures = []string{
	"duplicate key value violates unique constraint", // postgres 23505
	"Error 1062",               // mysql
	"UNIQUE constraint failed", // sqlite 2067
}

// IsDuplicateKeyErr reports whether err is a unique-constraint violation
// from any of the supported drivers. Services use it to fold insert races
// into the same conflict errors their pre-checks produce.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, sig := range duplicateKeySignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
