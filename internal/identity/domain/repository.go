package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	// FindByNormalizedEmail matches on the lower-cased, trimmed email. This
	// is the indexed replacement for the original full-table scan.
	FindByNormalizedEmail(ctx context.Context, email string) (*User, error)
	// FindByExactEmail matches the stored email byte-for-byte. The invite
	// duplicate check depends on this stricter comparison; keep the two
	// lookups separate until product decides which one is right.
	FindByExactEmail(ctx context.Context, email string) (*User, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	UpdateLastSeen(ctx context.Context, sessionID snowflake.ID, lastSeen time.Time) error
	RevokeSession(ctx context.Context, sessionID snowflake.ID, revokedAt time.Time) error
}
