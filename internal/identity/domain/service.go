package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Profile is the candidate identity supplied by an authentication event.
type Profile struct {
	Email string
	Name  string
}

type Service interface {
	// Resolve decides which user record an authentication event binds to.
	// existingUserID is set on re-authentication, currentUserID is the
	// already-signed-in identity (possibly anonymous), if any. Resolve
	// never fails on a missing match; it falls through to creation.
	Resolve(ctx context.Context, profile Profile, existingUserID, currentUserID *snowflake.ID) (snowflake.ID, error)

	SignUp(ctx context.Context, req SignUpRequest) (*LoginResult, error)
	SignInAnonymous(ctx context.Context, req AnonymousRequest) (*LoginResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	SetPassword(ctx context.Context, userID snowflake.ID, password string) error
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
}

type SignUpRequest struct {
	Email    string
	Name     string
	Password string
	// CurrentUserID is the signed-in (typically anonymous) identity at the
	// time of sign-up, used by Resolve to link the credential.
	CurrentUserID *snowflake.ID
	UserAgent     string
	IPAddress     string
}

type AnonymousRequest struct {
	UserAgent string
	IPAddress string
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *UserView
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}
