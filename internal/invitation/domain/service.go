package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type IssueRequest struct {
	UserID    snowflake.ID
	CompanyID snowflake.ID
	Email     string
}

type Service interface {
	// Issue creates a pending invitation and queues the email. The
	// candidate email is matched against existing managers exactly as
	// written, not normalized.
	Issue(ctx context.Context, req IssueRequest) (*Invitation, error)

	ListPending(ctx context.Context, userID, companyID snowflake.ID) ([]Invitation, error)

	// Lookup resolves a token for the public landing page. Unknown and
	// expired tokens are indistinguishable.
	Lookup(ctx context.Context, token string) (*LookupView, error)

	// Accept grants membership to the signed-in user. The user's email
	// must equal the invitation email character for character.
	Accept(ctx context.Context, userID snowflake.ID, token string) (*AcceptResult, error)

	// AcceptWithoutAuth grants membership from an anonymous session,
	// re-targeting the grant when another account already owns the
	// invitation email.
	AcceptWithoutAuth(ctx context.Context, userID snowflake.ID, token string) (*AnonymousAcceptResult, error)
}

type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	FindByID(ctx context.Context, id snowflake.ID) (*Invitation, error)
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindPending(ctx context.Context, companyID snowflake.ID, email string) (*Invitation, error)
	ListPending(ctx context.Context, companyID snowflake.ID) ([]Invitation, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status) error
}
