package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	UserID    snowflake.ID
	CompanyID snowflake.ID
	Name      string
}

type Service interface {
	// Create returns the caller's existing link for the company when one
	// exists, otherwise mints a new one. One link per manager per company.
	Create(ctx context.Context, req CreateRequest) (*MagicLink, error)

	// Provision is Create without the membership guard, for callers that
	// have already established membership in the same transaction.
	Provision(ctx context.Context, userID, companyID snowflake.ID) (*MagicLink, error)

	ListByCompany(ctx context.Context, userID, companyID snowflake.ID) ([]MagicLink, error)

	// Toggle flips the active flag. The guard runs against the link's own
	// company, not a caller-supplied one.
	Toggle(ctx context.Context, userID, linkID snowflake.ID) (*MagicLink, error)

	// ResolvePublic looks up an active link by its public link id.
	// Inactive and unknown links are indistinguishable to the caller.
	ResolvePublic(ctx context.Context, linkID string) (*PublicLink, error)

	// ResolveActive returns the full row for an active link, for intake.
	ResolveActive(ctx context.Context, linkID string) (*MagicLink, error)
}

type Repository interface {
	Create(ctx context.Context, link *MagicLink) error
	FindByID(ctx context.Context, id snowflake.ID) (*MagicLink, error)
	FindByLinkID(ctx context.Context, linkID string) (*MagicLink, error)
	FindByCreator(ctx context.Context, companyID, createdBy snowflake.ID) (*MagicLink, error)
	ListByCompany(ctx context.Context, companyID snowflake.ID) ([]MagicLink, error)
	SetActive(ctx context.Context, id snowflake.ID, active bool) error
}
