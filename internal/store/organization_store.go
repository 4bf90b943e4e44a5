package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage
// operations. Organizations form a two-level hierarchy: roots (no parent)
// and their direct children.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if an organization with the same
	// ID already exists.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// ListChildren returns the direct children of the given organization,
	// oldest first. Returns an empty slice when there are none.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Organization, error)
}
