package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// PartyFilter defines filtering options for party queries
type PartyFilter struct {
	shared.Filter
	Kind     *PartyKind
	IsActive *bool
	City     string
}

// PartyRepository defines the interface for trading partner persistence
type PartyRepository interface {
	// FindByID finds a party by ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Party, error)

	// FindByName finds a party by exact name within a scope
	FindByName(ctx context.Context, scope shared.Scope, name string) (*Party, error)

	// FindAll finds parties within a scope with filtering
	FindAll(ctx context.Context, scope shared.Scope, filter PartyFilter) ([]Party, error)

	// Save creates or updates a party
	Save(ctx context.Context, party *Party) error

	// Delete removes a party
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error

	// Count counts parties within a scope
	Count(ctx context.Context, scope shared.Scope, filter PartyFilter) (int64, error)
}
