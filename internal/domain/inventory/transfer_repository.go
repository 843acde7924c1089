package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// TransferFilter defines filtering options for transfer queries
type TransferFilter struct {
	shared.Filter
	FromPartyID *uuid.UUID
	ToPartyID   *uuid.UUID
	Status      *TransferStatus
	FromDate    *time.Time
	ToDate      *time.Time
}

// TransferRepository defines the interface for stock transfer persistence
type TransferRepository interface {
	// FindByID finds a transfer by ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Transfer, error)

	// FindAll finds transfers within a scope with filtering
	FindAll(ctx context.Context, scope shared.Scope, filter TransferFilter) ([]Transfer, error)

	// Save creates or updates a transfer
	Save(ctx context.Context, transfer *Transfer) error

	// Count counts transfers within a scope
	Count(ctx context.Context, scope shared.Scope, filter TransferFilter) (int64, error)
}
