package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence. The ledger
// only uses the read side; writes exist for catalog management.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Exists checks whether a product exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
