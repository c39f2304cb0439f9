package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// ProductKind distinguishes what role a product plays in production
type ProductKind string

const (
	// ProductKindRawMaterial is consumed by production orders
	ProductKindRawMaterial ProductKind = "raw_material"
	// ProductKindFinishedGood is produced by production orders
	ProductKindFinishedGood ProductKind = "finished_good"
)

// String returns the string representation of ProductKind
func (k ProductKind) String() string {
	return string(k)
}

// IsValid returns true if the product kind is valid
func (k ProductKind) IsValid() bool {
	return k == ProductKindRawMaterial || k == ProductKindFinishedGood
}

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product is a catalog entry the ledger tracks stock against. The catalog is a
// collaborator of the ledger: the ledger only reads it to check that a product
// exists and what kind it is.
type Product struct {
	shared.BaseAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"` // base unit, e.g. "pcs", "kg"
	Kind         ProductKind     `gorm:"type:varchar(20);not null"`
	StandardCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // planned unit cost for variance reporting
	Status       ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name, unit string, kind ProductKind) (*Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_UNIT", "Product unit cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_KIND", "Invalid product kind")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Unit:              unit,
		Kind:              kind,
		StandardCost:      decimal.Zero,
		Status:            ProductStatusActive,
	}, nil
}

// SetStandardCost sets the planned unit cost used for variance reporting
func (p *Product) SetStandardCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Standard cost cannot be negative")
	}
	p.StandardCost = cost
	p.UpdatedAt = time.Now()
	return nil
}

// Discontinue marks the product as no longer active. Existing batches remain
// valid; new inbound stock is rejected by the application layer.
func (p *Product) Discontinue() {
	p.Status = ProductStatusDiscontinued
	p.UpdatedAt = time.Now()
}

// IsActive returns true if the product accepts new stock
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
