package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code         string           `json:"code" binding:"required,max=50"`
	Name         string           `json:"name" binding:"required,max=200"`
	Unit         string           `json:"unit" binding:"required,max=20"`
	Kind         string           `json:"kind" binding:"required,oneof=raw_material finished_good"`
	StandardCost *decimal.Decimal `json:"standard_cost"`
}

// SetStandardCostRequest represents a request to set a product's planned unit cost
type SetStandardCostRequest struct {
	StandardCost decimal.Decimal `json:"standard_cost" binding:"required"`
}

// ProductListFilter represents filter options for product listing
type ProductListFilter struct {
	Search   string `form:"search"`
	Kind     string `form:"kind" binding:"omitempty,oneof=raw_material finished_good"`
	Status   string `form:"status" binding:"omitempty,oneof=active discontinued"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Kind         string          `json:"kind"`
	StandardCost decimal.Decimal `json:"standard_cost"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse converts a product to its response representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Unit:         p.Unit,
		Kind:         p.Kind.String(),
		StandardCost: p.StandardCost,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
