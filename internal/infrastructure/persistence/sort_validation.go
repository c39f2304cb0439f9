package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
// Sort fields are interpolated into ORDER BY clauses, so they must never pass
// through unvalidated.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BatchSortFields contains allowed sort fields for batches
var BatchSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"batch_number":       true,
	"product_id":         true,
	"warehouse_id":       true,
	"original_quantity":  true,
	"remaining_quantity": true,
	"unit_cost":          true,
	"received_at":        true,
	"sequence":           true,
}

// MovementSortFields contains allowed sort fields for movements
var MovementSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"batch_id":    true,
	"product_id":  true,
	"direction":   true,
	"quantity":    true,
	"unit_cost":   true,
	"total_cost":  true,
	"source_kind": true,
	"source_ref":  true,
	"occurred_at": true,
}

// LevelSortFields contains allowed sort fields for inventory levels
var LevelSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"product_id":        true,
	"warehouse_id":      true,
	"quantity_on_hand":  true,
	"reserved_quantity": true,
	"unit_cost":         true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"unit":          true,
	"kind":          true,
	"standard_cost": true,
	"status":        true,
}
