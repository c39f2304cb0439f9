package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidQuantity        = NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	ErrInsufficientStock      = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrBatchNotFound          = NewDomainError("BATCH_NOT_FOUND", "Batch not found")
	ErrMissingUnitCost        = NewDomainError("MISSING_UNIT_COST", "Unit cost is required for stock increases")
	ErrApportionmentUndefined = NewDomainError("APPORTIONMENT_UNDEFINED", "Cannot apportion cost across zero-valued items")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "Inventory was modified by another transaction")
	ErrSourceAlreadyProcessed = NewDomainError("SOURCE_ALREADY_PROCESSED", "Source document has already been processed")
)
