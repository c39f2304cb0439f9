package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/stockledger/backend/internal/application/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
)

// LedgerHandler handles batch ledger and costing API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// RegisterRoutes registers the ledger routes on the given router group
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/batches")
	{
		batches.POST("", h.CreateBatch)
		batches.GET("/number/:number", h.GetBatchByNumber)
		batches.GET("/:id", h.GetBatch)
		batches.POST("/:id/consume", h.ConsumeBatch)
		batches.GET("/:id/movements", h.ListMovementsByBatch)
	}

	products := rg.Group("/products/:id")
	{
		products.GET("/batches", h.ListBatches)
		products.GET("/batches/available", h.ListAvailableBatches)
		products.GET("/levels", h.ListLevelsByProduct)
		products.GET("/movements", h.ListMovementsByProduct)
	}

	allocations := rg.Group("/allocations")
	{
		allocations.POST("/preview", h.PreviewAllocation)
		allocations.POST("/apply", h.ApplyAllocation)
	}

	levels := rg.Group("/levels")
	{
		levels.GET("", h.GetLevel)
		levels.POST("/adjust", h.AdjustLevel)
		levels.POST("/reserve", h.ReserveStock)
		levels.POST("/release", h.ReleaseStock)
	}

	rg.POST("/apportionments", h.Apportion)
	rg.POST("/purchases/receive", h.ReceivePurchase)
	rg.POST("/productions/complete", h.CompleteProduction)
	rg.GET("/movements/source/:kind/:ref", h.ListMovementsBySource)
}

// listQuery carries common pagination and ordering query parameters
type listQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// toFilter converts the query parameters to a repository filter
func (q listQuery) toFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	return filter
}

// CreateBatch handles POST /batches
func (h *LedgerHandler) CreateBatch(c *gin.Context) {
	var req ledgerapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	batch, err := h.ledgerService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// GetBatch handles GET /batches/:id
func (h *LedgerHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	batch, err := h.ledgerService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// GetBatchByNumber handles GET /batches/number/:number
func (h *LedgerHandler) GetBatchByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Batch number is required")
		return
	}

	batch, err := h.ledgerService.GetBatchByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// ConsumeBatch handles POST /batches/:id/consume
func (h *LedgerHandler) ConsumeBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	var req ledgerapp.ConsumeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.ledgerService.ConsumeBatch(c.Request.Context(), batchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// ListBatches handles GET /products/:id/batches
func (h *LedgerHandler) ListBatches(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ListBatches(c.Request.Context(), productID, query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListAvailableBatches handles GET /products/:id/batches/available. Batches
// are returned in consumption order: received_at ascending, sequence breaking
// ties.
func (h *LedgerHandler) ListAvailableBatches(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	batches, err := h.ledgerService.GetAvailableBatches(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batches)
}

// PreviewAllocation handles POST /allocations/preview. The computation is
// read-only: no batch is mutated and no movement is written.
func (h *LedgerHandler) PreviewAllocation(c *gin.Context) {
	var req ledgerapp.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	allocation, err := h.ledgerService.Allocate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, allocation)
}

// ApplyAllocation handles POST /allocations/apply
func (h *LedgerHandler) ApplyAllocation(c *gin.Context) {
	var req ledgerapp.ApplyAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, err := h.ledgerService.ApplyAllocation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// Apportion handles POST /apportionments
func (h *LedgerHandler) Apportion(c *gin.Context) {
	var req ledgerapp.ApportionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	apportionment, err := h.ledgerService.Apportion(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, apportionment)
}

// ReceivePurchase handles POST /purchases/receive
func (h *LedgerHandler) ReceivePurchase(c *gin.Context) {
	var req ledgerapp.ReceivePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ReceivePurchase(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// AdjustLevel handles POST /levels/adjust
func (h *LedgerHandler) AdjustLevel(c *gin.Context) {
	var req ledgerapp.AdjustLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.ledgerService.AdjustLevel(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// GetLevel handles GET /levels?product_id=...&warehouse_id=...
func (h *LedgerHandler) GetLevel(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var warehouseID *uuid.UUID
	if raw := c.Query("warehouse_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID")
			return
		}
		warehouseID = &id
	}

	level, err := h.ledgerService.GetLevel(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ListLevelsByProduct handles GET /products/:id/levels
func (h *LedgerHandler) ListLevelsByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	levels, err := h.ledgerService.ListLevelsByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, levels)
}

// ReserveStock handles POST /levels/reserve
func (h *LedgerHandler) ReserveStock(c *gin.Context) {
	var req ledgerapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.ledgerService.ReserveStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ReleaseStock handles POST /levels/release
func (h *LedgerHandler) ReleaseStock(c *gin.Context) {
	var req ledgerapp.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.ledgerService.ReleaseStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// CompleteProduction handles POST /productions/complete
func (h *LedgerHandler) CompleteProduction(c *gin.Context) {
	var req ledgerapp.CompleteProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.CompleteProduction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListMovementsByBatch handles GET /batches/:id/movements
func (h *LedgerHandler) ListMovementsByBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, err := h.ledgerService.GetMovementsByBatch(c.Request.Context(), batchID, query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// ListMovementsByProduct handles GET /products/:id/movements
func (h *LedgerHandler) ListMovementsByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, err := h.ledgerService.GetMovementsByProduct(c.Request.Context(), productID, query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// ListMovementsBySource handles GET /movements/source/:kind/:ref
func (h *LedgerHandler) ListMovementsBySource(c *gin.Context) {
	kind := c.Param("kind")
	ref := c.Param("ref")
	if kind == "" || ref == "" {
		h.BadRequest(c, "Source kind and reference are required")
		return
	}

	movements, err := h.ledgerService.GetMovementsBySource(c.Request.Context(), kind, ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}
