package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
)

// batchNumberSequence is the named counter batch numbers are reserved from
const batchNumberSequence = "batch_number"

// LedgerService handles batch ledger and costing operations. All mutating
// operations run inside a TransactionScope: either every write of one commit
// lands, or none does.
type LedgerService struct {
	txScope          TransactionScope
	batchRepo        ledger.BatchRepository
	movementRepo     ledger.MovementRepository
	levelRepo        ledger.LevelRepository
	productRepo      catalog.ProductRepository
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	eventPublisher   shared.EventPublisher
}

// NewLedgerService creates a new LedgerService. The read-side repositories are
// used for queries; mutations go through the transaction scope only.
func NewLedgerService(
	txScope TransactionScope,
	batchRepo ledger.BatchRepository,
	movementRepo ledger.MovementRepository,
	levelRepo ledger.LevelRepository,
	productRepo catalog.ProductRepository,
) *LedgerService {
	return &LedgerService{
		txScope:        txScope,
		batchRepo:      batchRepo,
		movementRepo:   movementRepo,
		levelRepo:      levelRepo,
		productRepo:    productRepo,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the fast-path duplicate-commit guard
func (s *LedgerService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

// checkActiveProduct verifies that the product exists and accepts stock
func (s *LedgerService) checkActiveProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product does not exist")
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_DISCONTINUED", "Product no longer accepts stock")
	}
	return product, nil
}

// guardSource is the fast-path duplicate check against the idempotency store.
// It is advisory only; the authoritative check is checkSourceUnprocessed
// inside the transaction.
func (s *LedgerService) guardSource(ctx context.Context, sourceRef string) error {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return nil
	}
	processed, err := s.idempotencyStore.IsProcessed(ctx, sourceRef)
	if err != nil {
		// The fast path is best-effort; fall through to the transactional check.
		return nil
	}
	if processed {
		return shared.ErrSourceAlreadyProcessed
	}
	return nil
}

// markSource records a committed source reference in the fast-path store
func (s *LedgerService) markSource(ctx context.Context, sourceRef string) {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return
	}
	_, _ = s.idempotencyStore.MarkProcessed(ctx, sourceRef, s.idempotencyCfg.TTL)
}

// checkSourceUnprocessed is the authoritative duplicate check: any movement
// already recorded for the source means the document was committed before.
func checkSourceUnprocessed(ctx context.Context, repos TransactionalRepositories, kind ledger.SourceKind, sourceRef string) error {
	exists, err := repos.MovementRepo().ExistsBySource(ctx, kind, sourceRef)
	if err != nil {
		return err
	}
	if exists {
		return shared.ErrSourceAlreadyProcessed
	}
	return nil
}

// nextBatchNumber reserves a batch number from the atomic sequence
func nextBatchNumber(ctx context.Context, repos TransactionalRepositories) (string, error) {
	n, err := repos.SequenceRepo().Next(ctx, batchNumberSequence)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("B-%06d", n), nil
}

// levelLocation maps an optional warehouse to the level key. Stock without an
// explicit location lives under the zero location.
func levelLocation(warehouseID *uuid.UUID) uuid.UUID {
	if warehouseID == nil {
		return uuid.Nil
	}
	return *warehouseID
}

// publishDomainEvents publishes collected domain events after a commit
func (s *LedgerService) publishDomainEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Errors are logged by the event bus, not propagated.
	_ = s.eventPublisher.Publish(ctx, events...)
}

// createBatchInTx creates a batch together with its inbound movement and level
// increase. Must run inside a transaction.
func createBatchInTx(
	ctx context.Context,
	repos TransactionalRepositories,
	batchNumber string,
	productID uuid.UUID,
	warehouseID *uuid.UUID,
	quantity, unitCost decimal.Decimal,
	sourceKind ledger.SourceKind,
	sourceRef string,
	receivedAt time.Time,
) (*ledger.Batch, error) {
	if batchNumber == "" {
		var err error
		batchNumber, err = nextBatchNumber(ctx, repos)
		if err != nil {
			return nil, err
		}
	} else {
		taken, err := repos.BatchRepo().ExistsByBatchNumber(ctx, batchNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError("DUPLICATE_BATCH_NUMBER", "Batch number is already in use")
		}
	}

	batch, err := ledger.NewBatch(batchNumber, productID, warehouseID, quantity, unitCost, sourceKind, sourceRef, receivedAt)
	if err != nil {
		return nil, err
	}
	if err := repos.BatchRepo().Save(ctx, batch); err != nil {
		return nil, err
	}

	movement, err := ledger.NewInboundMovement(batch, quantity, sourceKind, sourceRef)
	if err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Append(ctx, movement); err != nil {
		return nil, err
	}

	level, err := repos.LevelRepo().GetOrCreate(ctx, productID, levelLocation(warehouseID))
	if err != nil {
		return nil, err
	}
	cost := batch.UnitCost
	if err := level.Increase(quantity, &cost); err != nil {
		return nil, err
	}
	if err := repos.LevelRepo().SaveWithLock(ctx, level); err != nil {
		return nil, err
	}

	return batch, nil
}

// consumeBatchInTx draws quantity from a batch, appending the outbound
// movement and decreasing the owning level. Must run inside a transaction.
func consumeBatchInTx(
	ctx context.Context,
	repos TransactionalRepositories,
	batch *ledger.Batch,
	quantity decimal.Decimal,
	sourceKind ledger.SourceKind,
	sourceRef, reason string,
) (*ledger.Movement, error) {
	if err := batch.Consume(quantity); err != nil {
		return nil, err
	}
	if err := repos.BatchRepo().SaveWithLock(ctx, batch); err != nil {
		return nil, err
	}

	movement, err := ledger.NewOutboundMovement(batch, quantity, sourceKind, sourceRef)
	if err != nil {
		return nil, err
	}
	movement.WithReason(reason)
	if err := repos.MovementRepo().Append(ctx, movement); err != nil {
		return nil, err
	}

	level, err := repos.LevelRepo().FindByProductAndWarehouse(ctx, batch.ProductID, levelLocation(batch.WarehouseID))
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, shared.NewDomainError("LEVEL_NOT_FOUND", "No inventory level exists for the batch's location")
	}
	if err := level.Decrease(quantity); err != nil {
		return nil, err
	}
	if level.IsEmpty() {
		if err := repos.LevelRepo().Delete(ctx, level.ID); err != nil {
			return nil, err
		}
	} else if err := repos.LevelRepo().SaveWithLock(ctx, level); err != nil {
		return nil, err
	}

	return movement, nil
}

// CreateBatch creates one batch from a single source document
func (s *LedgerService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*BatchResponse, error) {
	sourceKind := ledger.SourceKind(req.SourceKind)
	if !sourceKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_KIND", "Invalid source kind")
	}

	if _, err := s.checkActiveProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	if err := s.guardSource(ctx, req.SourceRef); err != nil {
		return nil, err
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	var batch *ledger.Batch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := checkSourceUnprocessed(ctx, repos, sourceKind, req.SourceRef); err != nil {
			return err
		}
		var txErr error
		batch, txErr = createBatchInTx(ctx, repos, req.BatchNumber, req.ProductID, req.WarehouseID,
			req.Quantity, req.UnitCost, sourceKind, req.SourceRef, receivedAt)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.markSource(ctx, req.SourceRef)
	s.publishDomainEvents(ctx, batch.GetDomainEvents()...)
	batch.ClearDomainEvents()

	response := ToBatchResponse(batch)
	return &response, nil
}

// ConsumeBatch draws quantity from one specific batch
func (s *LedgerService) ConsumeBatch(ctx context.Context, batchID uuid.UUID, req ConsumeBatchRequest) (*MovementResponse, error) {
	sourceKind := ledger.SourceKind(req.SourceKind)
	if !sourceKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_KIND", "Invalid source kind")
	}

	var movement *ledger.Movement
	var batch *ledger.Batch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		batch, txErr = repos.BatchRepo().FindByID(ctx, batchID)
		if txErr != nil {
			return txErr
		}
		if batch == nil {
			return shared.ErrBatchNotFound
		}

		movement, txErr = consumeBatchInTx(ctx, repos, batch, req.Quantity, sourceKind, req.SourceRef, req.Reason)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, batch.GetDomainEvents()...)
	batch.ClearDomainEvents()

	response := ToMovementResponse(movement)
	return &response, nil
}

// GetBatch retrieves a batch by ID
func (s *LedgerService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, shared.ErrBatchNotFound
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// GetBatchByNumber retrieves a batch by its batch number
func (s *LedgerService) GetBatchByNumber(ctx context.Context, batchNumber string) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByBatchNumber(ctx, batchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, shared.ErrBatchNotFound
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// GetAvailableBatches returns a product's open batches in FIFO order
func (s *LedgerService) GetAvailableBatches(ctx context.Context, productID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindAvailableByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// ListBatches returns all batches for a product, exhausted included
func (s *LedgerService) ListBatches(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[BatchResponse], error) {
	batches, err := s.batchRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.batchRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return shared.NewPaginated(ToBatchResponses(batches), total, filter.Page, filter.PageSize), nil
}

// Allocate computes a FIFO allocation against the current batch snapshot.
// It is read-only: calling it twice without committing yields identical
// results.
func (s *LedgerService) Allocate(ctx context.Context, req AllocateRequest) (*AllocationResponse, error) {
	batches, err := s.batchRepo.FindAvailableByProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	result, err := ledger.AllocateFIFO(req.ProductID, req.Quantity, batches)
	if err != nil {
		return nil, err
	}

	response := ToAllocationResponse(result)
	return &response, nil
}

// ApplyAllocation commits a previously computed allocation. Each batch's
// remaining quantity is re-validated inside the transaction; if a concurrent
// consumer drew a batch below what the computation assumed, the whole commit
// fails with ConcurrentModification and nothing is applied.
func (s *LedgerService) ApplyAllocation(ctx context.Context, req ApplyAllocationRequest) ([]MovementResponse, error) {
	sourceKind := ledger.SourceKind(req.SourceKind)
	if !sourceKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_KIND", "Invalid source kind")
	}

	if err := s.guardSource(ctx, req.SourceRef); err != nil {
		return nil, err
	}

	var movements []*ledger.Movement
	var events []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := checkSourceUnprocessed(ctx, repos, sourceKind, req.SourceRef); err != nil {
			return err
		}

		movements = movements[:0]
		for _, entry := range req.Entries {
			batch, err := repos.BatchRepo().FindByID(ctx, entry.BatchID)
			if err != nil {
				return err
			}
			if batch == nil {
				return shared.ErrBatchNotFound
			}
			if batch.ProductID != req.ProductID {
				return shared.NewDomainError("PRODUCT_MISMATCH", "Batch belongs to a different product")
			}
			// Stale allocation: a concurrent consumer drew this batch down
			// after the allocation was computed.
			if !batch.CanFulfill(entry.Quantity) {
				return shared.ErrConcurrentModification
			}

			movement, err := consumeBatchInTx(ctx, repos, batch, entry.Quantity, sourceKind, req.SourceRef, req.Reason)
			if err != nil {
				return err
			}
			movements = append(movements, movement)
			events = append(events, batch.GetDomainEvents()...)
			batch.ClearDomainEvents()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markSource(ctx, req.SourceRef)
	s.publishDomainEvents(ctx, events...)

	responses := make([]MovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = ToMovementResponse(m)
	}
	return responses, nil
}

// Apportion distributes a shared additional cost across valued line items.
// Pure computation, no store access.
func (s *LedgerService) Apportion(_ context.Context, req ApportionRequest) (*ApportionResponse, error) {
	items := make([]ledger.ApportionLineItem, len(req.LineItems))
	for i, li := range req.LineItems {
		items[i] = ledger.ApportionLineItem{
			Key:       li.Key,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		}
	}

	result, err := ledger.ApportionCost(req.AdditionalCost, items)
	if err != nil {
		return nil, err
	}

	response := ToApportionResponse(result)
	return &response, nil
}

// ReceivePurchase commits a purchase arrival: the shared additional cost is
// apportioned across lines, and one batch per line is created at its actual
// unit cost, all in one unit of work.
func (s *LedgerService) ReceivePurchase(ctx context.Context, req ReceivePurchaseRequest) (*ReceivePurchaseResponse, error) {
	if req.AdditionalCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Additional cost cannot be negative")
	}
	for _, line := range req.Lines {
		if _, err := s.checkActiveProduct(ctx, line.ProductID); err != nil {
			return nil, err
		}
	}

	if err := s.guardSource(ctx, req.SourceRef); err != nil {
		return nil, err
	}

	items := make([]ledger.ApportionLineItem, len(req.Lines))
	for i, line := range req.Lines {
		items[i] = ledger.ApportionLineItem{
			Key:       line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}

	var apportionment *ledger.CostApportionment
	if req.AdditionalCost.IsPositive() {
		var err error
		apportionment, err = ledger.ApportionCost(req.AdditionalCost, items)
		if err != nil {
			return nil, err
		}
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	var batches []*ledger.Batch
	var events []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := checkSourceUnprocessed(ctx, repos, ledger.SourceKindPurchase, req.SourceRef); err != nil {
			return err
		}

		batches = batches[:0]
		for i, line := range req.Lines {
			unitCost := line.UnitPrice
			if apportionment != nil {
				unitCost = apportionment.Shares[i].ActualUnitCost
			}

			batch, err := createBatchInTx(ctx, repos, line.BatchNumber, line.ProductID, req.WarehouseID,
				line.Quantity, unitCost, ledger.SourceKindPurchase, req.SourceRef, receivedAt)
			if err != nil {
				return err
			}
			batches = append(batches, batch)
			events = append(events, batch.GetDomainEvents()...)
			batch.ClearDomainEvents()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markSource(ctx, req.SourceRef)
	s.publishDomainEvents(ctx, events...)

	response := &ReceivePurchaseResponse{
		SourceRef: req.SourceRef,
		Batches:   make([]BatchResponse, len(batches)),
	}
	for i, b := range batches {
		response.Batches[i] = ToBatchResponse(b)
		response.TotalCost = response.TotalCost.Add(b.OriginalQuantity.Mul(b.UnitCost))
	}
	return response, nil
}

// AdjustLevel applies a signed manual adjustment to a product-location level.
// Increases require an explicit unit cost and recompute the weighted average;
// decreases keep it. A level emptied by a decrease is deleted.
func (s *LedgerService) AdjustLevel(ctx context.Context, req AdjustLevelRequest) (*LevelResponse, error) {
	if req.DeltaQty.IsZero() {
		return nil, shared.ErrInvalidQuantity
	}

	if _, err := s.checkActiveProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	location := levelLocation(req.WarehouseID)

	var level *ledger.InventoryLevel
	var deleted bool
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		level, txErr = repos.LevelRepo().GetOrCreate(ctx, req.ProductID, location)
		if txErr != nil {
			return txErr
		}

		deleted = false
		var direction ledger.Direction
		var quantity decimal.Decimal
		var unitCost decimal.Decimal

		if req.DeltaQty.IsPositive() {
			direction = ledger.DirectionInbound
			quantity = req.DeltaQty
			if txErr = level.Increase(quantity, req.UnitCost); txErr != nil {
				return txErr
			}
			unitCost = *req.UnitCost
		} else {
			direction = ledger.DirectionOutbound
			quantity = req.DeltaQty.Neg()
			unitCost = level.UnitCost
			if txErr = level.Decrease(quantity); txErr != nil {
				return txErr
			}
		}

		movement, txErr := ledger.NewLevelAdjustmentMovement(req.ProductID, req.WarehouseID, direction, quantity, unitCost, req.SourceRef, req.Reason)
		if txErr != nil {
			return txErr
		}
		if txErr = repos.MovementRepo().Append(ctx, movement); txErr != nil {
			return txErr
		}

		if level.IsEmpty() {
			deleted = true
			return repos.LevelRepo().Delete(ctx, level.ID)
		}
		return repos.LevelRepo().SaveWithLock(ctx, level)
	})
	if err != nil {
		return nil, err
	}

	direction := ledger.DirectionInbound
	quantity := req.DeltaQty
	if req.DeltaQty.IsNegative() {
		direction = ledger.DirectionOutbound
		quantity = req.DeltaQty.Neg()
	}
	s.publishDomainEvents(ctx, ledger.NewLevelAdjustedEvent(level, direction, quantity, req.SourceRef, req.Reason))

	response := ToLevelResponse(level)
	response.Deleted = deleted
	return &response, nil
}

// GetLevel retrieves the level for a product-location pair
func (s *LedgerService) GetLevel(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (*LevelResponse, error) {
	level, err := s.levelRepo.FindByProductAndWarehouse(ctx, productID, levelLocation(warehouseID))
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, shared.ErrNotFound
	}
	response := ToLevelResponse(level)
	return &response, nil
}

// ListLevelsByProduct returns a product's levels across locations
func (s *LedgerService) ListLevelsByProduct(ctx context.Context, productID uuid.UUID) ([]LevelResponse, error) {
	levels, err := s.levelRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToLevelResponses(levels), nil
}

// ReserveStock sets aside quantity on a level without moving it
func (s *LedgerService) ReserveStock(ctx context.Context, req ReserveStockRequest) (*LevelResponse, error) {
	var level *ledger.InventoryLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		level, txErr = repos.LevelRepo().FindByProductAndWarehouse(ctx, req.ProductID, levelLocation(req.WarehouseID))
		if txErr != nil {
			return txErr
		}
		if level == nil {
			return shared.ErrInsufficientStock
		}
		if txErr = level.Reserve(req.Quantity); txErr != nil {
			return txErr
		}
		return repos.LevelRepo().SaveWithLock(ctx, level)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ledger.NewStockReservedEvent(level, req.Quantity, req.SourceRef))

	response := ToLevelResponse(level)
	return &response, nil
}

// ReleaseStock returns reserved quantity to availability
func (s *LedgerService) ReleaseStock(ctx context.Context, req ReleaseStockRequest) (*LevelResponse, error) {
	var level *ledger.InventoryLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		level, txErr = repos.LevelRepo().FindByProductAndWarehouse(ctx, req.ProductID, levelLocation(req.WarehouseID))
		if txErr != nil {
			return txErr
		}
		if level == nil {
			return shared.ErrNotFound
		}
		if txErr = level.Release(req.Quantity); txErr != nil {
			return txErr
		}
		return repos.LevelRepo().SaveWithLock(ctx, level)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ledger.NewStockReleasedEvent(level, req.Quantity, req.SourceRef))

	response := ToLevelResponse(level)
	return &response, nil
}

// CompleteProduction consumes the required materials FIFO, costs the output
// from material cost plus processing fee over actual output, and creates the
// finished-good batch. The whole order commits in one unit of work: if any
// material cannot be covered, no consumption is left behind.
func (s *LedgerService) CompleteProduction(ctx context.Context, req CompleteProductionRequest) (*ProductionResponse, error) {
	product, err := s.checkActiveProduct(ctx, req.OutputProductID)
	if err != nil {
		return nil, err
	}

	if err := s.guardSource(ctx, req.SourceRef); err != nil {
		return nil, err
	}

	var plannedUnitCost *decimal.Decimal
	if product.StandardCost.IsPositive() {
		cost := product.StandardCost
		plannedUnitCost = &cost
	}

	var outputBatch *ledger.Batch
	var productionCost *ledger.ProductionCost
	var consumptions []MaterialConsumptionResponse
	var events []shared.DomainEvent

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := checkSourceUnprocessed(ctx, repos, ledger.SourceKindProduction, req.SourceRef); err != nil {
			return err
		}

		consumptions = consumptions[:0]
		allocations := make([]ledger.AllocationResult, 0, len(req.Materials))

		for _, material := range req.Materials {
			batches, err := repos.BatchRepo().FindAvailableByProduct(ctx, material.ProductID)
			if err != nil {
				return err
			}

			allocation, err := ledger.AllocateFIFO(material.ProductID, material.Quantity, batches)
			if err != nil {
				return err
			}
			if !allocation.FullyAllocated() {
				return shared.ErrInsufficientStock
			}

			consumption := MaterialConsumptionResponse{
				ProductID: material.ProductID,
				Required:  material.Quantity,
				TotalCost: allocation.TotalCost,
			}
			for _, entry := range allocation.Entries {
				batch, err := repos.BatchRepo().FindByID(ctx, entry.BatchID)
				if err != nil {
					return err
				}
				if batch == nil {
					return shared.ErrBatchNotFound
				}
				movement, err := consumeBatchInTx(ctx, repos, batch, entry.Quantity, ledger.SourceKindProduction, req.SourceRef, "")
				if err != nil {
					return err
				}
				consumption.Movements = append(consumption.Movements, ToMovementResponse(movement))
				events = append(events, batch.GetDomainEvents()...)
				batch.ClearDomainEvents()
			}

			allocations = append(allocations, *allocation)
			consumptions = append(consumptions, consumption)
		}

		var txErr error
		productionCost, txErr = ledger.CalculateProductionCost(allocations, req.ProcessingFee, req.ActualOutputQty, plannedUnitCost)
		if txErr != nil {
			return txErr
		}

		outputBatch, txErr = createBatchInTx(ctx, repos, req.OutputBatchNumber, req.OutputProductID, req.WarehouseID,
			req.ActualOutputQty, productionCost.UnitCost, ledger.SourceKindProduction, req.SourceRef, time.Now())
		if txErr != nil {
			return txErr
		}
		events = append(events, outputBatch.GetDomainEvents()...)
		outputBatch.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markSource(ctx, req.SourceRef)
	events = append(events, ledger.NewProductionCompletedEvent(outputBatch, productionCost.MaterialCost, productionCost.ProcessingFee))
	s.publishDomainEvents(ctx, events...)

	response := &ProductionResponse{
		OutputBatch:   ToBatchResponse(outputBatch),
		MaterialCost:  productionCost.MaterialCost,
		ProcessingFee: productionCost.ProcessingFee,
		TotalCost:     productionCost.TotalCost,
		UnitCost:      productionCost.UnitCost,
		Materials:     consumptions,
	}
	if productionCost.HasPlannedUnitCost {
		variance := productionCost.CostVariance
		planned := productionCost.PlannedUnitCost
		response.CostVariance = &variance
		response.PlannedUnitCost = &planned
	}
	return response, nil
}

// GetMovementsByBatch returns a batch's ledger entries in chronological order
func (s *LedgerService) GetMovementsByBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByBatch(ctx, batchID, filter)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// GetMovementsByProduct returns a product's ledger entries in chronological order
func (s *LedgerService) GetMovementsByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// GetMovementsBySource returns all ledger entries recorded for a source document
func (s *LedgerService) GetMovementsBySource(ctx context.Context, sourceKind, sourceRef string) ([]MovementResponse, error) {
	kind := ledger.SourceKind(sourceKind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_KIND", "Invalid source kind")
	}
	movements, err := s.movementRepo.FindBySource(ctx, kind, sourceRef)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}
