package ledger

import (
	"context"

	"github.com/stockledger/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and are committed or
// rolled back atomically. Every mutating ledger operation goes through this
// scope; no repository call mutates state outside of one.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() ledger.BatchRepository
	// MovementRepo returns the movement ledger repository scoped to the current transaction
	MovementRepo() ledger.MovementRepository
	// LevelRepo returns the inventory level repository scoped to the current transaction
	LevelRepo() ledger.LevelRepository
	// SequenceRepo returns the sequence repository scoped to the current transaction
	SequenceRepo() ledger.SequenceRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	batchRepo    ledger.BatchRepository
	movementRepo ledger.MovementRepository
	levelRepo    ledger.LevelRepository
	sequenceRepo ledger.SequenceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	batchRepo ledger.BatchRepository,
	movementRepo ledger.MovementRepository,
	levelRepo ledger.LevelRepository,
	sequenceRepo ledger.SequenceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		batchRepo:    batchRepo,
		movementRepo: movementRepo,
		levelRepo:    levelRepo,
		sequenceRepo: sequenceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() ledger.BatchRepository {
	return s.batchRepo
}

// MovementRepo returns the movement ledger repository.
func (s *NoOpTransactionScope) MovementRepo() ledger.MovementRepository {
	return s.movementRepo
}

// LevelRepo returns the inventory level repository.
func (s *NoOpTransactionScope) LevelRepo() ledger.LevelRepository {
	return s.levelRepo
}

// SequenceRepo returns the sequence repository.
func (s *NoOpTransactionScope) SequenceRepo() ledger.SequenceRepository {
	return s.sequenceRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
