package persistence

import (
	"context"

	"github.com/stockledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// Sequence is a named monotonic counter row
type Sequence struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Sequence) TableName() string {
	return "sequences"
}

// GormSequenceRepository implements SequenceRepository using GORM. Reservation
// is a single upsert statement, so two concurrent callers can never observe
// the same value.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next reserves and returns the next value of a named sequence
func (r *GormSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO sequences (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		 RETURNING value`,
		name,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Ensure GormSequenceRepository implements SequenceRepository
var _ ledger.SequenceRepository = (*GormSequenceRepository)(nil)
