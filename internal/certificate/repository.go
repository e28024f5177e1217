package certificate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persisted record store. Each record is written once at
// ingestion and its status updated at most once per transition; the store
// serializes writes per record via the guarded status update.
type Repository interface {
	Insert(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByStatus(ctx context.Context, organization string, status WorkflowStatus) ([]Record, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to WorkflowStatus) error
	SetCertificateID(ctx context.Context, id uuid.UUID, certificateID string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed record store.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Insert(ctx context.Context, record *Record) error {
	if record.Status == "" {
		record.Status = StatusPendingReview
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	var record Record
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormRepository) ListByStatus(ctx context.Context, organization string, status WorkflowStatus) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("organization = ? AND status = ?", organization, status).
		Order("created_at").
		Find(&records).Error
	return records, err
}

// UpdateStatus performs a compare-and-set on the status column so a record
// that moved on since it was read is never transitioned twice.
func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to WorkflowStatus) error {
	res := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return &StateError{Current: current.Status, Required: from}
	}
	return nil
}

func (r *gormRepository) SetCertificateID(ctx context.Context, id uuid.UUID, certificateID string) error {
	return r.db.WithContext(ctx).
		Model(&Record{}).
		Where("id = ?", id).
		Update("certificate_id", certificateID).Error
}
