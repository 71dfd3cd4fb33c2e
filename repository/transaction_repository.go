package repository

import (
	"context"
	"errors"
	"time"

	"pos-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTransactionNotFound is returned when no transaction matches the id.
var ErrTransactionNotFound = errors.New("checkout transaction not found")

// TransactionRepository is the durable store for checkout transactions.
// MarkCompleted and MarkFailed are idempotent: the boolean result reports
// whether the status actually changed, so callers can suppress duplicate
// side effects for replayed gateway events.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.CheckoutTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutTransaction, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, externalRef *string) (bool, *models.CheckoutTransaction, error)
	MarkFailed(ctx context.Context, id uuid.UUID, detail string) (bool, *models.CheckoutTransaction, error)
	FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.CheckoutTransaction, error)
}

type gormTransactionRepo struct {
	db *gorm.DB
}

func NewGormTransactionRepo(db *gorm.DB) TransactionRepository {
	return &gormTransactionRepo{db: db}
}

func (r *gormTransactionRepo) Create(ctx context.Context, tx *models.CheckoutTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *gormTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutTransaction, error) {
	var tx models.CheckoutTransaction
	err := r.db.WithContext(ctx).Preload("LineItems").First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormTransactionRepo) MarkCompleted(ctx context.Context, id uuid.UUID, externalRef *string) (bool, *models.CheckoutTransaction, error) {
	return r.transition(ctx, id, func(tx *models.CheckoutTransaction) map[string]interface{} {
		now := time.Now()
		updates := map[string]interface{}{
			"payment_status": models.TransactionStatusCompleted,
			"completed_at":   &now,
		}
		if externalRef != nil {
			updates["external_payment_ref"] = externalRef
		}
		return updates
	})
}

func (r *gormTransactionRepo) MarkFailed(ctx context.Context, id uuid.UUID, detail string) (bool, *models.CheckoutTransaction, error) {
	return r.transition(ctx, id, func(tx *models.CheckoutTransaction) map[string]interface{} {
		now := time.Now()
		return map[string]interface{}{
			"payment_status": models.TransactionStatusFailed,
			"failure_detail": &detail,
			"failed_at":      &now,
		}
	})
}

// transition applies a status update under a row lock, skipping transactions
// already in a terminal status. The lock is the synchronization point for
// concurrent duplicate delivery of the same gateway event.
func (r *gormTransactionRepo) transition(ctx context.Context, id uuid.UUID, buildUpdates func(*models.CheckoutTransaction) map[string]interface{}) (bool, *models.CheckoutTransaction, error) {
	var record models.CheckoutTransaction
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}

		if record.PaymentStatus.IsTerminal() {
			return nil
		}

		updates := buildUpdates(&record)
		if err := dbtx.Model(&record).Updates(updates).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return changed, &record, nil
}

func (r *gormTransactionRepo) FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.CheckoutTransaction, error) {
	var stale []models.CheckoutTransaction
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND created_at < ?", models.TransactionStatusProcessing, olderThan).
		Order("created_at asc").
		Limit(limit).
		Find(&stale).Error
	if err != nil {
		return nil, err
	}
	return stale, nil
}
