package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"pos-service/models"
	"pos-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func transactionRows(id uuid.UUID, status models.TransactionStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "reference", "branch_id", "terminal_id", "staff_id", "kind",
		"subtotal", "discount_amount", "tax_amount", "tip_amount", "total_amount",
		"payment_method", "payment_status", "created_at", "updated_at",
	}).AddRow(
		id, "POS-20260828-101500-ab12cd34", "branch-1", "term-1", "staff-1", models.TransactionKindService,
		5000, 0, 800, 0, 5800,
		models.PaymentMethodCash, status, now, now,
	)
}

func TestCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	tx := &models.CheckoutTransaction{
		ID:            uuid.New(),
		Reference:     "POS-20260828-101500-ab12cd34",
		BranchID:      "branch-1",
		TerminalID:    "term-1",
		StaffID:       "staff-1",
		Kind:          models.TransactionKindService,
		Subtotal:      5000,
		TaxAmount:     800,
		TotalAmount:   5800,
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.TransactionStatusProcessing,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "checkout_transactions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(tx.ID))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), tx)
	assert.NoError(t, err)
}

func TestFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_transactions"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	tx, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
	assert.Nil(t, tx)
}

func TestFindByID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_transactions"`)).
		WillReturnRows(transactionRows(id, models.TransactionStatusCompleted))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "transaction_line_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_id", "kind", "item_id", "name", "unit_price", "quantity"}).
			AddRow(uuid.New(), id, models.ItemKindService, "svc-cut", "Haircut", 5000, 1))

	tx, err := repo.FindByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, id, tx.ID)
	assert.Len(t, tx.LineItems, 1)
}

func TestMarkCompleted_TransitionsProcessing(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_transactions"`)).
		WillReturnRows(transactionRows(id, models.TransactionStatusProcessing))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "checkout_transactions"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ref := "MPESA-REF-1"
	changed, tx, err := repo.MarkCompleted(context.Background(), id, &ref)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, id, tx.ID)
}

func TestMarkCompleted_AlreadyTerminalIsNoop(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_transactions"`)).
		WillReturnRows(transactionRows(id, models.TransactionStatusCompleted))
	mock.ExpectCommit()

	changed, tx, err := repo.MarkCompleted(context.Background(), id, nil)
	assert.NoError(t, err)
	assert.False(t, changed, "terminal status admits no transition")
	assert.Equal(t, models.TransactionStatusCompleted, tx.PaymentStatus)
}

func TestMarkFailed_UnknownTransaction(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_transactions"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectRollback()

	changed, tx, err := repo.MarkFailed(context.Background(), uuid.New(), "timeout")
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
	assert.False(t, changed)
	assert.Nil(t, tx)
}

func TestMarkFailed_TransitionsProcessing(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_transactions"`)).
		WillReturnRows(transactionRows(id, models.TransactionStatusProcessing))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "checkout_transactions"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, _, err := repo.MarkFailed(context.Background(), id, "insufficient funds")
	assert.NoError(t, err)
	assert.True(t, changed)
}

func TestFindStaleProcessing(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormTransactionRepo(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_transactions"`)).
		WillReturnRows(transactionRows(id, models.TransactionStatusProcessing))

	stale, err := repo.FindStaleProcessing(context.Background(), time.Now().Add(-30*time.Minute), 100)
	assert.NoError(t, err)
	assert.Len(t, stale, 1)
	assert.Equal(t, id, stale[0].ID)
}
