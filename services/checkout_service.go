package services

import (
	"context"
	"fmt"
	"time"

	"pos-service/models"
	"pos-service/repository"
	"pos-service/sender"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentGateway initiates a mobile money charge. The call is
// fire-and-forget: the outcome arrives later as a PaymentResultEvent.
type PaymentGateway interface {
	InitiateCharge(ctx context.Context, transactionID uuid.UUID, amount int64, phoneNumber string) error
}

// ReceiptPublisher emits receipt-print requests for settled transactions.
type ReceiptPublisher interface {
	SendReceiptEvent(evt models.ReceiptEvent) error
}

// CheckoutService drives a submitted cart through the settlement state
// machine: Processing, then Completed (cash immediately, mobile money on a
// gateway success event) or Failed. Duplicate gateway events are absorbed
// by the transaction store's idempotent transitions, so finalize side
// effects run exactly once per transaction.
type CheckoutService struct {
	carts    repository.CartStore
	txRepo   repository.TransactionRepository
	gateway  PaymentGateway
	notifier sender.Notifier
	receipts ReceiptPublisher
	sms      sender.SMSSender // optional, nil disables receipt SMS
	logger   *zap.Logger
}

func NewCheckoutService(
	carts repository.CartStore,
	txRepo repository.TransactionRepository,
	gateway PaymentGateway,
	notifier sender.Notifier,
	receipts ReceiptPublisher,
	sms sender.SMSSender,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		txRepo:   txRepo,
		gateway:  gateway,
		notifier: notifier,
		receipts: receipts,
		sms:      sms,
		logger:   logger,
	}
}

// SubmitCheckout snapshots the terminal's cart into a durable transaction
// and starts settlement. Cash settles in the same call. Mobile money leaves
// the transaction Processing and the cart intact until the gateway reports
// back; the call returns without blocking on confirmation.
func (s *CheckoutService) SubmitCheckout(ctx context.Context, terminalID string) (*models.CheckoutTransaction, error) {
	cart, err := s.carts.GetCart(ctx, terminalID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if cart.SelectedStaffID == "" {
		return nil, ErrStaffRequired
	}
	if cart.PaymentMethod == models.PaymentMethodMobileMoney && cart.Customer.Phone == "" {
		return nil, ErrCustomerPhoneRequired
	}

	tx := snapshotCart(cart)
	if err := s.txRepo.Create(ctx, tx); err != nil {
		// The cart and any partially persisted state are left as-is for
		// inspection; the reconciler sweeps dangling records.
		return nil, fmt.Errorf("persist checkout transaction: %w", err)
	}

	s.logger.Info("Checkout submitted",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("reference", tx.Reference),
		zap.String("terminal_id", terminalID),
		zap.String("payment_method", string(tx.PaymentMethod)),
		zap.Int64("total_amount", tx.TotalAmount),
	)

	switch tx.PaymentMethod {
	case models.PaymentMethodCash:
		if err := s.finalizeCompleted(ctx, tx.ID, nil); err != nil {
			return tx, err
		}
		return s.reload(ctx, tx)

	case models.PaymentMethodMobileMoney:
		if err := s.gateway.InitiateCharge(ctx, tx.ID, tx.TotalAmount, cart.Customer.Phone); err != nil {
			// Synchronous gateway rejection: fail immediately, keep the cart
			// so the operator can retry.
			if failErr := s.failTransaction(ctx, tx.ID, fmt.Sprintf("gateway rejected charge: %v", err)); failErr != nil {
				s.logger.Error("Failed to mark rejected transaction",
					zap.String("transaction_id", tx.ID.String()), zap.Error(failErr))
			}
			return tx, fmt.Errorf("initiate mobile money charge: %w", err)
		}
		return s.reload(ctx, tx)

	default:
		return nil, fmt.Errorf("unsupported payment method %q", tx.PaymentMethod)
	}
}

// HandlePaymentSucceeded processes an inbound gateway success event.
// Replays for an already settled transaction are silently absorbed.
func (s *CheckoutService) HandlePaymentSucceeded(ctx context.Context, transactionID uuid.UUID, externalRef string) error {
	var ref *string
	if externalRef != "" {
		ref = &externalRef
	}
	return s.finalizeCompleted(ctx, transactionID, ref)
}

// HandlePaymentFailed processes an inbound gateway failure event. The cart
// is left intact so the operator can retry; exactly one failure
// notification carries the gateway's error detail.
func (s *CheckoutService) HandlePaymentFailed(ctx context.Context, transactionID uuid.UUID, errorDetail string) error {
	return s.failTransaction(ctx, transactionID, errorDetail)
}

// finalizeCompleted marks the transaction Completed and, when the status
// actually changed, runs the settle side effects: one success notification,
// cart reset, receipt-print event and an optional SMS receipt.
func (s *CheckoutService) finalizeCompleted(ctx context.Context, transactionID uuid.UUID, externalRef *string) error {
	changed, tx, err := s.txRepo.MarkCompleted(ctx, transactionID, externalRef)
	if err != nil {
		if err == repository.ErrTransactionNotFound {
			s.logger.Warn("Success event for unknown transaction",
				zap.String("transaction_id", transactionID.String()))
			return nil
		}
		return fmt.Errorf("mark transaction completed: %w", err)
	}
	if !changed {
		s.logger.Info("Skipping duplicate success event",
			zap.String("transaction_id", transactionID.String()),
			zap.String("status", tx.PaymentStatus.String()))
		return nil
	}

	s.notifier.Notify(ctx, sender.LevelSuccess, "Payment successful",
		fmt.Sprintf("Transaction %s settled for %d", tx.Reference, tx.TotalAmount))

	if err := s.carts.DeleteCart(ctx, tx.TerminalID); err != nil {
		s.logger.Error("Failed to reset cart after settlement",
			zap.String("terminal_id", tx.TerminalID), zap.Error(err))
	}

	if err := s.receipts.SendReceiptEvent(models.ReceiptEvent{
		Event:         "receipt.print",
		TransactionID: tx.ID.String(),
		Reference:     tx.Reference,
		TerminalID:    tx.TerminalID,
		TotalAmount:   tx.TotalAmount,
		Timestamp:     time.Now(),
	}); err != nil {
		s.logger.Error("Failed to publish receipt event",
			zap.String("transaction_id", tx.ID.String()), zap.Error(err))
	}

	s.sendReceiptSMS(ctx, tx)

	s.logger.Info("Transaction settled",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("reference", tx.Reference))
	return nil
}

func (s *CheckoutService) failTransaction(ctx context.Context, transactionID uuid.UUID, errorDetail string) error {
	changed, tx, err := s.txRepo.MarkFailed(ctx, transactionID, errorDetail)
	if err != nil {
		if err == repository.ErrTransactionNotFound {
			s.logger.Warn("Failure event for unknown transaction",
				zap.String("transaction_id", transactionID.String()))
			return nil
		}
		return fmt.Errorf("mark transaction failed: %w", err)
	}
	if !changed {
		s.logger.Info("Skipping duplicate failure event",
			zap.String("transaction_id", transactionID.String()),
			zap.String("status", tx.PaymentStatus.String()))
		return nil
	}

	s.notifier.Notify(ctx, sender.LevelError, "Payment failed",
		fmt.Sprintf("Transaction %s failed: %s", tx.Reference, errorDetail))

	s.logger.Warn("Transaction failed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("reference", tx.Reference),
		zap.String("detail", errorDetail))
	return nil
}

func (s *CheckoutService) sendReceiptSMS(ctx context.Context, tx *models.CheckoutTransaction) {
	if s.sms == nil || tx.CustomerPhone == nil || *tx.CustomerPhone == "" {
		return
	}
	msg := fmt.Sprintf("Thank you for your visit. Receipt %s, total %d. See you again!", tx.Reference, tx.TotalAmount)
	if _, err := s.sms.SendSMS(ctx, *tx.CustomerPhone, msg); err != nil {
		s.logger.Warn("Failed to send receipt SMS",
			zap.String("transaction_id", tx.ID.String()), zap.Error(err))
	}
}

func (s *CheckoutService) reload(ctx context.Context, tx *models.CheckoutTransaction) (*models.CheckoutTransaction, error) {
	fresh, err := s.txRepo.FindByID(ctx, tx.ID)
	if err != nil {
		// Settlement already happened; return the submitted snapshot.
		s.logger.Warn("Failed to reload transaction",
			zap.String("transaction_id", tx.ID.String()), zap.Error(err))
		return tx, nil
	}
	return fresh, nil
}

// snapshotCart builds the immutable transaction record from the cart.
func snapshotCart(cart *models.Cart) *models.CheckoutTransaction {
	txID := uuid.New()

	items := make([]models.TransactionLineItem, 0, len(cart.Lines))
	for i := range cart.Lines {
		line := cart.Lines[i]
		item := models.TransactionLineItem{
			ID:              uuid.New(),
			TransactionID:   txID,
			Kind:            line.Kind,
			ItemID:          line.ItemID,
			Name:            line.Name,
			UnitPrice:       line.UnitPrice,
			Quantity:        line.Quantity,
			DurationMinutes: line.DurationMinutes,
		}
		staffID := line.AssignedStaffID
		if staffID == "" && line.Kind == models.ItemKindService {
			staffID = cart.SelectedStaffID
		}
		if staffID != "" {
			item.AssignedStaffID = &staffID
		}
		items = append(items, item)
	}

	tx := &models.CheckoutTransaction{
		ID:             txID,
		Reference:      newReference(),
		BranchID:       cart.BranchID,
		TerminalID:     cart.TerminalID,
		StaffID:        cart.SelectedStaffID,
		Kind:           deriveTransactionKind(cart.Lines),
		Subtotal:       cart.Subtotal,
		DiscountAmount: cart.DiscountAmount,
		TaxAmount:      cart.TaxAmount,
		TipAmount:      cart.TipAmount,
		TotalAmount:    cart.TotalAmount,
		PaymentMethod:  cart.PaymentMethod,
		PaymentStatus:  models.TransactionStatusProcessing,
		LineItems:      items,
	}
	if cart.Customer.CustomerID != "" {
		id := cart.Customer.CustomerID
		tx.CustomerID = &id
	}
	if cart.Customer.Phone != "" {
		phone := cart.Customer.Phone
		tx.CustomerPhone = &phone
	}
	return tx
}

// deriveTransactionKind classifies a transaction by the line kinds present.
// An empty cart falls back to the service kind so classification never
// crashes; submission preconditions keep that case out of real traffic.
func deriveTransactionKind(lines []models.CartLine) models.TransactionKind {
	hasService := false
	hasProduct := false
	for i := range lines {
		switch lines[i].Kind {
		case models.ItemKindService:
			hasService = true
		case models.ItemKindProduct:
			hasProduct = true
		}
	}

	switch {
	case hasService && hasProduct:
		return models.TransactionKindMixed
	case hasProduct:
		return models.TransactionKindProduct
	default:
		return models.TransactionKindService
	}
}

// newReference generates a human-readable transaction reference.
func newReference() string {
	return "POS-" + time.Now().Format("20060102-150405") + "-" + uuid.New().String()[:8]
}
