package services

import (
	"context"
	"fmt"

	"pos-service/models"
	"pos-service/repository"

	"go.uber.org/zap"
)

// VATRatePercent is the fixed tax rate applied to the cart subtotal.
const VATRatePercent = 16

// CatalogService looks up sellable services and products.
type CatalogService interface {
	FindService(ctx context.Context, id string) (*models.ServiceInfo, error)
	FindProduct(ctx context.Context, id string) (*models.ProductInfo, error)
	ListActiveServices(ctx context.Context, branchID, category, search string) ([]models.ServiceInfo, error)
	ListAvailableProducts(ctx context.Context, branchID, category, search string) ([]models.ProductInfo, error)
}

// StaffDirectory lists active staff at a branch.
type StaffDirectory interface {
	ListActiveStaff(ctx context.Context, branchID string) ([]models.StaffInfo, error)
}

// CartService owns the cart aggregate for each terminal session and keeps
// its derived totals consistent. Mutations for one terminal are serialized
// by the POS front-end; no two operations race on the same cart.
type CartService struct {
	store   repository.CartStore
	catalog CatalogService
	logger  *zap.Logger
}

func NewCartService(store repository.CartStore, catalog CatalogService, logger *zap.Logger) *CartService {
	return &CartService{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// GetCart returns the terminal's cart, creating an empty one if none exists.
func (s *CartService) GetCart(ctx context.Context, terminalID, branchID string) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, terminalID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart = newCart(terminalID, branchID)
	}
	return cart, nil
}

// AddItem looks the item up in the catalog and merges it into the cart.
// Adding a product already in the cart increments its quantity; adding a
// service already in the cart is a no-op (services are not stacked).
func (s *CartService) AddItem(ctx context.Context, terminalID, branchID string, kind models.ItemKind, itemID string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, terminalID, branchID)
	if err != nil {
		return nil, err
	}

	lineID := models.CartLineID(kind, itemID)
	if idx := cart.FindLine(lineID); idx >= 0 {
		if kind == models.ItemKindService {
			return cart, nil
		}
		cart.Lines[idx].Quantity++
		return s.recomputeAndSave(ctx, cart)
	}

	line, err := s.buildLine(ctx, cart, kind, itemID)
	if err != nil {
		s.logger.Warn("Catalog lookup failed",
			zap.String("kind", string(kind)),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return nil, err
	}

	cart.Lines = append(cart.Lines, *line)
	return s.recomputeAndSave(ctx, cart)
}

func (s *CartService) buildLine(ctx context.Context, cart *models.Cart, kind models.ItemKind, itemID string) (*models.CartLine, error) {
	line := models.CartLine{
		LineID:   models.CartLineID(kind, itemID),
		Kind:     kind,
		ItemID:   itemID,
		Quantity: 1,
	}

	switch kind {
	case models.ItemKindService:
		svc, err := s.catalog.FindService(ctx, itemID)
		if err != nil {
			return nil, err
		}
		line.Name = svc.Name
		line.UnitPrice = svc.Price
		line.DurationMinutes = svc.DurationMinutes
		line.AssignedStaffID = cart.SelectedStaffID
	case models.ItemKindProduct:
		prod, err := s.catalog.FindProduct(ctx, itemID)
		if err != nil {
			return nil, err
		}
		line.Name = prod.Name
		line.UnitPrice = prod.SellingPrice
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}

	return &line, nil
}

// RemoveItem deletes a line. Removing an absent line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, terminalID, branchID, lineID string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, terminalID, branchID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(lineID)
	if idx < 0 {
		return cart, nil
	}

	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	return s.recomputeAndSave(ctx, cart)
}

// SetQuantity updates a line's quantity. Zero or negative removes the line;
// an absent line is a no-op.
func (s *CartService) SetQuantity(ctx context.Context, terminalID, branchID, lineID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, terminalID, branchID, lineID)
	}

	cart, err := s.GetCart(ctx, terminalID, branchID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(lineID)
	if idx < 0 {
		return cart, nil
	}

	// Services are never stacked.
	if cart.Lines[idx].Kind == models.ItemKindService {
		quantity = 1
	}
	cart.Lines[idx].Quantity = quantity
	return s.recomputeAndSave(ctx, cart)
}

// AssignStaffToLine sets the staff member for an existing line. Staff
// assignment does not affect price, so totals are left alone.
func (s *CartService) AssignStaffToLine(ctx context.Context, terminalID, branchID, lineID, staffID string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, terminalID, branchID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(lineID)
	if idx < 0 {
		return cart, nil
	}

	cart.Lines[idx].AssignedStaffID = staffID
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// SelectStaff sets the default assignee for new service lines.
func (s *CartService) SelectStaff(ctx context.Context, terminalID, branchID, staffID string) (*models.Cart, error) {
	return s.mutate(ctx, terminalID, branchID, false, func(cart *models.Cart) {
		cart.SelectedStaffID = staffID
	})
}

// SetCustomer attaches walk-in or registered customer info to the cart.
func (s *CartService) SetCustomer(ctx context.Context, terminalID, branchID string, customer models.CustomerInfo) (*models.Cart, error) {
	return s.mutate(ctx, terminalID, branchID, false, func(cart *models.Cart) {
		cart.Customer = customer
	})
}

// SetPaymentMethod records how the operator intends to settle.
func (s *CartService) SetPaymentMethod(ctx context.Context, terminalID, branchID string, method models.PaymentMethod) (*models.Cart, error) {
	return s.mutate(ctx, terminalID, branchID, false, func(cart *models.Cart) {
		cart.PaymentMethod = method
	})
}

// SetDiscount sets the flat discount amount. The amount is taken as given;
// sign validation is the caller's responsibility.
func (s *CartService) SetDiscount(ctx context.Context, terminalID, branchID string, amount int64) (*models.Cart, error) {
	return s.mutate(ctx, terminalID, branchID, true, func(cart *models.Cart) {
		cart.DiscountAmount = amount
	})
}

// SetTip sets the tip amount.
func (s *CartService) SetTip(ctx context.Context, terminalID, branchID string, amount int64) (*models.Cart, error) {
	return s.mutate(ctx, terminalID, branchID, true, func(cart *models.Cart) {
		cart.TipAmount = amount
	})
}

// Reset clears the terminal's cart back to its initial empty state.
func (s *CartService) Reset(ctx context.Context, terminalID string) error {
	return s.store.DeleteCart(ctx, terminalID)
}

func (s *CartService) mutate(ctx context.Context, terminalID, branchID string, recompute bool, fn func(*models.Cart)) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, terminalID, branchID)
	if err != nil {
		return nil, err
	}

	fn(cart)
	if recompute {
		return s.recomputeAndSave(ctx, cart)
	}
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) recomputeAndSave(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	RecomputeTotals(cart)
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// RecomputeTotals rebuilds the cart's derived monetary fields:
// subtotal = sum of unit price times quantity, tax = 16% of subtotal, and
// total = subtotal + tax + tip - discount. The total is deliberately not
// clamped at zero; an over-discounted cart surfaces as a negative total.
func RecomputeTotals(cart *models.Cart) {
	var subtotal int64
	for i := range cart.Lines {
		subtotal += cart.Lines[i].UnitPrice * int64(cart.Lines[i].Quantity)
	}

	cart.Subtotal = subtotal
	cart.TaxAmount = taxOn(subtotal)
	cart.TotalAmount = subtotal + cart.TaxAmount + cart.TipAmount - cart.DiscountAmount
}

// taxOn computes VAT in minor units, rounding half up.
func taxOn(subtotal int64) int64 {
	return (subtotal*VATRatePercent + 50) / 100
}

func newCart(terminalID, branchID string) *models.Cart {
	return &models.Cart{
		TerminalID:    terminalID,
		BranchID:      branchID,
		Lines:         []models.CartLine{},
		PaymentMethod: models.PaymentMethodCash,
	}
}
