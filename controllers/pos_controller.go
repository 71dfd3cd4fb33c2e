package controllers

import (
	"context"
	"errors"
	"net/http"

	"pos-service/models"
	"pos-service/repository"
	"pos-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type POSController struct {
	Cart         *services.CartService
	Checkout     *services.CheckoutService
	Transactions repository.TransactionRepository
	Catalog      services.CatalogService
	Staff        services.StaffDirectory
	Logger       *zap.Logger
}

func NewPOSController(cart *services.CartService, checkout *services.CheckoutService, transactions repository.TransactionRepository, catalog services.CatalogService, staff services.StaffDirectory, logger *zap.Logger) *POSController {
	return &POSController{
		Cart:         cart,
		Checkout:     checkout,
		Transactions: transactions,
		Catalog:      catalog,
		Staff:        staff,
		Logger:       logger,
	}
}

func terminalID(c *gin.Context) string { return c.GetHeader("X-Terminal-ID") }
func branchID(c *gin.Context) string   { return c.GetHeader("X-Branch-ID") }

func requireTerminal(c *gin.Context) (string, string, bool) {
	term := terminalID(c)
	if term == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-Terminal-ID header"})
		return "", "", false
	}
	return term, branchID(c), true
}

// GetCart returns the current cart for a terminal
func (pc *POSController) GetCart(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	cart, err := pc.Cart.GetCart(c.Request.Context(), term, branch)
	if err != nil {
		pc.Logger.Error("Failed to get cart", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds a catalog item to the cart
func (pc *POSController) AddItem(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	var req struct {
		Kind   models.ItemKind `json:"kind" binding:"required,oneof=service product"`
		ItemID string          `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := pc.Cart.AddItem(c.Request.Context(), term, branch, req.Kind, req.ItemID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		pc.Logger.Error("Failed to add item", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem deletes a line from the cart
func (pc *POSController) RemoveItem(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	cart, err := pc.Cart.RemoveItem(c.Request.Context(), term, branch, c.Param("line_id"))
	if err != nil {
		pc.Logger.Error("Failed to remove item", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove item"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SetQuantity updates a line's quantity; zero removes the line
func (pc *POSController) SetQuantity(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := pc.Cart.SetQuantity(c.Request.Context(), term, branch, c.Param("line_id"), req.Quantity)
	if err != nil {
		pc.Logger.Error("Failed to set quantity", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set quantity"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AssignStaff sets the staff member on a service line
func (pc *POSController) AssignStaff(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	var req struct {
		StaffID string `json:"staff_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := pc.Cart.AssignStaffToLine(c.Request.Context(), term, branch, c.Param("line_id"), req.StaffID)
	if err != nil {
		pc.Logger.Error("Failed to assign staff", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign staff"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SelectStaff sets the default assignee for new service lines
func (pc *POSController) SelectStaff(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	var req struct {
		StaffID string `json:"staff_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := pc.Cart.SelectStaff(c.Request.Context(), term, branch, req.StaffID)
	if err != nil {
		pc.Logger.Error("Failed to select staff", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to select staff"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SetCustomer attaches customer info to the cart
func (pc *POSController) SetCustomer(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	var customer models.CustomerInfo
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := pc.Cart.SetCustomer(c.Request.Context(), term, branch, customer)
	if err != nil {
		pc.Logger.Error("Failed to set customer", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set customer"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SetPaymentMethod records the intended settlement method
func (pc *POSController) SetPaymentMethod(c *gin.Context) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	var req struct {
		Method models.PaymentMethod `json:"method" binding:"required,oneof=cash mobile_money"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := pc.Cart.SetPaymentMethod(c.Request.Context(), term, branch, req.Method)
	if err != nil {
		pc.Logger.Error("Failed to set payment method", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set payment method"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SetDiscount sets the flat discount amount
func (pc *POSController) SetDiscount(c *gin.Context) {
	pc.setAdjustment(c, "discount", pc.Cart.SetDiscount)
}

// SetTip sets the tip amount
func (pc *POSController) SetTip(c *gin.Context) {
	pc.setAdjustment(c, "tip", pc.Cart.SetTip)
}

func (pc *POSController) setAdjustment(c *gin.Context, name string, apply func(ctx context.Context, terminalID, branchID string, amount int64) (*models.Cart, error)) {
	term, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := apply(c.Request.Context(), term, branch, req.Amount)
	if err != nil {
		pc.Logger.Error("Failed to set "+name, zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set " + name})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart resets the terminal's cart
func (pc *POSController) ClearCart(c *gin.Context) {
	term, _, ok := requireTerminal(c)
	if !ok {
		return
	}

	if err := pc.Cart.Reset(c.Request.Context(), term); err != nil {
		pc.Logger.Error("Failed to clear cart", zap.String("terminal_id", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// SubmitCheckout snapshots the cart and starts settlement
func (pc *POSController) SubmitCheckout(c *gin.Context) {
	term, _, ok := requireTerminal(c)
	if !ok {
		return
	}

	tx, err := pc.Checkout.SubmitCheckout(c.Request.Context(), term)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, tx)
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, services.ErrStaffRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "select a staff member before checkout"})
	case errors.Is(err, services.ErrCustomerPhoneRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer phone number required for mobile money"})
	default:
		pc.Logger.Error("Checkout failed", zap.String("terminal_id", term), zap.Error(err))
		// A transaction may already be persisted; include it for inspection.
		if tx != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "checkout failed", "transaction": tx})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
	}
}

// GetTransaction fetches a transaction by id for the receipt screen
func (pc *POSController) GetTransaction(c *gin.Context) {
	if _, _, ok := requireTerminal(c); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	tx, err := pc.Transactions.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		pc.Logger.Error("Failed to fetch transaction", zap.String("transaction_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch transaction"})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// ListServices returns active services for the terminal's branch
func (pc *POSController) ListServices(c *gin.Context) {
	_, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	list, err := pc.Catalog.ListActiveServices(c.Request.Context(), branch, c.Query("category"), c.Query("q"))
	if err != nil {
		pc.Logger.Error("Failed to list services", zap.String("branch_id", branch), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListProducts returns available products for the terminal's branch
func (pc *POSController) ListProducts(c *gin.Context) {
	_, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	products, err := pc.Catalog.ListAvailableProducts(c.Request.Context(), branch, c.Query("category"), c.Query("q"))
	if err != nil {
		pc.Logger.Error("Failed to list products", zap.String("branch_id", branch), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListStaff returns active staff for the terminal's branch
func (pc *POSController) ListStaff(c *gin.Context) {
	_, branch, ok := requireTerminal(c)
	if !ok {
		return
	}

	staff, err := pc.Staff.ListActiveStaff(c.Request.Context(), branch)
	if err != nil {
		pc.Logger.Error("Failed to list staff", zap.String("branch_id", branch), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "staff directory unavailable"})
		return
	}
	c.JSON(http.StatusOK, staff)
}
