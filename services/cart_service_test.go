package services_test

import (
	"context"
	"testing"

	"pos-service/models"
	"pos-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mock cart store ---

type memCartStore struct {
	carts map[string]*models.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]*models.Cart)}
}

func (m *memCartStore) GetCart(_ context.Context, terminalID string) (*models.Cart, error) {
	cart, ok := m.carts[terminalID]
	if !ok {
		return nil, nil
	}
	copied := *cart
	copied.Lines = append([]models.CartLine(nil), cart.Lines...)
	return &copied, nil
}

func (m *memCartStore) SaveCart(_ context.Context, cart *models.Cart) error {
	copied := *cart
	copied.Lines = append([]models.CartLine(nil), cart.Lines...)
	m.carts[cart.TerminalID] = &copied
	return nil
}

func (m *memCartStore) DeleteCart(_ context.Context, terminalID string) error {
	delete(m.carts, terminalID)
	return nil
}

// --- Mock catalog ---

type mockCatalog struct {
	services map[string]models.ServiceInfo
	products map[string]models.ProductInfo
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		services: make(map[string]models.ServiceInfo),
		products: make(map[string]models.ProductInfo),
	}
}

func (m *mockCatalog) FindService(_ context.Context, id string) (*models.ServiceInfo, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, services.ErrItemNotFound
	}
	return &svc, nil
}

func (m *mockCatalog) FindProduct(_ context.Context, id string) (*models.ProductInfo, error) {
	prod, ok := m.products[id]
	if !ok {
		return nil, services.ErrItemNotFound
	}
	return &prod, nil
}

func (m *mockCatalog) ListActiveServices(_ context.Context, _, _, _ string) ([]models.ServiceInfo, error) {
	var out []models.ServiceInfo
	for _, svc := range m.services {
		out = append(out, svc)
	}
	return out, nil
}

func (m *mockCatalog) ListAvailableProducts(_ context.Context, _, _, _ string) ([]models.ProductInfo, error) {
	var out []models.ProductInfo
	for _, prod := range m.products {
		out = append(out, prod)
	}
	return out, nil
}

// --- Helpers ---

const (
	testTerminal = "term-1"
	testBranch   = "branch-1"
)

func newTestCartService(t *testing.T) (*services.CartService, *memCartStore, *mockCatalog) {
	t.Helper()
	store := newMemCartStore()
	catalog := newMockCatalog()
	catalog.services["svc-cut"] = models.ServiceInfo{ID: "svc-cut", Name: "Haircut", Price: 1500, DurationMinutes: 45, Active: true}
	catalog.services["svc-spa"] = models.ServiceInfo{ID: "svc-spa", Name: "Spa Session", Price: 4000, DurationMinutes: 90, Active: true}
	catalog.products["prod-oil"] = models.ProductInfo{ID: "prod-oil", Name: "Argan Oil", SellingPrice: 800, Available: true}
	catalog.products["prod-gel"] = models.ProductInfo{ID: "prod-gel", Name: "Styling Gel", SellingPrice: 500, Available: true}
	return services.NewCartService(store, catalog, zap.NewNop()), store, catalog
}

func assertInvariant(t *testing.T, cart *models.Cart) {
	t.Helper()
	var subtotal int64
	for _, line := range cart.Lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}
	assert.Equal(t, subtotal, cart.Subtotal, "subtotal must equal sum of line totals")
	assert.Equal(t, (subtotal*16+50)/100, cart.TaxAmount, "tax must be 16%% of subtotal")
	assert.Equal(t, cart.Subtotal+cart.TaxAmount+cart.TipAmount-cart.DiscountAmount, cart.TotalAmount)
}

// --- Tests ---

func TestAddItem_ProductTwiceIncrementsQuantity(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-oil")
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-oil")
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, int64(1600), cart.Subtotal)
	assertInvariant(t, cart)
}

func TestAddItem_ServiceTwiceIsNoOp(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindService, "svc-cut")
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindService, "svc-cut")
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, int64(1500), cart.Subtotal)
}

func TestAddItem_UnknownItemSurfacesErrorAndLeavesCartUnchanged(t *testing.T) {
	svc, store, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-missing")
	assert.ErrorIs(t, err, services.ErrItemNotFound)

	saved, _ := store.GetCart(ctx, testTerminal)
	assert.Nil(t, saved, "failed add must not persist a cart")
}

func TestAddItem_ServiceInheritsSelectedStaff(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.SelectStaff(ctx, testTerminal, testBranch, "staff-7")
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindService, "svc-spa")
	require.NoError(t, err)

	assert.Equal(t, "staff-7", cart.Lines[0].AssignedStaffID)
	assert.Equal(t, 90, cart.Lines[0].DurationMinutes)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-oil")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-gel")
	require.NoError(t, err)

	lineID := models.CartLineID(models.ItemKindProduct, "prod-oil")
	cart, err := svc.SetQuantity(ctx, testTerminal, testBranch, lineID, 0)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "prod-gel", cart.Lines[0].ItemID)
	assert.Equal(t, int64(500), cart.Subtotal)
	assertInvariant(t, cart)
}

func TestSetQuantity_AbsentLineIsNoOp(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-oil")
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, testTerminal, testBranch, "product:nope", 5)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
}

func TestSetQuantity_ServiceStaysAtOne(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindService, "svc-cut")
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, testTerminal, testBranch, models.CartLineID(models.ItemKindService, "svc-cut"), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
}

func TestRemoveItem_AbsentLineIsNoError(t *testing.T) {
	svc, _, _ := newTestCartService(t)

	cart, err := svc.RemoveItem(context.Background(), testTerminal, testBranch, "product:nope")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestTotals_DiscountAndTipDoNotAffectTax(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindService, "svc-spa")
	require.NoError(t, err)
	_, err = svc.SetTip(ctx, testTerminal, testBranch, 300)
	require.NoError(t, err)
	cart, err := svc.SetDiscount(ctx, testTerminal, testBranch, 1000)
	require.NoError(t, err)

	assert.Equal(t, int64(4000), cart.Subtotal)
	assert.Equal(t, int64(640), cart.TaxAmount) // 16% of 4000, unaffected by tip/discount
	assert.Equal(t, int64(4000+640+300-1000), cart.TotalAmount)
	assertInvariant(t, cart)
}

func TestTotals_OverDiscountGoesNegative(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-gel")
	require.NoError(t, err)
	cart, err := svc.SetDiscount(ctx, testTerminal, testBranch, 10000)
	require.NoError(t, err)

	assert.Less(t, cart.TotalAmount, int64(0), "total is not clamped at zero")
	assertInvariant(t, cart)
}

func TestAssignStaffToLine_DoesNotChangeTotals(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	before, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindService, "svc-cut")
	require.NoError(t, err)

	cart, err := svc.AssignStaffToLine(ctx, testTerminal, testBranch, before.Lines[0].LineID, "staff-2")
	require.NoError(t, err)

	assert.Equal(t, "staff-2", cart.Lines[0].AssignedStaffID)
	assert.Equal(t, before.Subtotal, cart.Subtotal)
	assert.Equal(t, before.TotalAmount, cart.TotalAmount)
}

func TestSubtotalInvariant_AcrossMutationSequence(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	steps := []func() (*models.Cart, error){
		func() (*models.Cart, error) {
			return svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindService, "svc-cut")
		},
		func() (*models.Cart, error) {
			return svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-oil")
		},
		func() (*models.Cart, error) {
			return svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-oil")
		},
		func() (*models.Cart, error) {
			return svc.SetQuantity(ctx, testTerminal, testBranch, models.CartLineID(models.ItemKindProduct, "prod-oil"), 5)
		},
		func() (*models.Cart, error) {
			return svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-gel")
		},
		func() (*models.Cart, error) {
			return svc.RemoveItem(ctx, testTerminal, testBranch, models.CartLineID(models.ItemKindService, "svc-cut"))
		},
		func() (*models.Cart, error) {
			return svc.SetQuantity(ctx, testTerminal, testBranch, models.CartLineID(models.ItemKindProduct, "prod-gel"), 0)
		},
	}

	for i, step := range steps {
		cart, err := step()
		require.NoError(t, err, "step %d", i)
		assertInvariant(t, cart)
	}
}

func TestReset_ClearsCart(t *testing.T) {
	svc, store, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, testTerminal, testBranch, models.ItemKindProduct, "prod-oil")
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx, testTerminal))

	saved, _ := store.GetCart(ctx, testTerminal)
	assert.Nil(t, saved)

	cart, err := svc.GetCart(ctx, testTerminal, testBranch)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, int64(0), cart.TotalAmount)
}
