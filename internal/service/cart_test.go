package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/model"
)

func newCartFixture(products ...*model.Product) (CartService, *fakeCartRepo, *fakeProductRepo) {
	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(products...)
	svc := NewCartService(fakeTxManager{}, cartRepo, productRepo)
	return svc, cartRepo, productRepo
}

func TestCartAddItemsCreatesCart(t *testing.T) {
	svc, cartRepo, _ := newCartFixture(
		&model.Product{ID: "p1", Name: "Widget", Price: decimal.NewFromFloat(10.00), StockQuantity: 50},
		&model.Product{ID: "p2", Name: "Gadget", Price: decimal.NewFromFloat(2.50), StockQuantity: 50},
	)

	cart, err := svc.AddItems(context.Background(), "user-1", []dto.CartItemRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 4},
	})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromFloat(30.00)), "got %s", cart.TotalPrice)

	stored, err := cartRepo.FindByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, stored.ID)
	assert.Len(t, stored.Items, 2)
}

func TestCartAddItemsMergesQuantities(t *testing.T) {
	svc, _, _ := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(5), StockQuantity: 50},
	)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	cart, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 3}})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(25)))
}

func TestCartAddItemsQuantityBounds(t *testing.T) {
	svc, _, _ := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(1), StockQuantity: 500},
	)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 0}})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 101}})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	// Merging across requests must not breach the per-line cap either.
	_, err = svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 60}})
	require.NoError(t, err)
	_, err = svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 60}})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestCartAddItemsInsufficientStock(t *testing.T) {
	svc, cartRepo, _ := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(1), StockQuantity: 3},
	)

	_, err := svc.AddItems(context.Background(), "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 4}})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	// Nothing was persisted for the failed request.
	_, err = cartRepo.FindByUserID(context.Background(), "user-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCartAddItemsUnknownProduct(t *testing.T) {
	svc, _, _ := newCartFixture()

	_, err := svc.AddItems(context.Background(), "user-1", []dto.CartItemRequest{{ProductID: "nope", Quantity: 1}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCartRepricesAllLinesOnMutation(t *testing.T) {
	svc, _, productRepo := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(10), StockQuantity: 50},
		&model.Product{ID: "p2", Price: decimal.NewFromInt(20), StockQuantity: 50},
	)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)

	// Catalog price for p1 changes between mutations; the next mutation
	// touches only p2 but must reprice p1 as well.
	productRepo.setPrice("p1", decimal.NewFromInt(15))

	cart, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p2", Quantity: 1}})
	require.NoError(t, err)

	p1 := cart.Item("p1")
	require.NotNil(t, p1)
	assert.True(t, p1.PriceAtTime.Equal(decimal.NewFromInt(15)), "got %s", p1.PriceAtTime)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(55)), "got %s", cart.TotalPrice)
}

func TestCartSetItemQuantity(t *testing.T) {
	svc, _, _ := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(3), StockQuantity: 10},
	)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	cart, err := svc.SetItemQuantity(ctx, "user-1", "p1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(21)))

	_, err = svc.SetItemQuantity(ctx, "user-1", "p1", 11)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.SetItemQuantity(ctx, "user-1", "p2", 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCartRemoveLastItemDeletesCart(t *testing.T) {
	svc, cartRepo, _ := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(1), StockQuantity: 10},
	)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "user-1", "p1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.TotalPrice.IsZero())

	_, err = cartRepo.FindByUserID(ctx, "user-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCartRemoveItemNotInCart(t *testing.T) {
	svc, _, _ := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(1), StockQuantity: 10},
	)
	ctx := context.Background()

	_, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, "user-1", "p2")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCartClearIsIdempotent(t *testing.T) {
	svc, _, _ := newCartFixture(
		&model.Product{ID: "p1", Price: decimal.NewFromInt(1), StockQuantity: 10},
	)
	ctx := context.Background()

	require.NoError(t, svc.Clear(ctx, "user-1"))

	_, err := svc.AddItems(ctx, "user-1", []dto.CartItemRequest{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "user-1"))
	require.NoError(t, svc.Clear(ctx, "user-1"))

	_, err = svc.GetCart(ctx, "user-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
