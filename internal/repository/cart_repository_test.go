package repository_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"github.com/sthaarun/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

type cartRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.CartRepository
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	// Verifies no leaks after all tests in the suite run.
	defer goleak.VerifyNone(t)

	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = repository.NewPool(ctx, connStr)
	suite.NoError(err)

	suite.repo = repository.NewCart(suite.pool)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *cartRepositorySuite) TestAddItem() {
	t := suite.T()
	ctx := t.Context()

	customerID := gofakeit.UUID()
	item1 := suite.fakeCartItem()
	item2 := suite.fakeCartItem()

	suite.Run("first item creates the active cart", func() {
		_, err := suite.repo.AddItem(ctx, customerID, item1)
		require.NoError(t, err)

		actual, found, err := suite.repo.GetActiveCart(ctx, customerID)
		require.NoError(t, err)
		require.True(t, found)

		expected := domain.Cart{
			CustomerID: customerID,
			Type:       domain.CartTypeActive,
			Total:      item1.LineTotal(),
			Items:      []domain.CartItem{item1},
		}
		assertCart(t, expected, actual)
	})

	suite.Run("second item lands in the same cart", func() {
		_, err := suite.repo.AddItem(ctx, customerID, item2)
		require.NoError(t, err)

		actual, found, err := suite.repo.GetActiveCart(ctx, customerID)
		require.NoError(t, err)
		require.True(t, found)

		expected := domain.Cart{
			CustomerID: customerID,
			Type:       domain.CartTypeActive,
			Total:      item1.LineTotal().Add(item2.LineTotal().Amount),
			Items:      []domain.CartItem{item1, item2},
		}
		assertCart(t, expected, actual)
	})
}

func (suite *cartRepositorySuite) TestGetActiveCart_None() {
	t := suite.T()
	ctx := t.Context()

	_, found, err := suite.repo.GetActiveCart(ctx, gofakeit.UUID())
	require.NoError(t, err)
	assert.False(t, found)
}

// Concurrent first adds race on the partial unique index; losers get
// ErrConflict and succeed on retry against the winner's cart.
func (suite *cartRepositorySuite) TestAddItem_ConcurrentFirstCart() {
	t := suite.T()
	ctx := t.Context()

	const workers = 8

	customerID := gofakeit.UUID()
	item := suite.fakeCartItem()

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			workerItem := item
			workerItem.ID = uuid.New()

			var err error
			for attempt := 0; attempt < 3; attempt++ {
				_, err = suite.repo.AddItem(ctx, customerID, workerItem)
				if !errors.Is(err, domain.ErrConflict) {
					break
				}
			}
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	cart, found, err := suite.repo.GetActiveCart(ctx, customerID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Len(t, cart.Items, workers)

	expectedTotal := item.LineTotal().MulInt(workers).Amount
	assert.True(t, cart.Total.Amount.Equal(expectedTotal),
		"total %s != expected %s", cart.Total.Amount, expectedTotal)

	// still exactly one active cart
	var cartCount int
	err = suite.pool.QueryRow(ctx,
		`SELECT count(*) FROM carts WHERE customer_id = $1 AND cart_type = 'active'`, customerID,
	).Scan(&cartCount)
	require.NoError(t, err)
	assert.Equal(t, 1, cartCount)
}

func (suite *cartRepositorySuite) TestDeleteItem() {
	t := suite.T()
	ctx := t.Context()

	customerID := gofakeit.UUID()
	item1 := suite.fakeCartItem()
	item2 := suite.fakeCartItem()

	_, err := suite.repo.AddItem(ctx, customerID, item1)
	require.NoError(t, err)
	_, err = suite.repo.AddItem(ctx, customerID, item2)
	require.NoError(t, err)

	tests := []struct {
		name       string
		customerID string
		itemID     uuid.UUID
		wantFound  bool
	}{
		{
			name:       "delete existing item: ok",
			customerID: customerID,
			itemID:     item1.ID,
			wantFound:  true,
		},
		{
			name:       "delete non-existing item: not found",
			customerID: customerID,
			itemID:     uuid.New(),
			wantFound:  false,
		},
		{
			name:       "delete item of another customer: not found",
			customerID: gofakeit.UUID(),
			itemID:     item2.ID,
			wantFound:  false,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			found, err := suite.repo.DeleteItem(ctx, tt.customerID, tt.itemID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
		})
	}

	// only item2 and its line total remain
	cart, found, err := suite.repo.GetActiveCart(ctx, customerID)
	require.NoError(t, err)
	require.True(t, found)

	expected := domain.Cart{
		CustomerID: customerID,
		Type:       domain.CartTypeActive,
		Total:      item2.LineTotal(),
		Items:      []domain.CartItem{item2},
	}
	assertCart(t, expected, cart)
}

func (suite *cartRepositorySuite) TestDeleteCart() {
	t := suite.T()
	ctx := t.Context()

	customerID := gofakeit.UUID()
	item := suite.fakeCartItem()

	_, err := suite.repo.AddItem(ctx, customerID, item)
	require.NoError(t, err)

	cart, found, err := suite.repo.GetActiveCart(ctx, customerID)
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, suite.repo.DeleteCart(ctx, cart.ID))

	_, found, err = suite.repo.GetActiveCart(ctx, customerID)
	require.NoError(t, err)
	assert.False(t, found)

	// items cascade with the cart
	var itemCount int
	err = suite.pool.QueryRow(ctx,
		`SELECT count(*) FROM cart_items WHERE cart_id = $1`, cart.ID,
	).Scan(&itemCount)
	require.NoError(t, err)
	assert.Zero(t, itemCount)

	err = suite.repo.DeleteCart(ctx, cart.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// fakeCartItem seeds a variant so the item's foreign key resolves.
func (suite *cartRepositorySuite) fakeCartItem() domain.CartItem {
	price := decimal.NewFromFloat(gofakeit.Price(1, 100))
	variantID := suite.newVariant(price, 100)

	return domain.CartItem{
		ID:        uuid.New(),
		VariantID: variantID,
		Quantity:  int32(gofakeit.Number(1, 5)),
		Price:     domain.Money{Amount: price, Currency: testCurrencyUnit},
	}
}

func (suite *cartRepositorySuite) newVariant(price decimal.Decimal, available int32) uuid.UUID {
	ctx := suite.T().Context()

	productID, err := insertProduct(ctx, suite.pool, gofakeit.ProductName())
	suite.Require().NoError(err)

	variantID, err := insertVariant(ctx, suite.pool, productID, price, available)
	suite.Require().NoError(err)

	return variantID
}

func assertCart(t *testing.T, expected domain.Cart, actual domain.Cart) {
	t.Helper()

	// Custom comparers for Money fields: currency units compare by code,
	// decimals by value regardless of scale.
	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})
	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Cart{}, "ID", "ExpiresAt", "CreatedAt", "UpdatedAt"),
		cmpopts.IgnoreFields(domain.CartItem{}, "CartID", "CreatedAt"),
		cmpopts.SortSlices(func(a, b domain.CartItem) bool {
			return a.ID.String() < b.ID.String()
		}),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, currencyComparer, decimalComparer, opts)
	assert.Empty(t, diff)
}
