package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/database/testutil"
	"github.com/hazemkhaled/digimarket/internal/models"
)

func setupOrderService(t *testing.T) (*gorm.DB, *OrderService, *ProductService, *UserService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	orders, err := NewOrderService(db)
	require.NoError(t, err)
	products, err := NewProductService(db)
	require.NoError(t, err)
	users, err := NewUserService(db)
	require.NoError(t, err)

	return db, orders, products, users
}

func checkoutFixture(t *testing.T, products *ProductService, users *UserService) (string, []models.Product) {
	t.Helper()

	user, err := users.Create(context.Background(), CreateUserInput{
		Username: "buyer",
		Email:    "buyer@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	var created []models.Product
	for _, input := range []ProductInput{
		{Title: "Template Bundle", Price: 25, Category: "design"},
		{Title: "Video Course", Price: 40, Category: "courses"},
	} {
		product, err := products.Create(context.Background(), input)
		require.NoError(t, err)
		created = append(created, *product)
	}

	return user.ID, created
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, catalog := checkoutFixture(t, products, users)

	order, err := orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: catalog[0].ID, Quantity: 2},
		{ProductID: catalog[1].ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, 90.0, order.Total)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Template Bundle", order.Items[0].Title)
	require.Equal(t, 25.0, order.Items[0].UnitPrice)
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, catalog := checkoutFixture(t, products, users)

	order, err := orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: catalog[0].ID, Quantity: 1},
		{ProductID: catalog[0].ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.Equal(t, 3, order.Items[0].Quantity)
	require.Equal(t, 75.0, order.Total)
}

func TestCheckoutSnapshotsPrices(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, catalog := checkoutFixture(t, products, users)

	order, err := orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: catalog[0].ID, Quantity: 1},
	})
	require.NoError(t, err)

	_, err = products.Update(context.Background(), catalog[0].ID, ProductInput{
		Title: "Template Bundle",
		Price: 99,
	})
	require.NoError(t, err)

	reloaded, err := orders.Get(context.Background(), order.ID, userID)
	require.NoError(t, err)
	require.Equal(t, 25.0, reloaded.Items[0].UnitPrice)
	require.Equal(t, 25.0, reloaded.Total)
}

func TestCheckoutRejectsEmptyAndUnknown(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, _ := checkoutFixture(t, products, users)

	_, err := orders.Checkout(context.Background(), userID, nil)
	require.ErrorIs(t, err, ErrEmptyOrder)

	_, err = orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: "", Quantity: 1},
		{ProductID: "something", Quantity: 0},
	})
	require.ErrorIs(t, err, ErrEmptyOrder)

	_, err = orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: "missing", Quantity: 1},
	})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCheckoutExcludesInactiveProducts(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, catalog := checkoutFixture(t, products, users)

	inactive := false
	_, err := products.Update(context.Background(), catalog[0].ID, ProductInput{
		Title:    catalog[0].Title,
		Price:    catalog[0].Price,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: catalog[0].ID, Quantity: 1},
	})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderVisibilityScopedToUser(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, catalog := checkoutFixture(t, products, users)

	other, err := users.Create(context.Background(), CreateUserInput{
		Username: "other",
		Email:    "other@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	order, err := orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: catalog[0].ID, Quantity: 1},
	})
	require.NoError(t, err)

	_, err = orders.Get(context.Background(), order.ID, other.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)

	// Admin access passes an empty user scope.
	got, err := orders.Get(context.Background(), order.ID, "")
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)

	mine, total, err := orders.ListForUser(context.Background(), userID, ListOrdersOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, mine, 1)

	theirs, total, err := orders.ListForUser(context.Background(), other.ID, ListOrdersOptions{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, theirs)
}

func TestOrderStatusTransitions(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, catalog := checkoutFixture(t, products, users)

	order, err := orders.Checkout(context.Background(), userID, []CheckoutLine{
		{ProductID: catalog[0].ID, Quantity: 1},
	})
	require.NoError(t, err)

	updated, err := orders.UpdateStatus(context.Background(), order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, updated.Status)

	// Completed orders are terminal.
	_, err = orders.UpdateStatus(context.Background(), order.ID, models.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrOrderTransition)

	_, err = orders.UpdateStatus(context.Background(), order.ID, models.OrderStatusPending)
	require.Error(t, err)
}

func TestListAllFiltersByStatus(t *testing.T) {
	_, orders, products, users := setupOrderService(t)
	userID, catalog := checkoutFixture(t, products, users)

	first, err := orders.Checkout(context.Background(), userID, []CheckoutLine{{ProductID: catalog[0].ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = orders.Checkout(context.Background(), userID, []CheckoutLine{{ProductID: catalog[1].ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = orders.UpdateStatus(context.Background(), first.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	pending, total, err := orders.ListAll(context.Background(), ListOrdersOptions{Status: models.OrderStatusPending})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, pending, 1)

	all, total, err := orders.ListAll(context.Background(), ListOrdersOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, all, 2)
}
