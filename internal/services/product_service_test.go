package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/database/testutil"
)

func setupProductService(t *testing.T) (*gorm.DB, *ProductService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewProductService(db)
	require.NoError(t, err)
	return db, svc
}

func seedProducts(t *testing.T, svc *ProductService) {
	t.Helper()

	inputs := []ProductInput{
		{Title: "Photoshop Course", Category: "courses", Price: 49.99, Rating: 4.5, Features: []string{"12 hours", "Arabic subtitles"}},
		{Title: "Logo Pack", Category: "design", Price: 19.99, Rating: 4.8},
		{Title: "SEO Ebook", Category: "books", Price: 9.99, Rating: 3.9},
	}
	for _, input := range inputs {
		_, err := svc.Create(context.Background(), input)
		require.NoError(t, err)
	}
}

func TestProductServiceCreateAndGet(t *testing.T) {
	_, svc := setupProductService(t)

	created, err := svc.Create(context.Background(), ProductInput{
		Title:    " Photoshop Course ",
		Category: "courses",
		Price:    49.99,
		Features: []string{" 12 hours ", ""},
	})
	require.NoError(t, err)
	require.Equal(t, "Photoshop Course", created.Title)
	require.True(t, created.IsActive)
	require.JSONEq(t, `["12 hours"]`, string(created.Features))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductServiceCreateInactive(t *testing.T) {
	_, svc := setupProductService(t)

	inactive := false
	created, err := svc.Create(context.Background(), ProductInput{
		Title:    "Hidden Launch",
		Category: "templates",
		Price:    15,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.False(t, created.IsActive)

	// The stored row must be inactive too, not just the returned struct.
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	_, total, err := svc.List(context.Background(), ListProductsOptions{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestProductServiceCreateValidation(t *testing.T) {
	_, svc := setupProductService(t)

	_, err := svc.Create(context.Background(), ProductInput{Price: 10})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), ProductInput{Title: "x", Price: -1})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), ProductInput{Title: "x", Rating: 6})
	require.Error(t, err)
}

func TestProductServiceListFiltersAndSort(t *testing.T) {
	_, svc := setupProductService(t)
	seedProducts(t, svc)

	products, total, err := svc.List(context.Background(), ListProductsOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, products, 3)

	products, total, err = svc.List(context.Background(), ListProductsOptions{
		Filters: ProductFilters{Category: "design"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Logo Pack", products[0].Title)

	products, _, err = svc.List(context.Background(), ListProductsOptions{Sort: "price_asc"})
	require.NoError(t, err)
	require.Equal(t, "SEO Ebook", products[0].Title)

	products, _, err = svc.List(context.Background(), ListProductsOptions{Sort: "rating"})
	require.NoError(t, err)
	require.Equal(t, "Logo Pack", products[0].Title)

	products, total, err = svc.List(context.Background(), ListProductsOptions{
		Filters: ProductFilters{Query: "ebook"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "SEO Ebook", products[0].Title)
}

func TestProductServiceListHidesInactive(t *testing.T) {
	_, svc := setupProductService(t)
	seedProducts(t, svc)

	products, _, err := svc.List(context.Background(), ListProductsOptions{
		Filters: ProductFilters{Category: "books"},
	})
	require.NoError(t, err)
	require.Len(t, products, 1)

	inactive := false
	_, err = svc.Update(context.Background(), products[0].ID, ProductInput{
		Title:    products[0].Title,
		Category: products[0].Category,
		Price:    products[0].Price,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	_, total, err := svc.List(context.Background(), ListProductsOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	_, total, err = svc.List(context.Background(), ListProductsOptions{
		Filters: ProductFilters{IncludeInactive: true},
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
}

func TestProductServiceUpdate(t *testing.T) {
	_, svc := setupProductService(t)

	created, err := svc.Create(context.Background(), ProductInput{Title: "Old Title", Price: 5})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, ProductInput{
		Title: "New Title",
		Price: 7.5,
	})
	require.NoError(t, err)
	require.Equal(t, "New Title", updated.Title)
	require.Equal(t, 7.5, updated.Price)

	_, err = svc.Update(context.Background(), "missing", ProductInput{Title: "x"})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductServiceDelete(t *testing.T) {
	_, svc := setupProductService(t)

	created, err := svc.Create(context.Background(), ProductInput{Title: "Doomed", Price: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrProductNotFound)
}

func TestProductServiceCategories(t *testing.T) {
	_, svc := setupProductService(t)
	seedProducts(t, svc)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"books", "courses", "design"}, categories)
}
