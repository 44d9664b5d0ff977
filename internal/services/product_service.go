package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/models"
	apperrors "github.com/hazemkhaled/digimarket/pkg/errors"
)

// ErrProductNotFound indicates the requested product does not exist.
var ErrProductNotFound = apperrors.New("PRODUCT_NOT_FOUND", "Product not found", http.StatusNotFound)

// ProductInput describes the fields accepted when creating or updating a product.
type ProductInput struct {
	Title       string
	Description string
	Price       float64
	Image       string
	Category    string
	Rating      float64
	Seller      string
	Features    []string
	IsActive    *bool
}

// ProductFilters captures catalog listing filters.
type ProductFilters struct {
	Category string
	Query    string
	// IncludeInactive lists disabled products too; reserved for admin views.
	IncludeInactive bool
}

// ListProductsOptions controls filtering, sorting and pagination of the catalog.
type ListProductsOptions struct {
	Page     int
	PageSize int
	Sort     string // newest | price_asc | price_desc | rating
	Filters  ProductFilters
}

// ProductService manages the digital goods catalog.
type ProductService struct {
	db *gorm.DB
}

// NewProductService constructs a ProductService instance.
func NewProductService(db *gorm.DB) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	return &ProductService{db: db}, nil
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	features, err := encodeFeatures(input.Features)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Image:       strings.TrimSpace(input.Image),
		Category:    strings.TrimSpace(input.Category),
		Rating:      input.Rating,
		Seller:      strings.TrimSpace(input.Seller),
		Features:    features,
		IsActive:    true,
	}

	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("product service: create product: %w", err)
	}

	return product, nil
}

// Get fetches a single product by ID.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("product id is required")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).Take(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product service: get product: %w", err)
	}

	return &product, nil
}

// List returns catalog entries matching the filters, plus the total count.
func (s *ProductService) List(ctx context.Context, opts ListProductsOptions) ([]models.Product, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Product{})

	if !opts.Filters.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if category := strings.TrimSpace(opts.Filters.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("product service: count products: %w", err)
	}

	var products []models.Product
	if err := query.
		Order(sortClause(opts.Sort)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("product service: list products: %w", err)
	}

	return products, total, nil
}

// Update modifies an existing product.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	features, err := encodeFeatures(input.Features)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"title":       strings.TrimSpace(input.Title),
		"description": strings.TrimSpace(input.Description),
		"price":       input.Price,
		"image":       strings.TrimSpace(input.Image),
		"category":    strings.TrimSpace(input.Category),
		"rating":      input.Rating,
		"seller":      strings.TrimSpace(input.Seller),
		"features":    features,
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("product service: update product: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.NewBadRequest("product id is required")
	}

	result := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("product service: delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Categories returns the distinct categories of active products.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)

	var categories []string
	if err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("product service: list categories: %w", err)
	}

	return categories, nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewBadRequest("title is required")
	}
	if input.Price < 0 {
		return apperrors.NewBadRequest("price must not be negative")
	}
	if input.Rating < 0 || input.Rating > 5 {
		return apperrors.NewBadRequest("rating must be between 0 and 5")
	}
	return nil
}

func encodeFeatures(features []string) (datatypes.JSON, error) {
	trimmed := make([]string, 0, len(features))
	for _, feature := range features {
		feature = strings.TrimSpace(feature)
		if feature == "" {
			continue
		}
		trimmed = append(trimmed, feature)
	}

	encoded, err := json.Marshal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("product service: encode features: %w", err)
	}
	return datatypes.JSON(encoded), nil
}

func sortClause(sort string) string {
	switch strings.TrimSpace(strings.ToLower(sort)) {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "rating":
		return "rating DESC"
	default:
		return "created_at DESC"
	}
}
