package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/models"
	apperrors "github.com/hazemkhaled/digimarket/pkg/errors"
	"github.com/hazemkhaled/digimarket/pkg/metrics"
)

var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = apperrors.New("ORDER_NOT_FOUND", "Order not found", http.StatusNotFound)
	// ErrEmptyOrder indicates a checkout without any items.
	ErrEmptyOrder = apperrors.New("ORDER_EMPTY", "Order must contain at least one item", http.StatusBadRequest)
	// ErrOrderTransition indicates an illegal status change.
	ErrOrderTransition = apperrors.New("ORDER_BAD_TRANSITION", "Order status transition not allowed", http.StatusConflict)
)

// CheckoutLine is a single product/quantity pair submitted at checkout.
type CheckoutLine struct {
	ProductID string
	Quantity  int
}

// ListOrdersOptions controls pagination for order listing.
type ListOrdersOptions struct {
	Page     int
	PageSize int
	Status   models.OrderStatus
}

// OrderService handles checkout and order lifecycle management.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService constructs an OrderService instance.
func NewOrderService(db *gorm.DB) (*OrderService, error) {
	if db == nil {
		return nil, errors.New("order service: db is required")
	}
	return &OrderService{db: db}, nil
}

// Checkout converts the submitted lines into a pending order. Prices and
// titles are snapshotted so later catalog edits do not rewrite history.
func (s *OrderService) Checkout(ctx context.Context, userID string, lines []CheckoutLine) (*models.Order, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	merged := mergeLines(lines)
	if len(merged) == 0 {
		return nil, ErrEmptyOrder
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(merged))
		for _, line := range merged {
			ids = append(ids, line.ProductID)
		}

		var products []models.Product
		if err := tx.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
			return fmt.Errorf("order service: load products: %w", err)
		}

		byID := make(map[string]models.Product, len(products))
		for _, product := range products {
			byID[product.ID] = product
		}

		var total float64
		items := make([]models.OrderItem, 0, len(merged))
		for _, line := range merged {
			product, ok := byID[line.ProductID]
			if !ok {
				return ErrProductNotFound
			}
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Title:     product.Title,
				UnitPrice: product.Price,
				Quantity:  line.Quantity,
			})
			total += product.Price * float64(line.Quantity)
		}

		order = &models.Order{
			UserID: userID,
			Status: models.OrderStatusPending,
			Total:  total,
			Items:  items,
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("order service: create order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()

	return order, nil
}

// Get fetches an order with its items. When userID is non-empty the order must
// belong to that user; admins pass an empty userID.
func (s *OrderService) Get(ctx context.Context, id, userID string) (*models.Order, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("order id is required")
	}

	query := s.db.WithContext(ctx).Preload("Items").Where("id = ?", id)
	if userID = strings.TrimSpace(userID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order service: get order: %w", err)
	}

	return &order, nil
}

// ListForUser returns a user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string, opts ListOrdersOptions) ([]models.Order, int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, 0, apperrors.NewBadRequest("user id is required")
	}
	return s.list(ctx, userID, opts)
}

// ListAll returns every order for admin views.
func (s *OrderService) ListAll(ctx context.Context, opts ListOrdersOptions) ([]models.Order, int64, error) {
	return s.list(ctx, "", opts)
}

func (s *OrderService) list(ctx context.Context, userID string, opts ListOrdersOptions) ([]models.Order, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("order service: count orders: %w", err)
	}

	var orders []models.Order
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("order service: list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus moves an order through its lifecycle. Pending orders may be
// completed or cancelled; completed and cancelled orders are terminal.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	ctx = ensureContext(ctx)

	if status != models.OrderStatusCompleted && status != models.OrderStatusCancelled {
		return nil, apperrors.NewBadRequest("status must be completed or cancelled")
	}

	order, err := s.Get(ctx, id, "")
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderTransition
	}

	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("order service: update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrOrderTransition
	}

	order.Status = status
	return order, nil
}

func mergeLines(lines []CheckoutLine) []CheckoutLine {
	index := make(map[string]int, len(lines))
	var merged []CheckoutLine
	for _, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" || line.Quantity < 1 {
			continue
		}
		if at, ok := index[id]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, CheckoutLine{ProductID: id, Quantity: line.Quantity})
	}
	return merged
}
