package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hazemkhaled/digimarket/internal/services"
	"github.com/hazemkhaled/digimarket/pkg/response"
)

// ProductHandler serves the public catalog and the admin product endpoints.
type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type productPayload struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Image       string   `json:"image"`
	Category    string   `json:"category" validate:"max=100"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	Seller      string   `json:"seller"`
	Features    []string `json:"features"`
	IsActive    *bool    `json:"is_active"`
}

func (p productPayload) toInput() services.ProductInput {
	return services.ProductInput{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Rating:      p.Rating,
		Seller:      p.Seller,
		Features:    p.Features,
		IsActive:    p.IsActive,
	}
}

// GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, false)
}

// GET /api/admin/products
func (h *ProductHandler) ListAdmin(c *gin.Context) {
	h.list(c, true)
}

func (h *ProductHandler) list(c *gin.Context, includeInactive bool) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	products, total, err := h.products.List(requestContext(c), services.ListProductsOptions{
		Page:     page,
		PageSize: pageSize,
		Sort:     c.Query("sort"),
		Filters: services.ProductFilters{
			Category:        c.Query("category"),
			Query:           c.Query("q"),
			IncludeInactive: includeInactive,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, paginationMeta(page, pageSize, total))
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// GET /api/products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.products.Categories(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}

// POST /api/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req productPayload
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := h.products.Create(requestContext(c), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, product)
}

// PUT /api/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req productPayload
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := h.products.Update(requestContext(c), c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

// DELETE /api/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func paginationMeta(page, pageSize int, total int64) *response.Meta {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return &response.Meta{
		Page:       page,
		PerPage:    pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}
