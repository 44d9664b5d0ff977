package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hazemkhaled/digimarket/internal/services"
	"github.com/hazemkhaled/digimarket/pkg/response"
)

// UserHandler serves the admin account management endpoints.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	filters := services.UserFilters{Query: c.Query("q")}
	switch c.Query("active") {
	case "true":
		active := true
		filters.IsActive = &active
	case "false":
		active := false
		filters.IsActive = &active
	}

	users, total, err := h.users.List(requestContext(c), services.ListUsersOptions{
		Page:     page,
		PageSize: pageSize,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, paginationMeta(page, pageSize, total))
}

// GET /api/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

type userFlagPayload struct {
	Value *bool `json:"value" validate:"required"`
}

// PATCH /api/admin/users/:id/admin
func (h *UserHandler) SetAdmin(c *gin.Context) {
	var req userFlagPayload
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.users.SetAdmin(requestContext(c), c.Param("id"), *req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// PATCH /api/admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	var req userFlagPayload
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.users.SetActive(requestContext(c), c.Param("id"), *req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
