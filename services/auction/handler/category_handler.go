package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/services/auction/helpers"
)

type CategoryServiceInterface interface {
	CreateCategory(caller authz.Caller, name string) (models.Category, error)
	GetCategory(id uint) (models.Category, error)
	ListCategories() ([]models.Category, error)
	UpdateCategory(caller authz.Caller, id uint, name string) (models.Category, error)
	DeleteCategory(caller authz.Caller, id uint) error
}

type CategoryHandler struct {
	service CategoryServiceInterface
}

func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// ListCategoriesHandler handles GET /api/subastas/categorias
func (h *CategoryHandler) ListCategoriesHandler(c *gin.Context) {
	cats, err := h.service.ListCategories()
	if err != nil {
		helpers.RespondError(c, "ListCategoriesHandler", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(cats))
	helpers.LogSuccess("ListCategoriesHandler", "categories retrieved successfully", map[string]any{"count": len(cats)})
}

// CreateCategoryHandler handles POST /api/subastas/categorias
func (h *CategoryHandler) CreateCategoryHandler(c *gin.Context) {
	var req helpers.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateCategoryHandler", err)
		return
	}
	cat, err := h.service.CreateCategory(helpers.CallerFrom(c), req.Name)
	if err != nil {
		helpers.RespondError(c, "CreateCategoryHandler", err)
		return
	}
	c.JSON(http.StatusCreated, cat)
	helpers.LogSuccess("CreateCategoryHandler", "category created successfully", map[string]any{"category_id": cat.ID})
}

// GetCategoryHandler handles GET /api/subastas/categorias/:id_categoria
func (h *CategoryHandler) GetCategoryHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_categoria")
	if !ok {
		return
	}
	cat, err := h.service.GetCategory(id)
	if err != nil {
		helpers.RespondError(c, "GetCategoryHandler", err)
		return
	}
	c.JSON(http.StatusOK, cat)
	helpers.LogSuccess("GetCategoryHandler", "category retrieved successfully", map[string]any{"category_id": cat.ID})
}

// UpdateCategoryHandler handles PUT /api/subastas/categorias/:id_categoria
func (h *CategoryHandler) UpdateCategoryHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_categoria")
	if !ok {
		return
	}
	var req helpers.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateCategoryHandler", err)
		return
	}
	cat, err := h.service.UpdateCategory(helpers.CallerFrom(c), id, req.Name)
	if err != nil {
		helpers.RespondError(c, "UpdateCategoryHandler", err)
		return
	}
	c.JSON(http.StatusOK, cat)
	helpers.LogSuccess("UpdateCategoryHandler", "category updated successfully", map[string]any{"category_id": cat.ID})
}

// DeleteCategoryHandler handles DELETE /api/subastas/categorias/:id_categoria
func (h *CategoryHandler) DeleteCategoryHandler(c *gin.Context) {
	id, ok := helpers.ParseID(c, "id_categoria")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(helpers.CallerFrom(c), id); err != nil {
		helpers.RespondError(c, "DeleteCategoryHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteCategoryHandler", "category deleted successfully", map[string]any{"category_id": id})
}
