package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"catalog-hub-service/internal/services"
)

// CatalogWriteHandler exposes the manual catalog maintenance endpoints
type CatalogWriteHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

// NewCatalogWriteHandler creates a new catalog write handler
func NewCatalogWriteHandler(catalog *services.CatalogService, logger *logrus.Logger) *CatalogWriteHandler {
	return &CatalogWriteHandler{catalog: catalog, logger: logger}
}

type createProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Active        *bool           `json:"active"`
	StockQuantity int             `json:"stockQuantity"`
	CategoryID    *uuid.UUID      `json:"categoryId"`
	Tags          []string        `json:"tags"`
}

type updateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Active        *bool            `json:"active"`
	StockQuantity *int             `json:"stockQuantity"`
	CategoryID    *uuid.UUID       `json:"categoryId"`
	Tags          *[]string        `json:"tags"`
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateProduct creates a product by hand
// POST /api/v1/products
func (h *CatalogWriteHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
		StockQty:    req.StockQuantity,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
	})
	if err != nil {
		h.respondError(c, err, "create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies a partial update to a product
// PUT /api/v1/products/:id
func (h *CatalogWriteHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, services.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
		StockQty:    req.StockQuantity,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
	})
	if err != nil {
		h.respondError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product
// DELETE /api/v1/products/:id
func (h *CatalogWriteHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateCategory creates a category by hand
// POST /api/v1/categories
func (h *CatalogWriteHandler) CreateCategory(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames a category
// PUT /api/v1/categories/:id
func (h *CatalogWriteHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		h.respondError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category that has no products assigned
// DELETE /api/v1/categories/:id
func (h *CatalogWriteHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateTag creates a tag by hand
// POST /api/v1/tags
func (h *CatalogWriteHandler) CreateTag(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	tag, err := h.catalog.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err, "create tag")
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *CatalogWriteHandler) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrTagExists), errors.Is(err, services.ErrCategoryInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Errorf("Failed to %s", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	}
}
