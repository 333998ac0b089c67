package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"catalog-hub-service/internal/repository"
)

// CatalogHandler exposes read endpoints over the imported catalog
type CatalogHandler struct {
	categories repository.CategoryRepositoryInterface
	products   repository.ProductRepositoryInterface
	tags       repository.TagRepositoryInterface
	logger     *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	categories repository.CategoryRepositoryInterface,
	products repository.ProductRepositoryInterface,
	tags repository.TagRepositoryInterface,
	logger *logrus.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		categories: categories,
		products:   products,
		tags:       tags,
		logger:     logger,
	}
}

func listOptionsFromQuery(c *gin.Context) repository.ListOptions {
	opts := repository.ListOptions{
		Search:         c.Query("search"),
		OrderBy:        c.Query("orderBy"),
		OrderDirection: c.Query("orderDirection"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		opts.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		opts.PageSize = pageSize
	}
	opts.Normalize()
	return opts
}

// ListProducts returns a paginated product listing
// GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	opts := listOptionsFromQuery(c)

	products, total, err := h.products.List(c.Request.Context(), opts)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     opts.Page,
		"pageSize": opts.PageSize,
	})
}

// GetProduct returns a single product by id
// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListCategories returns a paginated category listing
// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	opts := listOptionsFromQuery(c)

	categories, total, err := h.categories.List(c.Request.Context(), opts)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      total,
		"page":       opts.Page,
		"pageSize":   opts.PageSize,
	})
}

// ListTags returns a paginated tag listing
// GET /api/v1/tags
func (h *CatalogHandler) ListTags(c *gin.Context) {
	opts := listOptionsFromQuery(c)

	tags, total, err := h.tags.List(c.Request.Context(), opts)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list tags")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tags"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":     tags,
		"total":    total,
		"page":     opts.Page,
		"pageSize": opts.PageSize,
	})
}
