package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"catalog-hub-service/internal/models"
	"catalog-hub-service/internal/repository"
)

var (
	// ErrInvalidInput marks a request rejected by validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrTagExists is returned when a tag name collides case-insensitively
	ErrTagExists = errors.New("tag already exists")
	// ErrCategoryInUse is returned when deleting a category that still has products
	ErrCategoryInUse = errors.New("category has assigned products")
)

// ProductInput carries the fields for creating a product by hand, as opposed
// to importing one from the supplier hub.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Active      *bool
	StockQty    int
	CategoryID  *uuid.UUID
	Tags        []string
}

// ProductUpdate carries a partial update. Nil fields are left unchanged; a
// non-nil empty Tags slice clears the product's tags.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Active      *bool
	StockQty    *int
	CategoryID  *uuid.UUID
	Tags        *[]string
}

// CatalogService implements manual catalog maintenance: the write operations
// that run outside of supplier hub imports.
type CatalogService struct {
	categories repository.CategoryRepositoryInterface
	products   repository.ProductRepositoryInterface
	tags       repository.TagRepositoryInterface
	resolver   *TagResolver
	logger     *logrus.Entry
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	categories repository.CategoryRepositoryInterface,
	products repository.ProductRepositoryInterface,
	tags repository.TagRepositoryInterface,
	resolver *TagResolver,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		tags:       tags,
		resolver:   resolver,
		logger:     logger.WithField("component", "catalog_service"),
	}
}

// CreateProduct validates the input, resolves the tag names and persists a
// new product. Active defaults to true when not sent.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if in.StockQty < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidInput)
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category %s does not exist", ErrInvalidInput, *in.CategoryID)
			}
			return nil, err
		}
	}

	tags, err := s.resolver.Resolve(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	product := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Active:      active,
		StockQty:    in.StockQty,
		CategoryID:  in.CategoryID,
		Tags:        tags,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.WithField("product_id", product.ID).Info("Product created")
	return product, nil
}

// UpdateProduct applies a partial update to an existing product. Fields not
// sent keep their current value; the tag list is only replaced when sent.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, upd ProductUpdate) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		product.Name = name
	}
	if upd.Description != nil {
		product.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
		}
		product.Price = *upd.Price
	}
	if upd.Active != nil {
		product.Active = *upd.Active
	}
	if upd.StockQty != nil {
		if *upd.StockQty < 0 {
			return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidInput)
		}
		product.StockQty = *upd.StockQty
	}
	if upd.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *upd.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category %s does not exist", ErrInvalidInput, *upd.CategoryID)
			}
			return nil, err
		}
		product.CategoryID = upd.CategoryID
		product.Category = nil
	}
	if upd.Tags != nil {
		tags, err := s.resolver.Resolve(ctx, *upd.Tags)
		if err != nil {
			return nil, err
		}
		product.Tags = tags
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.logger.WithField("product_id", product.ID).Info("Product updated")
	return product, nil
}

// DeleteProduct removes a product and its tag assignments
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("Product deleted")
	return nil
}

// CreateCategory persists a new manually managed category. Categories created
// here carry no supplier hub id.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	category := &models.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.logger.WithField("category_id", category.ID).Info("Category created")
	return category, nil
}

// UpdateCategory renames an existing category
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	s.logger.WithField("category_id", category.ID).Info("Category updated")
	return category, nil
}

// DeleteCategory removes a category. Categories that still have products
// assigned are refused rather than cascading the delete.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	assigned, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("category_id", id).Info("Category deleted")
	return nil
}

// CreateTag persists a new tag. Names that collide case-insensitively with an
// existing tag are rejected with ErrTagExists.
func (s *CatalogService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	existing, err := s.tags.FindByNameKeys(ctx, []string{models.TagNameKey(name)})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrTagExists, existing[0].Name)
	}
	tag := models.NewTag(name)
	if err := s.tags.Create(ctx, &tag); err != nil {
		// A concurrent create can slip past the lookup; the unique index
		// still reports the collision.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", ErrTagExists, name)
		}
		return nil, err
	}
	s.logger.WithField("tag_id", tag.ID).Info("Tag created")
	return &tag, nil
}
