package repository

import (
	"context"

	"catalog-hub-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepositoryInterface defines the storage contract for products
type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	PersistBatch(ctx context.Context, toCreate, toUpdate []*models.Product) error
	List(ctx context.Context, opts ListOptions) ([]models.Product, int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// ProductRepository handles product database operations
type ProductRepository struct {
	db *gorm.DB
}

var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID retrieves a product with its tags by local id
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Tags").Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByExternalID retrieves a product with its tags by supplier hub id
func (r *ProductRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Tags").Where("external_id = ?", externalID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create persists a single product. Assigned tags must already exist; only
// the product row and its join rows are written.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Tags.*").Create(product).Error
}

// Update persists changes to an existing product, fully replacing its tag
// assignments.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Save(product).Error; err != nil {
			return err
		}
		return tx.Model(product).Association("Tags").Replace(product.Tags)
	})
}

// Delete removes a product and its tag assignments by id
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product := models.Product{ID: id}
		if err := tx.Model(&product).Association("Tags").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&models.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// PersistBatch commits all staged creates and updates of one import run in a
// single transaction. Tag rows already exist by this point; only the product
// rows and their join rows are written, with tag assignments fully replaced.
func (r *ProductRepository) PersistBatch(ctx context.Context, toCreate, toUpdate []*models.Product) error {
	if len(toCreate) == 0 && len(toUpdate) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, product := range toCreate {
			if err := tx.Omit("Tags.*").Create(product).Error; err != nil {
				return err
			}
		}
		for _, product := range toUpdate {
			if err := tx.Omit("Tags").Save(product).Error; err != nil {
				return err
			}
			if err := tx.Model(product).Association("Tags").Replace(product.Tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// List retrieves products with search, sorting and pagination
func (r *ProductRepository) List(ctx context.Context, opts ListOptions) ([]models.Product, int64, error) {
	opts.Normalize()

	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if opts.Search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?", "%"+opts.Search+"%", "%"+opts.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderColumn := "name"
	switch opts.OrderBy {
	case "price":
		orderColumn = "price"
	case "stock":
		orderColumn = "stock_qty"
	case "createdAt":
		orderColumn = "created_at"
	}

	if err := query.
		Preload("Tags").Preload("Category").
		Order(orderColumn + " " + opts.OrderDirection).
		Limit(opts.PageSize).Offset(opts.Offset()).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// CountByCategory returns the number of products assigned to a category
func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
