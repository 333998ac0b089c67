package repository

import (
	"context"

	"catalog-hub-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepositoryInterface defines the storage contract for categories
type CategoryRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	PersistBatch(ctx context.Context, toCreate, toUpdate []*models.Category) error
	List(ctx context.Context, opts ListOptions) ([]models.Category, int64, error)
}

// CategoryRepository handles category database operations
type CategoryRepository struct {
	db *gorm.DB
}

var _ CategoryRepositoryInterface = (*CategoryRepository)(nil)

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByID retrieves a category by its local id
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetByExternalID retrieves a category by its supplier hub id
func (r *CategoryRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create persists a single category immediately
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update persists changes to an existing category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category by id
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PersistBatch commits all staged creates and updates of one import run in a
// single transaction.
func (r *CategoryRepository) PersistBatch(ctx context.Context, toCreate, toUpdate []*models.Category) error {
	if len(toCreate) == 0 && len(toUpdate) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(toCreate) > 0 {
			if err := tx.CreateInBatches(toCreate, 100).Error; err != nil {
				return err
			}
		}
		for _, category := range toUpdate {
			if err := tx.Save(category).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// List retrieves categories with pagination
func (r *CategoryRepository) List(ctx context.Context, opts ListOptions) ([]models.Category, int64, error) {
	opts.Normalize()

	var categories []models.Category
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Category{})
	if opts.Search != "" {
		query = query.Where("name ILIKE ?", "%"+opts.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order(categoryOrderColumn(opts.OrderBy) + " " + opts.OrderDirection).
		Limit(opts.PageSize).Offset(opts.Offset()).
		Find(&categories).Error; err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

// categoryOrderColumn whitelists the sortable category columns.
func categoryOrderColumn(orderBy string) string {
	switch orderBy {
	case "createdAt":
		return "created_at"
	default:
		return "name"
	}
}
