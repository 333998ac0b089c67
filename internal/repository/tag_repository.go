package repository

import (
	"context"

	"catalog-hub-service/internal/models"
	"gorm.io/gorm"
)

// TagRepositoryInterface defines the storage contract for tags
type TagRepositoryInterface interface {
	FindByNameKeys(ctx context.Context, nameKeys []string) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	CreateBatch(ctx context.Context, tags []*models.Tag) error
	List(ctx context.Context, opts ListOptions) ([]models.Tag, int64, error)
}

// TagRepository handles tag database operations
type TagRepository struct {
	db *gorm.DB
}

var _ TagRepositoryInterface = (*TagRepository)(nil)

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindByNameKeys retrieves all tags whose case-folded name matches one of
// the given keys.
func (r *TagRepository) FindByNameKeys(ctx context.Context, nameKeys []string) ([]models.Tag, error) {
	if len(nameKeys) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("name_key IN ?", nameKeys).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Create persists a single tag. The unique index on name_key surfaces a
// case-insensitive name collision as gorm.ErrDuplicatedKey.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// CreateBatch persists new tags in one write. A unique index on name_key is
// the backstop against concurrent creation of the same tag; callers treat
// gorm.ErrDuplicatedKey as a recoverable conflict.
func (r *TagRepository) CreateBatch(ctx context.Context, tags []*models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(tags, 100).Error
}

// List retrieves tags with pagination
func (r *TagRepository) List(ctx context.Context, opts ListOptions) ([]models.Tag, int64, error) {
	opts.Normalize()

	var tags []models.Tag
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Tag{})
	if opts.Search != "" {
		query = query.Where("name ILIKE ?", "%"+opts.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order(tagOrderClause(opts.OrderBy, opts.OrderDirection)).
		Limit(opts.PageSize).Offset(opts.Offset()).
		Find(&tags).Error; err != nil {
		return nil, 0, err
	}

	return tags, total, nil
}

// tagOrderClause whitelists the sortable tag orderings. "itemcount" sorts by
// the number of active products carrying the tag.
func tagOrderClause(orderBy, direction string) string {
	if orderBy == "itemcount" {
		return "(SELECT COUNT(*) FROM product_tags pt JOIN products p ON p.id = pt.product_id AND p.active WHERE pt.tag_id = tags.id) " + direction
	}
	return "name " + direction
}
