package repository

import (
	"context"

	"catalog-hub-service/internal/models"
	"gorm.io/gorm"
)

// ImportRunRepositoryInterface defines the storage contract for import runs
type ImportRunRepositoryInterface interface {
	Create(ctx context.Context, run *models.ImportRun) error
	List(ctx context.Context, kind models.ImportKind, opts ListOptions) ([]models.ImportRun, int64, error)
}

// ImportRunRepository handles import run database operations
type ImportRunRepository struct {
	db *gorm.DB
}

var _ ImportRunRepositoryInterface = (*ImportRunRepository)(nil)

// NewImportRunRepository creates a new import run repository
func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

// Create persists a finished import run
func (r *ImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// List retrieves import runs, newest first, optionally filtered by kind
func (r *ImportRunRepository) List(ctx context.Context, kind models.ImportKind, opts ListOptions) ([]models.ImportRun, int64, error) {
	opts.Normalize()

	var runs []models.ImportRun
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ImportRun{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("started_at DESC").
		Limit(opts.PageSize).Offset(opts.Offset()).
		Find(&runs).Error; err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}
