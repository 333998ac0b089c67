package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"catalog-hub-service/internal/models"
)

type ReportRepositoryInterface interface {
	Dashboard(ctx context.Context) (*models.DashboardReport, error)
	Export(ctx context.Context) (*models.CatalogExport, error)
}

type ReportRepository struct {
	db *gorm.DB
}

var _ ReportRepositoryInterface = (*ReportRepository)(nil)

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Dashboard aggregates catalog counts and inventory totals in a single pass
// per table. Inventory value and average price consider active products only.
func (r *ReportRepository) Dashboard(ctx context.Context) (*models.DashboardReport, error) {
	report := &models.DashboardReport{GeneratedAt: time.Now().UTC()}

	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&report.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("active").Count(&report.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("active AND stock_qty = 0").Count(&report.OutOfStockProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&report.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).Count(&report.TotalTags).Error; err != nil {
		return nil, err
	}

	var totals struct {
		InventoryValue decimal.Decimal
		AveragePrice   decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("COALESCE(SUM(price * stock_qty), 0) AS inventory_value, COALESCE(AVG(price), 0) AS average_price").
		Where("active").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	report.TotalInventoryValue = totals.InventoryValue
	report.AveragePrice = totals.AveragePrice.Round(2)

	return report, nil
}

// Export builds the full catalog document: active products with their
// category and tags flattened, plus per-category and per-tag item counts.
func (r *ReportRepository) Export(ctx context.Context) (*models.CatalogExport, error) {
	stats, err := r.Dashboard(ctx)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	err = r.db.WithContext(ctx).
		Preload("Category").
		Preload("Tags").
		Where("active").
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	export := &models.CatalogExport{
		GeneratedAt: stats.GeneratedAt,
		Products:    make([]models.ProductExport, 0, len(products)),
		Statistics:  *stats,
	}
	for _, p := range products {
		row := models.ProductExport{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			StockQty:    p.StockQty,
			ExternalID:  p.ExternalID,
			Tags:        make([]string, 0, len(p.Tags)),
		}
		if p.Category != nil {
			row.CategoryName = p.Category.Name
		}
		for _, t := range p.Tags {
			row.Tags = append(row.Tags, t.Name)
		}
		export.Products = append(export.Products, row)
	}

	var categories []struct {
		models.Category
		ItemCount int64
	}
	err = r.db.WithContext(ctx).Model(&models.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id) AS item_count").
		Order("categories.name asc").
		Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	export.Categories = make([]models.CategoryExport, 0, len(categories))
	for _, c := range categories {
		export.Categories = append(export.Categories, models.CategoryExport{
			ID:         c.ID,
			Name:       c.Name,
			ExternalID: c.ExternalID,
			ItemCount:  c.ItemCount,
		})
	}

	var tags []struct {
		models.Tag
		ActiveItemCount int64
	}
	err = r.db.WithContext(ctx).Model(&models.Tag{}).
		Select("tags.*, (SELECT COUNT(*) FROM product_tags pt JOIN products p ON p.id = pt.product_id AND p.active WHERE pt.tag_id = tags.id) AS active_item_count").
		Order("tags.name asc").
		Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	export.Tags = make([]models.TagExport, 0, len(tags))
	for _, t := range tags {
		export.Tags = append(export.Tags, models.TagExport{
			ID:              t.ID,
			Name:            t.Name,
			ActiveItemCount: t.ActiveItemCount,
		})
	}

	return export, nil
}
