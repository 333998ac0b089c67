package services

import (
	"context"
	"errors"
	"fmt"

	"catalog-hub-service/internal/audit"
	"catalog-hub-service/internal/clients"
	"catalog-hub-service/internal/models"
	"catalog-hub-service/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImportService reconciles supplier hub records into the local catalog. Both
// entry points process records one at a time in source order; a failed
// record is captured in the report and never aborts the batch. Staged
// creates and updates are committed once at the end of the run.
type ImportService struct {
	source     clients.SourceClient
	categories repository.CategoryRepositoryInterface
	products   repository.ProductRepositoryInterface
	runs       repository.ImportRunRepositoryInterface
	tags       *TagResolver
	normalizer *RecordNormalizer
	sink       *audit.ImportLogSink
	logger     *logrus.Entry
}

// NewImportService creates a new import service
func NewImportService(
	source clients.SourceClient,
	categories repository.CategoryRepositoryInterface,
	products repository.ProductRepositoryInterface,
	runs repository.ImportRunRepositoryInterface,
	tags *TagResolver,
	normalizer *RecordNormalizer,
	sink *audit.ImportLogSink,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		source:     source,
		categories: categories,
		products:   products,
		runs:       runs,
		tags:       tags,
		normalizer: normalizer,
		sink:       sink,
		logger:     logger.WithField("component", "import_service"),
	}
}

// SyncCategories fetches all categories from the supplier hub and upserts
// them by external id.
func (s *ImportService) SyncCategories(ctx context.Context, initiatedBy string) *models.ImportReport {
	report := models.NewImportReport(models.ImportKindCategories)
	s.logger.Info("Starting category import")

	raws, err := s.source.FetchCategories(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Category listing unavailable")
		report.Fail(fmt.Errorf("failed to fetch category listing: %w", err))
		return s.finishRun(ctx, report, initiatedBy)
	}

	var toCreate, toUpdate []*models.Category
	for _, raw := range raws {
		created, err := s.reconcileCategory(ctx, raw, &toCreate, &toUpdate)
		if err != nil {
			report.RecordFailure(raw.ExternalID, err)
			s.logger.WithError(err).WithField("externalId", raw.ExternalID).
				Warn("Failed to process category")
			continue
		}
		if created {
			report.RecordCreated()
		} else {
			report.RecordUpdated()
		}
	}

	if err := s.categories.PersistBatch(ctx, toCreate, toUpdate); err != nil {
		report.Fail(fmt.Errorf("failed to persist category batch: %w", err))
	}

	return s.finishRun(ctx, report, initiatedBy)
}

// reconcileCategory stages a create or an update for one raw category.
// Returns true when the record maps to a new category.
func (s *ImportService) reconcileCategory(ctx context.Context, raw clients.RawCategory, toCreate, toUpdate *[]*models.Category) (bool, error) {
	if raw.ExternalID == "" {
		return false, errors.New("record has no external id")
	}
	if raw.Name == "" {
		return false, errors.New("record has no name")
	}

	existing, err := s.categories.GetByExternalID(ctx, raw.ExternalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("failed to look up category: %w", err)
		}
		externalID := raw.ExternalID
		*toCreate = append(*toCreate, &models.Category{
			Name:       raw.Name,
			ExternalID: &externalID,
		})
		s.logger.WithField("name", raw.Name).Debug("Category staged for creation")
		return true, nil
	}

	existing.Name = raw.Name
	*toUpdate = append(*toUpdate, existing)
	s.logger.WithField("name", existing.Name).Debug("Category staged for update")
	return false, nil
}

// SyncProducts fetches all products from the supplier hub (category by
// category) and upserts them by external id, resolving category references
// and tags along the way.
func (s *ImportService) SyncProducts(ctx context.Context, initiatedBy string) *models.ImportReport {
	report := models.NewImportReport(models.ImportKindProducts)
	s.logger.Info("Starting product import")

	raws, err := s.source.FetchAllProducts(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Product fetch unavailable")
		report.Fail(fmt.Errorf("failed to fetch products: %w", err))
		return s.finishRun(ctx, report, initiatedBy)
	}
	s.logger.WithField("records", len(raws)).Info("Fetched product records")

	// In-run memoization of resolved category references. Placeholder
	// categories are persisted immediately so later records in the same run
	// find them here instead of creating duplicates.
	resolved := make(map[string]*models.Category)

	var toCreate, toUpdate []*models.Product
	for _, raw := range raws {
		record := s.normalizer.NormalizeProduct(raw)
		created, err := s.reconcileProduct(ctx, record, resolved, &toCreate, &toUpdate)
		if err != nil {
			report.RecordFailure(record.ExternalID, err)
			s.logger.WithError(err).WithField("externalId", record.ExternalID).
				Warn("Failed to process product")
			continue
		}
		if created {
			report.RecordCreated()
		} else {
			report.RecordUpdated()
		}
	}

	if err := s.products.PersistBatch(ctx, toCreate, toUpdate); err != nil {
		report.Fail(fmt.Errorf("failed to persist product batch: %w", err))
	}

	return s.finishRun(ctx, report, initiatedBy)
}

// reconcileProduct stages a create or an update for one normalized product
// record. Returns true when the record maps to a new product.
func (s *ImportService) reconcileProduct(
	ctx context.Context,
	record NormalizedProduct,
	resolved map[string]*models.Category,
	toCreate, toUpdate *[]*models.Product,
) (bool, error) {
	if record.ExternalID == "" {
		return false, errors.New("record has no external id")
	}
	if record.Name == "" {
		return false, errors.New("record has no name")
	}
	if record.StockQty < 0 {
		return false, fmt.Errorf("stock quantity must be non-negative, got %d", record.StockQty)
	}
	if record.Price.IsNegative() {
		return false, fmt.Errorf("price must be non-negative, got %s", record.Price)
	}

	category, err := s.resolveCategory(ctx, record.CategoryExternalID, resolved)
	if err != nil {
		return false, err
	}

	tags, err := s.tags.Resolve(ctx, record.TagNames)
	if err != nil {
		return false, err
	}

	existing, err := s.products.GetByExternalID(ctx, record.ExternalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("failed to look up product: %w", err)
		}
		product := s.buildProduct(record, category)
		product.Tags = tags
		*toCreate = append(*toCreate, product)
		s.logger.WithFields(logrus.Fields{
			"name":  product.Name,
			"stock": product.StockQty,
		}).Debug("Product staged for creation")
		return true, nil
	}

	s.applyRecord(existing, record, category)
	existing.Tags = tags
	*toUpdate = append(*toUpdate, existing)
	s.logger.WithField("name", existing.Name).Debug("Product staged for update")
	return false, nil
}

// resolveCategory maps a raw category reference to a local category,
// auto-creating a placeholder when the reference dangles. The lookup-or-
// create is idempotent per external id within a run.
func (s *ImportService) resolveCategory(ctx context.Context, externalID string, resolved map[string]*models.Category) (*models.Category, error) {
	if externalID == "" {
		return nil, nil
	}
	if category, ok := resolved[externalID]; ok {
		return category, nil
	}

	category, err := s.categories.GetByExternalID(ctx, externalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up category %s: %w", externalID, err)
		}

		s.logger.WithField("categoryExternalId", externalID).
			Warn("Category not found, creating placeholder")
		extID := externalID
		category = &models.Category{
			Name:       fmt.Sprintf("Category %s", externalID),
			ExternalID: &extID,
		}
		// Persisted immediately so the placeholder is visible to the rest of
		// the run and to a concurrent run through the unique index.
		if err := s.categories.Create(ctx, category); err != nil {
			return nil, fmt.Errorf("failed to create placeholder category %s: %w", externalID, err)
		}
	}

	resolved[externalID] = category
	return category, nil
}

func (s *ImportService) buildProduct(record NormalizedProduct, category *models.Category) *models.Product {
	product := &models.Product{
		Name:        record.Name,
		Description: record.Description,
		Price:       record.Price,
		Active:      record.Active,
		StockQty:    record.StockQty,
	}
	externalID := record.ExternalID
	product.ExternalID = &externalID
	if record.CategoryExternalID != "" {
		catExtID := record.CategoryExternalID
		product.CategoryExternalID = &catExtID
	}
	if category != nil {
		categoryID := category.ID
		product.CategoryID = &categoryID
	}
	return product
}

// applyRecord overwrites the mutable fields of an existing product. The
// local id stays untouched so identity is stable across re-imports.
func (s *ImportService) applyRecord(product *models.Product, record NormalizedProduct, category *models.Category) {
	product.Name = record.Name
	product.Description = record.Description
	product.Price = record.Price
	product.Active = record.Active
	product.StockQty = record.StockQty
	if record.CategoryExternalID != "" {
		catExtID := record.CategoryExternalID
		product.CategoryExternalID = &catExtID
	} else {
		product.CategoryExternalID = nil
	}
	if category != nil {
		categoryID := category.ID
		product.CategoryID = &categoryID
	} else {
		product.CategoryID = nil
	}
}

// finishRun seals the report, persists the run row and forwards it to the
// audit sink. Persistence of the run record is best-effort: the report is
// returned to the caller either way.
func (s *ImportService) finishRun(ctx context.Context, report *models.ImportReport, initiatedBy string) *models.ImportReport {
	report.Finish()

	run := report.ToRun(initiatedBy)
	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			s.logger.WithError(err).Warn("Failed to persist import run record")
		}
	}
	s.sink.Record(ctx, run)

	s.logger.WithFields(logrus.Fields{
		"kind":    report.Kind,
		"created": report.CreatedCount,
		"updated": report.UpdatedCount,
		"failed":  report.FailedCount,
		"success": report.Success,
	}).Info(report.Message)
	return report
}
