package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardReport is a point-in-time snapshot of the catalog.
type DashboardReport struct {
	TotalProducts       int64           `json:"totalProducts"`
	ActiveProducts      int64           `json:"activeProducts"`
	OutOfStockProducts  int64           `json:"outOfStockProducts"`
	TotalCategories     int64           `json:"totalCategories"`
	TotalTags           int64           `json:"totalTags"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	AveragePrice        decimal.Decimal `json:"averagePrice"`
	GeneratedAt         time.Time       `json:"generatedAt"`
}

// ProductExport is the flattened product row of a catalog export.
type ProductExport struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	StockQty     int             `json:"stockQuantity"`
	ExternalID   *string         `json:"externalId,omitempty"`
	CategoryName string          `json:"categoryName"`
	Tags         []string        `json:"tags"`
}

// CategoryExport is a category row of a catalog export.
type CategoryExport struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ExternalID *string   `json:"externalId,omitempty"`
	ItemCount  int64     `json:"itemCount"`
}

// TagExport is a tag row of a catalog export.
type TagExport struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	ActiveItemCount int64     `json:"activeItemCount"`
}

// CatalogExport is the full export document.
type CatalogExport struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Products    []ProductExport  `json:"products"`
	Categories  []CategoryExport `json:"categories"`
	Tags        []TagExport      `json:"tags"`
	Statistics  DashboardReport  `json:"statistics"`
}
