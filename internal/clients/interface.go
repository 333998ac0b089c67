package clients

import (
	"context"
	"fmt"
	"time"
)

// SourceClient defines the contract for fetching catalog records from the
// remote supplier hub. FetchAllProducts returns an error only when the
// category listing itself cannot be fetched; per-category product fetch
// failures are recovered locally and contribute zero products.
type SourceClient interface {
	FetchCategories(ctx context.Context) ([]RawCategory, error)
	FetchProductsByCategory(ctx context.Context, externalCategoryID string) ([]RawProduct, error)
	FetchAllProducts(ctx context.Context) ([]RawProduct, error)
}

// RawCategory is a category record as delivered by the supplier hub.
type RawCategory struct {
	ExternalID string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	Tag1       *string   `json:"tag1,omitempty"`
	Tag2       *string   `json:"tag2,omitempty"`
	Tag3       *string   `json:"tag3,omitempty"`
}

// RawProduct is a product record as delivered by the supplier hub. The
// source is loosely typed: price arrives as free text and field name casing
// is inconsistent ("Stock", "CategoryId"); encoding/json matches struct tags
// case-insensitively, which absorbs further drift.
type RawProduct struct {
	ExternalID         string  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Price              string  `json:"price"`
	Active             bool    `json:"active"`
	Stock              int     `json:"Stock"`
	CategoryExternalID string  `json:"CategoryId"`
	Tag1               *string `json:"tag1,omitempty"`
	Tag2               *string `json:"tag2,omitempty"`
	Tag3               *string `json:"tag3,omitempty"`
}

// StatusError is returned when the supplier hub answers with a non-2xx
// status code.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supplier hub returned status %d for %s", e.StatusCode, e.Path)
}

// SourceUnavailableError is returned when the circuit breaker is open and
// requests are being rejected without reaching the source.
type SourceUnavailableError struct {
	Path string
}

func (e *SourceUnavailableError) Error() string {
	return "supplier hub temporarily unavailable (circuit open): " + e.Path
}
