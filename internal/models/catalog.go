package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products in the local catalog. ExternalID is the join key
// to the supplier hub; it is nil for categories created locally.
type Category struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	ExternalID *string   `gorm:"type:varchar(255);uniqueIndex:idx_categories_external_id" json:"externalId,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}

// Product is a catalog entry. ID is stable across re-imports; ExternalID is
// the reconciliation join key. CategoryExternalID keeps the raw reference as
// seen in the source even after CategoryID has been resolved.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string          `gorm:"type:varchar(500);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Active      bool            `gorm:"default:true" json:"active"`
	StockQty    int             `gorm:"default:0" json:"stockQuantity"`

	ExternalID         *string `gorm:"type:varchar(255);uniqueIndex:idx_products_external_id" json:"externalId,omitempty"`
	CategoryExternalID *string `gorm:"type:varchar(255)" json:"categoryExternalId,omitempty"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index:idx_products_category" json:"categoryId,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Tags []Tag `gorm:"many2many:product_tags" json:"tags,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// Tag is shared across products. Name keeps the casing of the first record
// that introduced it; NameKey is the case-folded form carrying the unique
// constraint, so "Promo" and "promo" resolve to the same row.
type Tag struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name    string    `gorm:"type:varchar(120);not null" json:"name"`
	NameKey string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_tags_name_key" json:"-"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Products []Product `gorm:"many2many:product_tags" json:"-"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// NewTag builds a tag from a display name, deriving the case-folded key.
func NewTag(name string) Tag {
	trimmed := strings.TrimSpace(name)
	return Tag{
		ID:      uuid.New(),
		Name:    trimmed,
		NameKey: TagNameKey(trimmed),
	}
}

// TagNameKey returns the case-folded form used for tag uniqueness.
func TagNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
