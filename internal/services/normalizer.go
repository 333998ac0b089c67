package services

import (
	"strings"

	"catalog-hub-service/internal/clients"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// NormalizedProduct is the strongly typed form of a raw supplier hub product
// record. All text/case ambiguity of the source payload is resolved here so
// reconciliation never touches raw values.
type NormalizedProduct struct {
	ExternalID         string
	Name               string
	Description        string
	Price              decimal.Decimal
	Active             bool
	StockQty           int
	CategoryExternalID string
	TagNames           []string
}

// RecordNormalizer decodes loosely typed supplier hub payloads into clean,
// typed values.
type RecordNormalizer struct {
	logger *logrus.Entry
}

// NewRecordNormalizer creates a new record normalizer
func NewRecordNormalizer(logger *logrus.Logger) *RecordNormalizer {
	return &RecordNormalizer{
		logger: logger.WithField("component", "normalizer"),
	}
}

// NormalizeProduct converts a raw product record. It never fails: an
// unparsable price falls back to zero and is logged, and the tag slots are
// collapsed into a trimmed, deduplicated list.
func (n *RecordNormalizer) NormalizeProduct(raw clients.RawProduct) NormalizedProduct {
	price, err := decimal.NewFromString(strings.TrimSpace(raw.Price))
	if err != nil {
		n.logger.WithFields(logrus.Fields{
			"externalId": raw.ExternalID,
			"price":      raw.Price,
		}).Warn("Unparsable price, defaulting to zero")
		price = decimal.Zero
	}

	return NormalizedProduct{
		ExternalID:         strings.TrimSpace(raw.ExternalID),
		Name:               strings.TrimSpace(raw.Name),
		Description:        raw.Description,
		Price:              price,
		Active:             raw.Active,
		StockQty:           raw.Stock,
		CategoryExternalID: strings.TrimSpace(raw.CategoryExternalID),
		TagNames:           CollectTagNames(raw.Tag1, raw.Tag2, raw.Tag3),
	}
}

// CollectTagNames gathers the optional tag slots into a trimmed, non-empty
// list, deduplicated case-insensitively while preserving first-seen order
// and casing.
func CollectTagNames(slots ...*string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		name := strings.TrimSpace(*slot)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	return names
}
