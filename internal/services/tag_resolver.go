package services

import (
	"context"
	"errors"
	"fmt"

	"catalog-hub-service/internal/models"
	"catalog-hub-service/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TagResolver maps a product's tag-name list to tag entities, creating the
// minimum set of new tags required in one batched write.
type TagResolver struct {
	tags   repository.TagRepositoryInterface
	logger *logrus.Entry
}

// NewTagResolver creates a new tag resolver
func NewTagResolver(tags repository.TagRepositoryInterface, logger *logrus.Logger) *TagResolver {
	return &TagResolver{
		tags:   tags,
		logger: logger.WithField("component", "tag_resolver"),
	}
}

// Resolve normalizes the requested names and returns the full assignment set
// for a product: matched existing tags plus newly created ones. An empty
// normalized list yields an empty set, so a re-import with no tags strips
// the product's tags (full replace semantics).
func (r *TagResolver) Resolve(ctx context.Context, requestedNames []string) ([]models.Tag, error) {
	names := normalizeTagNames(requestedNames)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, models.TagNameKey(name))
	}

	existing, err := r.tags.FindByNameKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	byKey := make(map[string]models.Tag, len(existing))
	for _, tag := range existing {
		byKey[tag.NameKey] = tag
	}

	var created []*models.Tag
	for _, name := range names {
		if _, ok := byKey[models.TagNameKey(name)]; ok {
			continue
		}
		// First-seen casing wins for the stored name.
		tag := models.NewTag(name)
		created = append(created, &tag)
	}

	if len(created) > 0 {
		if err := r.tags.CreateBatch(ctx, created); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("failed to create tags: %w", err)
			}
			// Another run created one of these names between our lookup and
			// the write. The unique index caught it; re-resolve from storage
			// and retry only the names still missing instead of failing the
			// record.
			r.logger.WithError(err).Debug("Tag name conflict, re-resolving from storage")
			existing, err = r.tags.FindByNameKeys(ctx, keys)
			if err != nil {
				return nil, fmt.Errorf("failed to re-resolve tags after conflict: %w", err)
			}
			byKey = make(map[string]models.Tag, len(existing))
			for _, tag := range existing {
				byKey[tag.NameKey] = tag
			}
			var retry []*models.Tag
			for _, name := range names {
				if _, ok := byKey[models.TagNameKey(name)]; ok {
					continue
				}
				tag := models.NewTag(name)
				retry = append(retry, &tag)
			}
			if len(retry) > 0 {
				if err := r.tags.CreateBatch(ctx, retry); err != nil {
					return nil, fmt.Errorf("failed to create tags after conflict: %w", err)
				}
				for _, tag := range retry {
					byKey[tag.NameKey] = *tag
				}
			}
		} else {
			for _, tag := range created {
				byKey[tag.NameKey] = *tag
			}
		}
	}

	assigned := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if tag, ok := byKey[models.TagNameKey(name)]; ok {
			assigned = append(assigned, tag)
		}
	}
	return assigned, nil
}

// normalizeTagNames trims, drops empties and deduplicates case-insensitively
// preserving first-seen order.
func normalizeTagNames(names []string) []string {
	ptrs := make([]*string, len(names))
	for i := range names {
		ptrs[i] = &names[i]
	}
	return CollectTagNames(ptrs...)
}
