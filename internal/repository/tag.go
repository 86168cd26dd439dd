package repository

import (
	"context"
	"strings"

	"devhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines interface for tag catalog operations
type TagRepository interface {
	FindOrCreate(ctx context.Context, name string) (*models.Tag, error)
	ListWithUsage(ctx context.Context) ([]models.TagUsage, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	var tag *models.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := upsertTags(tx, []string{name})
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return models.NewValidationError("Tag name is required")
		}
		tag = &tags[0]
		return nil
	})
	return tag, err
}

// ListWithUsage returns every tag with its post count, most used first.
func (r *tagRepository) ListWithUsage(ctx context.Context) ([]models.TagUsage, error) {
	var rows []struct {
		Name       string
		UsageCount int
	}
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.name AS name, COUNT(post_tags.post_id) AS usage_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("usage_count DESC, tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.TagUsage, len(rows))
	for i, row := range rows {
		out[i] = models.TagUsage{Name: row.Name, Count: row.UsageCount}
	}
	return out, nil
}

// distinctTagNames trims names, drops blanks and keeps the first occurrence of each.
func distinctTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// upsertTags resolves names to tags inside tx, creating the missing ones.
// The unique index on name makes concurrent creation of the same tag collapse
// into one row: the losing insert does nothing and the follow-up select finds the winner.
func upsertTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	names = distinctTagNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	for _, name := range names {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.Tag{Name: name}).Error
		if err != nil {
			return nil, err
		}
	}

	var found []models.Tag
	if err := tx.Where("name IN ?", names).Find(&found).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]models.Tag, len(found))
	for _, t := range found {
		byName[t.Name] = t
	}
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if t, ok := byName[name]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}
