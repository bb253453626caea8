package database

import (
	"context"
	"strings"

	"github.com/rpupo63/builders-showcase-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAllTech returns every tech tag ordered by name.
func (r *TagRepo) FindAllTech(ctx context.Context) ([]models.TechTag, error) {
	var tags []models.TechTag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

// FindAllDomain returns every domain tag ordered by name.
func (r *TagRepo) FindAllDomain(ctx context.Context) ([]models.DomainTag, error) {
	var tags []models.DomainTag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

// EnsureTech returns the tech tags with the given names, creating missing ones.
func (r *TagRepo) EnsureTech(ctx context.Context, names []string) ([]models.TechTag, error) {
	names = normalizeTagNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	rows := make([]models.TechTag, len(names))
	for i, name := range names {
		rows[i] = models.TechTag{Name: name}
	}
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var tags []models.TechTag
	err := db.Clauses(dbresolver.Write).Where("name IN ?", names).Order("name ASC").Find(&tags).Error
	return tags, err
}

// EnsureDomain returns the domain tags with the given names, creating missing ones.
func (r *TagRepo) EnsureDomain(ctx context.Context, names []string) ([]models.DomainTag, error) {
	names = normalizeTagNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	rows := make([]models.DomainTag, len(names))
	for i, name := range names {
		rows[i] = models.DomainTag{Name: name}
	}
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var tags []models.DomainTag
	err := db.Clauses(dbresolver.Write).Where("name IN ?", names).Order("name ASC").Find(&tags).Error
	return tags, err
}

// normalizeTagNames trims names and drops blanks and duplicates.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
