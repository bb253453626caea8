package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type BuilderRepo struct {
	db *gorm.DB
}

func NewBuilderRepo(db *gorm.DB) *BuilderRepo {
	return &BuilderRepo{db}
}

// FindByID returns the builder row without relations.
func (r *BuilderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Builder, error) {
	var builder models.Builder
	if err := r.db.WithContext(ctx).Preload("Avatar").First(&builder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &builder, nil
}

// FindByExternalID maps an identity provider user id to a builder.
func (r *BuilderRepo) FindByExternalID(ctx context.Context, externalID string) (*models.Builder, error) {
	var builder models.Builder
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&builder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFoundError("Builder not found")
	}
	if err != nil {
		return nil, err
	}
	return &builder, nil
}

// FindMissing returns the ids in ids that no builder has.
func (r *BuilderRepo) FindMissing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Builder{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// FindProfile loads a builder with everything the profile page shows:
// led projects, memberships and cast votes, each with the nested project data.
// The three lists are independent and load concurrently. Votes are ordered by
// when they were first cast; changing direction does not move a vote.
func (r *BuilderRepo) FindProfile(ctx context.Context, id uuid.UUID) (*models.Builder, error) {
	builder, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	db := r.db.WithContext(gctx)

	g.Go(func() error {
		return db.
			Preload("Thumbnail").
			Preload("Votes").
			Where("launch_lead_id = ?", id).
			Order("created_at DESC").
			Find(&builder.LedProjects).Error
	})
	g.Go(func() error {
		return db.
			Preload("Project.Thumbnail").
			Preload("Project.Votes").
			Where("builder_id = ?", id).
			Order("created_at DESC").
			Find(&builder.Projects).Error
	})
	g.Go(func() error {
		return db.
			Preload("Project.Thumbnail").
			Preload("Project.LaunchLead.Avatar").
			Preload("Project.Votes").
			Where("builder_id = ?", id).
			Order("created_at DESC").
			Find(&builder.Votes).Error
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return builder, nil
}

// Add inserts a new builder into the database
func (r *BuilderRepo) Add(ctx context.Context, builder *models.Builder) error {
	return r.db.WithContext(ctx).Create(builder).Error
}

// UpdateProfile applies column changes to the builder with the given id.
func (r *BuilderRepo) UpdateProfile(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.Builder{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError("Builder not found")
	}
	return nil
}

// SetAvatar stores image and points the builder's avatar at it.
func (r *BuilderRepo) SetAvatar(ctx context.Context, id uuid.UUID, image *models.Image) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return err
		}
		result := tx.Model(&models.Builder{}).Where("id = ?", id).Update("avatar_id", image.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewNotFoundError("Builder not found")
		}
		return nil
	})
}
