package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type VoteRepo struct {
	db *gorm.DB
}

func NewVoteRepo(db *gorm.DB) *VoteRepo {
	return &VoteRepo{db}
}

// Upsert sets the builder's vote on the project to voteType in a single
// INSERT ... ON CONFLICT DO UPDATE, so concurrent votes from the same builder
// never race into a duplicate key error.
func (r *VoteRepo) Upsert(ctx context.Context, projectID, builderID uuid.UUID, voteType models.VoteType) (*models.ProjectVote, error) {
	db := r.db.WithContext(ctx)

	vote := models.ProjectVote{
		ProjectID: projectID,
		BuilderID: builderID,
		VoteType:  voteType,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "builder_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote_type", "updated_at"}),
	}).Create(&vote).Error
	if err != nil {
		return nil, err
	}

	// Re-read so created_at reflects the original vote after an overwrite.
	var stored models.ProjectVote
	if err := db.Clauses(dbresolver.Write).Where("project_id = ? AND builder_id = ?", projectID, builderID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes the builder's vote on the project.
func (r *VoteRepo) Delete(ctx context.Context, projectID, builderID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND builder_id = ?", projectID, builderID).
		Delete(&models.ProjectVote{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError("Vote not found")
	}
	return nil
}

// FindByProject returns every vote on a project, oldest first.
func (r *VoteRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectVote, error) {
	var votes []models.ProjectVote
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&votes).Error
	return votes, err
}
