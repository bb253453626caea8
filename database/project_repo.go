package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	HackType string
	Status   models.ProjectStatus // empty means any status
}

// statusRank orders statuses by declaration order rather than by name.
var statusRank = func() string {
	var b strings.Builder
	b.WriteString("CASE projects.status")
	for i, status := range models.ProjectStatuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", status, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(models.ProjectStatuses))
	return b.String()
}()

func withProjectRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Thumbnail").
		Preload("LaunchLead.Avatar").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Participants.Builder.Avatar").
		Preload("TechTags").
		Preload("DomainTags").
		Preload("Votes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// FindAll returns the projects of one site mode. Status sorts ascending when
// listing PENDING projects and descending otherwise; ties go newest first.
func (r *ProjectRepo) FindAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	query := withProjectRelations(r.db.WithContext(ctx)).Where("projects.hack_type = ?", filter.HackType)
	if filter.Status != "" {
		query = query.Where("projects.status = ?", filter.Status)
	}

	direction := "DESC"
	if filter.Status == models.StatusPending {
		direction = "ASC"
	}

	var projects []*models.Project
	err := query.
		Order(statusRank + " " + direction).
		Order("projects.created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindByID returns a project with all nested relations.
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := withProjectRelations(r.db.WithContext(ctx)).
		Preload("Weeks").
		First(&project, "projects.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDOnPrimary is FindByID pinned to the primary connection, for
// reading back a project right after writing it.
func (r *ProjectRepo) FindByIDOnPrimary(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := withProjectRelations(r.db.WithContext(ctx).Clauses(dbresolver.Write)).
		Preload("Weeks").
		First(&project, "projects.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Exists reports whether a project with the given id is stored.
func (r *ProjectRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CreateInCurrentWeek stores project in the week covering now, creating that
// week when it does not exist yet. Tags are matched by name and created when
// missing. The week, tags, project, participants, thumbnail record and week
// link are written in one transaction.
func (r *ProjectRepo) CreateInCurrentWeek(ctx context.Context, project *models.Project, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		week, err := NewWeekRepo(tx).CurrentOrCreate(ctx, now)
		if err != nil {
			return err
		}

		tags := NewTagRepo(tx)
		if project.TechTags, err = tags.EnsureTech(ctx, techTagNames(project.TechTags)); err != nil {
			return err
		}
		if project.DomainTags, err = tags.EnsureDomain(ctx, domainTagNames(project.DomainTags)); err != nil {
			return err
		}

		project.Weeks = []models.Week{*week}
		if project.StartDate.IsZero() {
			project.StartDate = now
		}
		return tx.Omit("Weeks.*", "TechTags.*", "DomainTags.*").Create(project).Error
	})
}

// UpdateStatus moves a project to status.
func (r *ProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError("Project not found")
	}
	return nil
}

func techTagNames(tags []models.TechTag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

func domainTagNames(tags []models.DomainTag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}
