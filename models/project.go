package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	StatusDraft    ProjectStatus = "DRAFT"
	StatusPending  ProjectStatus = "PENDING"
	StatusApproved ProjectStatus = "APPROVED"
	StatusRejected ProjectStatus = "REJECTED"
)

// ProjectStatuses lists every status in declaration order. Listing sorts by
// this order, not alphabetically.
var ProjectStatuses = []ProjectStatus{StatusDraft, StatusPending, StatusApproved, StatusRejected}

func (s ProjectStatus) Valid() bool {
	for _, known := range ProjectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// MaxPreviewLength is the longest preview a project may carry, in characters.
const MaxPreviewLength = 100

// Project is a build shipped by a launch lead and their team.
type Project struct {
	ID           uuid.UUID     `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title        string        `json:"title" db:"title" gorm:"type:text;not null"`
	Preview      string        `json:"preview" db:"preview" gorm:"type:text;not null"`
	Description  string        `json:"description" db:"description" gorm:"type:text;not null;default:''"`
	Status       ProjectStatus `json:"status" db:"status" gorm:"type:text;not null;default:DRAFT;index:idx_project_site_status"`
	HackType     string        `json:"hack_type" db:"hack_type" gorm:"column:hack_type;type:text;not null;index:idx_project_site_status"`
	DemoURL      *string       `json:"demoUrl,omitempty" db:"demo_url" gorm:"column:demo_url;type:text"`
	GithubURL    *string       `json:"githubUrl,omitempty" db:"github_url" gorm:"column:github_url;type:text"`
	BlogURL      *string       `json:"blogUrl,omitempty" db:"blog_url" gorm:"column:blog_url;type:text"`
	StartDate    time.Time     `json:"startDate" db:"start_date" gorm:"not null"`
	IsBroken     bool          `json:"is_broken" db:"is_broken" gorm:"column:is_broken;not null;default:false"`
	IsStarred    bool          `json:"is_starred" db:"is_starred" gorm:"column:is_starred;not null;default:false"`
	LaunchLeadID uuid.UUID     `json:"launchLeadId" db:"launch_lead_id" gorm:"type:uuid;not null;index"`
	ThumbnailID  *uuid.UUID    `json:"thumbnailId,omitempty" db:"thumbnail_id" gorm:"type:uuid"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at" gorm:"index"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`

	LaunchLead   *Builder             `json:"launchLead,omitempty" gorm:"foreignKey:LaunchLeadID;references:ID"`
	Thumbnail    *Image               `json:"thumbnail,omitempty" gorm:"foreignKey:ThumbnailID;references:ID"`
	Participants []ProjectParticipant `json:"participants" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Votes        []ProjectVote        `json:"votes" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	TechTags     []TechTag            `json:"techTags" gorm:"many2many:project_tech_tags"`
	DomainTags   []DomainTag          `json:"domainTags" gorm:"many2many:project_domain_tags"`
	Weeks        []Week               `json:"weeks,omitempty" gorm:"many2many:project_weeks"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return nil
}

// CanManage reports whether b may edit, submit or delist the project:
// the launch lead, any participant, or an admin. A nil builder never can.
func (p *Project) CanManage(b *Builder) bool {
	if b == nil || p == nil {
		return false
	}
	if b.IsAdmin() || p.LaunchLeadID == b.ID {
		return true
	}
	for _, participant := range p.Participants {
		if participant.BuilderID == b.ID {
			return true
		}
	}
	return false
}

// ProjectParticipant is a builder's membership on a project team.
type ProjectParticipant struct {
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;primaryKey"`
	BuilderID uuid.UUID `json:"builderId" db:"builder_id" gorm:"type:uuid;primaryKey;index"`
	Role      string    `json:"role" db:"role" gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID"`
	Builder *Builder `json:"builder,omitempty" gorm:"foreignKey:BuilderID;references:ID"`
}
