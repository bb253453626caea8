package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleBuilder = "BUILDER"
	RoleAdmin   = "ADMIN"
)

// Builder is a community member. Builders are created when they first sign in
// through the identity provider and are addressed by ExternalID from then on.
type Builder struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ExternalID  string     `json:"-" db:"external_id" gorm:"type:text;not null;uniqueIndex:idx_builder_external_id"`
	Name        string     `json:"name" db:"name" gorm:"type:text;not null"`
	Username    *string    `json:"username,omitempty" db:"username" gorm:"type:text;uniqueIndex:idx_builder_username"`
	Bio         *string    `json:"bio,omitempty" db:"bio" gorm:"type:text"`
	GithubURL   *string    `json:"githubUrl,omitempty" db:"github_url" gorm:"column:github_url;type:text"`
	PhoneNumber *string    `json:"phoneNumber,omitempty" db:"phone_number" gorm:"type:text"`
	LinkedinURL *string    `json:"linkedinUrl,omitempty" db:"linkedin_url" gorm:"column:linkedin_url;type:text"`
	TwitterURL  *string    `json:"twitterUrl,omitempty" db:"twitter_url" gorm:"column:twitter_url;type:text"`
	WebsiteURL  *string    `json:"websiteUrl,omitempty" db:"website_url" gorm:"column:website_url;type:text"`
	DiscordName *string    `json:"discordName,omitempty" db:"discord_name" gorm:"type:text"`
	Role        string     `json:"role" db:"role" gorm:"type:text;not null;default:BUILDER"`
	AvatarID    *uuid.UUID `json:"avatarId,omitempty" db:"avatar_id" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	Avatar      *Image               `json:"avatar,omitempty" gorm:"foreignKey:AvatarID;references:ID"`
	LedProjects []Project            `json:"ledProjects,omitempty" gorm:"foreignKey:LaunchLeadID;references:ID"`
	Projects    []ProjectParticipant `json:"projects,omitempty" gorm:"foreignKey:BuilderID;references:ID"`
	Votes       []ProjectVote        `json:"-" gorm:"foreignKey:BuilderID;references:ID"`
}

func (b *Builder) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Role == "" {
		b.Role = RoleBuilder
	}
	return nil
}

func (b *Builder) IsAdmin() bool {
	return b != nil && b.Role == RoleAdmin
}

// Image is a blob stored in object storage, referenced by URL.
type Image struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	URL       string    `json:"url" db:"url" gorm:"type:text;not null"`
	Alt       *string   `json:"alt,omitempty" db:"alt" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
