package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TechTag names a technology used by a project.
type TechTag struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name string    `json:"name" db:"name" gorm:"type:text;not null;uniqueIndex:idx_tech_tag_name"`
}

func (t *TechTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// DomainTag names the problem domain a project targets.
type DomainTag struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name string    `json:"name" db:"name" gorm:"type:text;not null;uniqueIndex:idx_domain_tag_name"`
}

func (t *DomainTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
