package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Week groups the projects submitted during one seven day window.
type Week struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Number      int       `json:"number" db:"number" gorm:"not null;uniqueIndex:idx_week_number"`
	StartDate   time.Time `json:"startDate" db:"start_date" gorm:"not null;uniqueIndex:idx_week_start_date"`
	EndDate     time.Time `json:"endDate" db:"end_date" gorm:"not null;index"`
	Theme       string    `json:"theme" db:"theme" gorm:"type:text;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

func (w *Week) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (w *Week) Covers(t time.Time) bool {
	return !t.Before(w.StartDate) && !t.After(w.EndDate)
}
