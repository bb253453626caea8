package models

import (
	"time"

	"github.com/google/uuid"
)

type VoteType string

const (
	Upvote   VoteType = "UPVOTE"
	Downvote VoteType = "DOWNVOTE"
)

func (v VoteType) Valid() bool {
	return v == Upvote || v == Downvote
}

// ProjectVote is keyed on (project, builder): a builder holds at most one
// vote per project and changing direction overwrites it.
type ProjectVote struct {
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;primaryKey"`
	BuilderID uuid.UUID `json:"builderId" db:"builder_id" gorm:"type:uuid;primaryKey;index"`
	VoteType  VoteType  `json:"voteType" db:"vote_type" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID"`
}
