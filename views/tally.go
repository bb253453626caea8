package views

import (
	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/models"
)

// Tally is the vote count of a project. It is derived from the vote list on
// every read and never stored.
type Tally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Net       int `json:"net"`
}

func TallyVotes(votes []models.ProjectVote) Tally {
	var t Tally
	for _, vote := range votes {
		switch vote.VoteType {
		case models.Upvote:
			t.Upvotes++
		case models.Downvote:
			t.Downvotes++
		}
	}
	t.Net = t.Upvotes - t.Downvotes
	return t
}

// Apply returns the tally after a viewer's vote moves from previous to next,
// either of which may be nil for "no vote". It is the optimistic update shown
// before the next full fetch.
func (t Tally) Apply(previous, next *models.VoteType) Tally {
	if previous != nil {
		switch *previous {
		case models.Upvote:
			t.Upvotes--
		case models.Downvote:
			t.Downvotes--
		}
	}
	if next != nil {
		switch *next {
		case models.Upvote:
			t.Upvotes++
		case models.Downvote:
			t.Downvotes++
		}
	}
	t.Net = t.Upvotes - t.Downvotes
	return t
}

// ViewerVote returns the direction builderID voted, or nil.
func ViewerVote(votes []models.ProjectVote, builderID uuid.UUID) *models.VoteType {
	for _, vote := range votes {
		if vote.BuilderID == builderID {
			v := vote.VoteType
			return &v
		}
	}
	return nil
}

// NextVote is the toggle behind the vote buttons: pressing the direction
// already held clears the vote, anything else switches to clicked.
func NextVote(current *models.VoteType, clicked models.VoteType) *models.VoteType {
	if current != nil && *current == clicked {
		return nil
	}
	return &clicked
}
