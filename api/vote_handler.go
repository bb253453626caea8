package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/views"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// voteLedger records at most one vote per builder and project.
type voteLedger struct {
	voteRepo    *database.VoteRepo
	projectRepo *database.ProjectRepo
}

// Cast creates the builder's vote or overwrites its direction.
func (l voteLedger) Cast(ctx context.Context, projectID, builderID uuid.UUID, voteType models.VoteType) (*models.ProjectVote, error) {
	if !voteType.Valid() {
		return nil, errs.NewValidationError("voteType", "Invalid vote type")
	}

	exists, err := l.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return nil, wrapDatabaseError("find project", "Project", err)
	}
	if !exists {
		return nil, errs.NewNotFoundError("Project not found")
	}

	vote, err := l.voteRepo.Upsert(ctx, projectID, builderID, voteType)
	if err != nil {
		return nil, wrapDatabaseError("cast vote", "Vote", err)
	}
	voteWritesTotal.WithLabelValues("cast", string(voteType)).Inc()
	return vote, nil
}

// Retract deletes the builder's vote. A missing vote is a not-found error.
func (l voteLedger) Retract(ctx context.Context, projectID, builderID uuid.UUID) error {
	if err := l.voteRepo.Delete(ctx, projectID, builderID); err != nil {
		return wrapDatabaseError("retract vote", "Vote", err)
	}
	voteWritesTotal.WithLabelValues("retract", "").Inc()
	return nil
}

// Toggle applies a click on the vote button for clicked: the same direction
// as the current vote retracts it, anything else casts clicked. The returned
// tally is the one read before the write with the change applied; it can lag
// behind concurrent voters until the next full fetch.
func (l voteLedger) Toggle(ctx context.Context, projectID, builderID uuid.UUID, clicked models.VoteType) (VoteToggle, error) {
	if !clicked.Valid() {
		return VoteToggle{}, errs.NewValidationError("voteType", "Invalid vote type")
	}

	votes, err := l.voteRepo.FindByProject(ctx, projectID)
	if err != nil {
		return VoteToggle{}, wrapDatabaseError("find votes", "Votes", err)
	}
	current := views.ViewerVote(votes, builderID)

	next := views.NextVote(current, clicked)
	if next == nil {
		err = l.Retract(ctx, projectID, builderID)
	} else {
		_, err = l.Cast(ctx, projectID, builderID, *next)
	}
	if err != nil {
		return VoteToggle{}, err
	}

	return VoteToggle{
		VoteType: next,
		Tally:    views.TallyVotes(votes).Apply(current, next),
	}, nil
}

type voteHandler struct {
	responder Responder
	logger    zerolog.Logger
	ledger    voteLedger
}

func newVoteHandler(ledger voteLedger) voteHandler {
	logger := log.With().Str("handlerName", "voteHandler").Logger()

	return voteHandler{
		responder: NewResponder(logger),
		logger:    logger,
		ledger:    ledger,
	}
}

// castVote records the caller's vote on a project
// @Summary Cast vote
// @Description Creates the caller's vote or changes its direction
// @Tags Votes
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param vote body VoteRequest true "UPVOTE or DOWNVOTE"
// @Success 200 {object} models.ProjectVote
// @Failure 400 {object} ErrorResponse "Invalid vote type"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Builder or project not found"
// @Router /projects/{projectID}/vote [post]
func (h voteHandler) castVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewValidationError("voteType", "Invalid vote type"))
			return
		}

		vote, err := h.ledger.Cast(r.Context(), projectID, caller.ID, req.VoteType)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, vote)
	}
}

// toggleVote presses a vote button on behalf of the caller
// @Summary Toggle vote
// @Description Pressing the direction already held clears the vote; anything else switches to it. Returns the caller's vote and the updated tally
// @Tags Votes
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param vote body VoteRequest true "UPVOTE or DOWNVOTE"
// @Success 200 {object} VoteToggle
// @Failure 400 {object} ErrorResponse "Invalid vote type"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID}/vote/toggle [post]
func (h voteHandler) toggleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewValidationError("voteType", "Invalid vote type"))
			return
		}

		toggle, err := h.ledger.Toggle(r.Context(), projectID, caller.ID, req.VoteType)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, toggle)
	}
}

// retractVote removes the caller's vote on a project
// @Summary Retract vote
// @Tags Votes
// @Param projectID path string true "Project ID" format(uuid)
// @Success 204 "Vote removed"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Vote not found"
// @Router /projects/{projectID}/vote [delete]
func (h voteHandler) retractVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Vote not found"))
			return
		}

		if err := h.ledger.Retract(r.Context(), projectID, caller.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteNoContent(w)
	}
}
