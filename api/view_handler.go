package api

import (
	"bytes"
	"net/http"

	"github.com/google/uuid"

	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/views"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type viewHandler struct {
	responder   Responder
	logger      zerolog.Logger
	renderer    *views.Renderer
	projectRepo *database.ProjectRepo
	ledger      voteLedger
}

func newViewHandler(renderer *views.Renderer, projectRepo *database.ProjectRepo, ledger voteLedger) viewHandler {
	logger := log.With().Str("handlerName", "viewHandler").Logger()

	return viewHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		renderer:    renderer,
		projectRepo: projectRepo,
		ledger:      ledger,
	}
}

func projectPageURL(id uuid.UUID) string {
	return "/projects/" + id.String() + "/view"
}

// viewProject renders the project detail page
// @Summary Project page
// @Tags Views
// @Produce html
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {string} string "HTML page"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID}/view [get]
func (h viewHandler) viewProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "Project", err))
			return
		}

		var page bytes.Buffer
		if err := h.renderer.RenderProject(&page, project, ctxGetBuilder(r.Context())); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("render project page", err))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := page.WriteTo(w); err != nil {
			h.logger.Error().Err(err).Msg("error writing page")
		}
	}
}

// toggleVote handles the vote buttons on the project page
// @Summary Toggle vote from the project page
// @Tags Views
// @Accept x-www-form-urlencoded
// @Param projectID path string true "Project ID" format(uuid)
// @Param voteType formData string true "UPVOTE or DOWNVOTE"
// @Success 303 "Redirect to the project page"
// @Router /projects/{projectID}/view/vote [post]
func (h viewHandler) toggleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		clicked := models.VoteType(r.FormValue("voteType"))
		if _, err := h.ledger.Toggle(r.Context(), id, caller.ID, clicked); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		http.Redirect(w, r, projectPageURL(id), http.StatusSeeOther)
	}
}

// changeStatus handles the submit and delist buttons on the project page
// @Summary Change status from the project page
// @Tags Views
// @Accept x-www-form-urlencoded
// @Param projectID path string true "Project ID" format(uuid)
// @Param status formData string true "DRAFT or APPROVED"
// @Success 303 "Redirect to the project page"
// @Failure 403 {object} ErrorResponse "Not a project member"
// @Router /projects/{projectID}/view/status [post]
func (h viewHandler) changeStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		status := models.ProjectStatus(r.FormValue("status"))
		if _, err := changeProjectStatus(r.Context(), h.projectRepo, caller, id, status); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectID", id.String()).Str("status", string(status)).Msg("Changed project status from page")
		http.Redirect(w, r, projectPageURL(id), http.StatusSeeOther)
	}
}
