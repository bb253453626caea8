package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type builderHandler struct {
	responder      Responder
	logger         zerolog.Logger
	builderRepo    *database.BuilderRepo
	blobs          services.BlobStore
	maxUploadBytes int64
}

func newBuilderHandler(builderRepo *database.BuilderRepo, blobs services.BlobStore, maxUploadBytes int64) builderHandler {
	logger := log.With().Str("handlerName", "builderHandler").Logger()

	return builderHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		builderRepo:    builderRepo,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
	}
}

// builderIDParam parses the builder id path parameter. Unknown ids and
// malformed ids are both reported as a missing builder.
func builderIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "builderID"))
	if err != nil {
		return uuid.Nil, errs.NewNotFoundError("Builder not found")
	}
	return id, nil
}

func (h builderHandler) writeProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	builder, err := h.builderRepo.FindProfile(r.Context(), id)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find builder", "Builder", err))
		return
	}
	h.responder.WriteJSON(w, newBuilderProfile(builder))
}

// getBuilder returns a public builder profile
// @Summary Get builder
// @Description Returns the builder with avatar, led projects, memberships and voted projects
// @Tags Builders
// @Produce json
// @Param builderID path string true "Builder ID" format(uuid)
// @Success 200 {object} BuilderProfile
// @Failure 404 {object} ErrorResponse "Builder not found"
// @Router /hackers/{builderID} [get]
func (h builderHandler) getBuilder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := builderIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writeProfile(w, r, id)
	}
}

// getCurrentBuilder returns the signed in builder's profile
// @Summary Get current builder
// @Tags Builders
// @Produce json
// @Success 200 {object} BuilderProfile
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Builder not found"
// @Router /hackers/me [get]
func (h builderHandler) getCurrentBuilder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writeProfile(w, r, caller.ID)
	}
}

// updateBuilder applies a partial profile update to the caller's own profile
// @Summary Update builder
// @Description Only name, username, bio, contact and social fields can change; other fields are ignored
// @Tags Builders
// @Accept json
// @Produce json
// @Param builderID path string true "Builder ID" format(uuid)
// @Param patch body BuilderPatch true "Profile fields"
// @Success 200 {object} BuilderProfile
// @Failure 400 {object} ErrorResponse "Invalid body"
// @Failure 401 {object} ErrorResponse "Not the caller's profile"
// @Failure 409 {object} ErrorResponse "Username is already taken"
// @Router /hackers/{builderID} [patch]
func (h builderHandler) updateBuilder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, err := builderIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if id != caller.ID {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var patch BuilderPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if err := patch.Validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.builderRepo.UpdateProfile(r.Context(), id, patch.Changes()); err != nil {
			err = wrapDatabaseError("update builder", "Builder", err)
			if errs.IsUniqueConstraintViolationError(err) {
				err = errs.NewConflictError("Username is already taken")
			}
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("builderID", id.String()).Msg("Updated builder profile")
		h.writeProfile(w, r, id)
	}
}

// uploadAvatar replaces the caller's avatar image
// @Summary Upload avatar
// @Tags Builders
// @Accept multipart/form-data
// @Produce json
// @Param builderID path string true "Builder ID" format(uuid)
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} BuilderProfile
// @Failure 400 {object} ErrorResponse "Missing or invalid image"
// @Failure 401 {object} ErrorResponse "Not the caller's profile"
// @Failure 502 {object} ErrorResponse "Storage failure"
// @Router /hackers/{builderID}/avatar [post]
func (h builderHandler) uploadAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, err := builderIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if id != caller.ID {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		if err := parseForm(w, r, h.maxUploadBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		avatar, err := formImage(r, "avatar")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if avatar == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("avatar"))
			return
		}

		image, err := avatar.store(r.Context(), h.blobs, "avatars", caller.Name)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.builderRepo.SetAvatar(r.Context(), id, image); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("set avatar", "Builder", err))
			return
		}

		h.writeProfile(w, r, id)
	}
}
