package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder      Responder
	logger         zerolog.Logger
	projectRepo    *database.ProjectRepo
	builderRepo    *database.BuilderRepo
	tagRepo        *database.TagRepo
	blobs          services.BlobStore
	siteMode       string
	maxUploadBytes int64
	now            func() time.Time
}

func newProjectHandler(
	projectRepo *database.ProjectRepo,
	builderRepo *database.BuilderRepo,
	tagRepo *database.TagRepo,
	blobs services.BlobStore,
	siteMode string,
	maxUploadBytes int64,
	now func() time.Time,
) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		projectRepo:    projectRepo,
		builderRepo:    builderRepo,
		tagRepo:        tagRepo,
		blobs:          blobs,
		siteMode:       siteMode,
		maxUploadBytes: maxUploadBytes,
		now:            now,
	}
}

// projectIDParam parses the project id path parameter. Malformed ids are
// reported as a missing project.
func projectIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		return uuid.Nil, errs.NewNotFoundError("Project not found")
	}
	return id, nil
}

// changeProjectStatus moves a project between DRAFT and APPROVED on behalf of
// caller. Only participants, the launch lead and admins may do so.
func changeProjectStatus(ctx context.Context, projectRepo *database.ProjectRepo, caller *models.Builder, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	if status != models.StatusDraft && status != models.StatusApproved {
		return nil, errs.NewValidationError("status", "Status must be DRAFT or APPROVED")
	}

	project, err := projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapDatabaseError("find project", "Project", err)
	}
	if !project.CanManage(caller) {
		return nil, errs.NewForbiddenError("Only project members can change its status")
	}

	if err := projectRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, wrapDatabaseError("update project status", "Project", err)
	}
	project.Status = status
	return project, nil
}

// getAllProjects lists the projects of this site
// @Summary List projects
// @Description Lists projects of the configured site mode, optionally filtered by status
// @Tags Projects
// @Produce json
// @Param status query string false "DRAFT, PENDING, APPROVED or REJECTED"
// @Success 200 {array} models.Project
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := database.ProjectFilter{HackType: h.siteMode}

		if status := r.URL.Query().Get("status"); status != "" {
			filter.Status = models.ProjectStatus(strings.ToUpper(status))
			if !filter.Status.Valid() {
				h.responder.WriteError(w, errs.NewValidationError("status", "Invalid status"))
				return
			}
		}

		projects, err := h.projectRepo.FindAll(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find projects", "Projects", err))
			return
		}
		if projects == nil {
			projects = []*models.Project{}
		}

		h.responder.WriteJSON(w, projects)
	}
}

// getProject returns one project with its vote tally
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectDetail
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
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

		h.responder.WriteJSON(w, newProjectDetail(project))
	}
}

// getTags lists the known tags for the project form's suggestions
// @Summary List tags
// @Tags Projects
// @Produce json
// @Success 200 {object} TagsResponse
// @Router /tags [get]
func (h projectHandler) getTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tech, err := h.tagRepo.FindAllTech(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find tags", "Tech tags", err))
			return
		}
		domain, err := h.tagRepo.FindAllDomain(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find tags", "Domain tags", err))
			return
		}

		resp := TagsResponse{TechTags: []models.TechTag{}, DomainTags: []models.DomainTag{}}
		resp.TechTags = append(resp.TechTags, tech...)
		resp.DomainTags = append(resp.DomainTags, domain...)
		h.responder.WriteJSON(w, resp)
	}
}

// projectInput is the validated form of a project submission.
type projectInput struct {
	Title       string
	Preview     string
	Description string
	DemoURL     *string
	GithubURL   *string
	BlogURL     *string
	Members     []models.ProjectParticipant
	TechTags    []string
	DomainTags  []string
}

func optionalField(r *http.Request, key string) *string {
	value := strings.TrimSpace(r.FormValue(key))
	if value == "" {
		return nil
	}
	return &value
}

func jsonListField(r *http.Request, key string, into any) error {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return errs.NewValidationError(key, "Invalid "+key)
	}
	return nil
}

// parseProjectInput validates the submission fields of a parsed form. The
// preview is stored and measured as sent.
func parseProjectInput(r *http.Request) (projectInput, error) {
	input := projectInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Preview:     r.FormValue("preview"),
		Description: r.FormValue("description"),
		DemoURL:     optionalField(r, "demoUrl"),
		GithubURL:   optionalField(r, "githubUrl"),
		BlogURL:     optionalField(r, "blogUrl"),
	}

	if input.Title == "" {
		return input, errs.NewValidationError("title", "Title is required")
	}
	if strings.TrimSpace(input.Preview) == "" {
		return input, errs.NewValidationError("preview", "Preview is required")
	}
	if utf8.RuneCountInString(input.Preview) > models.MaxPreviewLength {
		return input, errs.NewValidationError("preview", "Preview must be 100 characters or less")
	}

	var members []MemberInput
	if err := jsonListField(r, "members", &members); err != nil {
		return input, err
	}
	seen := make(map[uuid.UUID]bool, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member.ID)
		if err != nil {
			return input, errs.NewValidationError("members", "Invalid member id")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		input.Members = append(input.Members, models.ProjectParticipant{BuilderID: id, Role: member.Role})
	}

	if err := jsonListField(r, "techTags", &input.TechTags); err != nil {
		return input, err
	}
	if err := jsonListField(r, "domainTags", &input.DomainTags); err != nil {
		return input, err
	}
	return input, nil
}

// checkMembers rejects member ids that do not belong to a builder.
func (h projectHandler) checkMembers(ctx context.Context, members []models.ProjectParticipant) error {
	ids := make([]uuid.UUID, len(members))
	for i, member := range members {
		ids[i] = member.BuilderID
	}

	missing, err := h.builderRepo.FindMissing(ctx, ids)
	if err != nil {
		return wrapDatabaseError("find members", "Builders", err)
	}
	if len(missing) > 0 {
		return errs.NewValidationError("members", "Member not found")
	}
	return nil
}

// createProject creates a draft project led by the caller
// @Summary Create project
// @Description Creates a DRAFT project in the current week with the caller as launch lead
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param preview formData string true "Preview, at most 100 characters"
// @Param members formData string false "JSON array of {id, role}"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Builder not found"
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lead, err := ctxRequireBuilder(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := parseForm(w, r, h.maxUploadBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input, err := parseProjectInput(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		thumbnail, err := formImage(r, "thumbnail")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.checkMembers(r.Context(), input.Members); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := models.Project{
			Title:        input.Title,
			Preview:      input.Preview,
			Description:  input.Description,
			Status:       models.StatusDraft,
			HackType:     h.siteMode,
			DemoURL:      input.DemoURL,
			GithubURL:    input.GithubURL,
			BlogURL:      input.BlogURL,
			LaunchLeadID: lead.ID,
			Participants: input.Members,
		}
		for _, name := range input.TechTags {
			project.TechTags = append(project.TechTags, models.TechTag{Name: name})
		}
		for _, name := range input.DomainTags {
			project.DomainTags = append(project.DomainTags, models.DomainTag{Name: name})
		}

		if thumbnail != nil {
			if project.Thumbnail, err = thumbnail.store(r.Context(), h.blobs, "thumbnails", input.Title); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		if err := h.projectRepo.CreateInCurrentWeek(r.Context(), &project, h.now()); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create project", "Project", err))
			return
		}

		created, err := h.projectRepo.FindByIDOnPrimary(r.Context(), project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created project", "Project", err))
			return
		}

		h.logger.Info().
			Str("projectID", created.ID.String()).
			Str("leadID", lead.ID.String()).
			Int("members", len(created.Participants)).
			Msg("Created project")
		h.responder.WriteJSON(w, created)
	}
}

// updateProjectStatus submits or delists a project
// @Summary Change project status
// @Description Moves a project to DRAFT or APPROVED. Callers must be a participant, the launch lead or an admin
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param status body StatusRequest true "Target status"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a project member"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID}/submit [patch]
func (h projectHandler) updateProjectStatus() http.HandlerFunc {
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

		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		project, err := changeProjectStatus(r.Context(), h.projectRepo, caller, id, req.Status)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectID", id.String()).Str("status", string(req.Status)).Msg("Changed project status")
		h.responder.WriteJSON(w, project)
	}
}
