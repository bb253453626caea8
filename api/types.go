package api

import (
	"strings"
	"time"

	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/views"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler  healthHandler
	builderHandler builderHandler
	projectHandler projectHandler
	voteHandler    voteHandler
	viewHandler    viewHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}

// VotedProject is one entry of a profile's vote history.
type VotedProject struct {
	VoteType  models.VoteType `json:"voteType"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Project   *models.Project `json:"project"`
}

// BuilderProfile is a builder with led projects, memberships and the
// flattened list of projects they voted on. The lists shadow the embedded
// builder's so they are always present, empty or not.
type BuilderProfile struct {
	*models.Builder
	LedProjects   []models.Project            `json:"ledProjects"`
	Projects      []models.ProjectParticipant `json:"projects"`
	VotedProjects []VotedProject              `json:"votedProjects"`
}

func newBuilderProfile(builder *models.Builder) BuilderProfile {
	profile := BuilderProfile{
		Builder:     builder,
		LedProjects: builder.LedProjects,
		Projects:    builder.Projects,
	}
	if profile.LedProjects == nil {
		profile.LedProjects = []models.Project{}
	}
	if profile.Projects == nil {
		profile.Projects = []models.ProjectParticipant{}
	}

	voted := make([]VotedProject, 0, len(builder.Votes))
	for _, vote := range builder.Votes {
		voted = append(voted, VotedProject{
			VoteType:  vote.VoteType,
			CreatedAt: vote.CreatedAt,
			UpdatedAt: vote.UpdatedAt,
			Project:   vote.Project,
		})
	}
	profile.VotedProjects = voted
	return profile
}

// BuilderPatch lists the profile fields a builder may change. Anything else
// in the request body is ignored.
type BuilderPatch struct {
	Name        *string `json:"name"`
	Username    *string `json:"username"`
	Bio         *string `json:"bio"`
	GithubURL   *string `json:"githubUrl"`
	PhoneNumber *string `json:"phoneNumber"`
	LinkedinURL *string `json:"linkedinUrl"`
	TwitterURL  *string `json:"twitterUrl"`
	WebsiteURL  *string `json:"websiteUrl"`
	DiscordName *string `json:"discordName"`
}

func (p BuilderPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return errs.NewValidationError("name", "Name cannot be empty")
	}
	return nil
}

// Changes maps the fields present in the patch to their columns.
func (p BuilderPatch) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	set := func(column string, value *string) {
		if value != nil {
			changes[column] = *value
		}
	}

	if p.Name != nil {
		changes["name"] = strings.TrimSpace(*p.Name)
	}
	set("username", p.Username)
	set("bio", p.Bio)
	set("github_url", p.GithubURL)
	set("phone_number", p.PhoneNumber)
	set("linkedin_url", p.LinkedinURL)
	set("twitter_url", p.TwitterURL)
	set("website_url", p.WebsiteURL)
	set("discord_name", p.DiscordName)
	return changes
}

// ProjectDetail is a project with its derived vote tally.
type ProjectDetail struct {
	*models.Project
	Tally views.Tally `json:"tally"`
}

func newProjectDetail(project *models.Project) ProjectDetail {
	return ProjectDetail{Project: project, Tally: views.TallyVotes(project.Votes)}
}

// MemberInput is one entry of the members field on project creation.
type MemberInput struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	Status models.ProjectStatus `json:"status"`
}

// VoteRequest is the body of a cast vote.
type VoteRequest struct {
	VoteType models.VoteType `json:"voteType"`
}

// VoteToggle is the caller's vote after a button press, nil when cleared,
// and the project's tally with that change applied.
type VoteToggle struct {
	VoteType *models.VoteType `json:"voteType"`
	Tally    views.Tally      `json:"tally"`
}

// TagsResponse lists every stored tag, each list ordered by name.
type TagsResponse struct {
	TechTags   []models.TechTag   `json:"techTags"`
	DomainTags []models.DomainTag `json:"domainTags"`
}

// HealthResponse is served by the health check.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
