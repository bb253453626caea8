package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	DefaultThumbnailURL = "/images/default_project_thumbnail_dark.svg"
	maxSidebarBio       = 50
)

// TeamMember is one entry of the team sidebar.
type TeamMember struct {
	ID        uuid.UUID
	Name      string
	Role      string
	Bio       string
	AvatarURL string
	Initial   string
}

func (m TeamMember) ProfileURL() string {
	return "/hackers/" + m.ID.String()
}

// Link is an external project link shown as a button.
type Link struct {
	Label string
	URL   string
}

// ProjectPage is everything the project detail template needs, with all
// viewer-dependent decisions already made.
type ProjectPage struct {
	Project      *models.Project
	ThumbnailURL string
	Description  template.HTML
	Tally        Tally
	ViewerVote   string
	SignedIn     bool
	CanEdit      bool
	EditURL      string
	ShowSubmit   bool
	ShowDelist   bool
	Links        []Link
	Lead         *TeamMember
	Members      []TeamMember
	TechTags     []string
	DomainTags   []string
}

// NewProjectPage derives the page for viewer, who may be nil when signed out.
// The edit controls it enables are cosmetic: the status endpoints re-check.
func NewProjectPage(project *models.Project, viewer *models.Builder, md Markdown) (ProjectPage, error) {
	description, err := md.Render(project.Description)
	if err != nil {
		return ProjectPage{}, fmt.Errorf("render description: %w", err)
	}

	page := ProjectPage{
		Project:      project,
		ThumbnailURL: DefaultThumbnailURL,
		Description:  description,
		Tally:        TallyVotes(project.Votes),
		SignedIn:     viewer != nil,
		CanEdit:      project.CanManage(viewer),
	}
	if project.Thumbnail != nil && project.Thumbnail.URL != "" {
		page.ThumbnailURL = project.Thumbnail.URL
	}
	if viewer != nil {
		if vote := ViewerVote(project.Votes, viewer.ID); vote != nil {
			page.ViewerVote = string(*vote)
		}
	}
	page.ShowSubmit = page.CanEdit && project.Status == models.StatusDraft
	page.ShowDelist = page.CanEdit && project.Status != models.StatusDraft

	for _, link := range []struct {
		label string
		url   *string
	}{
		{"View Demo", project.DemoURL},
		{"GitHub", project.GithubURL},
		{"Blogpost", project.BlogURL},
	} {
		if link.url != nil && *link.url != "" {
			page.Links = append(page.Links, Link{Label: link.label, URL: *link.url})
		}
	}

	if project.LaunchLead != nil {
		lead := newTeamMember(project.LaunchLead, "Launch Lead")
		page.Lead = &lead
	}
	for _, participant := range project.Participants {
		if participant.Builder == nil {
			continue
		}
		page.Members = append(page.Members, newTeamMember(participant.Builder, DisplayRole(participant.Role)))
	}
	for _, tag := range project.TechTags {
		page.TechTags = append(page.TechTags, tag.Name)
	}
	for _, tag := range project.DomainTags {
		page.DomainTags = append(page.DomainTags, tag.Name)
	}

	return page, nil
}

// DisplayRole relabels the legacy "hacker" role.
func DisplayRole(role string) string {
	if role == "hacker" {
		return "builder"
	}
	return role
}

func newTeamMember(b *models.Builder, role string) TeamMember {
	member := TeamMember{
		ID:   b.ID,
		Name: b.Name,
		Role: role,
	}
	if b.Avatar != nil {
		member.AvatarURL = b.Avatar.URL
	}
	if r, _ := utf8.DecodeRuneInString(b.Name); r != utf8.RuneError {
		member.Initial = strings.ToUpper(string(r))
	}
	if b.Bio != nil {
		member.Bio = truncate(*b.Bio, maxSidebarBio)
	}
	return member
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Renderer executes the page templates. Project editing lives in the
// frontend app at frontendURL; without one the Edit button is hidden.
type Renderer struct {
	templates   *template.Template
	markdown    Markdown
	frontendURL string
}

func NewRenderer(frontendURL string) (*Renderer, error) {
	templates, err := template.New("views").Funcs(template.FuncMap{
		"date": func(p *models.Project) string {
			return p.StartDate.Format("Jan 2, 2006")
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		templates:   templates,
		markdown:    NewMarkdown(),
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}, nil
}

func (r *Renderer) RenderProject(w io.Writer, project *models.Project, viewer *models.Builder) error {
	page, err := NewProjectPage(project, viewer, r.markdown)
	if err != nil {
		return err
	}
	if page.CanEdit && r.frontendURL != "" {
		page.EditURL = r.frontendURL + "/projects/" + project.ID.String() + "/edit"
	}
	return r.templates.ExecuteTemplate(w, "project.html", page)
}
