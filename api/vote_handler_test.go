package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// voteAs casts voteType on project from a fresh builder.
func (e *testEnv) voteAs(t *testing.T, project *models.Project, voteType models.VoteType) (*models.Builder, error) {
	t.Helper()

	voter, _ := e.builder(t, "Voter")
	_, err := database.New(e.db).VoteRepo().Upsert(context.Background(), project.ID, voter.ID, voteType)
	return voter, err
}

func TestVoteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	lead, _ := env.builder(t, "Ada")
	_, token := env.builder(t, "Grace")
	project := env.project(t, lead, models.StatusApproved)
	target := "/projects/" + project.ID.String() + "/vote"

	t.Run("rejects unknown vote types", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, target, token, map[string]string{"voteType": "SIDEWAYS"}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid vote type", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("requires a session", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, target, "", VoteRequest{VoteType: models.Upvote}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown builder", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, target, tokenFor(t, "user_ghost"), VoteRequest{VoteType: models.Upvote}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown project", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, "/projects/"+uuid.NewString()+"/vote", token, VoteRequest{VoteType: models.Upvote}))

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Project not found", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("cast, overwrite, retract", func(t *testing.T) {
		rec := env.do(jsonRequest(t, http.MethodPost, target, token, VoteRequest{VoteType: models.Upvote}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, models.Upvote, decode[models.ProjectVote](t, rec).VoteType)

		rec = env.do(jsonRequest(t, http.MethodPost, target, token, VoteRequest{VoteType: models.Downvote}))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.Downvote, decode[models.ProjectVote](t, rec).VoteType)

		votes, err := database.New(env.db).VoteRepo().FindByProject(context.Background(), project.ID)
		require.NoError(t, err)
		assert.Len(t, votes, 1)

		rec = env.do(jsonRequest(t, http.MethodDelete, target, token, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(jsonRequest(t, http.MethodDelete, target, token, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Vote not found", decode[ErrorResponse](t, rec).Error)
	})
}

func TestVoteLedgerToggle(t *testing.T) {
	env := newTestEnv(t)
	lead, _ := env.builder(t, "Ada")
	voter, _ := env.builder(t, "Grace")
	project := env.project(t, lead, models.StatusApproved)
	db := database.New(env.db)
	ledger := voteLedger{voteRepo: db.VoteRepo(), projectRepo: db.ProjectRepo()}
	ctx := context.Background()

	_, err := env.voteAs(t, project, models.Upvote)
	require.NoError(t, err)

	toggle, err := ledger.Toggle(ctx, project.ID, voter.ID, models.Upvote)
	require.NoError(t, err)
	require.NotNil(t, env.storedVote(t, project.ID, voter.ID))
	assert.Equal(t, models.Upvote, env.storedVote(t, project.ID, voter.ID).VoteType)
	require.NotNil(t, toggle.VoteType)
	assert.Equal(t, models.Upvote, *toggle.VoteType)
	assert.Equal(t, views.Tally{Upvotes: 2, Net: 2}, toggle.Tally)

	toggle, err = ledger.Toggle(ctx, project.ID, voter.ID, models.Downvote)
	require.NoError(t, err)
	assert.Equal(t, models.Downvote, env.storedVote(t, project.ID, voter.ID).VoteType)
	assert.Equal(t, views.Tally{Upvotes: 1, Downvotes: 1, Net: 0}, toggle.Tally)

	toggle, err = ledger.Toggle(ctx, project.ID, voter.ID, models.Downvote)
	require.NoError(t, err)
	assert.Nil(t, env.storedVote(t, project.ID, voter.ID))
	assert.Nil(t, toggle.VoteType)
	assert.Equal(t, views.Tally{Upvotes: 1, Net: 1}, toggle.Tally)

	_, err = ledger.Toggle(ctx, project.ID, voter.ID, models.VoteType(""))
	assert.Error(t, err)
}

func TestToggleVoteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	lead, _ := env.builder(t, "Ada")
	voter, token := env.builder(t, "Grace")
	project := env.project(t, lead, models.StatusApproved)
	target := "/projects/" + project.ID.String() + "/vote/toggle"

	rec := env.do(jsonRequest(t, http.MethodPost, target, token, VoteRequest{VoteType: models.Downvote}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	toggle := decode[VoteToggle](t, rec)
	require.NotNil(t, toggle.VoteType)
	assert.Equal(t, models.Downvote, *toggle.VoteType)
	assert.Equal(t, views.Tally{Downvotes: 1, Net: -1}, toggle.Tally)

	rec = env.do(jsonRequest(t, http.MethodPost, target, token, VoteRequest{VoteType: models.Downvote}))
	require.Equal(t, http.StatusOK, rec.Code)
	toggle = decode[VoteToggle](t, rec)
	assert.Nil(t, toggle.VoteType)
	assert.Equal(t, views.Tally{}, toggle.Tally)
	assert.Nil(t, env.storedVote(t, project.ID, voter.ID))

	rec = env.do(jsonRequest(t, http.MethodPost, "/projects/"+uuid.NewString()+"/vote/toggle", token, VoteRequest{VoteType: models.Upvote}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoteRejectsCrossSiteCookieRequests(t *testing.T) {
	env := newTestEnv(t)
	lead, _ := env.builder(t, "Ada")
	voter, token := env.builder(t, "Grace")
	project := env.project(t, lead, models.StatusApproved)
	target := "/projects/" + project.ID.String() + "/vote"

	cookieRequest := func(method, origin string) *http.Request {
		req := httptest.NewRequest(method, target, strings.NewReader(`{"voteType":"DOWNVOTE"}`))
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("Origin", origin)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
		return req
	}

	rec := env.do(cookieRequest(http.MethodPost, "https://evil.example.net"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, env.storedVote(t, project.ID, voter.ID))

	rec = env.do(cookieRequest(http.MethodPost, "null"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(cookieRequest(http.MethodPost, "https://app.example.com"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.Downvote, env.storedVote(t, project.ID, voter.ID).VoteType)

	rec = env.do(cookieRequest(http.MethodDelete, "https://evil.example.net"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotNil(t, env.storedVote(t, project.ID, voter.ID))

	t.Run("bearer tokens are not subject to the origin check", func(t *testing.T) {
		req := jsonRequest(t, http.MethodDelete, target, token, nil)
		req.Header.Set("Origin", "https://evil.example.net")

		rec := env.do(req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCreateProjectRejectsCrossSiteCookieRequests(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.builder(t, "Ada")

	req := multipartRequest(t, "/projects", "", map[string]string{"title": "Compiler", "preview": "short"})
	req.Header.Set("Origin", "https://evil.example.net")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})

	rec := env.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)
}
