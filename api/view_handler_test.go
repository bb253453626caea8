package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewProject(t *testing.T) {
	env := newTestEnv(t)
	lead, token := env.builder(t, "Ada")
	project := env.project(t, lead, models.StatusDraft)
	target := "/projects/" + project.ID.String() + "/view"

	rec := env.do(httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<strong>Go</strong>")
	assert.NotContains(t, rec.Body.String(), "Submit")

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Submit")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/projects/not-a-uuid/view", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewVoteToggle(t *testing.T) {
	env := newTestEnv(t)
	lead, _ := env.builder(t, "Ada")
	voter, token := env.builder(t, "Grace")
	project := env.project(t, lead, models.StatusApproved)
	target := "/projects/" + project.ID.String() + "/view/vote"

	rec := env.do(formRequest(target, token, map[string]string{"voteType": "UPVOTE"}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/projects/"+project.ID.String()+"/view", rec.Header().Get("Location"))

	vote := env.storedVote(t, project.ID, voter.ID)
	require.NotNil(t, vote)
	assert.Equal(t, models.Upvote, vote.VoteType)

	rec = env.do(formRequest(target, token, map[string]string{"voteType": "UPVOTE"}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Nil(t, env.storedVote(t, project.ID, voter.ID))

	rec = env.do(formRequest(target, "", map[string]string{"voteType": "UPVOTE"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestViewRejectsCrossSiteForms(t *testing.T) {
	env := newTestEnv(t)
	lead, token := env.builder(t, "Ada")
	project := env.project(t, lead, models.StatusApproved)

	req := formRequest("/projects/"+project.ID.String()+"/view/vote", token, map[string]string{"voteType": "UPVOTE"})
	req.Header.Set("Origin", "https://evil.example.net")
	rec := env.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = formRequest("/projects/"+project.ID.String()+"/view/vote", token, map[string]string{"voteType": "UPVOTE"})
	req.Header.Set("Origin", "http://example.com")
	rec = env.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestViewChangeStatus(t *testing.T) {
	env := newTestEnv(t)
	lead, leadToken := env.builder(t, "Ada")
	_, outsiderToken := env.builder(t, "Linus")
	project := env.project(t, lead, models.StatusDraft)
	target := "/projects/" + project.ID.String() + "/view/status"

	rec := env.do(formRequest(target, outsiderToken, map[string]string{"status": "APPROVED"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(formRequest(target, leadToken, map[string]string{"status": "APPROVED"}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	stored, err := database.New(env.db).ProjectRepo().FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}
