package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSecret = []byte("test-secret")

type fakeBlobStore struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeBlobStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type testEnv struct {
	db     *gorm.DB
	router http.Handler
	blobs  *fakeBlobStore
	now    time.Time
}

// newTestEnv builds a router over a fresh in-memory database. overrides
// replace entries of the default config.
func newTestEnv(t *testing.T, overrides ...map[string]string) *testEnv {
	t.Helper()

	cfg := map[string]string{"ACCEPTED_ORIGINS": "https://app.example.com", "MAX_UPLOAD_MB": "1"}
	for _, o := range overrides {
		for k, v := range o {
			cfg[k] = v
		}
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.Migrate(db))

	env := &testEnv{
		db:    db,
		blobs: &fakeBlobStore{},
		now:   time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}

	router, err := newRouter(database.New(db),
		withConfig(cfg),
		withIdentity(services.NewHMACIdentityProvider(testSecret, "")),
		withBlobStore(env.blobs),
		withClock(func() time.Time { return env.now }),
	)
	require.NoError(t, err)
	env.router = router
	return env
}

func tokenFor(t *testing.T, externalID string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   externalID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

// builder stores a builder and returns it with a session token.
func (e *testEnv) builder(t *testing.T, name string) (*models.Builder, string) {
	t.Helper()

	b := &models.Builder{ExternalID: "user_" + uuid.NewString(), Name: name}
	require.NoError(t, e.db.Create(b).Error)
	return b, tokenFor(t, b.ExternalID)
}

func (e *testEnv) project(t *testing.T, lead *models.Builder, status models.ProjectStatus, members ...*models.Builder) *models.Project {
	t.Helper()

	p := &models.Project{
		Title:        "Compiler",
		Preview:      "A tiny compiler",
		Description:  "Written in **Go**",
		Status:       status,
		HackType:     "REGULAR",
		LaunchLeadID: lead.ID,
	}
	for _, m := range members {
		p.Participants = append(p.Participants, models.ProjectParticipant{BuilderID: m.ID, Role: "hacker"})
	}
	require.NoError(t, database.New(e.db).ProjectRepo().CreateInCurrentWeek(context.Background(), p, e.now))
	return p
}

// storedVote returns builderID's vote on projectID, or nil.
func (e *testEnv) storedVote(t *testing.T, projectID, builderID uuid.UUID) *models.ProjectVote {
	t.Helper()

	var votes []models.ProjectVote
	require.NoError(t, e.db.Where("project_id = ? AND builder_id = ?", projectID, builderID).Find(&votes).Error)
	if len(votes) == 0 {
		return nil
	}
	return &votes[0]
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type testFile struct {
	field    string
	filename string
	content  []byte
}

func multipartRequest(t *testing.T, target, token string, fields map[string]string, files ...testFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func formRequest(target, token string, values map[string]string) *http.Request {
	form := make([]string, 0, len(values))
	for k, v := range values {
		form = append(form, k+"="+v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(strings.Join(form, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
}

func TestTrustedOriginsDropsWildcard(t *testing.T) {
	assert.Equal(t,
		[]string{"https://app.example.com"},
		trustedOrigins([]string{"*", "https://app.example.com/"}),
	)
	assert.Empty(t, trustedOrigins(nil))
}

func TestCORSIgnoresWildcardOrigin(t *testing.T) {
	env := newTestEnv(t, map[string]string{"ACCEPTED_ORIGINS": "*"})

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(httptest.NewRequest(http.MethodGet, "/projects", nil))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "builders_http_requests_total")
}
