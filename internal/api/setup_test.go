package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/matprat/matprat/backend/internal/imagestore"
	"github.com/matprat/matprat/backend/internal/logging"
	"github.com/matprat/matprat/backend/internal/middleware"
	"github.com/matprat/matprat/backend/internal/service"
	"github.com/matprat/matprat/backend/internal/testhelpers"
	"github.com/matprat/matprat/backend/internal/types"
)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	recipes  *service.RecipeService
	auth     *service.AuthService
	imageDir string
}

func newTestEnv(t *testing.T, drafts service.DraftStore) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	log := logging.Discard()
	env := &testEnv{
		db:       db,
		recipes:  service.NewRecipeService(db, log),
		auth:     service.NewAuthService(db, "test-secret", time.Hour),
		imageDir: t.TempDir(),
	}
	images := service.NewImageService(imagestore.NewLocalStore(env.imageDir, "/images"), 0, log)

	tmpl, err := Templates()
	require.NoError(t, err)

	env.router = gin.New()
	env.router.SetHTMLTemplate(tmpl)
	env.router.Use(middleware.ErrorHandler(log, false))
	RegisterRoutes(env.router, Deps{
		Recipes:      env.recipes,
		Auth:         env.auth,
		Images:       images,
		Drafts:       drafts,
		LoginLimiter: middleware.NewLocalLimiter(middleware.LoginRateLimit),
		Log:          log,
	})
	return env
}

// sessionCookie creates an admin account and returns a valid session cookie.
func (e *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	testhelpers.CreateUser(t, e.db, "admin", "secret")
	token, _, err := e.auth.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func (e *testEnv) saveWaffles(t *testing.T) {
	t.Helper()
	_, err := e.recipes.SaveRecipe(context.Background(), testhelpers.WafflesInput())
	require.NoError(t, err)
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.serve(req)
}

func postForm(path, body string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func postJSON(path string, body io.Reader, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

type memoryDrafts struct {
	mu     sync.Mutex
	drafts map[string]*types.RecipeInput
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: map[string]*types.RecipeInput{}}
}

func (m *memoryDrafts) SaveDraft(_ context.Context, draft *types.RecipeInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.drafts[id] = draft
	return id, nil
}

func (m *memoryDrafts) GetDraft(_ context.Context, id string) (*types.RecipeInput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, &service.NotFoundError{Resource: "draft", Name: id, Message: "The recipe draft has expired. Please submit the form again."}
	}
	return d, nil
}

func (m *memoryDrafts) DeleteDraft(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, id)
	return nil
}
