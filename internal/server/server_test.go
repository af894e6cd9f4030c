package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matprat/matprat/backend/config"
	"github.com/matprat/matprat/backend/internal/api"
	"github.com/matprat/matprat/backend/internal/imagestore"
	"github.com/matprat/matprat/backend/internal/logging"
	"github.com/matprat/matprat/backend/internal/service"
	"github.com/matprat/matprat/backend/internal/testhelpers"
)

func TestNew(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	log := logging.Discard()

	imageDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "cake.jpg"), []byte("jpeg"), 0o644))

	cfg := &config.Config{
		Env:            config.Test,
		ServerHost:     "localhost",
		ServerPort:     "8080",
		ImageStorage:   "local",
		ImageDir:       imageDir,
		ImageURLPrefix: "/images",
	}

	srv, err := New(cfg, api.Deps{
		Recipes: service.NewRecipeService(db, log),
		Auth:    service.NewAuthService(db, "test-secret", time.Hour),
		Images:  service.NewImageService(imagestore.NewLocalStore(imageDir, "/images"), 0, log),
		Log:     log,
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", srv.http.Addr)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/images/cake.jpg", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg", w.Body.String())
}
