package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/models"
	"portfolio/internal/repositories"
	"portfolio/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	logger.SetOutput(io.Discard)
	dir := t.TempDir()
	return &config.Config{
		Env:           "development",
		DataDir:       filepath.Join(dir, "data"),
		PublicDir:     filepath.Join(dir, "public"),
		AuditLogFile:  filepath.Join(dir, "security.log"),
		StorageDriver: "json",
		JWTSecret:     "test_jwt_secret",
		TokenTTL:      time.Hour,
		CSRFTTL:       time.Hour,
	}
}

func TestNewRepositories_JSON(t *testing.T) {
	cfg := testConfig(t)
	repos, err := NewRepositories(cfg)
	require.NoError(t, err)
	assert.IsType(t, &repositories.JSONMemberRepository{}, repos.Members)
	assert.IsType(t, &repositories.JSONProjectRepository{}, repos.Projects)
}

func TestNewRepositories_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "sqlite"
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "portfolio.db")

	repos, err := NewRepositories(cfg)
	require.NoError(t, err)
	assert.IsType(t, &repositories.GORMMessageRepository{}, repos.Messages)

	require.NoError(t, repos.Projects.Create(&models.Project{Title: "One", Description: "First", Category: "web"}))
	projects, err := repos.Projects.GetAll()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0].ID)
}

func TestNewRepositories_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "mongo"
	_, err := NewRepositories(cfg)
	assert.Error(t, err)
}

func TestNewApp_CSRFDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.CSRFEnabled = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app, err := NewApp(ctx, cfg, Deps{})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/csrf-token", nil), -1)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, false, body["enabled"])

	// Signup goes through without a token.
	req := httptest.NewRequest("POST", "/api/members",
		strings.NewReader(`{"name":"Ivy","email":"ivy@example.com","password":"Secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 201, resp.StatusCode)
}

func TestNewApp_SanitizesJSONKeys(t *testing.T) {
	cfg := testConfig(t)
	cfg.CSRFEnabled = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app, err := NewApp(ctx, cfg, Deps{})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/members",
		strings.NewReader(`{"name":"Jo","email":"jo@example.com","password":"Secret123","$where":"1","a.b":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 201, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
}
