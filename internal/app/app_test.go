package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"student-auth/internal/app"
	"student-auth/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Env:    "test",
		Server: config.ServerConfig{Port: "0", CORSOrigins: []string{"http://localhost:3000"}},
		Database: config.DatabaseConfig{
			Driver:         config.DriverSQLite,
			Path:           filepath.Join(t.TempDir(), "school.db"),
			ConnectRetries: 1,
		},
		Hasher: config.HasherConfig{Cost: 4},
		Events: config.EventsConfig{Driver: config.EventsNone},
	}
}

func TestApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	application, err := app.New(ctx, testConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown(context.Background()) })

	server := httptest.NewServer(application.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/students/", "application/json",
		strings.NewReader(`{"username":"alice","email":"a@x.com","password":"pw1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(server.URL+"/login/?username=alice&password=pw1", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/students/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestApp_UnreachableBrokerIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Events = config.EventsConfig{
		Driver: config.EventsNATS,
		NATS:   config.NATSConfig{URL: "nats://127.0.0.1:1", Subject: "students.registered"},
	}

	application, err := app.New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown(context.Background()) })

	w := httptest.NewRecorder()
	application.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/students/",
		strings.NewReader(`{"username":"bob","email":"b@x.com","password":"pw"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMigrate(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, app.Migrate(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.FileExists(t, cfg.Database.Path)
}
