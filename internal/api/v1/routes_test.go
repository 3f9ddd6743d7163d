package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workorder/configs"
	v1 "workorder/internal/api/v1"
	"workorder/internal/config"
	"workorder/internal/middleware"
	"workorder/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// createTestApp menyiapkan aplikasi Fiber lengkap di atas SQLite sementara.
func createTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := configs.Config{
		DBDriver:           configs.DriverSQLite,
		JWTSecret:          "routes-test-secret",
		TokenTTL:           time.Hour,
		TokenSweepInterval: time.Hour,
		BcryptCost:         4,
	}
	deps, err := config.NewDependencies(cfg, testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go deps.Hub.Run(ctx)

	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	v1.RegisterRoutes(app, deps)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, resp.StatusCode, env.Code, "envelope code matches status for %s %s", method, path)
	return resp.StatusCode, env
}

func register(t *testing.T, app *fiber.App, username, phone string) (id, token string) {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username, "phone": phone, "password": "pw123",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var info struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	require.NotEmpty(t, info.Token)
	return info.ID, info.Token
}

type taskView struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	TaskName      string   `json:"task_name"`
	ProgressValue int      `json:"progress_value"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	Tags          []string `json:"tags"`
}

func TestWorkOrderFlow(t *testing.T) {
	app := createTestApp(t)
	aliceID, alice := register(t, app, "alice", "13800000000")
	_, bob := register(t, app, "bob", "13800000001")

	status, env := call(t, app, http.MethodGet, "/user/info", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var info struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, aliceID, info.ID)
	assert.Equal(t, "alice", info.Username)
	assert.NotContains(t, string(env.Data), "password")

	status, env = call(t, app, http.MethodPost, "/task/create", alice, map[string]any{
		"task_name": "fix leak", "progress_value": 0, "tags": []string{"plumbing"},
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var task taskView
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "pending", task.Status)
	assert.Equal(t, "medium", task.Priority)
	assert.Equal(t, aliceID, task.UserID)
	assert.Equal(t, []string{"plumbing"}, task.Tags)

	status, env = call(t, app, http.MethodPut, "/task/"+task.ID, alice, map[string]any{
		"task_name": "fix leak", "progress_value": 100,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "completed", task.Status)
	assert.Equal(t, []string{}, task.Tags)

	status, _ = call(t, app, http.MethodDelete, "/task/"+task.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodGet, "/task/"+task.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, app, http.MethodGet, "/task/"+task.ID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "fix leak", task.TaskName)

	status, _ = call(t, app, http.MethodDelete, "/task/"+task.ID, alice, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/task/"+task.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAuthRoutes(t *testing.T) {
	app := createTestApp(t)
	register(t, app, "alice", "13800000000")

	status, env := call(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "phone": "13900000000", "password": "pw123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "username already exists", env.Message)

	status, env = call(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "carol", "phone": "13800000000", "password": "pw123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "phone already registered", env.Message)

	status, env = call(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "dave", "password": "pw123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "phone: is required", env.Message)

	// bcrypt's limit is in bytes: 60 two-byte runes is 120 bytes
	status, env = call(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "erin", "phone": "13700000000", "password": strings.Repeat("é", 60),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password: must be at most 72 bytes", env.Message)

	for _, account := range []string{"alice", "13800000000"} {
		status, _ = call(t, app, http.MethodPost, "/auth/login", "", map[string]string{
			"account": account, "password": "pw123",
		})
		assert.Equal(t, http.StatusOK, status, account)
	}

	status, _ = call(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"account": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = call(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"account": "nobody", "password": "pw123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestUserRoutes(t *testing.T) {
	app := createTestApp(t)
	aliceID, alice := register(t, app, "alice", "13800000000")

	status, _ := call(t, app, http.MethodGet, "/user/info", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = call(t, app, http.MethodGet, "/user/info", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/user/"+aliceID, "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/user/user_0_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPut, "/user/password", alice, map[string]string{
		"old_password": "wrong", "new_password": "pw456",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := call(t, app, http.MethodPut, "/user/password", alice, map[string]string{
		"old_password": "pw123", "new_password": strings.Repeat("é", 60),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "new_password: must be at most 72 bytes", env.Message)

	status, env = call(t, app, http.MethodPut, "/user/password", alice, map[string]string{
		"old_password": "pw123", "new_password": "pw456",
	})
	require.Equal(t, http.StatusOK, status)
	var info struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.NotEmpty(t, info.Token)

	status, _ = call(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"account": "alice", "password": "pw456",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestTaskQueryRoutes(t *testing.T) {
	app := createTestApp(t)
	_, alice := register(t, app, "alice", "13800000000")

	for _, body := range []map[string]any{
		{"task_name": "a", "progress_value": 0, "priority": "high"},
		{"task_name": "b", "progress_value": 40},
		{"task_name": "c", "progress_value": 100, "priority": "high"},
	} {
		status, env := call(t, app, http.MethodPost, "/task/create", alice, body)
		require.Equal(t, http.StatusOK, status, env.Message)
	}

	status, env := call(t, app, http.MethodPost, "/task/create", alice, map[string]any{
		"task_name": "x", "progress_value": 150,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "progress_value: must be at most 100", env.Message)

	status, env = call(t, app, http.MethodGet, "/task/list?page=0&size=2", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items      []taskView `json:"items"`
		Total      int        `json:"total"`
		TotalPages int        `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	status, _ = call(t, app, http.MethodGet, "/task/list?size=500", alice, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodGet, "/task/status/in_progress", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var list []taskView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].TaskName)

	status, _ = call(t, app, http.MethodGet, "/task/status/finished", alice, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodGet, "/task/priority/high", alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	start := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	status, env = call(t, app, http.MethodGet, "/task/range?start="+start+"&end="+end, alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 3)

	status, _ = call(t, app, http.MethodGet, "/task/range?start=yesterday&end="+end, alice, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodGet, "/task/stats", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["pending"])
	assert.Equal(t, 1, stats.ByStatus["in_progress"])
	assert.Equal(t, 1, stats.ByStatus["completed"])
	assert.Equal(t, 0, stats.ByStatus["cancelled"])
}

func TestWebSocketRouteRequiresUpgrade(t *testing.T) {
	app := createTestApp(t)
	_, alice := register(t, app, "alice", "13800000000")

	req := httptest.NewRequest(http.MethodGet, "/ws/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
