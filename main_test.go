package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/controllers"
	"github.com/tradedesk/tradelog/database"
	"github.com/tradedesk/tradelog/repositories"
	"github.com/tradedesk/tradelog/services"
)

// newTestServer wires the full stack against a temporary database, the
// same way main does, and seeds the initial admin account.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.InitializeDatabase(dbPath))

	db := database.GetDB()
	t.Cleanup(func() {
		_ = db.Close()
	})

	sessions := auth.NewManager(auth.NewMemoryStore())
	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(db, repos, sessions)
	ctrl := controllers.NewControllers(srvs, sessions, 24*time.Hour)

	require.NoError(t, srvs.Users.Bootstrap(context.Background(), "admin", "secret"))

	server := httptest.NewServer(setupRouter(ctrl, sessions))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, server *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()

	resp, body := doRequest(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %s", body)

	var result struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func sampleTradeBody() map[string]any {
	return map[string]any{
		"tradeDate":    "2025-03-14",
		"strategy":     "Calendar Spread",
		"code":         "GOLD25APR",
		"exchange":     "MCX",
		"commodity":    "Gold",
		"expiry":       "2025-04-25",
		"contractType": "Option",
		"tradeType":    "Buy",
		"strikePrice":  71500,
		"optionType":   "CE",
		"quantity":     10,
		"avgPrice":     412.5,
		"clientCode":   "CL001",
		"broker":       "AlphaBroking",
		"teamName":     "Metals Desk",
		"status":       "Open",
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}

func TestLoginAndUserManagement(t *testing.T) {
	server := newTestServer(t)
	adminToken := login(t, server, "admin", "secret")

	// The seeded account carries the admin role.
	resp, body := doRequest(t, server, http.MethodGet, "/api/auth/session", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info struct {
		Valid bool   `json:"valid"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(body, &info))
	assert.True(t, info.Valid)
	assert.Equal(t, "admin", info.Role)

	// Admins can create accounts.
	resp, _ = doRequest(t, server, http.MethodPost, "/api/users", adminToken, map[string]any{
		"username": "trader1",
		"password": "hunter2",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	userToken := login(t, server, "trader1", "hunter2")

	// Regular users are shut out of admin routes.
	resp, _ = doRequest(t, server, http.MethodGet, "/api/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// But they reach the protected trade routes.
	resp, _ = doRequest(t, server, http.MethodGet, "/api/trade-entries", userToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Duplicate usernames conflict.
	resp, _ = doRequest(t, server, http.MethodPost, "/api/users", adminToken, map[string]any{
		"username": "trader1",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The admin account itself cannot be deleted.
	resp, _ = doRequest(t, server, http.MethodDelete, "/api/users/admin", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Deleting a user revokes their sessions.
	resp, _ = doRequest(t, server, http.MethodDelete, "/api/users/trader1", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doRequest(t, server, http.MethodGet, "/api/trade-entries", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthFailureModes(t *testing.T) {
	server := newTestServer(t)

	// No token at all.
	resp, _ := doRequest(t, server, http.MethodGet, "/api/trade-entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A malformed scheme.
	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/trade-entries", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	raw, err := server.Client().Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, raw.StatusCode)

	// A token that was never issued.
	resp, _ = doRequest(t, server, http.MethodGet, "/api/trade-entries", "never-issued", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong credentials at login.
	resp, _ = doRequest(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Introspecting a bad token is not an error, just invalid.
	resp, body := doRequest(t, server, http.MethodGet, "/api/auth/session", "never-issued", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"valid":false`)
}

func TestLogoutRevokesToken(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "secret")

	resp, _ := doRequest(t, server, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The revoked token no longer opens protected routes.
	resp, _ = doRequest(t, server, http.MethodGet, "/api/trade-entries", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logging the same token out again is still fine.
	resp, _ = doRequest(t, server, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A logout with no header at all is the caller's error.
	resp, _ = doRequest(t, server, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTradeLifecycleWithAuditTrail(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "secret")

	// Create.
	resp, body := doRequest(t, server, http.MethodPost, "/api/trade-entries", token, sampleTradeBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", body)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotZero(t, created.ID)

	entryPath := fmt.Sprintf("/api/trade-entries/%d", created.ID)
	logsPath := fmt.Sprintf("/api/trade-logs/entry/%d", created.ID)

	// No audit rows yet: creation is not an audited mutation.
	resp, body = doRequest(t, server, http.MethodGet, logsPath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))

	// Update produces a before and an after snapshot.
	updateBody := sampleTradeBody()
	updateBody["status"] = "Closed"
	resp, _ = doRequest(t, server, http.MethodPut, entryPath, token, updateBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, server, http.MethodGet, logsPath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logs []struct {
		Tag       string `json:"logTag"`
		Operation string `json:"operationType"`
		ChangedBy string `json:"changedBy"`
	}
	require.NoError(t, json.Unmarshal(body, &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, "after", logs[0].Tag)
	assert.Equal(t, "before", logs[1].Tag)
	assert.Equal(t, "admin", logs[0].ChangedBy)

	// Delete appends a deleted snapshot and removes the row.
	resp, _ = doRequest(t, server, http.MethodDelete, entryPath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodGet, entryPath, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doRequest(t, server, http.MethodGet, logsPath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &logs))
	require.Len(t, logs, 3)
	assert.Equal(t, "deleted", logs[0].Tag)
	assert.Equal(t, "DELETE", logs[0].Operation)
}

func TestAuditRangeAndDownload(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "secret")

	resp, body := doRequest(t, server, http.MethodPost, "/api/trade-entries", token, sampleTradeBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	resp, _ = doRequest(t, server, http.MethodDelete, fmt.Sprintf("/api/trade-entries/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	today := time.Now().UTC().Format("2006-01-02")
	rangeQuery := "?from=" + today + "&to=" + today

	resp, body = doRequest(t, server, http.MethodGet, "/api/trade-logs/count"+rangeQuery, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count": 1}`, string(body))

	resp, body = doRequest(t, server, http.MethodGet, "/api/trade-logs/download"+rangeQuery, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "trade_logs_"+today+"_"+today+".csv")
	assert.True(t, strings.HasPrefix(string(body), "entry_id,trade_date,"))

	// An inverted range is rejected before any CSV is written.
	resp, _ = doRequest(t, server, http.MethodGet, "/api/trade-logs/download?from=2025-03-31&to=2025-03-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodGet, "/api/trade-logs?from=garbage&to=", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditDownloadFailureAbortsConnection(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "secret")

	// Sessions live in memory, so the token stays valid after the
	// database goes away and the failure happens inside the CSV handler.
	require.NoError(t, database.GetDB().Close())

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/trade-logs/download?from=2025-03-01&to=2025-03-31", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	// A failure once the CSV response has started must not degrade into
	// a JSON error body inside the file; the connection is aborted.
	resp, err := server.Client().Do(req)
	if err == nil {
		defer resp.Body.Close()
		_, err = io.ReadAll(resp.Body)
	}
	assert.Error(t, err)
}

func TestMasterEndpoints(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "secret")

	resp, body := doRequest(t, server, http.MethodPost, "/api/masters/Strategy", token, map[string]string{
		"name": "Calendar Spread",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create master failed: %s", body)

	resp, _ = doRequest(t, server, http.MethodPost, "/api/masters/Strategy", token, map[string]string{
		"name": "Calendar Spread",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodGet, "/api/masters/Nonsense", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doRequest(t, server, http.MethodGet, "/api/masters", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all map[string][]struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, 10)
	require.Len(t, all["Strategy"], 1)
	assert.Equal(t, "Calendar Spread", all["Strategy"][0].Name)
}

func TestSessionSweepEndpoint(t *testing.T) {
	server := newTestServer(t)
	adminToken := login(t, server, "admin", "secret")

	// Sweep requires the admin role.
	resp, _ := doRequest(t, server, http.MethodPost, "/api/users", adminToken, map[string]any{
		"username": "trader1",
		"password": "pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	userToken := login(t, server, "trader1", "pw")

	resp, _ = doRequest(t, server, http.MethodPost, "/api/admin/sessions/sweep", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Fresh sessions survive a sweep.
	resp, body := doRequest(t, server, http.MethodPost, "/api/admin/sessions/sweep", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Removed int `json:"removed"`
		Active  int `json:"active"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Zero(t, result.Removed)
	assert.Equal(t, 2, result.Active)
}
