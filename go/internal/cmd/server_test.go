package main

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

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/config"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, *Services) {
	t.Helper()
	cfg := config.Default()
	cfg.Store = config.StoreMemory
	cfg.Auth.JWTSecret = testSecret
	if mutate != nil {
		mutate(&cfg)
	}

	reg := newRegistry()
	services, err := setupServices(context.Background(), cfg, clockwork.NewFakeClock(), serviceOptions{
		Realtime: true,
		Registry: reg,
	})
	require.NoError(t, err)
	t.Cleanup(services.Close)

	srv := httptest.NewServer(setupServer(cfg, services, reg).Handler)
	t.Cleanup(srv.Close)
	return srv, services
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServerRoutes(t *testing.T) {
	srv, services := newTestServer(t, nil)

	owner := uuid.New()
	token, err := services.Auth.Issue(owner, time.Now(), time.Hour)
	require.NoError(t, err)

	createBody := map[string]any{
		"name":               "Paddock Club",
		"season":             2025,
		"max_players":        4,
		"initial_race_round": 1,
	}

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/leagues", "", createBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/leagues", token, createBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var league models.League
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&league))
	assert.Equal(t, owner, league.OwnerID)
	assert.Equal(t, models.LeagueStatusPending, league.Status)

	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/leagues/"+league.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/leagues/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// one member cannot start a draft
	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/leagues/"+league.ID.String()+"/activate", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doRequest(t, http.MethodGet, srv.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, srv.URL+"/grpc.health.v1.Health/Check", "", map[string]string{
		"service": "gridpick.v1.DraftService",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "SERVING_STATUS_SERVING")

	resp = doRequest(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gridpick_sweeps_total")
	assert.Contains(t, string(body), "go_goroutines")

	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/ws/stats", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMaintenanceModeBlocksMutations(t *testing.T) {
	srv, services := newTestServer(t, func(cfg *config.Config) {
		cfg.MaintenanceMode = true
	})
	token, err := services.Auth.Issue(uuid.New(), time.Now(), time.Hour)
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/leagues", token, map[string]any{
		"name":               "Closed",
		"season":             2025,
		"max_players":        2,
		"initial_race_round": 1,
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/seasons/2025/races", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateTeamsCommand(t *testing.T) {
	out, err := runCommand(t, "validate-teams", "--players", "6", "--constructors", "3", "--sizes", "2,2")
	require.NoError(t, err)
	assert.Contains(t, out, "feasible")

	_, err = runCommand(t, "validate-teams", "--players", "6", "--constructors", "3", "--sizes", "4")
	assert.Error(t, err)

	_, err = runCommand(t, "validate-teams", "--sizes", "2")
	assert.Error(t, err)
}

func TestSweepOnceCommand(t *testing.T) {
	t.Setenv("GRIDPICK_STORE", config.StoreMemory)

	out, err := runCommand(t, "sweep", "--once")
	require.NoError(t, err)
	assert.JSONEq(t, `{"drafts":0,"advanced":0,"autopicks":0,"failures":0}`, out)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("GRIDPICK_AUTH_JWT_SECRET", testSecret)
	userID := uuid.New()

	out, err := runCommand(t, "token", userID.String())
	require.NoError(t, err)

	parsed, err := auth.NewAuthenticator(testSecret).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	_, err = runCommand(t, "token", "not-a-uuid")
	assert.Error(t, err)
}
