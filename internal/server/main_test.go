package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/internal/auth"
	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-long-enough-123"

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
	issuer *auth.Issuer
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		JWTSecret:       testSecret,
		JWTIssuer:       "quill-test",
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		PageSize:        10,
		AllowedOrigins:  "http://localhost:3000",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	db := testutil.NewTestDB(t)
	mr, rdb := testutil.NewRedis(t)

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	srv.authService.WithBcryptCost(bcrypt.MinCost)

	return &testEnv{
		app:    srv.NewApp(),
		db:     db,
		mr:     mr,
		issuer: auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
	}
}

// tokens mints a token pair for user without going through login.
func (e *testEnv) tokens(t *testing.T, user *models.User) models.TokenPair {
	t.Helper()
	pair, err := e.issuer.IssuePair(user.ID, user.Username)
	require.NoError(t, err)
	return pair
}

func (e *testEnv) access(t *testing.T, user *models.User) string {
	return e.tokens(t, user).Access
}

type response struct {
	Status int
	Body   []byte
}

func (r response) decode(t *testing.T, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dest), string(r.Body))
}

func (r response) object(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	r.decode(t, &m)
	return m
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Status: resp.StatusCode, Body: raw}
}

func (e *testEnv) get(t *testing.T, path, token string) response {
	t.Helper()
	return e.do(t, http.MethodGet, path, nil, token)
}

// page decodes a paginated response of post or comment objects.
type page struct {
	Count    int64            `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []map[string]any `json:"results"`
}

func (r response) page(t *testing.T) page {
	t.Helper()
	var p page
	r.decode(t, &p)
	return p
}

func titles(p page) []string {
	out := make([]string, 0, len(p.Results))
	for _, r := range p.Results {
		out = append(out, r["title"].(string))
	}
	return out
}
