package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"animal-shelter/internal/bootstrap"
	"animal-shelter/internal/core/cache"
	"animal-shelter/internal/core/config"
	"animal-shelter/internal/repo/repotest"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type harness struct {
	t     *testing.T
	app   *bootstrap.App
	api   http.Handler
	admin http.Handler
	token string
}

var adminEmail = "admin" + "@" + "shelter.test"

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })

	cfg := &config.Config{
		JWT:     config.JWT{Secret: "router-test-secret-0123456789", Issuer: "shelter-test", AccessTokenTTLMin: 10},
		Auth:    config.Auth{TOTPIssuer: "Shelter Test"},
		Cache:   config.Cache{PublicTTLSec: 60},
		Shelter: config.Shelter{DashboardWindowMonths: 1, ActiveVolunteers: 5, Timezone: "UTC"},
	}
	app := bootstrap.Assemble(cfg, zap.NewNop(), repotest.NewDB(t), c)
	return &harness{t: t, app: app, api: app.APIEngine(), admin: app.AdminEngine()}
}

func (h *harness) do(target http.Handler, method, path string, body any) envelope {
	h.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	w := httptest.NewRecorder()
	target.ServeHTTP(w, req)
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (h *harness) login() {
	h.t.Helper()
	_, err := h.app.Svc.Auth.CreateAdmin(context.Background(), adminEmail, "s3cret-pass", "", false)
	require.NoError(h.t, err)

	env := h.do(h.admin, http.MethodPost, "/admin/v1/auth/login", gin.H{"email": adminEmail, "password": "s3cret-pass"})
	require.Equal(h.t, 0, env.Code, env.Msg)
	var s struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &s))
	require.NotEmpty(h.t, s.Token)
	assert.Equal(h.t, "admin", s.Role)
	h.token = s.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type idOnly struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestAdmin_RequiresAdminToken(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 401, h.do(h.admin, http.MethodGet, "/admin/v1/animals", nil).Code)

	h.token = "not-a-jwt"
	assert.Equal(t, 401, h.do(h.admin, http.MethodGet, "/admin/v1/animals", nil).Code)

	stale := *h.app.JWT
	stale.TTL = -5 * time.Minute
	expired, err := stale.Issue("u-1", "admin")
	require.NoError(t, err)
	h.token = expired
	env := h.do(h.admin, http.MethodGet, "/admin/v1/animals", nil)
	assert.Equal(t, 401, env.Code)
	assert.Equal(t, "token expired", env.Msg)

	tok, err := h.app.JWT.Issue("u-1", "volunteer")
	require.NoError(t, err)
	h.token = tok
	assert.Equal(t, 403, h.do(h.admin, http.MethodGet, "/admin/v1/animals", nil).Code)
}

func TestAdmin_LoginRejectsWrongPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.app.Svc.Auth.CreateAdmin(context.Background(), adminEmail, "s3cret-pass", "", false)
	require.NoError(t, err)

	env := h.do(h.admin, http.MethodPost, "/admin/v1/auth/login", gin.H{"email": adminEmail, "password": "wrong-pass"})
	assert.Equal(t, 401, env.Code)
	assert.Equal(t, "invalid credentials", env.Msg)
}

func TestAdmin_ValidationEnvelope(t *testing.T) {
	h := newHarness(t)
	h.login()

	env := h.do(h.admin, http.MethodPost, "/admin/v1/animals", gin.H{"species": "cão"})
	require.Equal(t, 400, env.Code)
	out := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, env)
	assert.Contains(t, out.Fields, "name")

	env = h.do(h.admin, http.MethodPost, "/admin/v1/adoptions", gin.H{"adopter": gin.H{"name": "Ana"}})
	require.Equal(t, 400, env.Code)
	out = decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, env)
	assert.Contains(t, out.Fields, "animalId")
	assert.Contains(t, out.Fields, "adopter.phone")
}

func TestAdoptionLifecycle_EndToEnd(t *testing.T) {
	h := newHarness(t)
	h.login()

	env := h.do(h.admin, http.MethodPost, "/admin/v1/animals", gin.H{"name": "Rex", "species": "cão"})
	require.Equal(t, 0, env.Code, env.Msg)
	animal := decode[idOnly](t, env)
	assert.Equal(t, "available", animal.Status)

	// 公开列表先进缓存
	pub := h.do(h.api, http.MethodGet, "/api/v1/animals", nil)
	require.Equal(t, 0, pub.Code)
	assert.Len(t, decode[[]idOnly](t, pub), 1)

	env = h.do(h.admin, http.MethodPost, "/admin/v1/adoptions", gin.H{
		"animalId": animal.ID,
		"adopter":  gin.H{"name": "Ana", "phone": "11999990000"},
	})
	require.Equal(t, 0, env.Code, env.Msg)
	adoption := decode[idOnly](t, env)
	assert.Equal(t, "finalized", adoption.Status)

	// 写操作后缓存失效，已领养的不再出现
	pub = h.do(h.api, http.MethodGet, "/api/v1/animals", nil)
	require.Equal(t, 0, pub.Code)
	assert.Empty(t, decode[[]idOnly](t, pub))

	env = h.do(h.admin, http.MethodPost, "/admin/v1/adoptions", gin.H{
		"animalId": animal.ID,
		"adopter":  gin.H{"name": "Bia", "phone": "11888880000"},
	})
	assert.Equal(t, 409, env.Code)

	env = h.do(h.admin, http.MethodGet, "/admin/v1/dashboard/stats", nil)
	require.Equal(t, 0, env.Code, env.Msg)
	stats := decode[struct {
		AdoptionsCount     int            `json:"adoptionsCount"`
		AdoptionsBySpecies map[string]int `json:"adoptionsBySpecies"`
		MonthlyDonations   []any          `json:"monthlyDonations"`
	}](t, env)
	assert.Equal(t, 1, stats.AdoptionsCount)
	assert.Equal(t, map[string]int{"cão": 1}, stats.AdoptionsBySpecies)
	assert.Len(t, stats.MonthlyDonations, 12)

	assert.Equal(t, 0, h.do(h.admin, http.MethodDelete, "/admin/v1/adoptions/"+adoption.ID, nil).Code)
	assert.Equal(t, 404, h.do(h.admin, http.MethodDelete, "/admin/v1/adoptions/"+adoption.ID, nil).Code)

	env = h.do(h.admin, http.MethodGet, "/admin/v1/animals/"+animal.ID, nil)
	require.Equal(t, 0, env.Code)
	assert.Equal(t, "available", decode[idOnly](t, env).Status)

	pub = h.do(h.api, http.MethodGet, "/api/v1/animals?species=c%C3%A3o", nil)
	require.Equal(t, 0, pub.Code)
	assert.Len(t, decode[[]idOnly](t, pub), 1)
}

func TestDashboard_BadSince(t *testing.T) {
	h := newHarness(t)
	h.login()

	env := h.do(h.admin, http.MethodGet, "/admin/v1/dashboard/stats?since=15/03/2026", nil)
	assert.Equal(t, 400, env.Code)
}

func TestPublic_NotFoundAndBadStatus(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 404, h.do(h.api, http.MethodGet, "/api/v1/animals/missing", nil).Code)
	assert.Equal(t, 400, h.do(h.api, http.MethodGet, "/api/v1/animals?status=sold", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	for _, e := range []http.Handler{h.api, h.admin} {
		env := h.do(e, http.MethodGet, "/health", nil)
		require.Equal(t, 0, env.Code)
		assert.Equal(t, map[string]string{"db": "ok", "redis": "ok"}, decode[map[string]string](t, env))
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.api.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"), "request counter exported")
}
