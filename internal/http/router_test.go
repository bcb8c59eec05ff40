package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/email"
	"scholarship-finder/internal/repository/memory"
	"scholarship-finder/internal/service"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	pinger *fakePinger
}

func newTestServer(t *testing.T, opts ...func(*GateConfig)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := memory.NewStore()

	authServ := service.NewAuthService(
		logger,
		store.Users(),
		store.Sessions(),
		nil,
		service.NewMemoryLoginRateLimiter(10*time.Minute, 5),
		email.NewDisabledSender(""),
		service.AuthOptions{
			LoginTTL:     30 * 24 * time.Hour,
			RefreshTTL:   7 * 24 * time.Hour,
			DemoEnabled:  true,
			DemoEmail:    "demo@example.com",
			DemoPassword: "password",
		},
	)
	jwtServ := service.NewJWTService("test-secret", 15*time.Minute)
	cookies := CookieConfig{}
	pinger := &fakePinger{}

	gateCfg := GateConfig{
		ProtectedPrefixes: []string{"/api/auth/me", "/api/auth/profile", "/api/auth/token", "/api/applications", "/api/favorites", "/dashboard"},
		AdminPrefixes:     []string{"/api/admin", "/admin"},
		Cookies:           cookies,
	}
	for _, opt := range opts {
		opt(&gateCfg)
	}
	gate := NewGate(logger, authServ, jwtServ, gateCfg)
	h := Handlers{
		Auth:         NewAuthHandler(logger, authServ, jwtServ, cookies, 30*24*time.Hour),
		Scholarships: NewScholarshipHandler(logger, service.NewScholarshipService(logger, store.Scholarships())),
		Universities: NewUniversityHandler(logger, service.NewUniversityService(logger, store.Universities())),
		Reference:    NewReferenceHandler(logger, service.NewReferenceService(store.Reference())),
		Applications: NewApplicationHandler(logger, service.NewApplicationService(logger, store.Applications(), store.Documents(), store.Tasks(), store.Scholarships())),
		Favorites:    NewFavoriteHandler(logger, service.NewFavoriteService(store.Favorites(), store.Scholarships())),
		Analytics:    NewAnalyticsHandler(logger, service.NewAnalyticsService(store.Analytics())),
		Health:       NewHealthHandler(logger, pinger),
	}
	return &testServer{router: NewRouter(logger, gate, h), store: store, pinger: pinger}
}

type requestOpt func(*http.Request)

func withCookie(cookie *http.Cookie) requestOpt {
	return func(r *http.Request) {
		if cookie != nil {
			r.AddCookie(cookie)
		}
	}
}

func withHeader(key, value string) requestOpt {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (s *testServer) do(method, path string, body any, opts ...requestOpt) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("expected %s cookie in response", sessionCookieName)
	return nil
}

func (s *testServer) register(t *testing.T, name, emailAddr string) *http.Cookie {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": emailAddr, "password": "correct-horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", emailAddr, rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func (s *testServer) promote(t *testing.T, emailAddr string) {
	t.Helper()
	ctx := context.Background()
	user, err := s.store.Users().GetByEmail(ctx, emailAddr)
	if err != nil {
		t.Fatalf("lookup %s: %v", emailAddr, err)
	}
	user.Role = domain.RoleAdmin
	if err := s.store.Users().Update(ctx, user); err != nil {
		t.Fatalf("promote: %v", err)
	}
}

func (s *testServer) seedScholarship(t *testing.T, id string, docs ...string) {
	t.Helper()
	now := time.Now().UTC()
	err := s.store.Scholarships().Create(context.Background(), domain.Scholarship{
		ID: id, Title: "Scholarship " + id, Currency: "USD", Active: true,
		RequiredDocuments: docs, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed scholarship: %v", err)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestMutationsWithoutSessionReturn401(t *testing.T) {
	s := newTestServer(t)
	s.seedScholarship(t, "s1")

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/applications", map[string]string{"scholarship_id": "s1"}},
		{http.MethodPost, "/api/favorites", map[string]string{"scholarship_id": "s1"}},
		{http.MethodPut, "/api/auth/profile", map[string]string{"name": "x"}},
		{http.MethodDelete, "/api/favorites/s1", nil},
		{http.MethodPost, "/api/admin/scholarships", map[string]string{"title": "x"}},
	}
	for _, tc := range cases {
		rec := s.do(tc.method, tc.path, tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}

	bogus := &http.Cookie{Name: sessionCookieName, Value: "forged"}
	rec := s.do(http.MethodPost, "/api/applications", map[string]string{"scholarship_id": "s1"}, withCookie(bogus))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged cookie: expected 401, got %d", rec.Code)
	}
	if s.store.ApplicationCount() != 0 {
		t.Fatalf("no application should have been created")
	}
}

func TestHTMLClientsAreRedirected(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/dashboard?tab=1", nil, withHeader("Accept", "text/html"))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?redirect=%2Fdashboard%3Ftab%3D1" {
		t.Fatalf("unexpected redirect %q", loc)
	}

	cookie := s.register(t, "Ana", "ana@example.com")
	rec = s.do(http.MethodGet, "/admin/users", nil, withHeader("Accept", "text/html"), withCookie(cookie))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to / for non-admin, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register(t, "Ana", "ana@example.com")

	body := map[string]any{"title": "Chevening", "currency": "GBP"}
	if rec := s.do(http.MethodPost, "/api/admin/scholarships", body, withCookie(cookie)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	s.promote(t, "ana@example.com")
	rec := s.do(http.MethodPost, "/api/admin/scholarships", body, withCookie(cookie))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/api/admin/analytics", nil, withCookie(cookie)); rec.Code != http.StatusOK {
		t.Fatalf("expected analytics 200, got %d", rec.Code)
	}
}

func TestGateRefreshKeepsToken(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register(t, "Ana", "ana@example.com")
	if cookie.MaxAge < 29*24*3600 || cookie.SameSite != http.SameSiteLaxMode || !cookie.HttpOnly {
		t.Fatalf("unexpected login cookie: %+v", cookie)
	}

	rec := s.do(http.MethodGet, "/api/auth/me", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	refreshed := sessionCookie(t, rec)
	if refreshed.Value != cookie.Value {
		t.Fatalf("refresh must not change the token")
	}
	if refreshed.SameSite != http.SameSiteStrictMode || refreshed.MaxAge != 7*24*3600 {
		t.Fatalf("unexpected refreshed cookie: %+v", refreshed)
	}
	stored, ok := s.store.Session(cookie.Value)
	if !ok {
		t.Fatalf("session should still exist")
	}
	if d := time.Until(stored.ExpiresAt); d > 7*24*time.Hour || d < 7*24*time.Hour-time.Minute {
		t.Fatalf("expected expiry ~7 days ahead, got %v", d)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ana", "ana@example.com")

	rec := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ana 2", "email": "ana@example.com", "password": "another-pass",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			t.Fatalf("no cookie should be set on conflict")
		}
	}
	if s.store.UserCount() != 1 || s.store.SessionCount() != 1 {
		t.Fatalf("expected 1 user and 1 session, got %d and %d", s.store.UserCount(), s.store.SessionCount())
	}
}

func TestLoginAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ana", "ana@example.com")

	rec := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@example.com", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@example.com", "password": "correct-horse"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)

	rec = s.do(http.MethodPost, "/api/auth/logout", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cleared := sessionCookie(t, rec); cleared.MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cleared)
	}
	if rec := s.do(http.MethodGet, "/api/auth/me", nil, withCookie(cookie)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestDemoLoginAlwaysSucceeds(t *testing.T) {
	s := newTestServer(t)
	s.store.FailWith = errors.New("database unavailable")

	rec := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "demo@example.com", "password": "password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	if cookie.MaxAge != 30*24*3600 {
		t.Fatalf("expected 30 day cookie, got %d", cookie.MaxAge)
	}
	resp := decode[struct {
		User domain.Identity `json:"user"`
	}](t, rec)
	if resp.User.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", resp.User.Role)
	}
}

func TestDemoLoginCreatesAdminAccount(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "demo@example.com", "password": "password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	if rec := s.do(http.MethodGet, "/api/auth/me", nil, withCookie(cookie)); rec.Code != http.StatusOK {
		t.Fatalf("expected demo session to resolve, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/api/admin/analytics", nil, withCookie(cookie)); rec.Code != http.StatusOK {
		t.Fatalf("expected admin access, got %d: %s", rec.Code, rec.Body.String())
	}
	if s.store.UserCount() != 1 {
		t.Fatalf("expected demo admin to be stored, got %d users", s.store.UserCount())
	}
}

func TestRegisterWithDemoEmailConflicts(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Mallory", "email": "demo@example.com", "password": "whatever1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCrossUserAccessReturns404(t *testing.T) {
	s := newTestServer(t)
	s.seedScholarship(t, "s1", "CV")
	alice := s.register(t, "Alice", "alice@example.com")
	bob := s.register(t, "Bob", "bob@example.com")

	rec := s.do(http.MethodPost, "/api/applications", map[string]string{"scholarship_id": "s1"}, withCookie(alice))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	app := decode[struct {
		Application service.ApplicationDetail `json:"application"`
	}](t, rec).Application
	docID := app.Documents[0].ID

	paths := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/applications/" + app.ID, nil},
		{http.MethodPut, "/api/applications/" + app.ID, map[string]string{"status": "submitted"}},
		{http.MethodGet, "/api/applications/" + app.ID + "/documents", nil},
		{http.MethodPut, "/api/applications/" + app.ID + "/documents/" + docID, map[string]string{"status": "uploaded"}},
		{http.MethodDelete, "/api/applications/" + app.ID + "/documents/" + docID, nil},
		{http.MethodPost, "/api/applications/" + app.ID + "/tasks", map[string]string{"title": "x"}},
		{http.MethodDelete, "/api/applications/" + app.ID, nil},
	}
	for _, p := range paths {
		if rec := s.do(p.method, p.path, p.body, withCookie(bob)); rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s as bob: expected 404, got %d", p.method, p.path, rec.Code)
		}
	}

	rec = s.do(http.MethodGet, "/api/applications/"+app.ID, nil, withCookie(alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner should read the application, got %d", rec.Code)
	}
	got := decode[struct {
		Application service.ApplicationDetail `json:"application"`
	}](t, rec).Application
	if got.Status != domain.ApplicationDraft || len(got.Documents) != 1 {
		t.Fatalf("application changed by another user: %+v", got)
	}
}

func TestApplicationForMissingScholarship(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register(t, "Ana", "ana@example.com")

	rec := s.do(http.MethodPost, "/api/applications", map[string]string{"scholarship_id": "ghost"}, withCookie(cookie))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if s.store.ApplicationCount() != 0 {
		t.Fatalf("no application row expected")
	}
}

func TestDeleteApplicationRemovesChildren(t *testing.T) {
	s := newTestServer(t)
	s.seedScholarship(t, "s1", "CV", "Transcript")
	cookie := s.register(t, "Ana", "ana@example.com")

	rec := s.do(http.MethodPost, "/api/applications", map[string]string{"scholarship_id": "s1"}, withCookie(cookie))
	app := decode[struct {
		Application service.ApplicationDetail `json:"application"`
	}](t, rec).Application
	if rec := s.do(http.MethodPost, "/api/applications/"+app.ID+"/tasks", map[string]string{"title": "Ask referees"}, withCookie(cookie)); rec.Code != http.StatusCreated {
		t.Fatalf("add task: %d", rec.Code)
	}
	if docs, tasks := s.store.ChildCount(app.ID); docs != 2 || tasks != 1 {
		t.Fatalf("expected 2 docs and 1 task, got %d and %d", docs, tasks)
	}

	if rec := s.do(http.MethodDelete, "/api/applications/"+app.ID, nil, withCookie(cookie)); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if docs, tasks := s.store.ChildCount(app.ID); docs != 0 || tasks != 0 {
		t.Fatalf("expected no children left, got %d docs and %d tasks", docs, tasks)
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.seedScholarship(t, "s1")
	cookie := s.register(t, "Ana", "ana@example.com")

	if rec := s.do(http.MethodPost, "/api/favorites", map[string]string{"scholarship_id": "s1"}, withCookie(cookie)); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/api/favorites", map[string]string{"scholarship_id": "s1"}, withCookie(cookie)); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/api/favorites", map[string]string{"scholarship_id": "ghost"}, withCookie(cookie)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec := s.do(http.MethodGet, "/api/favorites", nil, withCookie(cookie))
	favs := decode[struct {
		Favorites []domain.Favorite `json:"favorites"`
	}](t, rec).Favorites
	if len(favs) != 1 || favs[0].Scholarship == nil {
		t.Fatalf("unexpected favorites: %+v", favs)
	}
	if rec := s.do(http.MethodDelete, "/api/favorites/s1", nil, withCookie(cookie)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/api/favorites/s1", nil, withCookie(cookie)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPublicSearch(t *testing.T) {
	s := newTestServer(t)
	s.seedScholarship(t, "s1")
	s.seedScholarship(t, "s2")

	rec := s.do(http.MethodGet, "/api/scholarships?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	res := decode[service.ListResult[domain.Scholarship]](t, rec)
	if res.Total != 2 || len(res.Items) != 1 || res.Limit != 1 {
		t.Fatalf("unexpected page: %+v", res)
	}

	if rec := s.do(http.MethodGet, "/api/scholarships?limit=abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/scholarships?deadline_after=tomorrow", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/scholarships/ghost", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBearerTokenWrapsSession(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register(t, "Ana", "ana@example.com")

	rec := s.do(http.MethodPost, "/api/auth/token", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	tok := decode[struct {
		Token service.AccessToken `json:"token"`
	}](t, rec).Token

	bearer := withHeader("Authorization", "Bearer "+tok.AccessToken)
	if rec := s.do(http.MethodGet, "/api/auth/me", nil, bearer); rec.Code != http.StatusOK {
		t.Fatalf("expected bearer access, got %d", rec.Code)
	}

	s.do(http.MethodPost, "/api/auth/logout", nil, withCookie(cookie))
	if rec := s.do(http.MethodGet, "/api/auth/me", nil, bearer); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after session revoked, got %d", rec.Code)
	}
}

func TestBearerClaimsCannotRebuildSessionCookie(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register(t, "Ana", "ana@example.com")

	rec := s.do(http.MethodPost, "/api/auth/token", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	tok := decode[struct {
		Token service.AccessToken `json:"token"`
	}](t, rec).Token

	parts := strings.Split(tok.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three part JWT, got %q", tok.AccessToken)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var claims struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if claims.SID == "" || claims.SID == cookie.Value {
		t.Fatalf("sid must identify the session without exposing its token")
	}

	forged := &http.Cookie{Name: sessionCookieName, Value: claims.SID}
	if rec := s.do(http.MethodGet, "/api/auth/me", nil, withCookie(forged)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for cookie built from sid, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/auth/me", nil, withHeader("Authorization", "Bearer "+tok.AccessToken)); rec.Code != http.StatusOK {
		t.Fatalf("expected bearer access, got %d", rec.Code)
	}
}

func TestAdminGroupChecksRoleWithoutGatePrefix(t *testing.T) {
	s := newTestServer(t, func(cfg *GateConfig) { cfg.AdminPrefixes = nil })
	cookie := s.register(t, "Ana", "ana@example.com")

	if rec := s.do(http.MethodGet, "/api/admin/analytics", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/admin/analytics", nil, withCookie(cookie)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/api/admin/scholarships/s1", nil, withCookie(cookie)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin mutation, got %d", rec.Code)
	}

	s.promote(t, "ana@example.com")
	if rec := s.do(http.MethodGet, "/api/admin/analytics", nil, withCookie(cookie)); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	s.pinger.err = errors.New("down")
	if rec := s.do(http.MethodGet, "/healthz", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
