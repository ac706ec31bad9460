package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kbeguinel/portfolio/internal/contact"
	"github.com/kbeguinel/portfolio/internal/content"
	"github.com/kbeguinel/portfolio/internal/storage"
)

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"experiences.json": {Data: []byte(`{
  "experiences": [{"poste": "Développeur Go", "entreprise": "Acme", "lieu": "Lyon",
    "date_debut": "09/2023", "date_fin": "09/2025", "typeExperience": "Alternance",
    "description": "Services internes", "skills": ["Go"]}],
  "formations": [{"diplome": "Master Informatique", "ecole": "Lyon 1", "lieu": "Lyon",
    "date_debut": "09/2020", "date_fin": "06/2022", "description": "Génie logiciel", "skills": []}]
}`)},
		"skills.json": {Data: []byte(`{"skills": [
  {"category": "Frontend", "lstSkills": ["React", "CSS"], "color": "#1e90ff"},
  {"category": "Backend", "lstSkills": ["Go"], "color": "#2e8b57"}
]}`)},
		"projects.json": {Data: []byte(`{"projects": [
  {"title": "Vitrine", "description": "Site vitrine", "image": "", "skills": ["React", "CSS"]},
  {"title": "Annuaire", "description": "API REST", "image": "", "skills": ["Go"],
   "details": {"categorie": "Web", "date": "2024", "equipe": "2", "fonction": "Dev", "contexte": "Stage"}}
]}`)},
		"contact.json": {Data: []byte(`{"contact": {"email": "me@example.com", "social": []}}`)},
	}
}

type fakeRelay struct {
	err  error
	sent []contact.Message
}

func (f *fakeRelay) Name() string { return "fake" }

func (f *fakeRelay) Send(_ context.Context, m contact.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type testServer struct {
	srv   *Server
	store *content.Store
	db    *storage.DB
	relay *fakeRelay
}

func newTestServer(t *testing.T, fsys fstest.MapFS, opts Options) *testServer {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "web.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	relay := &fakeRelay{}
	store := content.NewStore(content.NewFSLoader(fsys), zap.NewNop(), nil)
	srv, err := New(opts, Deps{
		Store:   store,
		Contact: contact.NewService(relay, db, zap.NewNop(), nil),
		DB:      db,
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)
	// Runs before the database is closed.
	t.Cleanup(srv.Wait)

	return &testServer{srv: srv, store: store, db: db, relay: relay}
}

func newReadyServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	ts := newTestServer(t, contentFS(), opts)
	require.NoError(t, ts.store.Reload(context.Background()))
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testServer) get(target string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(Options{}, Deps{})
	assert.Error(t, err)
}

func TestHomePage(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, HeroHeadline)
	assert.Contains(t, body, "Acme")
	assert.Contains(t, body, "Master Informatique")
	assert.Contains(t, body, "<h3>Vitrine</h3>")
	assert.Contains(t, body, "<h3>Annuaire</h3>")
	assert.Contains(t, body, `id="contact-form"`)
	assert.Contains(t, body, "me@example.com")
}

func TestPagesWhileLoading(t *testing.T) {
	ts := newTestServer(t, contentFS(), Options{})

	for _, path := range []string{"/", "/projects", "/skills"} {
		w := ts.get(path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Contains(t, w.Body.String(), "Chargement", path)
	}
}

func TestPagesAfterFailedLoad(t *testing.T) {
	fsys := contentFS()
	fsys["skills.json"] = &fstest.MapFile{Data: []byte(`not json`)}
	ts := newTestServer(t, fsys, Options{})
	require.Error(t, ts.store.Reload(context.Background()))

	w := ts.get("/")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `action="/api/reload"`)
	assert.Contains(t, w.Body.String(), "skills")
}

func TestProjectsPageFilters(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.get("/projects?skill=Go&filters=1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h3>Annuaire</h3>")
	assert.NotContains(t, body, "<h3>Vitrine</h3>")
	assert.Contains(t, body, "1 projet(s)")
	assert.Contains(t, body, `class="category selected"`)
}

func TestProjectsPageNoMatch(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.get("/projects?skill=Rust")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Aucun projet")
}

func TestProjectModal(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.get("/projects?project=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `role="dialog"`)
	assert.Contains(t, w.Body.String(), "Stage")

	w = ts.get("/projects?project=7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `role="dialog"`)
}

func TestSkillsPage(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.get("/skills")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "React, CSS")
}

func TestDownloadCV(t *testing.T) {
	cv := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(cv, []byte("%PDF-1.4"), 0o600))

	ts := newReadyServer(t, Options{CVPath: cv})
	w := ts.get("/cv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cv.pdf")

	missing := newReadyServer(t, Options{CVPath: filepath.Join(t.TempDir(), "nope.pdf")})
	assert.Equal(t, http.StatusNotFound, missing.get("/cv").Code)
}

func TestAPIStatusAndReload(t *testing.T) {
	ts := newTestServer(t, contentFS(), Options{})

	var st statusResponse
	w := ts.get("/api/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "loading", st.State)

	assert.Equal(t, http.StatusServiceUnavailable, ts.get("/api/content").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	req.Header.Set("Accept", "application/json")
	w = ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "ready", st.State)
	assert.Empty(t, st.Reason)

	assert.Equal(t, http.StatusOK, ts.get("/api/content").Code)
}

func TestAPIReloadRedirectsBrowsers(t *testing.T) {
	ts := newTestServer(t, contentFS(), Options{})

	w := ts.do(httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, content.PhaseReady, ts.store.State().Phase)
}

func TestAPIProjects(t *testing.T) {
	ts := newReadyServer(t, Options{})

	var res projectsResponse
	w := ts.get("/api/projects?category=Frontend")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "Vitrine", res.Projects[0].Title)
	assert.Equal(t, []string{"CSS", "React"}, res.Skills)
	assert.Equal(t, []string{"Frontend"}, res.Categories)

	w = ts.get("/api/projects")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Total)
}

func TestAPIProject(t *testing.T) {
	ts := newReadyServer(t, Options{})

	var p content.Project
	w := ts.get("/api/projects/1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Annuaire", p.Title)

	assert.Equal(t, http.StatusNotFound, ts.get("/api/projects/2").Code)
	assert.Equal(t, http.StatusNotFound, ts.get("/api/projects/x").Code)
}

func TestAPITimeline(t *testing.T) {
	ts := newReadyServer(t, Options{})

	var res struct {
		Years   []map[string]any `json:"years"`
		Entries []struct {
			Title     string `json:"title"`
			Placement struct {
				OffsetPercent float64 `json:"offsetPercent"`
				WidthPercent  float64 `json:"widthPercent"`
			} `json:"placement"`
			Raw struct {
				OffsetPercent float64 `json:"offsetPercent"`
			} `json:"raw"`
		} `json:"entries"`
	}
	w := ts.get("/api/timeline")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	assert.Len(t, res.Years, 4)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Développeur Go", res.Entries[0].Title)

	formation := res.Entries[1]
	assert.Less(t, formation.Raw.OffsetPercent, 0.0)
	assert.Equal(t, 0.0, formation.Placement.OffsetPercent)
	assert.Greater(t, formation.Placement.WidthPercent, 0.0)
}

func TestContactSubmit(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.do(postForm("/contact", url.Values{
		"nom": {"Lovelace"}, "prenom": {"Ada"}, "email": {"ada@example.com"}, "message": {"Bonjour"},
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), contactSentText)
	assert.NotContains(t, w.Body.String(), "Lovelace")
	require.Len(t, ts.relay.sent, 1)
	assert.Equal(t, "Bonjour", ts.relay.sent[0].Text)

	msgs, err := ts.db.RecentMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, contact.StatusSent, msgs[0].Status)
}

func TestContactSubmitInvalid(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.do(postForm("/contact", url.Values{
		"nom": {"Lovelace"}, "prenom": {"Ada"}, "email": {"not-an-email"}, "message": {"Bonjour"},
	}))
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, contactInvalidText)
	assert.Contains(t, body, `value="Lovelace"`)
	assert.Contains(t, body, `value="not-an-email" required aria-invalid="true"`)
	assert.Empty(t, ts.relay.sent)
}

func TestContactSubmitRelayFailure(t *testing.T) {
	ts := newReadyServer(t, Options{})
	ts.relay.err = errors.New("quota exceeded")

	w := ts.do(postForm("/contact", url.Values{
		"nom": {"Lovelace"}, "prenom": {"Ada"}, "email": {"ada@example.com"}, "message": {"Bonjour"},
	}))
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Erreur lors de")
	assert.Contains(t, w.Body.String(), "Bonjour")

	msgs, err := ts.db.RecentMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, contact.StatusError, msgs[0].Status)
}

func TestContactFormFragment(t *testing.T) {
	ts := newTestServer(t, contentFS(), Options{})

	w := ts.get("/contact-form")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `hx-post="/contact"`)
	assert.NotContains(t, w.Body.String(), "<html")
}

func TestHealthz(t *testing.T) {
	ts := newReadyServer(t, Options{})

	w := ts.get("/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"ready"`)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newReadyServer(t, Options{})
	assert.Equal(t, http.StatusOK, ts.get("/metrics").Code)
}

func TestVisitorTracking(t *testing.T) {
	ts := newReadyServer(t, Options{TrackVisitors: true})

	ts.get("/")
	ts.get("/api/status")
	ts.get("/healthz")
	dnt := httptest.NewRequest(http.MethodGet, "/skills", nil)
	dnt.Header.Set("DNT", "1")
	ts.do(dnt)
	ts.srv.Wait()

	visitors, err := ts.db.RecentVisitors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, visitors, 1)
	assert.Equal(t, "/", visitors[0].Path)
	assert.Len(t, visitors[0].HashedIP, 16)
}

func TestAdminDisabledWithoutPassword(t *testing.T) {
	ts := newReadyServer(t, Options{AdminUsername: "admin"})

	assert.Equal(t, http.StatusNotFound, ts.get("/admin/login").Code)
	w := ts.do(postForm("/admin/login", url.Values{"username": {"admin"}, "password": {""}}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLoginFlow(t *testing.T) {
	ts := newReadyServer(t, Options{AdminUsername: "admin", AdminPassword: "s3cret", VisitorRetention: time.Hour})

	w := ts.get("/admin/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = ts.do(postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}}))
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, adminCookie, cookies[0].Name)

	authed := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		req.AddCookie(cookies[0])
		return ts.do(req)
	}

	w = authed(http.MethodGet, "/admin/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fake")

	w = authed(http.MethodGet, "/admin/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats storage.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))

	assert.Equal(t, http.StatusOK, authed(http.MethodGet, "/admin/visitors").Code)
	assert.Equal(t, http.StatusOK, authed(http.MethodGet, "/admin/messages").Code)

	w = authed(http.MethodGet, "/admin/export/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "admin-stats.json")

	w = authed(http.MethodPost, "/admin/privacy/cleanup")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":0`)
}

func TestPrivacyPage(t *testing.T) {
	ts := newReadyServer(t, Options{TrackVisitors: true, VisitorRetention: 30 * 24 * time.Hour})

	w := ts.get("/privacy")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "30 jours")
}

func TestAPIReloadSurvivesCancelledRequest(t *testing.T) {
	ts := newReadyServer(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil).WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	w := ts.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content.PhaseReady, ts.store.State().Phase)
	assert.Equal(t, http.StatusOK, ts.get("/").Code)
}

func TestAPIReloadRedirectStaysLocal(t *testing.T) {
	ts := newReadyServer(t, Options{})

	tests := []struct {
		referer string
		want    string
	}{
		{referer: "", want: "/"},
		{referer: "/projects?skill=Go", want: "/projects?skill=Go"},
		{referer: "http://example.com/skills", want: "/skills"},
		{referer: "https://evil.example/phish", want: "/"},
		{referer: "//evil.example/phish", want: "/"},
		{referer: "javascript:alert(1)", want: "/"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		w := ts.do(req)
		require.Equal(t, http.StatusSeeOther, w.Code, tt.referer)
		assert.Equal(t, tt.want, w.Header().Get("Location"), tt.referer)
	}
}
