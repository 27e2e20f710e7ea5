package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/config"
	"nutrivision-go/internal/dashboard"
	"nutrivision-go/internal/feedback"
	"nutrivision-go/internal/metrics"
	"nutrivision-go/internal/models"
	"nutrivision-go/internal/plans"
	"nutrivision-go/internal/profiles"
	"nutrivision-go/internal/session"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeCredentials struct {
	users map[string]*models.User
}

func (f *fakeCredentials) Register(_ context.Context, email, username, password string) (*models.User, error) {
	if password == "" {
		return nil, apperr.Invalid("password", "password cannot be empty")
	}
	if _, ok := f.users[email]; ok {
		return nil, apperr.Duplicate("email")
	}
	u := &models.User{ID: uint(len(f.users) + 1), Email: email, Username: username}
	f.users[email] = u
	return u, nil
}

func (f *fakeCredentials) Authenticate(_ context.Context, identifier, password string) (*models.User, error) {
	if u, ok := f.users[identifier]; ok && password == "Secret#123" {
		return u, nil
	}
	return nil, apperr.ErrUnauthenticated
}

func (f *fakeCredentials) BeginPasswordReset(_ context.Context, email string) (string, error) {
	if _, ok := f.users[email]; !ok {
		return "", apperr.ErrNotFound
	}
	return "tok-1", nil
}

func (f *fakeCredentials) CompletePasswordReset(_ context.Context, _, token, _ string) error {
	if token != "tok-1" {
		return apperr.ErrInvalidToken
	}
	return nil
}

type fakeProfiles struct {
	latest *models.Profile
}

func (f *fakeProfiles) SaveProfile(_ context.Context, userID uint, s profiles.Survey) (float64, error) {
	bmi := profiles.BMI(s.Height, s.Weight)
	f.latest = &models.Profile{UserID: userID, Name: s.Name, BMI: bmi}
	return bmi, nil
}

func (f *fakeProfiles) Latest(context.Context, uint) (*models.Profile, error) {
	if f.latest == nil {
		return nil, apperr.ErrNotFound
	}
	return f.latest, nil
}

type fakePlanner struct {
	err     error
	calls   int
	lastReq plans.DietSurvey
	force   bool
	history []plans.Entry
}

func (f *fakePlanner) GetOrGenerateDietPlan(_ context.Context, _ uint, s plans.DietSurvey, force bool) (*plans.Result, error) {
	f.calls++
	f.lastReq, f.force = s, force
	if f.err != nil {
		return nil, f.err
	}
	return &plans.Result{Plan: "### Day 1\n**Breakfast**", Cached: f.calls > 1, Fingerprint: "abc"}, nil
}

func (f *fakePlanner) GetOrGenerateWorkoutPlan(context.Context, uint, plans.WorkoutSurvey, bool) (*plans.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &plans.Result{Plan: "Day 1: Legs"}, nil
}

func (f *fakePlanner) History(context.Context, uint, string) ([]plans.Entry, error) {
	return f.history, nil
}

func (f *fakePlanner) PastPlan(_ context.Context, _ uint, _ string, index int) (*plans.Entry, error) {
	if index > len(f.history) {
		return nil, apperr.ErrNotFound
	}
	return &f.history[index-1], nil
}

func (f *fakePlanner) CurrentPlan(_ context.Context, _ uint, kind string) (*plans.Entry, error) {
	if len(f.history) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &plans.Entry{Plan: f.history[0].Plan, Filename: plans.ExportFilename(kind, 0)}, nil
}

type fakeFeedback struct {
	plan     *models.DietPlan
	recorded []feedback.Input
}

func (f *fakeFeedback) CurrentPlan(context.Context, uint) (*models.DietPlan, error) {
	if f.plan == nil {
		return nil, apperr.ErrNotFound
	}
	return f.plan, nil
}

func (f *fakeFeedback) Record(_ context.Context, userID uint, in feedback.Input) (*models.DietFeedback, error) {
	if in.Rating > 5 {
		return nil, apperr.Invalid("rating", "must be between 1 and 5")
	}
	f.recorded = append(f.recorded, in)
	return &models.DietFeedback{UserID: userID, PlanText: in.PlanText, Rating: in.Rating}, nil
}

type fakeVision struct {
	seen int
}

func (f *fakeVision) CheckFreshness(_ context.Context, raw []byte) (string, error) {
	f.seen = len(raw)
	return "Fresh: bright color, firm texture.", nil
}

func (f *fakeVision) IdentifyDish(context.Context, []byte) (string, error) {
	return "", apperr.ErrTooLowResolution
}

type fakeDashboard struct{}

func (fakeDashboard) Summary(context.Context, uint) (*dashboard.Summary, error) {
	return &dashboard.Summary{Latest: &models.Profile{BMI: 22.86}, DietPlansGenerated: 3}, nil
}

func (fakeDashboard) Export(_ context.Context, _ uint, w io.Writer) error {
	_, err := w.Write([]byte("xlsx"))
	return err
}

type testServer struct {
	engine      *gin.Engine
	credentials *fakeCredentials
	profiles    *fakeProfiles
	planner     *fakePlanner
	feedback    *fakeFeedback
	vision      *fakeVision
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimitRPS = 0
	cfg.MaxUploadMB = 1
	if mutate != nil {
		mutate(cfg)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	reg := prometheus.NewRegistry()

	ts := &testServer{
		credentials: &fakeCredentials{users: map[string]*models.User{}},
		profiles:    &fakeProfiles{},
		planner:     &fakePlanner{},
		feedback:    &fakeFeedback{},
		vision:      &fakeVision{},
	}
	ts.engine = NewServer(Deps{
		Config:      cfg,
		Log:         log,
		Metrics:     metrics.New(reg),
		Gatherer:    reg,
		Credentials: ts.credentials,
		Sessions:    session.NewController(session.NewMemoryStore(), session.NewTokenCodec([]byte("k")), time.Hour, log),
		Profiles:    ts.profiles,
		Planner:     ts.planner,
		Feedback:    ts.feedback,
		Vision:      ts.vision,
		Dashboard:   fakeDashboard{},
	})
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

// login registers a user and returns a session token.
func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	ts.do("POST", "/v1/auth/signup", "", gin.H{"email": "a@b.co", "username": "ann", "password": "Secret#123"})
	w := ts.do("POST", "/v1/auth/login", "", gin.H{"identifier": "a@b.co", "password": "Secret#123"})
	if w.Code != 200 {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response %s: %v", w.Body.String(), err)
	}
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func TestHomeAndHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do("GET", "/", "", nil)
	if w.Code != 200 || !strings.Contains(w.Body.String(), "Rate Diet Plan") {
		t.Fatalf("home: %d %s", w.Code, w.Body.String())
	}
	if w := ts.do("GET", "/health", "", nil); w.Code != 200 {
		t.Fatalf("health: %d", w.Code)
	}
}

func TestSignup(t *testing.T) {
	ts := newTestServer(t, nil)
	body := gin.H{"email": "a@b.co", "username": "ann", "password": "Secret#123"}

	if w := ts.do("POST", "/v1/auth/signup", "", body); w.Code != 201 {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	w := ts.do("POST", "/v1/auth/signup", "", body)
	if w.Code != 409 || decode(t, w)["error"] != "duplicate_identity" {
		t.Fatalf("duplicate signup: %d %s", w.Code, w.Body.String())
	}
	w = ts.do("POST", "/v1/auth/signup", "", gin.H{"email": "c@d.co", "username": "cy"})
	if w.Code != 400 || decode(t, w)["error"] != "validation_failed" {
		t.Fatalf("invalid signup: %d %s", w.Code, w.Body.String())
	}
}

func TestLoginLogoutAndProtectedRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	if w := ts.do("GET", "/v1/profile", "", nil); w.Code != 401 {
		t.Fatalf("no header: %d", w.Code)
	}
	if w := ts.do("GET", "/v1/profile", "garbage", nil); w.Code != 401 {
		t.Fatalf("bad token: %d", w.Code)
	}

	ts.do("POST", "/v1/auth/signup", "", gin.H{"email": "a@b.co", "username": "ann", "password": "Secret#123"})
	w := ts.do("POST", "/v1/auth/login", "", gin.H{"identifier": "a@b.co", "password": "wrong"})
	if w.Code != 401 || decode(t, w)["error"] != "invalid_credentials" {
		t.Fatalf("wrong password: %d %s", w.Code, w.Body.String())
	}

	token := ts.login(t)
	if w := ts.do("GET", "/v1/profile", token, nil); w.Code != 200 {
		t.Fatalf("profile: %d %s", w.Code, w.Body.String())
	}
	if w := ts.do("POST", "/v1/auth/logout", token, nil); w.Code != 200 {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := ts.do("GET", "/v1/profile", token, nil); w.Code != 401 {
		t.Fatalf("after logout: %d", w.Code)
	}
}

type expiredSessions struct{ Sessions }

func (expiredSessions) Resume(context.Context, string) (*session.Session, error) {
	return nil, apperr.ErrSessionExpired
}

func TestExpiredSession(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	engine := NewServer(Deps{Config: config.Default(), Log: log, Sessions: expiredSessions{}})

	req := httptest.NewRequest("GET", "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != 401 || !strings.Contains(w.Body.String(), "session_expired") {
		t.Fatalf("expired: %d %s", w.Code, w.Body.String())
	}
}

func TestPasswordReset(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do("POST", "/v1/auth/signup", "", gin.H{"email": "a@b.co", "username": "ann", "password": "Secret#123"})

	if w := ts.do("POST", "/v1/auth/password/forgot", "", gin.H{"email": "x@y.co"}); w.Code != 404 {
		t.Fatalf("unknown email: %d", w.Code)
	}
	w := ts.do("POST", "/v1/auth/password/forgot", "", gin.H{"email": "a@b.co"})
	if w.Code != 200 || decode(t, w)["reset_token"] != "tok-1" {
		t.Fatalf("forgot: %d %s", w.Code, w.Body.String())
	}

	cases := []struct {
		name    string
		token   string
		confirm string
		status  int
	}{
		{"mismatch", "tok-1", "Other#123", 400},
		{"wrong token", "nope", "New#Pass1", 400},
		{"ok", "tok-1", "New#Pass1", 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do("POST", "/v1/auth/password/reset", "", gin.H{
				"email": "a@b.co", "token": tc.token, "new_password": "New#Pass1", "confirm_password": tc.confirm,
			})
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t)

	w := ts.do("GET", "/v1/profile", token, nil)
	body := decode(t, w)
	if body["profile"] != nil || body["defaults"] == nil {
		t.Fatalf("empty profile: %s", w.Body.String())
	}

	w = ts.do("POST", "/v1/profile", token, gin.H{"name": "Ann", "height": 1.75, "weight": 70})
	body = decode(t, w)
	if w.Code != 201 || body["bmi"] != 22.86 || body["bmi_category"] != "Normal weight" {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
}

func TestDietPlan(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t)
	req := gin.H{
		"diet_type": "Vegetarian", "allergens": []string{"Dairy"},
		"health_conditions": []string{"None"}, "supplements": []string{"None"},
		"force_regenerate": true,
	}

	w := ts.do("POST", "/v1/diet-plan", token, req)
	if w.Code != 200 {
		t.Fatalf("diet plan: %d %s", w.Code, w.Body.String())
	}
	if !ts.planner.force || ts.planner.lastReq.DietType != "Vegetarian" || len(ts.planner.lastReq.Allergens) != 1 {
		t.Fatalf("request not forwarded: %+v force=%v", ts.planner.lastReq, ts.planner.force)
	}
	if body := decode(t, w); body["plan"] != "### Day 1\n**Breakfast**" || body["filename"] != "diet_plan.txt" {
		t.Fatalf("unexpected body %v", body)
	}

	w = ts.do("POST", "/v1/diet-plan?format=html", token, req)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<h3>Day 1</h3>") || !strings.Contains(w.Body.String(), "<strong>Breakfast</strong>") {
		t.Fatalf("markdown not rendered: %s", w.Body.String())
	}
}

func TestPlanErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"profile incomplete", errors.Wrap(apperr.ErrProfileIncomplete, "BMI value is too low"), 422, "profile_incomplete"},
		{"validation", apperr.Invalid("diet survey", "please fill out all required fields"), 400, "validation_failed"},
		{"unexpected", errors.New("connection reset"), 500, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			token := ts.login(t)
			ts.planner.err = tc.err
			w := ts.do("POST", "/v1/workout-plan", token, gin.H{})
			body := decode(t, w)
			if w.Code != tc.status || body["error"] != tc.code {
				t.Fatalf("got %d %v", w.Code, body)
			}
			if tc.status == 500 && strings.Contains(w.Body.String(), "connection reset") {
				t.Fatal("internal error leaked")
			}
		})
	}
}

func TestPlanDownloads(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t)
	ts.planner.history = []plans.Entry{
		{Index: 1, Plan: "newest", Filename: "diet_plan_1.txt"},
		{Index: 2, Plan: "older", Filename: "diet_plan_2.txt"},
	}

	w := ts.do("GET", "/v1/diet-plans/2/download", token, nil)
	if w.Code != 200 || w.Body.String() != "older" {
		t.Fatalf("download: %d %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="diet_plan_2.txt"` {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	cases := []struct {
		path   string
		status int
	}{
		{"/v1/diet-plans/0/download", 400},
		{"/v1/diet-plans/x/download", 400},
		{"/v1/diet-plans/3/download", 404},
		{"/v1/plans/current/snack/download", 404},
		{"/v1/plans/current/workout/download", 200},
	}
	for _, tc := range cases {
		if w := ts.do("GET", tc.path, token, nil); w.Code != tc.status {
			t.Errorf("%s: %d, want %d", tc.path, w.Code, tc.status)
		}
	}

	w = ts.do("GET", "/v1/workout-plans", token, nil)
	if w.Code != 200 || !strings.Contains(w.Body.String(), "diet_plan_1.txt") {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
}

func TestFeedback(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t)
	rating := gin.H{"rating": 4, "compliance": "Yes", "feedback": "good"}

	if w := ts.do("GET", "/v1/feedback/plan", token, nil); w.Code != 404 {
		t.Fatalf("no plan: %d", w.Code)
	}
	if w := ts.do("POST", "/v1/feedback", token, rating); w.Code != 404 {
		t.Fatalf("rating without plan: %d", w.Code)
	}

	ts.feedback.plan = &models.DietPlan{PlanText: "current plan"}
	if w := ts.do("POST", "/v1/feedback", token, rating); w.Code != 201 {
		t.Fatalf("rating: %d %s", w.Code, w.Body.String())
	}
	if len(ts.feedback.recorded) != 1 || ts.feedback.recorded[0].PlanText != "current plan" {
		t.Fatalf("recorded %+v", ts.feedback.recorded)
	}
	if w := ts.do("POST", "/v1/feedback", token, gin.H{"rating": 9, "compliance": "Yes"}); w.Code != 400 {
		t.Fatalf("bad rating: %d", w.Code)
	}
}

func upload(t *testing.T, ts *testServer, path, token string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(payload)
	mw.Close()

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func TestVision(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t)

	w := upload(t, ts, "/v1/vision/freshness", token, []byte("pretend image"))
	if w.Code != 200 || decode(t, w)["result"] != "Fresh: bright color, firm texture." || ts.vision.seen != 13 {
		t.Fatalf("freshness: %d %s", w.Code, w.Body.String())
	}

	w = upload(t, ts, "/v1/vision/dish", token, []byte("tiny"))
	if w.Code != 422 || decode(t, w)["error"] != "image_resolution_too_low" {
		t.Fatalf("dish: %d %s", w.Code, w.Body.String())
	}

	w = upload(t, ts, "/v1/vision/freshness", token, bytes.Repeat([]byte{1}, 1<<20+1))
	if w.Code != 413 {
		t.Fatalf("oversized: %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.RateLimitRPS = 0.001
		c.RateLimitBurst = 1
	})
	token := ts.login(t)

	if w := ts.do("POST", "/v1/workout-plan", token, gin.H{}); w.Code != 200 {
		t.Fatalf("first: %d", w.Code)
	}
	if w := ts.do("POST", "/v1/workout-plan", token, gin.H{}); w.Code != 429 {
		t.Fatalf("second: %d", w.Code)
	}
	// Non-AI routes are not throttled.
	if w := ts.do("GET", "/v1/workout-plans", token, nil); w.Code != 200 {
		t.Fatalf("history: %d", w.Code)
	}
}

func TestUserLimiterEvictsIdleBuckets(t *testing.T) {
	l := newUserLimiter(1, 1)
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := t0
	l.now = func() time.Time { return clock }

	if !l.allow(1) || l.allow(1) {
		t.Fatal("burst of one should allow exactly one request")
	}
	l.allow(2)

	clock = t0.Add(2 * time.Minute)
	l.allow(2)

	clock = t0.Add(4 * time.Minute)
	l.allow(3)
	if got := l.size(); got != 2 {
		t.Fatalf("buckets = %d, want 2 after user 1 went idle", got)
	}
	if !l.allow(1) {
		t.Fatal("an evicted user starts with a full bucket")
	}
}

func TestDashboardAndMetrics(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t)

	w := ts.do("GET", "/v1/dashboard", token, nil)
	if w.Code != 200 || decode(t, w)["bmi_category"] != "Normal weight" {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	w = ts.do("GET", "/v1/dashboard/export", token, nil)
	if w.Code != 200 || w.Header().Get("Content-Type") != dashboard.ExportMIMEType || w.Body.String() != "xlsx" {
		t.Fatalf("export: %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	w = ts.do("GET", "/metrics", "", nil)
	if w.Code != 200 || !strings.Contains(w.Body.String(), `nutrivision_http_requests_total{method="GET",route="/v1/dashboard",status="200"} 1`) {
		t.Fatalf("metrics: %d %s", w.Code, w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(http.MethodOptions, "/v1/diet-plan", "", nil)
	if w.Code != 204 || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: %d %v", w.Code, w.Header())
	}
}
