package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/dbx"
	"github.com/cohorttools/cohort-api/internal/logging"
	"github.com/cohorttools/cohort-api/internal/server/auth"
	"github.com/cohorttools/cohort-api/internal/server/config"
	"github.com/cohorttools/cohort-api/internal/server/models"
	"github.com/cohorttools/cohort-api/internal/server/services"

	cohortsrepo "github.com/cohorttools/cohort-api/internal/server/repositories/cohorts"
	studentsrepo "github.com/cohorttools/cohort-api/internal/server/repositories/students"
	usersrepo "github.com/cohorttools/cohort-api/internal/server/repositories/users"
)

// --- in-memory repositories ---

type memUsers struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	nextID  int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	m.nextID++
	u.ID = "u" + strconv.Itoa(m.nextID)
	u.CreatedAt = time.Now()
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type memCohorts struct {
	byID map[string]*models.Cohort
}

func (m *memCohorts) List(ctx context.Context, f cohortsrepo.Filter) ([]*models.Cohort, error) {
	var out []*models.Cohort
	for _, c := range m.byID {
		if f.Campus != "" && c.Campus != f.Campus {
			continue
		}
		if f.Program != "" && c.Program != f.Program {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memCohorts) GetByID(ctx context.Context, id string) (*models.Cohort, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memCohorts) Create(ctx context.Context, c *models.Cohort) (*models.Cohort, error) {
	c.ID = "c1"
	m.byID[c.ID] = c
	return c, nil
}

func (m *memCohorts) Update(ctx context.Context, c *models.Cohort) (*models.Cohort, error) {
	if _, ok := m.byID[c.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	m.byID[c.ID] = c
	return c, nil
}

func (m *memCohorts) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

type memStudents struct {
	byID map[string]*models.Student
}

func (m *memStudents) List(ctx context.Context) ([]*models.Student, error) {
	var out []*models.Student
	for _, s := range m.byID {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStudents) ListByCohort(ctx context.Context, cohortID string) ([]*models.Student, error) {
	var out []*models.Student
	for _, s := range m.byID {
		if s.CohortID == cohortID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) GetByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memStudents) Create(ctx context.Context, s *models.Student) (*models.Student, error) {
	s.ID = "s1"
	m.byID[s.ID] = s
	return s, nil
}

func (m *memStudents) Update(ctx context.Context, s *models.Student) (*models.Student, error) {
	if _, ok := m.byID[s.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	m.byID[s.ID] = s
	return s, nil
}

func (m *memStudents) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

type memRepoManager struct {
	users    *memUsers
	cohorts  *memCohorts
	students *memStudents
}

func (m *memRepoManager) EnsureSchema(context.Context, *sql.DB) error { return nil }

func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *memRepoManager) Cohorts(db dbx.DBTX) cohortsrepo.Repository   { return m.cohorts }
func (m *memRepoManager) Students(db dbx.DBTX) studentsrepo.Repository { return m.students }

// --- helpers ---

type testEnv struct {
	handler http.Handler
	manager *memRepoManager
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	manager := &memRepoManager{
		users:    newMemUsers(),
		cohorts:  &memCohorts{byID: map[string]*models.Cohort{}},
		students: &memStudents{byID: map[string]*models.Student{}},
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	authSvc := services.NewAuthService(nil, manager, auth.NewBcryptHasher(), logger, cfg)
	cohortSvc := services.NewCohortService(nil, manager, logger)
	studentSvc := services.NewStudentService(nil, manager, logger)

	srv := NewServer(":0", logger, authSvc, cohortSvc, studentSvc, nil)
	return &testEnv{handler: srv.Router(), manager: manager}
}

func defaultTestConfig() *config.Config {
	return &config.Config{
		SecretKey:                 "test-secret",
		AuthTokenValidityDuration: time.Hour,
		SignupRateLimit:           auth.LimiterConfig{WindowDuration: time.Hour, MaxRequests: 100},
		LoginRateLimit:            auth.LimiterConfig{WindowDuration: time.Hour, MaxRequests: 100},
	}
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON object: %v\n%s", err, rec.Body.String())
	}
	return body
}

func (e *testEnv) signup(t *testing.T, username, email, password string) map[string]any {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/signup",
		`{"username":"`+username+`","email":"`+email+`","password":"`+password+`"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)
}

func (e *testEnv) login(t *testing.T, email, password string) map[string]any {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)
}

// --- auth endpoints ---

func TestSignupEndpoint_Created(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	body := env.signup(t, "ada_l", "Ada@Example.com", "Secretpass1")

	if body["message"] != "User created successfully" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	newUser, ok := body["newUser"].(map[string]any)
	if !ok {
		t.Fatalf("missing newUser object: %v", body)
	}
	if newUser["email"] != "ada@example.com" {
		t.Fatalf("email not normalized: %v", newUser["email"])
	}
	if _, leaked := newUser["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestSignupEndpoint_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodPost, "/auth/signup",
		`{"username":"a!","email":"nope","password":"x"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Errors) != 3 {
		t.Fatalf("expected 3 field errors, got %+v", body.Errors)
	}
	wantFields := []string{"username", "email", "password"}
	for i, fe := range body.Errors {
		if fe.Field != wantFields[i] {
			t.Fatalf("error %d field = %q, want %q", i, fe.Field, wantFields[i])
		}
		if fe.Message == "" {
			t.Fatalf("error %d has empty message", i)
		}
	}
}

func TestSignupEndpoint_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	env.signup(t, "ada_l", "ada@example.com", "Secretpass1")

	rec := env.do(t, http.MethodPost, "/auth/signup",
		`{"username":"other_user","email":"ADA@example.com","password":"Secretpass1"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["errorMessage"] != "Email already in use" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSignupEndpoint_RateLimited(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.SignupRateLimit = auth.LimiterConfig{WindowDuration: time.Hour, MaxRequests: 1}
	env := newTestEnv(t, cfg)

	env.signup(t, "ada_l", "ada@example.com", "Secretpass1")

	rec := env.do(t, http.MethodPost, "/auth/signup",
		`{"username":"grace_h","email":"grace@example.com","password":"Secretpass1"}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if body := decodeBody(t, rec); body["errorMessage"] != "Too many signup attempts, please try again later" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSignupEndpoint_MalformedBody(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodPost, "/auth/signup", `{"username":`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLoginEndpoint_Success(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())
	env.signup(t, "ada_l", "ada@example.com", "Secretpass1")

	body := env.login(t, "Ada@Example.com", "Secretpass1")

	if body["message"] != "Congrats u're logged in" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	token, _ := body["authToken"].(string)
	if token == "" {
		t.Fatalf("missing authToken: %v", body)
	}
	if body["userId"] == "" || body["userId"] == nil {
		t.Fatalf("missing userId: %v", body)
	}
}

func TestLoginEndpoint_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())
	env.signup(t, "ada_l", "ada@example.com", "Secretpass1")

	wrongPassword := env.do(t, http.MethodPost, "/auth/login",
		`{"email":"ada@example.com","password":"Wrongpass1"}`, "")
	missingUser := env.do(t, http.MethodPost, "/auth/login",
		`{"email":"nobody@example.com","password":"Secretpass1"}`, "")

	if wrongPassword.Code != http.StatusUnauthorized || missingUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401, 401", wrongPassword.Code, missingUser.Code)
	}
	if wrongPassword.Body.String() != missingUser.Body.String() {
		t.Fatalf("bodies differ:\n%s\n%s", wrongPassword.Body.String(), missingUser.Body.String())
	}
	if body := decodeBody(t, wrongPassword); body["errorMessage"] != "Invalid email or password" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLoginEndpoint_RateLimited(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.LoginRateLimit = auth.LimiterConfig{WindowDuration: time.Hour, MaxRequests: 1}
	env := newTestEnv(t, cfg)

	env.do(t, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"x"}`, "")

	rec := env.do(t, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"x"}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if body := decodeBody(t, rec); body["errorMessage"] != "Too many login attempts, please try again later" {
		t.Fatalf("unexpected body: %v", body)
	}
}

// --- token verification ---

func TestVerifyEndpoint_Success(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())
	env.signup(t, "ada_l", "ada@example.com", "Secretpass1")
	token := env.login(t, "ada@example.com", "Secretpass1")["authToken"].(string)

	rec := env.do(t, http.MethodGet, "/auth/verify", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "Token is valid" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	current, ok := body["currentLoggedUser"].(map[string]any)
	if !ok {
		t.Fatalf("missing currentLoggedUser: %v", body)
	}
	if current["email"] != "ada@example.com" {
		t.Fatalf("unexpected user: %v", current)
	}
}

func TestVerifyEndpoint_MissingHeader(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodGet, "/auth/verify", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Authorization header missing" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestVerifyEndpoint_BadFormat(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Invalid authorization format" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestVerifyEndpoint_InvalidToken(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodGet, "/auth/verify", "", "not.a.token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Invalid or expired token" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestVerifyEndpoint_DeletedSubject(t *testing.T) {
	cfg := defaultTestConfig()
	env := newTestEnv(t, cfg)

	token, err := auth.GenerateToken("ghost", []byte(cfg.SecretKey), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/auth/verify", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["errorMessage"] != "User not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

// --- user profile ---

func TestGetUserEndpoint(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())
	env.signup(t, "ada_l", "ada@example.com", "Secretpass1")
	login := env.login(t, "ada@example.com", "Secretpass1")
	token := login["authToken"].(string)
	userID := login["userId"].(string)

	rec := env.do(t, http.MethodGet, "/api/user/"+userID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	if !ok || user["id"] != userID {
		t.Fatalf("unexpected body: %v", body)
	}

	rec = env.do(t, http.MethodGet, "/api/user/missing", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["errorMessage"] != "User not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetUserEndpoint_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodGet, "/api/user/u1", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

// --- cohorts ---

func TestCohortEndpoints_CRUD(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodPost, "/api/cohorts",
		`{"cohortSlug":"ft-wd-2026","cohortName":"FT WD 2026","program":"Web Dev","campus":"Berlin"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("created cohort has no id: %v", created)
	}

	rec = env.do(t, http.MethodGet, "/api/cohorts/"+id, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["cohortSlug"] != "ft-wd-2026" {
		t.Fatalf("unexpected cohort: %v", body)
	}

	rec = env.do(t, http.MethodGet, "/api/cohorts?campus=Berlin&program=Web+Dev", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one matching cohort: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/cohorts?campus=Madrid", "", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 0 {
		t.Fatalf("expected no cohorts for other campus: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, "/api/cohorts/"+id, `{"cohortSlug":"ft-wd-2026","cohortName":"Renamed"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["cohortName"] != "Renamed" {
		t.Fatalf("unexpected updated cohort: %v", body)
	}

	rec = env.do(t, http.MethodDelete, "/api/cohorts/"+id, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Cohort deleted successfully" {
		t.Fatalf("unexpected body: %v", body)
	}

	rec = env.do(t, http.MethodGet, "/api/cohorts/"+id, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Cohort not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

// --- students ---

func TestStudentEndpoints_CRUD(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodPost, "/api/students",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","languages":["English"],"cohortId":"c9"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("created student has no id: %v", created)
	}

	rec = env.do(t, http.MethodGet, "/api/students/cohort/c9", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list by cohort status = %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one student in cohort: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/students/cohort/other", "", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 0 {
		t.Fatalf("expected no students in other cohort: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, "/api/students/"+id, `{"firstName":"Ada","lastName":"King"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["lastName"] != "King" {
		t.Fatalf("unexpected updated student: %v", body)
	}

	rec = env.do(t, http.MethodDelete, "/api/students/"+id, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/students/"+id, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeated delete status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Student not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

// --- helpers under test ---

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if got := clientKey(req); got != "203.0.113.7" {
		t.Fatalf("clientKey = %q, want host only", got)
	}

	req.RemoteAddr = "no-port-here"
	if got := clientKey(req); got != "no-port-here" {
		t.Fatalf("clientKey = %q, want raw value when port is missing", got)
	}
}

func TestResponsesAreJSON(t *testing.T) {
	env := newTestEnv(t, defaultTestConfig())

	rec := env.do(t, http.MethodGet, "/auth/verify", "", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
}
