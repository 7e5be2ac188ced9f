package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"brainwaves/internal/catalog"
	"brainwaves/internal/domain"
	"brainwaves/internal/service"
)

type mockProfileRepo struct {
	profiles map[string]domain.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile domain.Profile) error {
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (domain.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) GetByIDAndStatus(_ context.Context, id, status string) (domain.Profile, error) {
	p, ok := m.profiles[id]
	if !ok || p.Status != status {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) ListByGroupAndStatus(_ context.Context, groupName, status string) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range m.profiles {
		if p.GroupName == groupName && p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProfileRepo) UpdateName(_ context.Context, id, name string) error {
	p, ok := m.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Name = name
	m.profiles[id] = p
	return nil
}

func (m *mockProfileRepo) UpdateStatus(_ context.Context, id, status string) error {
	p, ok := m.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = status
	m.profiles[id] = p
	return nil
}

func (m *mockProfileRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.profiles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.profiles, id)
	return nil
}

type mockAnswerRepo struct {
	answers map[string]domain.Answer
}

func newMockAnswerRepo() *mockAnswerRepo {
	return &mockAnswerRepo{answers: make(map[string]domain.Answer)}
}

func (m *mockAnswerRepo) Upsert(_ context.Context, answer domain.Answer) (domain.Answer, bool, error) {
	key := answer.ProfileID + "|" + answer.Question
	prev, existed := m.answers[key]
	if existed {
		answer.ID = prev.ID
	}
	m.answers[key] = answer
	return answer, existed, nil
}

func (m *mockAnswerRepo) ListByProfile(_ context.Context, profileID string) ([]domain.Answer, error) {
	var out []domain.Answer
	for _, a := range m.answers {
		if a.ProfileID == profileID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAnswerRepo) DeleteByProfile(_ context.Context, profileID string) error {
	for key, a := range m.answers {
		if a.ProfileID == profileID {
			delete(m.answers, key)
		}
	}
	return nil
}

type mockGroupRepo struct {
	groups map[string]domain.Group
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]domain.Group)}
}

func (m *mockGroupRepo) Create(_ context.Context, group domain.Group) error {
	m.groups[group.Name] = group
	return nil
}

func (m *mockGroupRepo) GetByName(_ context.Context, name string) (domain.Group, error) {
	g, ok := m.groups[name]
	if !ok {
		return domain.Group{}, pgx.ErrNoRows
	}
	return g, nil
}

func (m *mockGroupRepo) GetByToken(_ context.Context, token string) (domain.Group, error) {
	for _, g := range m.groups {
		if g.Token == token {
			return g, nil
		}
	}
	return domain.Group{}, pgx.ErrNoRows
}

func (m *mockGroupRepo) List(_ context.Context, includeArchived bool) ([]domain.GroupSummary, error) {
	var out []domain.GroupSummary
	for _, g := range m.groups {
		if g.Archived && !includeArchived {
			continue
		}
		out = append(out, domain.GroupSummary{Group: g})
	}
	return out, nil
}

func (m *mockGroupRepo) Update(_ context.Context, group domain.Group) error {
	existing, ok := m.groups[group.Name]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.DisplayAs = group.DisplayAs
	existing.Archived = group.Archived
	existing.Emoji = group.Emoji
	m.groups[group.Name] = existing
	return nil
}

func (m *mockGroupRepo) Rename(_ context.Context, oldName, newName string) error {
	g, ok := m.groups[oldName]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.groups, oldName)
	g.Name = newName
	m.groups[newName] = g
	return nil
}

func (m *mockGroupRepo) UpdateToken(_ context.Context, name, token string) error {
	g, ok := m.groups[name]
	if !ok {
		return pgx.ErrNoRows
	}
	g.Token = token
	m.groups[name] = g
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, name string) error {
	if _, ok := m.groups[name]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.groups, name)
	return nil
}

type mockProfilerTypeRepo struct {
	refs map[string]domain.ProfilerTypeRef
}

func newMockProfilerTypeRepo() *mockProfilerTypeRepo {
	return &mockProfilerTypeRepo{refs: make(map[string]domain.ProfilerTypeRef)}
}

func (m *mockProfilerTypeRepo) ListNames(_ context.Context) ([]string, error) {
	var names []string
	for name := range m.refs {
		names = append(names, name)
	}
	return names, nil
}

func (m *mockProfilerTypeRepo) GetByName(_ context.Context, name string) (domain.ProfilerTypeRef, error) {
	ref, ok := m.refs[name]
	if !ok {
		return domain.ProfilerTypeRef{}, pgx.ErrNoRows
	}
	return ref, nil
}

func (m *mockProfilerTypeRepo) Create(_ context.Context, ref domain.ProfilerTypeRef) error {
	m.refs[ref.Name] = ref
	return nil
}

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.usersByID {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, changeOnLogin bool) error {
	u, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.ChangePasswordOnLogin = changeOnLogin
	m.usersByID[id] = u
	return nil
}

type mockConfigRepo struct {
	entries map[string]domain.ConfigEntry
}

func newMockConfigRepo() *mockConfigRepo {
	return &mockConfigRepo{entries: make(map[string]domain.ConfigEntry)}
}

func (m *mockConfigRepo) Upsert(_ context.Context, entry domain.ConfigEntry) error {
	m.entries[entry.Key] = entry
	return nil
}

func (m *mockConfigRepo) Get(_ context.Context, key string) (domain.ConfigEntry, error) {
	entry, ok := m.entries[key]
	if !ok {
		return domain.ConfigEntry{}, pgx.ErrNoRows
	}
	return entry, nil
}

// testServer bundles the wired router with the doubles backing it.
type testServer struct {
	router        *gin.Engine
	jwtSvc        *service.JWTService
	userSvc       *service.UserService
	profiles      *mockProfileRepo
	answers       *mockAnswerRepo
	groups        *mockGroupRepo
	profilerTypes *mockProfilerTypeRepo
	users         *mockUserRepo
	configs       *mockConfigRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	profilersDir := t.TempDir()
	practiceDir := t.TempDir()
	writeFixture(t, filepath.Join(profilersDir, "test.json"), `{
		"questions": [
			{"question": "Q1", "domain": "Attention", "practice": "focus"},
			{"question": "Q2", "domain": "Social", "practice": "friendship"}
		],
		"answerOptions": {"Never": 0, "Sometimes": 1, "Often": 2},
		"practice_source": ["taxonomy.json"]
	}`)
	writeFixture(t, filepath.Join(practiceDir, "taxonomy.json"), `[
		{"name": "Cognition", "children": [
			{"id": "focus", "name": "Focus", "children": [{"text": "Short tasks"}]}
		]},
		{"name": "Social", "children": [
			{"id": "friendship", "name": "Friendship", "children": [{"text": "Buddy system"}]}
		]}
	]`)
	cat := catalog.New(profilersDir, practiceDir)

	s := &testServer{
		profiles:      newMockProfileRepo(),
		answers:       newMockAnswerRepo(),
		groups:        newMockGroupRepo(),
		profilerTypes: newMockProfilerTypeRepo(),
		users:         newMockUserRepo(),
		configs:       newMockConfigRepo(),
	}

	if err := s.profilerTypes.Create(context.Background(), domain.ProfilerTypeRef{Name: "Test Assessment", Filename: "test.json"}); err != nil {
		t.Fatalf("seed profiler type: %v", err)
	}
	if err := s.groups.Create(context.Background(), domain.Group{
		Name:             "Year 1",
		DisplayAs:        "Year 1",
		Token:            "share-token",
		ProfilerTypeName: "Test Assessment",
		Emoji:            "🧠",
	}); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	logger := zap.NewNop()
	cache := service.NewMemoryScoreCache()
	s.jwtSvc = service.NewJWTService("test-secret", time.Minute, time.Hour)
	s.userSvc = service.NewUserService(logger, s.users, nil)
	profileSvc := service.NewProfileService(logger, s.profiles, s.answers, s.groups, s.profilerTypes, cat, s.jwtSvc, cache)
	groupSvc := service.NewGroupService(logger, s.groups, s.profiles, s.answers, s.profilerTypes, cat, cache)

	s.router = NewRouter(
		logger,
		s.jwtSvc,
		NewProfileHandler(logger, profileSvc),
		NewGroupHandler(logger, groupSvc),
		NewCatalogHandler(logger, s.profilerTypes, cat),
		NewUserHandler(logger, s.userSvc, s.jwtSvc),
		NewConfigHandler(logger, s.configs),
	)
	return s
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func performRequest(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// teacherToken registers a teacher and returns a signed access token.
func (s *testServer) teacherToken(t *testing.T, superuser bool) string {
	t.Helper()
	user := domain.User{ID: "teacher-1", Email: "teacher@school.org", Superuser: superuser}
	pair, err := s.jwtSvc.GeneratePair(user)
	if err != nil {
		t.Fatalf("issue teacher token: %v", err)
	}
	return pair.AccessToken
}

// createProfile goes through the public endpoint and returns the profile id
// and its parent token.
func (s *testServer) createProfile(t *testing.T) (string, string) {
	t.Helper()
	rec := performRequest(s.router, http.MethodPost, "/api/profiles", "", map[string]string{
		"group_token": "share-token",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create profile: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Profile domain.Profile `json:"profile"`
		Token   string         `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Profile.ID, resp.Token
}
