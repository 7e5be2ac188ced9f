package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"brainwaves/internal/catalog"
	"brainwaves/internal/domain"
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
	answers map[string]domain.Answer // keyed profileID|question
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

type mockEmailSender struct {
	lastTo       string
	lastPassword string
	err          error
}

func (m *mockEmailSender) SendInitialPassword(_ context.Context, toEmail string, password string) error {
	m.lastTo = toEmail
	m.lastPassword = password
	return m.err
}

// writeTestCatalog lays out a catalog with one profiler type and a practice
// taxonomy wide enough for the service tests.
func writeTestCatalog(t *testing.T) (*catalog.Catalog, domain.ProfilerTypeRef) {
	t.Helper()

	profilersDir := t.TempDir()
	practiceDir := t.TempDir()

	profiler := map[string]any{
		"questions": []map[string]any{
			{"question": "Q1", "domain": "Attention", "practice": "focus"},
			{"question": "Q2", "domain": "Attention", "practice": "focus"},
			{"question": "Q3", "domain": "Social", "practice": "friendship"},
		},
		"answerOptions":   map[string]int{"Never": 0, "Sometimes": 1, "Often": 2},
		"practice_source": []string{"taxonomy.json"},
	}
	writeJSONFile(t, filepath.Join(profilersDir, "test.json"), profiler)

	taxonomy := []map[string]any{
		{
			"name": "Cognition",
			"children": []map[string]any{
				{
					"id":   "focus",
					"name": "Focus",
					"children": []map[string]any{
						{"text": "Short tasks"},
					},
				},
			},
		},
		{
			"name": "Social",
			"children": []map[string]any{
				{
					"id":   "friendship",
					"name": "Friendship",
					"children": []map[string]any{
						{"text": "Buddy system"},
					},
				},
			},
		},
	}
	writeJSONFile(t, filepath.Join(practiceDir, "taxonomy.json"), taxonomy)

	return catalog.New(profilersDir, practiceDir), domain.ProfilerTypeRef{Name: "Test Assessment", Filename: "test.json"}
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func seedProfile(t *testing.T, profiles *mockProfileRepo, groupName, typeName, status string) domain.Profile {
	t.Helper()
	p := domain.Profile{
		ID:               uuid.NewString(),
		GroupName:        groupName,
		ProfilerTypeName: typeName,
		Status:           status,
	}
	if err := profiles.Create(context.Background(), p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func seedAnswer(t *testing.T, answers *mockAnswerRepo, profileID, question string, score int, answerDomain string) {
	t.Helper()
	_, _, err := answers.Upsert(context.Background(), domain.Answer{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Question:  question,
		Score:     score,
		Domain:    answerDomain,
	})
	if err != nil {
		t.Fatalf("seed answer: %v", err)
	}
}
