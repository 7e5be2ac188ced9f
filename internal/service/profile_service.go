package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"brainwaves/internal/catalog"
	"brainwaves/internal/domain"
	"brainwaves/internal/repository"
	"brainwaves/internal/scoring"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupArchived        = errors.New("group archived")
	ErrProfilerTypeNotFound = errors.New("profiler type not found")
	ErrInvalidScore         = errors.New("invalid score")
	ErrInvalidProfileName   = errors.New("invalid profile name")
)

// ProfileService owns the lifecycle of a single learner profile: creation
// from a group's share token, answer submission, completion, and the scored
// views built on top of the answers.
type ProfileService struct {
	logger        *zap.Logger
	profiles      repository.ProfileRepository
	answers       repository.AnswerRepository
	groups        repository.GroupRepository
	profilerTypes repository.ProfilerTypeRepository
	catalog       *catalog.Catalog
	jwt           *JWTService
	cache         GroupScoreCache
}

func NewProfileService(
	logger *zap.Logger,
	profiles repository.ProfileRepository,
	answers repository.AnswerRepository,
	groups repository.GroupRepository,
	profilerTypes repository.ProfilerTypeRepository,
	cat *catalog.Catalog,
	jwtService *JWTService,
	cache GroupScoreCache,
) *ProfileService {
	return &ProfileService{
		logger:        logger,
		profiles:      profiles,
		answers:       answers,
		groups:        groups,
		profilerTypes: profilerTypes,
		catalog:       cat,
		jwt:           jwtService,
		cache:         cache,
	}
}

// Create makes a blank Incomplete profile in the group behind the share
// token and returns it with a signed profile token. The token is the only
// credential a parent ever gets for the profile.
func (s *ProfileService) Create(ctx context.Context, groupToken string) (domain.Profile, string, error) {
	group, err := s.groups.GetByToken(ctx, strings.TrimSpace(groupToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, "", ErrGroupNotFound
		}
		return domain.Profile{}, "", err
	}
	if group.Archived {
		return domain.Profile{}, "", ErrGroupArchived
	}

	profile := domain.Profile{
		ID:               uuid.NewString(),
		Name:             "",
		GroupName:        group.Name,
		ProfilerTypeName: group.ProfilerTypeName,
		Status:           domain.ProfileStatusIncomplete,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return domain.Profile{}, "", err
	}

	token, err := s.jwt.GenerateProfileToken(profile.ID)
	if err != nil {
		return domain.Profile{}, "", err
	}
	return profile, token, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

// GetEditable returns the profile only while it is still Incomplete. Parent
// tokens lose access once the assessment is completed.
func (s *ProfileService) GetEditable(ctx context.Context, id string) (domain.Profile, error) {
	return s.getByStatus(ctx, id, domain.ProfileStatusIncomplete)
}

// GetComplete returns the profile only once it has been completed, which is
// the view teachers work with.
func (s *ProfileService) GetComplete(ctx context.Context, id string) (domain.Profile, error) {
	return s.getByStatus(ctx, id, domain.ProfileStatusComplete)
}

func (s *ProfileService) getByStatus(ctx context.Context, id, status string) (domain.Profile, error) {
	profile, err := s.profiles.GetByIDAndStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

// SubmitAnswer validates the question and score against the profile's
// profiler type and upserts the answer. The bool result reports whether an
// earlier answer to the same question was overwritten.
func (s *ProfileService) SubmitAnswer(ctx context.Context, profileID, question string, score int) (domain.Answer, bool, error) {
	profile, err := s.Get(ctx, profileID)
	if err != nil {
		return domain.Answer{}, false, err
	}

	pt, err := s.loadProfilerType(ctx, profile.ProfilerTypeName)
	if err != nil {
		return domain.Answer{}, false, err
	}

	q, ok := pt.QuestionByText(question)
	if !ok {
		return domain.Answer{}, false, fmt.Errorf("%w: %q", scoring.ErrUnknownQuestion, question)
	}
	if !validScore(pt, score) {
		return domain.Answer{}, false, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}

	answer := domain.Answer{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Question:  q.Text,
		Score:     score,
		Domain:    q.Domain,
	}
	answer, updated, err := s.answers.Upsert(ctx, answer)
	if err != nil {
		return domain.Answer{}, false, err
	}
	s.invalidate(profile.GroupName)
	return answer, updated, nil
}

func (s *ProfileService) UpdateName(ctx context.Context, id, name string) (domain.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Profile{}, ErrInvalidProfileName
	}
	profile, err := s.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.profiles.UpdateName(ctx, profile.ID, name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	profile.Name = name
	s.invalidate(profile.GroupName)
	return profile, nil
}

// Complete marks the profile finished, moving it from the parent's view to
// the teacher's.
func (s *ProfileService) Complete(ctx context.Context, id string) (domain.Profile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile.Status == domain.ProfileStatusComplete {
		return profile, nil
	}
	if err := s.profiles.UpdateStatus(ctx, profile.ID, domain.ProfileStatusComplete); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	profile.Status = domain.ProfileStatusComplete
	s.invalidate(profile.GroupName)
	return profile, nil
}

// Delete removes the profile and its answers.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.answers.DeleteByProfile(ctx, profile.ID); err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, profile.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProfileNotFound
		}
		return err
	}
	s.invalidate(profile.GroupName)
	return nil
}

func (s *ProfileService) Answers(ctx context.Context, id string) ([]domain.Answer, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.answers.ListByProfile(ctx, id)
}

// Scores computes the per-domain totals for one profile.
func (s *ProfileService) Scores(ctx context.Context, id string) (*scoring.DomainScores, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pt, err := s.loadProfilerType(ctx, profile.ProfilerTypeName)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return scoring.ScoreDomains(answers, pt)
}

// Recommendations ranks practices for one profile. Profiler types without a
// practice source yield an empty list.
func (s *ProfileService) Recommendations(ctx context.Context, id string) ([]domain.RecommendedPractice, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pt, err := s.loadProfilerType(ctx, profile.ProfilerTypeName)
	if err != nil {
		return nil, err
	}
	if pt.PracticeSource == "" {
		return []domain.RecommendedPractice{}, nil
	}
	taxonomy, err := s.catalog.LoadTaxonomy(pt.PracticeSource)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return scoring.Recommend(answers, pt, scoring.NewTaxonomyIndex(taxonomy)), nil
}

func (s *ProfileService) loadProfilerType(ctx context.Context, name string) (domain.ProfilerType, error) {
	ref, err := s.profilerTypes.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProfilerType{}, ErrProfilerTypeNotFound
		}
		return domain.ProfilerType{}, err
	}
	return s.catalog.LoadProfilerType(ref)
}

func (s *ProfileService) invalidate(groupName string) {
	if s.cache != nil {
		s.cache.Invalidate(groupName)
	}
}

// validScore accepts only scores a declared answer option maps to.
func validScore(pt domain.ProfilerType, score int) bool {
	if len(pt.AnswerOptions) == 0 {
		return true
	}
	for _, v := range pt.AnswerOptions {
		if v == score {
			return true
		}
	}
	return false
}
