package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"brainwaves/internal/catalog"
	"brainwaves/internal/domain"
	"brainwaves/internal/emoji"
	"brainwaves/internal/repository"
	"brainwaves/internal/scoring"
)

var (
	ErrGroupExists      = errors.New("group already exists")
	ErrInvalidGroupName = errors.New("invalid group name")
	ErrInvalidEmoji     = errors.New("invalid emoji")
)

const defaultGroupEmoji = "🧠"

const groupDetailTTL = 5 * time.Minute

// GroupService manages classroom groups and builds the teacher's group
// dashboard: every complete profile scored, the group mean, and group-level
// practice recommendations.
type GroupService struct {
	logger        *zap.Logger
	groups        repository.GroupRepository
	profiles      repository.ProfileRepository
	answers       repository.AnswerRepository
	profilerTypes repository.ProfilerTypeRepository
	catalog       *catalog.Catalog
	cache         GroupScoreCache
}

func NewGroupService(
	logger *zap.Logger,
	groups repository.GroupRepository,
	profiles repository.ProfileRepository,
	answers repository.AnswerRepository,
	profilerTypes repository.ProfilerTypeRepository,
	cat *catalog.Catalog,
	cache GroupScoreCache,
) *GroupService {
	return &GroupService{
		logger:        logger,
		groups:        groups,
		profiles:      profiles,
		answers:       answers,
		profilerTypes: profilerTypes,
		catalog:       cat,
		cache:         cache,
	}
}

// ProfileScores pairs one complete profile with its per-domain totals.
type ProfileScores struct {
	Profile domain.Profile        `json:"profile"`
	Scores  *scoring.DomainScores `json:"scores"`
}

// GroupDetail is the dashboard payload for one group.
type GroupDetail struct {
	Group           domain.Group                 `json:"group"`
	Profiles        []ProfileScores              `json:"profiles"`
	Aggregate       *scoring.DomainScores        `json:"aggregate"`
	Recommendations []domain.RecommendedPractice `json:"recommendations"`
}

// GroupUpdate carries the editable group fields; nil means leave unchanged.
type GroupUpdate struct {
	NewName   string
	DisplayAs *string
	Archived  *bool
	Emoji     *string
}

func (s *GroupService) List(ctx context.Context, includeArchived bool) ([]domain.GroupSummary, error) {
	groups, err := s.groups.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []domain.GroupSummary{}
	}
	return groups, nil
}

func (s *GroupService) Get(ctx context.Context, name string) (domain.Group, error) {
	group, err := s.groups.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Group{}, ErrGroupNotFound
		}
		return domain.Group{}, err
	}
	return group, nil
}

// Detail assembles the scored dashboard for a group. Results are cached per
// group; any profile or answer mutation in the group invalidates the entry.
func (s *GroupService) Detail(ctx context.Context, name string) (GroupDetail, error) {
	group, err := s.Get(ctx, name)
	if err != nil {
		return GroupDetail{}, err
	}

	if s.cache != nil {
		if payload, ok := s.cache.Get(group.Name); ok {
			var detail GroupDetail
			if err := json.Unmarshal(payload, &detail); err == nil {
				return detail, nil
			}
			s.cache.Invalidate(group.Name)
		}
	}

	pt, err := s.loadProfilerType(ctx, group.ProfilerTypeName)
	if err != nil {
		return GroupDetail{}, err
	}

	profiles, err := s.profiles.ListByGroupAndStatus(ctx, group.Name, domain.ProfileStatusComplete)
	if err != nil {
		return GroupDetail{}, err
	}

	detail := GroupDetail{
		Group:           group,
		Profiles:        make([]ProfileScores, 0, len(profiles)),
		Recommendations: []domain.RecommendedPractice{},
	}

	profileAnswers := make([][]domain.Answer, 0, len(profiles))
	var allAnswers []domain.Answer
	for _, profile := range profiles {
		answers, err := s.answers.ListByProfile(ctx, profile.ID)
		if err != nil {
			return GroupDetail{}, err
		}
		scores, err := scoring.ScoreDomains(answers, pt)
		if err != nil {
			return GroupDetail{}, err
		}
		detail.Profiles = append(detail.Profiles, ProfileScores{Profile: profile, Scores: scores})
		profileAnswers = append(profileAnswers, answers)
		allAnswers = append(allAnswers, answers...)
	}

	detail.Aggregate, err = scoring.AggregateGroup(profileAnswers, pt)
	if err != nil {
		return GroupDetail{}, err
	}

	if pt.PracticeSource != "" {
		taxonomy, err := s.catalog.LoadTaxonomy(pt.PracticeSource)
		if err != nil {
			return GroupDetail{}, err
		}
		detail.Recommendations = scoring.Recommend(allAnswers, pt, scoring.NewTaxonomyIndex(taxonomy))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(detail); err == nil {
			s.cache.Set(group.Name, payload, groupDetailTTL)
		}
	}
	return detail, nil
}

// Create registers a group with a fresh share token. The emoji defaults to
// 🧠 and must be a single emoji grapheme when given.
func (s *GroupService) Create(ctx context.Context, name, displayAs, profilerTypeName, groupEmoji string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, ErrInvalidGroupName
	}

	if _, err := s.profilerTypes.GetByName(ctx, profilerTypeName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Group{}, ErrProfilerTypeNotFound
		}
		return domain.Group{}, err
	}

	if _, err := s.groups.GetByName(ctx, name); err == nil {
		return domain.Group{}, ErrGroupExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Group{}, err
	}

	groupEmoji = strings.TrimSpace(groupEmoji)
	if groupEmoji == "" {
		groupEmoji = defaultGroupEmoji
	} else if !emoji.IsSingleEmoji(groupEmoji) {
		return domain.Group{}, ErrInvalidEmoji
	}

	displayAs = strings.TrimSpace(displayAs)
	if displayAs == "" {
		displayAs = name
	}

	group := domain.Group{
		Name:             name,
		DisplayAs:        displayAs,
		Token:            uuid.NewString(),
		Archived:         false,
		ProfilerTypeName: profilerTypeName,
		Emoji:            groupEmoji,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// Update edits a group. Renames cascade onto the group's profiles and move
// the cache entry with them.
func (s *GroupService) Update(ctx context.Context, name string, update GroupUpdate) (domain.Group, error) {
	group, err := s.Get(ctx, name)
	if err != nil {
		return domain.Group{}, err
	}

	if update.DisplayAs != nil {
		group.DisplayAs = strings.TrimSpace(*update.DisplayAs)
	}
	if update.Archived != nil {
		group.Archived = *update.Archived
	}
	if update.Emoji != nil {
		e := strings.TrimSpace(*update.Emoji)
		if !emoji.IsSingleEmoji(e) {
			return domain.Group{}, ErrInvalidEmoji
		}
		group.Emoji = e
	}
	if err := s.groups.Update(ctx, group); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Group{}, ErrGroupNotFound
		}
		return domain.Group{}, err
	}

	newName := strings.TrimSpace(update.NewName)
	if newName != "" && newName != group.Name {
		if _, err := s.groups.GetByName(ctx, newName); err == nil {
			return domain.Group{}, ErrGroupExists
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Group{}, err
		}
		if err := s.groups.Rename(ctx, group.Name, newName); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Group{}, ErrGroupNotFound
			}
			return domain.Group{}, err
		}
		s.invalidate(group.Name)
		group.Name = newName
	}

	s.invalidate(group.Name)
	return group, nil
}

// RegenerateToken rotates the share token, cutting off old share links.
func (s *GroupService) RegenerateToken(ctx context.Context, name string) (domain.Group, error) {
	group, err := s.Get(ctx, name)
	if err != nil {
		return domain.Group{}, err
	}
	group.Token = uuid.NewString()
	if err := s.groups.UpdateToken(ctx, group.Name, group.Token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Group{}, ErrGroupNotFound
		}
		return domain.Group{}, err
	}
	return group, nil
}

// Delete removes the group together with its profiles and their answers.
func (s *GroupService) Delete(ctx context.Context, name string) error {
	group, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	for _, status := range []string{domain.ProfileStatusIncomplete, domain.ProfileStatusComplete} {
		profiles, err := s.profiles.ListByGroupAndStatus(ctx, group.Name, status)
		if err != nil {
			return err
		}
		for _, profile := range profiles {
			if err := s.answers.DeleteByProfile(ctx, profile.ID); err != nil {
				return err
			}
			if err := s.profiles.Delete(ctx, profile.ID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}
	}

	if err := s.groups.Delete(ctx, group.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrGroupNotFound
		}
		return err
	}
	s.invalidate(group.Name)
	return nil
}

func (s *GroupService) loadProfilerType(ctx context.Context, name string) (domain.ProfilerType, error) {
	ref, err := s.profilerTypes.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProfilerType{}, ErrProfilerTypeNotFound
		}
		return domain.ProfilerType{}, err
	}
	return s.catalog.LoadProfilerType(ref)
}

func (s *GroupService) invalidate(groupName string) {
	if s.cache != nil {
		s.cache.Invalidate(groupName)
	}
}
