// Package catalog reads profiler type definitions and practice taxonomies
// from their JSON document directories. Documents are parsed on demand;
// callers that want caching hold the parsed value themselves.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"brainwaves/internal/domain"
)

var (
	ErrInvalidFilename = errors.New("invalid filename")
	ErrNotFound        = errors.New("document not found")
)

// Catalog resolves document files under fixed base directories.
type Catalog struct {
	profilersDir string
	practiceDir  string
}

func New(profilersDir, practiceDir string) *Catalog {
	return &Catalog{
		profilersDir: profilersDir,
		practiceDir:  practiceDir,
	}
}

// profilerFile mirrors the on-disk document shape. practice_source is a list
// in the files; only the first entry is meaningful.
type profilerFile struct {
	Questions      []domain.Question `json:"questions"`
	AnswerOptions  map[string]int    `json:"answerOptions"`
	PracticeSource []string          `json:"practice_source"`
}

// LoadProfilerType reads and validates the definition behind a catalog row.
func (c *Catalog) LoadProfilerType(ref domain.ProfilerTypeRef) (domain.ProfilerType, error) {
	path, err := c.safePath(c.profilersDir, ref.Filename)
	if err != nil {
		return domain.ProfilerType{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ProfilerType{}, fmt.Errorf("%w: %s", ErrNotFound, ref.Filename)
		}
		return domain.ProfilerType{}, err
	}

	var file profilerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.ProfilerType{}, fmt.Errorf("decode profiler %s: %w", ref.Filename, err)
	}

	pt := domain.ProfilerType{
		Name:          ref.Name,
		Questions:     file.Questions,
		AnswerOptions: file.AnswerOptions,
	}
	if len(file.PracticeSource) > 0 {
		pt.PracticeSource = strings.TrimSuffix(file.PracticeSource[0], ".json")
	}
	if err := validateProfilerType(pt); err != nil {
		return domain.ProfilerType{}, fmt.Errorf("profiler %s: %w", ref.Filename, err)
	}
	return pt, nil
}

// LoadTaxonomy reads a practice taxonomy by source name (".json" optional).
func (c *Catalog) LoadTaxonomy(source string) (domain.PracticeTaxonomy, error) {
	filename := source
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}
	path, err := c.safePath(c.practiceDir, filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, err
	}

	var taxonomy domain.PracticeTaxonomy
	if err := json.Unmarshal(data, &taxonomy); err != nil {
		return nil, fmt.Errorf("decode practice %s: %w", filename, err)
	}
	return taxonomy, nil
}

// safePath joins and rejects anything escaping the base directory.
func (c *Catalog) safePath(base, filename string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	joined, err := filepath.Abs(filepath.Join(absBase, filename))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(joined, absBase+string(filepath.Separator)) {
		return "", ErrInvalidFilename
	}
	return joined, nil
}

func validateProfilerType(pt domain.ProfilerType) error {
	for _, q := range pt.Questions {
		if strings.TrimSpace(q.Domain) == "" {
			return fmt.Errorf("question %q has no domain", q.Text)
		}
	}
	// answerOptions must be injective so a score maps back to one label.
	seen := make(map[int]string, len(pt.AnswerOptions))
	for label, score := range pt.AnswerOptions {
		if other, ok := seen[score]; ok {
			return fmt.Errorf("answer options %q and %q share score %d", other, label, score)
		}
		seen[score] = label
	}
	return nil
}
