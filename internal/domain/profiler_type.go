package domain

import "encoding/json"

// ProfilerTypeRef is the catalog row pointing at a profiler definition file.
type ProfilerTypeRef struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

// ProfilerType is the full definition of one kind of assessment form.
type ProfilerType struct {
	Name           string         `json:"name"`
	Questions      []Question     `json:"questions"`
	AnswerOptions  map[string]int `json:"answerOptions"`
	PracticeSource string         `json:"practiceSource,omitempty"`
}

// Question belongs to exactly one domain and may be tagged with practices.
type Question struct {
	Text     string       `json:"question"`
	Domain   string       `json:"domain"`
	Practice PracticeTags `json:"practice,omitempty"`
}

// PracticeTags accepts both a single string and an array in profiler files.
type PracticeTags []string

func (t *PracticeTags) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = PracticeTags{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = PracticeTags(many)
	return nil
}

// First returns the leading practice tag; scoring uses only the first one.
func (t PracticeTags) First() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Domains returns the distinct question domains in order of first appearance.
func (p ProfilerType) Domains() []string {
	seen := make(map[string]struct{}, len(p.Questions))
	var domains []string
	for _, q := range p.Questions {
		if _, ok := seen[q.Domain]; ok {
			continue
		}
		seen[q.Domain] = struct{}{}
		domains = append(domains, q.Domain)
	}
	return domains
}

// QuestionByText looks up a question definition by its text.
func (p ProfilerType) QuestionByText(text string) (Question, bool) {
	for _, q := range p.Questions {
		if q.Text == text {
			return q, true
		}
	}
	return Question{}, false
}
