package domain

// PracticeTaxonomy is a forest of categories holding practice groups.
type PracticeTaxonomy []PracticeCategory

type PracticeCategory struct {
	Name     string          `json:"name"`
	Children []PracticeGroup `json:"children"`
}

// PracticeGroup ids are unique across the whole forest.
type PracticeGroup struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Children []PracticeStrategy `json:"children"`
}

type PracticeStrategy struct {
	Text string `json:"text"`
}

// Strategies returns the leaf strategy texts of a practice group.
func (g PracticeGroup) Strategies() []string {
	out := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		out = append(out, child.Text)
	}
	return out
}

// RecommendedPractice is a ranked recommendation emitted by the scoring engine.
type RecommendedPractice struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Score      int      `json:"score"`
	Categories []string `json:"categories"`
	Strategies []string `json:"strategies"`
	IsExpanded bool     `json:"isExpanded"`
}
