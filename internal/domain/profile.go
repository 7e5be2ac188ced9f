package domain

const (
	ProfileStatusIncomplete = "Incomplete"
	ProfileStatusComplete   = "Complete"
)

// Profile is one learner's assessment within a group.
type Profile struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	GroupName        string `json:"groupName"`
	ProfilerTypeName string `json:"profilerTypeName"`
	Status           string `json:"status"`
}

// Answer is a single scored response, keyed by question within a profile.
type Answer struct {
	ID        string `json:"id"`
	ProfileID string `json:"profileId,omitempty"`
	Question  string `json:"question"`
	Score     int    `json:"score"`
	Domain    string `json:"domain,omitempty"`
}
