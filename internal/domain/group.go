package domain

// Group is a class or cohort of profiles sharing one profiler type.
type Group struct {
	Name             string `json:"name"`
	DisplayAs        string `json:"displayAs"`
	Token            string `json:"token"`
	Archived         bool   `json:"archived"`
	ProfilerTypeName string `json:"profilerTypeName"`
	Emoji            string `json:"emoji"`
}

// GroupSummary is a listing row with its count of complete profiles.
type GroupSummary struct {
	Group
	ProfileCount int `json:"profile_count"`
}
