package domain

// ConfigEntry is a global key/value setting with access flags.
type ConfigEntry struct {
	Key           string `json:"key"`
	Value         string `json:"value,omitempty"`
	WriteOnly     bool   `json:"write_only"`
	SuperuserOnly bool   `json:"superuser_only"`
}
