package tablesync

import "strings"

// DefaultBaseURL is the table service endpoint used when none is set.
const DefaultBaseURL = "https://api.botpress.cloud"

// TableSyncConfig carries the identity and credentials for the remote table
// service. It is always passed explicitly; nothing here reads ambient state.
type TableSyncConfig struct {
	BotID       string `json:"bot_id" yaml:"bot_id" mapstructure:"bot_id"`
	Token       string `json:"token" yaml:"token" mapstructure:"token"`
	WorkspaceID string `json:"workspace_id" yaml:"workspace_id" mapstructure:"workspace_id"`
	BaseURL     string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
}

// WithDefaults returns a trimmed copy with the default base URL applied.
func (c TableSyncConfig) WithDefaults() TableSyncConfig {
	out := TableSyncConfig{
		BotID:       strings.TrimSpace(c.BotID),
		Token:       strings.TrimSpace(c.Token),
		WorkspaceID: strings.TrimSpace(c.WorkspaceID),
		BaseURL:     strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
	}
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	return out
}

// Validate fails when the token or workspace id is blank.
func (c TableSyncConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "token")
	}
	if strings.TrimSpace(c.WorkspaceID) == "" {
		missing = append(missing, "workspace_id")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Complete reports whether bot id, token and workspace id are all set.
func (c TableSyncConfig) Complete() bool {
	return strings.TrimSpace(c.BotID) != "" && c.Validate() == nil
}
