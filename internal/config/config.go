package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backend names
const (
	BackendREST  = "rest"
	BackendGmail = "gmail"
)

// APIConfig holds settings for the REST mail backend
type APIConfig struct {
	BaseURL string `json:"base_url"`
	// Token is sent as a bearer token when set
	Token             string `json:"token"`
	Timeout           string `json:"timeout"`
	RequestsPerSecond int    `json:"requests_per_second"`
	PageSize          int    `json:"page_size"`
}

// GmailConfig holds OAuth file locations for the Gmail backend
type GmailConfig struct {
	Credentials string `json:"credentials"`
	Token       string `json:"token"`
}

// LLMConfig holds the local LLM used when the backend has no AI endpoints
type LLMConfig struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"` // ollama, bedrock
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
	Region   string `json:"region"` // For AWS Bedrock
	Timeout  string `json:"timeout"`

	// Caching of AI summaries in the local store
	CacheEnabled bool `json:"cache_enabled"`

	SummarizePrompt string `json:"summarize_prompt,omitempty"`
	ComposePrompt   string `json:"compose_prompt,omitempty"`
}

// ThemeConfig holds the dark/light fallback and optional palette overrides
type ThemeConfig struct {
	// DarkDefault is used when no preference is stored and the terminal gives no hint
	DarkDefault bool `json:"dark_default"`
	// PaletteFile points to a YAML file with dark/light palettes
	PaletteFile string `json:"palette_file"`
}

// Config holds all configuration for inboxtui
type Config struct {
	Backend string      `json:"backend"`
	API     APIConfig   `json:"api"`
	Gmail   GmailConfig `json:"gmail"`
	LLM     LLMConfig   `json:"llm"`
	Theme   ThemeConfig `json:"theme"`

	// Keyboard shortcuts
	Keys KeyBindings `json:"keys"`

	// Local store for preferences and AI summaries
	CachePath string `json:"cache_path"`

	// Logging
	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`
}

// KeyBindings maps each shortcut intent to a key. Alternatives are comma
// separated ("o,enter"); modifiers use a "shift+", "ctrl+" or "alt+" prefix.
// An empty binding disables the shortcut.
type KeyBindings struct {
	Compose      string `json:"compose"`
	FocusSearch  string `json:"focus_search"`
	Refresh      string `json:"refresh"`
	Archive      string `json:"archive"`
	Delete       string `json:"delete"`
	ToggleStar   string `json:"toggle_star"`
	MarkRead     string `json:"mark_read"`
	MarkUnread   string `json:"mark_unread"`
	SelectNext   string `json:"select_next"`
	SelectPrev   string `json:"select_previous"`
	Open         string `json:"open"`
	Dismiss      string `json:"dismiss"`
	ToggleTheme  string `json:"toggle_theme"`
	Help         string `json:"help"`
	GoInbox      string `json:"go_inbox"`
	GoSent       string `json:"go_sent"`
	GoStarred    string `json:"go_starred"`
	GoTrash      string `json:"go_trash"`
	Summarize    string `json:"summarize"`
	ManageLabels string `json:"manage_labels"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendREST,
		API:      DefaultAPIConfig(),
		LLM:      DefaultLLMConfig(),
		Theme:    ThemeConfig{DarkDefault: true},
		Keys:     DefaultKeyBindings(),
		LogFile:  "",
		LogLevel: "info",
	}
}

// DefaultAPIConfig returns the REST backend defaults
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:           "http://localhost:8080/api",
		Timeout:           "15s",
		RequestsPerSecond: 10,
		PageSize:          50,
	}
}

// DefaultLLMConfig returns default LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Enabled:      false,
		Provider:     "ollama",
		Model:        "llama3.2:latest",
		Endpoint:     "http://localhost:11434/api/generate",
		Timeout:      "20s",
		CacheEnabled: true,
	}
}

// DefaultKeyBindings returns the default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Compose:     "c",
		FocusSearch: "/",
		Refresh:     "r",
		Archive:     "e",
		Delete:      "#",
		ToggleStar:  "s",
		MarkRead:    "shift+i",
		MarkUnread:  "shift+u",
		SelectNext:  "j",
		SelectPrev:  "k",
		Open:        "o,enter",
		Dismiss:     "esc",
		ToggleTheme: "d",
		Help:        "?",
		GoInbox:     "i",
		GoSent:      "t",

		// Shares "s" with ToggleStar, which takes priority
		GoStarred:    "s",
		GoTrash:      "",
		Summarize:    "y",
		ManageLabels: "l",
	}
}

// LoadConfig loads configuration from file, falling back to defaults for
// anything the file leaves out
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

// DefaultConfigDir returns ~/.config/inboxtui
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "inboxtui")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

// DefaultCredentialPaths returns the default Gmail credentials and token paths
func DefaultCredentialPaths() (string, string) {
	dir := DefaultConfigDir()
	if dir == "" {
		return "", ""
	}
	return filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json")
}

// DefaultCachePath returns the default local store path
func DefaultCachePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "inboxtui.sqlite3")
}

// DefaultLogPath returns the default log file path
func DefaultLogPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "inboxtui.log")
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetAPITimeout returns the parsed REST timeout
func (c *Config) GetAPITimeout() time.Duration {
	return parseDuration(c.API.Timeout, 15*time.Second)
}

// GetLLMTimeout returns parsed timeout for LLM
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 20*time.Second)
}

// GetCachePath returns the configured store path or the default one
func (c *Config) GetCachePath() string {
	if strings.TrimSpace(c.CachePath) != "" {
		return ExpandPath(c.CachePath)
	}
	return DefaultCachePath()
}

// GetLogPath returns the configured log path or the default one
func (c *Config) GetLogPath() string {
	if strings.TrimSpace(c.LogFile) != "" {
		return ExpandPath(c.LogFile)
	}
	return DefaultLogPath()
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}

// GetSummarizePrompt returns the summarize prompt with its fallback
func (c *LLMConfig) GetSummarizePrompt() string {
	if strings.TrimSpace(c.SummarizePrompt) != "" {
		return c.SummarizePrompt
	}
	return "Briefly summarize the following email. Keep it concise and factual.\n\n{{body}}"
}

// GetComposePrompt returns the compose-suggestion prompt with its fallback
func (c *LLMConfig) GetComposePrompt() string {
	if strings.TrimSpace(c.ComposePrompt) != "" {
		return c.ComposePrompt
	}
	return "Suggest three short alternative email drafts, one per line, for the following request. Output only the drafts.\n\nRequest: {{prompt}}\n\nContext:\n{{context}}"
}
