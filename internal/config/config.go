package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Transcription backend selectors.
const (
	BackendHosted = "hosted"
	BackendLocal  = "local"
)

const defaultAdminPassword = "admin123"

// Config holds all environment-driven settings.
type Config struct {
	HTTPPort      string
	DBPath        string
	AdminPassword string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	TranscribeBackend string
	TranscribeModel   string
	WhisperBin        string

	InboxDir      string
	EnableWatcher bool

	GroupMeBotID string
	GroupMeURL   string

	Environment    string
	MaxUploadBytes int64
	ListLimit      int
}

// fileConfig mirrors the optional YAML config file. Bool and int fields are
// pointers so an absent key never clobbers a default.
type fileConfig struct {
	HTTPPort          string `yaml:"http_port" json:"http_port"`
	DBPath            string `yaml:"db_path" json:"db_path"`
	LLMBaseURL        string `yaml:"llm_base_url" json:"llm_base_url"`
	LLMModel          string `yaml:"llm_model" json:"llm_model"`
	TranscribeBackend string `yaml:"transcribe_backend" json:"transcribe_backend"`
	TranscribeModel   string `yaml:"transcribe_model" json:"transcribe_model"`
	WhisperBin        string `yaml:"whisper_bin" json:"whisper_bin"`
	InboxDir          string `yaml:"inbox_dir" json:"inbox_dir"`
	EnableWatcher     *bool  `yaml:"enable_watcher" json:"enable_watcher"`
	ListLimit         *int   `yaml:"list_limit" json:"list_limit"`
}

// Load reads configuration from environment, optional .env file, and an
// optional YAML config file (CONFIG_PATH). Env wins over file values.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:          getenv("PORT", "8080"),
		DBPath:            getenv("DB_PATH", "./calls.db"),
		AdminPassword:     getenv("APP_ADMIN_PASSWORD", defaultAdminPassword),
		LLMAPIKey:         firstEnv("GROQ_API_KEY", "OPENAI_API_KEY"),
		LLMBaseURL:        getenv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:          getenv("LLM_MODEL", "llama-3.1-8b-instant"),
		TranscribeBackend: getenv("TRANSCRIBE_BACKEND", BackendHosted),
		TranscribeModel:   getenv("TRANSCRIPTION_MODEL", "whisper-large-v3"),
		WhisperBin:        getenv("WHISPER_BIN", "whisper-cli"),
		InboxDir:          getenv("INBOX_DIR", "./inbox"),
		EnableWatcher:     getenvBool("ENABLE_WATCHER", false),
		GroupMeBotID:      getenv("GROUPME_BOT_ID", ""),
		GroupMeURL:        getenv("GROUPME_URL", "https://api.groupme.com/v3/bots/post"),
		Environment:       getenv("ENVIRONMENT", "local"),
		MaxUploadBytes:    int64(clampInt(getenvInt("MAX_UPLOAD_MB", 25), 1, 512)) << 20,
		ListLimit:         clampInt(getenvInt("LIST_LIMIT", 100), 1, 1000),
	}

	if err := cfg.applyFile(getenv("CONFIG_PATH", filepath.Join("config", "config.yaml"))); err != nil {
		return Config{}, err
	}

	switch cfg.TranscribeBackend {
	case BackendHosted, BackendLocal:
	default:
		return Config{}, fmt.Errorf("config: unknown transcribe backend %q", cfg.TranscribeBackend)
	}
	return cfg, nil
}

// DefaultPassword reports whether the operator never set a real password.
func (c Config) DefaultPassword() bool {
	return c.AdminPassword == "" || c.AdminPassword == defaultAdminPassword
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	setIfUnsetEnv := func(envKey string, dst *string, v string) {
		if v != "" && os.Getenv(envKey) == "" {
			*dst = v
		}
	}
	setIfUnsetEnv("PORT", &c.HTTPPort, fc.HTTPPort)
	setIfUnsetEnv("DB_PATH", &c.DBPath, fc.DBPath)
	setIfUnsetEnv("LLM_BASE_URL", &c.LLMBaseURL, fc.LLMBaseURL)
	setIfUnsetEnv("LLM_MODEL", &c.LLMModel, fc.LLMModel)
	setIfUnsetEnv("TRANSCRIBE_BACKEND", &c.TranscribeBackend, fc.TranscribeBackend)
	setIfUnsetEnv("TRANSCRIPTION_MODEL", &c.TranscribeModel, fc.TranscribeModel)
	setIfUnsetEnv("WHISPER_BIN", &c.WhisperBin, fc.WhisperBin)
	setIfUnsetEnv("INBOX_DIR", &c.InboxDir, fc.InboxDir)
	if fc.EnableWatcher != nil && os.Getenv("ENABLE_WATCHER") == "" {
		c.EnableWatcher = *fc.EnableWatcher
	}
	if fc.ListLimit != nil && os.Getenv("LIST_LIMIT") == "" {
		c.ListLimit = clampInt(*fc.ListLimit, 1, 1000)
	}
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Now returns utc time helper for deterministic timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
