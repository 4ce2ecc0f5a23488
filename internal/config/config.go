package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
)

// DefaultConfigFile is read when Load is called without an explicit path.
const DefaultConfigFile = "planner.jsonc"

// Config holds the configuration for the application.
type Config struct {
	// Planner
	Kind           string `json:"kind"`
	DataDir        string `json:"data_dir"`
	StorageBackend string `json:"storage_backend"`
	DatabasePath   string `json:"database_path"`
	LogMode        string `json:"log_mode"`

	// Generative models
	LLMProvider       string `json:"llm_provider"`
	GeminiAPIKey      string `json:"-"`
	GroqAPIKey        string `json:"-"`
	GeminiTextModel   string `json:"gemini_text_model"`
	GeminiImageModel  string `json:"gemini_image_model"`
	GeminiSpeechModel string `json:"gemini_speech_model"`
	SpeechVoice       string `json:"speech_voice"`

	// Ghost Config
	GhostURL        string `json:"ghost_url"`
	GhostContentKey string `json:"-"`
	GhostAdminKey   string `json:"-"`

	// Telegram Config
	TelegramBotToken       string  `json:"-"`
	TelegramWebhookURL     string  `json:"telegram_webhook_url"`
	TelegramAllowedUserIDs []int64 `json:"telegram_allowed_user_ids"`
	AdminTelegramID        int64   `json:"admin_telegram_id"`
	Port                   string  `json:"port"`
}

func defaults() Config {
	return Config{
		Kind:              "recipe",
		DataDir:           "data",
		StorageBackend:    "file",
		DatabasePath:      "data/planner.db",
		LogMode:           "dev",
		LLMProvider:       "gemini",
		GeminiTextModel:   "gemini-2.0-flash",
		GeminiImageModel:  "gemini-2.5-flash-image",
		GeminiSpeechModel: "gemini-2.5-flash-preview-tts",
		SpeechVoice:       "Charon",
		Port:              "8080",
	}
}

// Load builds the configuration from, in increasing precedence: defaults, a
// JSONC config file, a .env file and the process environment. A missing
// config file or .env file is not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parseFile(data, &cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseFile(data []byte, cfg *Config) error {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Kind, "PLANNER_KIND")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.StorageBackend, "STORAGE_BACKEND")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.LogMode, "LOG_MODE")
	setString(&cfg.LLMProvider, "LLM_PROVIDER")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GroqAPIKey, "GROQ_API_KEY")
	setString(&cfg.GeminiTextModel, "GEMINI_TEXT_MODEL")
	setString(&cfg.GeminiImageModel, "GEMINI_IMAGE_MODEL")
	setString(&cfg.GeminiSpeechModel, "GEMINI_SPEECH_MODEL")
	setString(&cfg.SpeechVoice, "SPEECH_VOICE")
	setString(&cfg.GhostURL, "GHOST_API_URL")
	setString(&cfg.GhostContentKey, "GHOST_CONTENT_API_KEY")
	setString(&cfg.GhostAdminKey, "GHOST_ADMIN_API_KEY")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.TelegramWebhookURL, "TELEGRAM_WEBHOOK_URL")
	setString(&cfg.Port, "PORT")

	if cfg.GhostAdminKey == "" {
		// Fallback to content key if only one is provided
		cfg.GhostAdminKey = cfg.GhostContentKey
	}

	if raw := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: %w", err)
		}
		cfg.TelegramAllowedUserIDs = ids
	}
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}
	return nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Config) validate() error {
	switch c.Kind {
	case "recipe", "adventure":
	default:
		return fmt.Errorf("PLANNER_KIND must be recipe or adventure, got %q", c.Kind)
	}
	switch c.StorageBackend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be file or sqlite, got %q", c.StorageBackend)
	}
	switch c.LLMProvider {
	case "gemini", "groq":
	default:
		return fmt.Errorf("LLM_PROVIDER must be gemini or groq, got %q", c.LLMProvider)
	}
	return nil
}

// RequireText checks the key of the configured text provider. Extraction,
// suggestions and the list summary need only this.
func (c *Config) RequireText() error {
	if c.LLMProvider == "groq" {
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
		return nil
	}
	return c.RequireMedia()
}

// RequireMedia checks the Gemini key. Speech and images always go through
// Gemini, whatever the text provider is.
func (c *Config) RequireMedia() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}

// RequireGhost checks the Ghost CMS settings.
func (c *Config) RequireGhost() error {
	if c.GhostURL == "" {
		return fmt.Errorf("GHOST_API_URL environment variable not set")
	}
	if c.GhostContentKey == "" {
		return fmt.Errorf("GHOST_CONTENT_API_KEY environment variable not set")
	}
	return nil
}

// RequireTelegram checks the bot settings.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}
