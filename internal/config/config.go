package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	VoicePolicyNextUtterance = "next-utterance"
	VoicePolicyInterrupt     = "interrupt"
)

type Config struct {
	Gemini  GeminiConfig  `yaml:"gemini"`
	Storage StorageConfig `yaml:"storage"`
	Speech  SpeechConfig  `yaml:"speech"`
	Input   InputConfig   `yaml:"input"`
	Logging LoggingConfig `yaml:"logging"`

	// APIKey comes from GEMINI_API_KEY (environment or .env), never from YAML.
	APIKey string `yaml:"-"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

type StorageConfig struct {
	Backend      string        `yaml:"backend"`
	Dir          string        `yaml:"dir"`
	SQLitePath   string        `yaml:"sqlite_path"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type SpeechConfig struct {
	Language    string            `yaml:"language"`
	VoicePolicy string            `yaml:"voice_policy"`
	Synthesizer SynthesizerConfig `yaml:"synthesizer"`
	Recognizer  RecognizerConfig  `yaml:"recognizer"`
}

type SynthesizerConfig struct {
	Binary string `yaml:"binary"`
}

// RecognizerConfig points at a streaming speech-to-text command. Empty Command
// means dictation is unavailable.
type RecognizerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type InputConfig struct {
	MaxChars int `yaml:"max_chars"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, overlays a .env file if one exists in the
// working directory, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration built only from defaults and the
// environment. Used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.loadEnv()
	_ = cfg.Validate()
	return cfg
}

func (c *Config) loadEnv() {
	// Missing .env is fine; variables already set win.
	_ = godotenv.Load()
	c.APIKey = os.Getenv("GEMINI_API_KEY")
}

func (c *Config) Validate() error {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Backend != BackendFile && c.Storage.Backend != BackendSQLite {
		return fmt.Errorf("storage.backend must be %q or %q", BackendFile, BackendSQLite)
	}
	if c.Speech.VoicePolicy == "" {
		c.Speech.VoicePolicy = VoicePolicyNextUtterance
	}
	if c.Speech.VoicePolicy != VoicePolicyNextUtterance && c.Speech.VoicePolicy != VoicePolicyInterrupt {
		return fmt.Errorf("speech.voice_policy must be %q or %q", VoicePolicyNextUtterance, VoicePolicyInterrupt)
	}
	if c.Input.MaxChars < 0 {
		return fmt.Errorf("input.max_chars must be positive")
	}

	if c.Storage.Dir == "" {
		c.Storage.Dir = "data/state"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/state.db"
	}
	if c.Storage.PollInterval <= 0 {
		c.Storage.PollInterval = time.Second
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en-US"
	}
	if c.Speech.Synthesizer.Binary == "" {
		c.Speech.Synthesizer.Binary = "espeak-ng"
	}
	if c.Input.MaxChars == 0 {
		c.Input.MaxChars = 15000
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}
