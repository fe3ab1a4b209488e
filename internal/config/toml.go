package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/japaniel/readlex/pkg/analysis"
	"github.com/japaniel/readlex/pkg/dictionary"
	"github.com/japaniel/readlex/pkg/difficulty"
	"github.com/japaniel/readlex/pkg/vocabulary"
)

// APIKeyEnv overrides the dictionary api key from the config file.
const APIKeyEnv = "READLEX_API_KEY"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reading    ReadingConfig    `toml:"reading"`
	Review     ReviewConfig     `toml:"review"`
	Dictionary DictionaryConfig `toml:"dictionary"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Storage    StorageConfig    `toml:"storage"`
}

// ReadingConfig maps reading-related settings.
type ReadingConfig struct {
	WPM   *int    `toml:"wpm"`
	Level *string `toml:"level"`
	Lang  *string `toml:"lang"`
}

// ReviewConfig maps review session settings.
type ReviewConfig struct {
	SessionSize *int `toml:"session-size"`
	WeeklyGoal  *int `toml:"weekly-goal"`
}

// DictionaryConfig maps definition lookup settings.
type DictionaryConfig struct {
	BaseURL           *string `toml:"base-url"`
	Model             *string `toml:"model"`
	APIKey            *string `toml:"api-key"`
	RequestsPerMinute *int    `toml:"requests-per-minute"`
	File              *string `toml:"file"`
}

// AnalysisConfig maps analysis cache and live update settings.
type AnalysisConfig struct {
	CacheSize  *int `toml:"cache-size"`
	DebounceMS *int `toml:"debounce-ms"`
}

// StorageConfig maps storage locations.
type StorageConfig struct {
	DB *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Settings is the resolved configuration.
type Settings struct {
	WPM   int
	Level string
	Lang  string

	SessionSize int
	WeeklyGoal  int

	BaseURL           string
	Model             string
	APIKey            string
	RequestsPerMinute int
	DictionaryFile    string

	CacheSize  int
	DebounceMS int

	DBPath string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		WPM:               analysis.DefaultWPM,
		Level:             difficulty.Beginner.String(),
		Lang:              "en",
		SessionSize:       vocabulary.DefaultSessionSize,
		WeeklyGoal:        vocabulary.DefaultWeeklyGoal,
		BaseURL:           dictionary.DefaultBaseURL,
		Model:             dictionary.DefaultModel,
		RequestsPerMinute: dictionary.DefaultRequestsPerMinute,
		CacheSize:         128,
		DebounceMS:        int(analysis.DefaultQuiescence.Milliseconds()),
		DBPath:            DefaultDBPath(),
	}
}

// ApplyFile copies every value set in fc over s.
func (s *Settings) ApplyFile(fc FileConfig) {
	setInt(&s.WPM, fc.Reading.WPM)
	setString(&s.Level, fc.Reading.Level)
	setString(&s.Lang, fc.Reading.Lang)
	setInt(&s.SessionSize, fc.Review.SessionSize)
	setInt(&s.WeeklyGoal, fc.Review.WeeklyGoal)
	setString(&s.BaseURL, fc.Dictionary.BaseURL)
	setString(&s.Model, fc.Dictionary.Model)
	setString(&s.APIKey, fc.Dictionary.APIKey)
	setInt(&s.RequestsPerMinute, fc.Dictionary.RequestsPerMinute)
	setString(&s.DictionaryFile, fc.Dictionary.File)
	setInt(&s.CacheSize, fc.Analysis.CacheSize)
	setInt(&s.DebounceMS, fc.Analysis.DebounceMS)
	setString(&s.DBPath, fc.Storage.DB)
}

// ApplyEnv applies environment overrides. getenv is usually os.Getenv.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(APIKeyEnv)); v != "" {
		s.APIKey = v
	}
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if s.WPM <= 0 {
		return fmt.Errorf("wpm must be > 0")
	}
	if _, err := difficulty.ParseLevel(s.Level); err != nil {
		return err
	}
	switch s.Lang {
	case "en", "ja":
	default:
		return fmt.Errorf("unsupported language %q (want en or ja)", s.Lang)
	}
	if s.SessionSize <= 0 {
		return fmt.Errorf("session-size must be > 0")
	}
	if s.WeeklyGoal <= 0 {
		return fmt.Errorf("weekly-goal must be > 0")
	}
	if s.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests-per-minute must be > 0")
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache-size must be >= 0")
	}
	if s.DebounceMS < 0 {
		return fmt.Errorf("debounce-ms must be >= 0")
	}
	if s.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	return nil
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

// DefaultTemplate returns a commented config file holding the defaults.
func DefaultTemplate() string {
	d := Defaults()
	return fmt.Sprintf(`# readlex configuration
# Uncomment a value to enable it. CLI flags override config values.
# The %s environment variable overrides dictionary.api-key.

[reading]
# wpm = %d                 # Reading speed used for time estimates
# level = %q         # beginner, intermediate, advanced or expert
# lang = %q                # en or ja

[review]
# session-size = %d         # Words per review session
# weekly-goal = %d          # Answers per week

[dictionary]
# base-url = %q
# model = %q
# api-key = ""
# requests-per-minute = %d
# file = ""                # Offline JSON or JMdict dictionary

[analysis]
# cache-size = %d          # Cached reports, 0 for unbounded
# debounce-ms = %d         # Quiet period before live re-analysis

[storage]
# db = %q
`,
		APIKeyEnv,
		d.WPM, d.Level, d.Lang,
		d.SessionSize, d.WeeklyGoal,
		d.BaseURL, d.Model, d.RequestsPerMinute,
		d.CacheSize, d.DebounceMS,
		d.DBPath,
	)
}
