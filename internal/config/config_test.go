package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigAppliesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[reading]
wpm = 400
level = "advanced"

[review]
session-size = 5

[dictionary]
api-key = "from-file"
file = "/tmp/dict.json"

[analysis]
cache-size = 0

[storage]
db = "/tmp/readlex.db"
`)
	fc, err := LoadConfig(path)
	require.NoError(t, err)

	s := Defaults()
	s.ApplyFile(fc)
	assert.Equal(t, 400, s.WPM)
	assert.Equal(t, "advanced", s.Level)
	assert.Equal(t, "en", s.Lang)
	assert.Equal(t, 5, s.SessionSize)
	assert.Equal(t, 50, s.WeeklyGoal)
	assert.Equal(t, "from-file", s.APIKey)
	assert.Equal(t, "/tmp/dict.json", s.DictionaryFile)
	assert.Equal(t, 0, s.CacheSize)
	assert.Equal(t, "/tmp/readlex.db", s.DBPath)
	require.NoError(t, s.Validate())
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[reading]\nspeed = 3\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading.speed")
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, "[reading\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnvOverridesAPIKey(t *testing.T) {
	s := Defaults()
	s.APIKey = "from-file"
	s.ApplyEnv(func(key string) string {
		if key == APIKeyEnv {
			return "from-env"
		}
		return ""
	})
	assert.Equal(t, "from-env", s.APIKey)

	s.ApplyEnv(func(string) string { return "" })
	assert.Equal(t, "from-env", s.APIKey)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"wpm", func(s *Settings) { s.WPM = 0 }},
		{"level", func(s *Settings) { s.Level = "guru" }},
		{"lang", func(s *Settings) { s.Lang = "fr" }},
		{"session size", func(s *Settings) { s.SessionSize = 0 }},
		{"weekly goal", func(s *Settings) { s.WeeklyGoal = -1 }},
		{"rpm", func(s *Settings) { s.RequestsPerMinute = 0 }},
		{"cache", func(s *Settings) { s.CacheSize = -1 }},
		{"debounce", func(s *Settings) { s.DebounceMS = -5 }},
		{"db", func(s *Settings) { s.DBPath = "" }},
	}
	require.NoError(t, Defaults().Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			tc.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestDefaultTemplateParses(t *testing.T) {
	path := writeConfig(t, DefaultTemplate())
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "readlex", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "readlex", "readlex.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "readlex", "jmdict-eng.json"), DefaultDictionaryPath())
}
