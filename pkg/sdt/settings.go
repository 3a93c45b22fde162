package sdt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Settings contains the runtime options of the injection engine
type Settings struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"logLevel"`
	// LogFormat selects the log entry format (text, json)
	LogFormat string `yaml:"logFormat"`
	// TempDir is where temporary packages are written. Empty means the OS default.
	TempDir string `yaml:"tempDir"`
	// StrictLocate makes rendering fail when a registered element cannot be
	// found in the serialized markup instead of skipping it
	StrictLocate bool `yaml:"strictLocate"`
}

var (
	globalSettings      *Settings
	globalSettingsMutex sync.RWMutex
	settingsOnce        sync.Once
)

func initGlobalSettings() {
	settingsOnce.Do(func() {
		settings := SettingsFromEnvironment()
		globalSettingsMutex.Lock()
		globalSettings = settings
		globalSettingsMutex.Unlock()
	})
}

// DefaultSettings returns the default settings
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel:     "info",
		LogFormat:    "text",
		TempDir:      "",
		StrictLocate: true,
	}
}

// SettingsFromEnvironment returns the defaults overridden by SDT_* variables
func SettingsFromEnvironment() *Settings {
	settings := DefaultSettings()
	settings.applyEnvironment()
	return settings
}

func (s *Settings) applyEnvironment() {
	// SDT_LOG_LEVEL
	if val := os.Getenv("SDT_LOG_LEVEL"); val != "" {
		s.LogLevel = strings.ToLower(val)
	}

	// SDT_LOG_FORMAT
	if val := os.Getenv("SDT_LOG_FORMAT"); val != "" {
		s.LogFormat = strings.ToLower(val)
	}

	// SDT_TEMP_DIR
	if val := os.Getenv("SDT_TEMP_DIR"); val != "" {
		s.TempDir = val
	}

	// SDT_STRICT_LOCATE
	if val := os.Getenv("SDT_STRICT_LOCATE"); val != "" {
		s.StrictLocate = parseBool(val)
	}
}

// LoadSettingsFile reads settings from a YAML file. Fields missing from the
// file keep their defaults and environment variables take precedence over
// the file.
func LoadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read settings", path, err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	settings.applyEnvironment()

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return settings, nil
}

// Validate checks if the settings are valid
func (s *Settings) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}
	if !validLogLevels[s.LogLevel] {
		return errors.New("invalid log level: " + s.LogLevel)
	}

	if s.LogFormat != "text" && s.LogFormat != "json" {
		return errors.New("invalid log format: " + s.LogFormat)
	}

	if s.TempDir != "" {
		info, err := os.Stat(s.TempDir)
		if err != nil {
			return fmt.Errorf("temp dir: %w", err)
		}
		if !info.IsDir() {
			return errors.New("temp dir is not a directory: " + s.TempDir)
		}
	}

	return nil
}

// GetGlobalSettings returns a copy of the global settings
func GetGlobalSettings() *Settings {
	initGlobalSettings()
	globalSettingsMutex.RLock()
	defer globalSettingsMutex.RUnlock()

	if globalSettings == nil {
		return DefaultSettings()
	}
	settingsCopy := *globalSettings
	return &settingsCopy
}

// SetGlobalSettings replaces the global settings and reconfigures the global logger
func SetGlobalSettings(settings *Settings) {
	initGlobalSettings()
	globalSettingsMutex.Lock()
	globalSettings = settings
	globalSettingsMutex.Unlock()

	UpdateLoggerFromSettings()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
