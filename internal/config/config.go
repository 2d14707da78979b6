/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type EditorConfig struct {
	HistoryLimit    int    `yaml:"history_limit"`
	HistoryMaxBytes int    `yaml:"history_max_bytes"`
	CoalesceMs      int    `yaml:"coalesce_ms"`
	PageWidth       int    `yaml:"page_width"`
	PageHeight      int    `yaml:"page_height"`
	Background      string `yaml:"background"`
}

type StorageConfig struct {
	Type        string `yaml:"type"` // memory | filesystem | sqlite | postgres | s3
	Path        string `yaml:"path"`
	DSN         string `yaml:"dsn"`
	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	AccessKeyID string `yaml:"access_key_id"`
	// The secret access key is not stored on disk; it lives in the OS keychain.
}

type ClipboardConfig struct {
	System bool `yaml:"system"`
}

type TelemetryConfig struct {
	OptIn     bool   `yaml:"opt_in"`
	EventsURL string `yaml:"events_url"`
	CrashURL  string `yaml:"crash_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Editor        EditorConfig    `yaml:"editor"`
	Storage       StorageConfig   `yaml:"storage"`
	Clipboard     ClipboardConfig `yaml:"clipboard"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			HistoryLimit: 50,
			PageWidth:    800,
			PageHeight:   1120,
			Background:   "#ffffff",
		},
		Storage:   StorageConfig{Type: "filesystem", Path: defaultDataDir(), Region: "us-east-1"},
		Clipboard: ClipboardConfig{System: false},
		Telemetry: TelemetryConfig{OptIn: false},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath      = "CS_CONFIG"
	EnvHistoryLimit    = "CS_HISTORY_LIMIT"
	EnvStorageType     = "CS_STORAGE_TYPE"
	EnvStoragePath     = "CS_STORAGE_PATH"
	EnvStorageDSN      = "CS_STORAGE_DSN"
	EnvS3Bucket        = "CS_S3_BUCKET"
	EnvS3Region        = "CS_S3_REGION"
	EnvS3Endpoint      = "CS_S3_ENDPOINT"
	EnvS3AccessKeyID   = "CS_S3_ACCESS_KEY_ID"
	EnvS3SecretKey     = "CS_S3_SECRET_ACCESS_KEY"
	EnvSystemClipboard = "CS_SYSTEM_CLIPBOARD"
	EnvTelemetryOptIn  = "CS_TELEMETRY_OPT_IN"
	EnvTelemetryURL    = "CS_TELEMETRY_URL"
	EnvCrashUploadURL  = "CS_CRASH_UPLOAD_URL"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "CS_LOG_LEVEL"
	EnvLogFormat = "CS_LOG_FORMAT"
	EnvLogSource = "CS_LOG_SOURCE"
	EnvLogFile   = "CS_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "CardStudio"
	keyringS3Key   = "s3_secret_access_key"
)

// SecretStore abstracts the keyring, so we can stub in tests.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var secretStore SecretStore = osKeyring{}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error   { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error {
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func configBaseDir() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "CardStudio")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "CardStudio")
	default:
		return filepath.Join(os.Getenv("HOME"), ".config", "cardstudio")
	}
}

func defaultDataDir() string { return filepath.Join(configBaseDir(), "projects") }

// ConfigPath returns the per-user config file path; CS_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base := configBaseDir()
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// The S3 secret key comes from the environment or the keyring and is returned separately.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (AppConfig, string, error) {
	cfg := Defaults()
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	secret := strings.TrimSpace(os.Getenv(EnvS3SecretKey))
	if secret == "" && cfg.Storage.Type == "s3" {
		secret, _ = secretStore.Get(keyringService, keyringS3Key)
	}
	return cfg, secret, nil
}

// Save writes the user config YAML and persists the S3 secret into the OS keyring (if non-empty).
func Save(cfg AppConfig, secret string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg, secret)
}

// SaveTo is Save with an explicit config file path.
func SaveTo(path string, cfg AppConfig, secret string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if secret != "" {
		if err := secretStore.Set(keyringService, keyringS3Key, secret); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// editor
	if src.Editor.HistoryLimit > 0 {
		dst.Editor.HistoryLimit = src.Editor.HistoryLimit
	}
	if src.Editor.HistoryMaxBytes > 0 {
		dst.Editor.HistoryMaxBytes = src.Editor.HistoryMaxBytes
	}
	if src.Editor.CoalesceMs > 0 {
		dst.Editor.CoalesceMs = src.Editor.CoalesceMs
	}
	if src.Editor.PageWidth > 0 {
		dst.Editor.PageWidth = src.Editor.PageWidth
	}
	if src.Editor.PageHeight > 0 {
		dst.Editor.PageHeight = src.Editor.PageHeight
	}
	if v := strings.TrimSpace(src.Editor.Background); v != "" {
		dst.Editor.Background = v
	}
	// storage
	if v := strings.TrimSpace(src.Storage.Type); v != "" {
		dst.Storage.Type = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Storage.Path); v != "" {
		dst.Storage.Path = v
	}
	if v := strings.TrimSpace(src.Storage.DSN); v != "" {
		dst.Storage.DSN = v
	}
	if v := strings.TrimSpace(src.Storage.Bucket); v != "" {
		dst.Storage.Bucket = v
	}
	if v := strings.TrimSpace(src.Storage.Region); v != "" {
		dst.Storage.Region = v
	}
	if v := strings.TrimSpace(src.Storage.Endpoint); v != "" {
		dst.Storage.Endpoint = v
	}
	if v := strings.TrimSpace(src.Storage.AccessKeyID); v != "" {
		dst.Storage.AccessKeyID = v
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Clipboard.System = src.Clipboard.System
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	if v := strings.TrimSpace(src.Telemetry.EventsURL); v != "" {
		dst.Telemetry.EventsURL = v
	}
	if v := strings.TrimSpace(src.Telemetry.CrashURL); v != "" {
		dst.Telemetry.CrashURL = v
	}
	// logging
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageType)); v != "" {
		cfg.Storage.Type = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoragePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvS3Bucket)); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvS3Region)); v != "" {
		cfg.Storage.Region = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvS3Endpoint)); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvS3AccessKeyID)); v != "" {
		cfg.Storage.AccessKeyID = v
	}
	if v := os.Getenv(EnvSystemClipboard); strings.TrimSpace(v) != "" {
		cfg.Clipboard.System = envBool(v)
	}
	if v := os.Getenv(EnvTelemetryOptIn); strings.TrimSpace(v) != "" {
		cfg.Telemetry.OptIn = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryURL)); v != "" {
		cfg.Telemetry.EventsURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCrashUploadURL)); v != "" {
		cfg.Telemetry.CrashURL = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogSource); strings.TrimSpace(v) != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"editor.history_limit":  EnvHistoryLimit,
		"storage.type":          EnvStorageType,
		"storage.path":          EnvStoragePath,
		"storage.dsn":           EnvStorageDSN,
		"storage.bucket":        EnvS3Bucket,
		"storage.region":        EnvS3Region,
		"storage.endpoint":      EnvS3Endpoint,
		"storage.access_key_id": EnvS3AccessKeyID,
		"clipboard.system":      EnvSystemClipboard,
		"telemetry.opt_in":      EnvTelemetryOptIn,
		"telemetry.events_url":  EnvTelemetryURL,
		"telemetry.crash_url":   EnvCrashUploadURL,
		"logging.level":         EnvLogLevel,
		"logging.format":        EnvLogFormat,
		"logging.source":        EnvLogSource,
		"logging.file":          EnvLogFile,
	}
	if env, ok := names[key]; ok && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
