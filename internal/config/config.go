// Package config loads gonsole configuration.
//
// Values are layered, highest first: bound command-line flags, GONSOLE_*
// environment variables, .env files (user config directory, then working
// directory), the gonsole.yaml config file, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gonsole/pkg/consoletypes"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "GONSOLE"

// Config is the full gonsole configuration.
type Config struct {
	Console consoletypes.Settings `mapstructure:"console" yaml:"console"`
	Shell   ShellConfig           `mapstructure:"shell" yaml:"shell"`
	Log     LogConfig             `mapstructure:"log" yaml:"log"`
}

// ShellConfig configures the interactive host.
type ShellConfig struct {
	Prompt      string `mapstructure:"prompt" yaml:"prompt"`
	HistoryFile string `mapstructure:"history_file" yaml:"history_file"`
	// Style is the listing render style: auto, dark, light, notty or ascii.
	Style string `mapstructure:"style" yaml:"style"`
	Width int    `mapstructure:"width" yaml:"width"`
	// Suggestions is how many did-you-mean keys an unknown command shows.
	Suggestions int `mapstructure:"suggestions" yaml:"suggestions"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Console: consoletypes.DefaultSettings(),
		Shell: ShellConfig{
			Prompt:      "gonsole> ",
			Style:       "auto",
			Width:       80,
			Suggestions: 3,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Loader resolves a Config from files, environment and flags.
type Loader struct {
	v          *viper.Viper
	configFile string
	configDir  string
	workDir    string
}

// NewLoader creates a loader with defaults registered and environment lookup enabled.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range flatten(Default()) {
		v.SetDefault(key, value)
	}
	return &Loader{v: v}
}

// Viper returns the underlying viper instance, e.g. for binding cobra flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile uses an explicit config file; it must exist.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetDirs overrides the user config directory and the working directory
// searched for gonsole.yaml and .env. Empty values keep the defaults.
func (l *Loader) SetDirs(configDir, workDir string) {
	l.configDir = configDir
	l.workDir = workDir
}

// Load reads every configuration layer and returns the validated result.
func (l *Loader) Load() (Config, error) {
	configDir, workDir := l.dirs()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	} else {
		l.v.SetConfigName("gonsole")
		l.v.SetConfigType("yaml")
		for _, dir := range []string{workDir, configDir} {
			if dir != "" {
				l.v.AddConfigPath(dir)
			}
		}
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for _, dir := range []string{configDir, workDir} {
		if dir == "" {
			continue
		}
		if err := l.mergeDotEnv(filepath.Join(dir, ".env")); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := l.v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Console.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid console settings: %w", err)
	}
	return cfg, nil
}

// ConfigFileUsed returns the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// mergeDotEnv layers GONSOLE_* entries of a .env file above the config file.
// A missing file is not an error.
func (l *Loader) mergeDotEnv(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read .env file %s: %w", path, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}

	overlay := make(map[string]any)
	for _, key := range l.v.AllKeys() {
		value, ok := envMap[envName(key)]
		if !ok {
			continue
		}
		section, name, nested := strings.Cut(key, ".")
		if !nested {
			overlay[key] = value
			continue
		}
		inner, _ := overlay[section].(map[string]any)
		if inner == nil {
			inner = make(map[string]any)
			overlay[section] = inner
		}
		inner[name] = value
	}
	if len(overlay) == 0 {
		return nil
	}
	return l.v.MergeConfigMap(overlay)
}

func (l *Loader) dirs() (string, string) {
	configDir, workDir := l.configDir, l.workDir
	if configDir == "" {
		configDir = userConfigDir()
	}
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	return configDir, workDir
}

func userConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "gonsole")
}

// envName maps a viper key to its environment variable, e.g.
// console.info_operator to GONSOLE_CONSOLE_INFO_OPERATOR.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func flatten(cfg Config) map[string]any {
	c, s, lg := cfg.Console, cfg.Shell, cfg.Log
	return map[string]any{
		"console.prefix":                  c.Prefix,
		"console.info_operator":           c.InfoOperator,
		"console.getter_key":              c.GetterKey,
		"console.setter_key":              c.SetterKey,
		"console.group_separator":         c.GroupSeparator,
		"console.numeric_bool_processing": c.NumericBoolProcessing,
		"console.log_on_load":             c.LogOnLoad,
		"console.native_boost":            c.NativeBoost,
		"shell.prompt":                    s.Prompt,
		"shell.history_file":              s.HistoryFile,
		"shell.style":                     s.Style,
		"shell.width":                     s.Width,
		"shell.suggestions":               s.Suggestions,
		"log.level":                       lg.Level,
		"log.file":                        lg.File,
	}
}
