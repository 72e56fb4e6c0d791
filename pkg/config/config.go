/*
Package config manages the TOML config for typr-suggest.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bastiangx/typr-suggest/internal/utils"
	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/charmbracelet/log"
)

// ConfigFile is the file name looked up in the config directory.
const ConfigFile = "config.toml"

// Config holds the entire config structure
type Config struct {
	Suggest SuggestConfig `toml:"suggest"`
	Keys    KeysConfig    `toml:"keys"`
	Dict    DictConfig    `toml:"dict"`
}

// SuggestConfig has trigger and loading options.
type SuggestConfig struct {
	Pattern string `toml:"pattern"`
	Async   bool   `toml:"async"`
}

// KeysConfig rebinds controller actions. Empty lists keep the defaults.
type KeysConfig struct {
	Prev   KeyList `toml:"prev"`
	Next   KeyList `toml:"next"`
	Cancel KeyList `toml:"cancel"`
	Accept KeyList `toml:"accept"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path             string `toml:"path"`
	MaxWords         int    `toml:"max_words"`
	Limit            int    `toml:"limit"`
	MinFreqThreshold int    `toml:"min_frequency_threshold"`
	EnableFilter     bool   `toml:"enable_filter"`
	FilterSymbols    string `toml:"filter_symbols"`
}

// KeyList is a key binding written either as a TOML array or as a comma
// separated string ("Enter, Tab").
type KeyList []string

// UnmarshalTOML implements toml.Unmarshaler.
func (k *KeyList) UnmarshalTOML(data any) error {
	switch val := data.(type) {
	case string:
		*k = suggest.ParseKeys(val)
	case []any:
		keys := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("key binding must be a string, got %T", item)
			}
			keys = append(keys, s)
		}
		*k = keys
	default:
		return fmt.Errorf("key binding must be a string or array, got %T", data)
	}
	return nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Suggest: SuggestConfig{
			Pattern: suggest.DefaultPattern,
			Async:   false,
		},
		Keys: KeysConfig{
			Prev:   suggest.DefaultKeys(suggest.ActionPrev),
			Next:   suggest.DefaultKeys(suggest.ActionNext),
			Cancel: suggest.DefaultKeys(suggest.ActionCancel),
			Accept: suggest.DefaultKeys(suggest.ActionAccept),
		},
		Dict: DictConfig{
			Path:             "data",
			MaxWords:         50000,
			Limit:            8,
			MinFreqThreshold: 20,
			EnableFilter:     true,
			FilterSymbols:    "'",
		},
	}
}

// SuggestOptions turns the config into controller options.
func (c *Config) SuggestOptions() []suggest.Option {
	return []suggest.Option{
		suggest.WithPattern(c.Suggest.Pattern),
		suggest.WithKeys(suggest.ActionPrev, c.Keys.Prev...),
		suggest.WithKeys(suggest.ActionNext, c.Keys.Next...),
		suggest.WithKeys(suggest.ActionCancel, c.Keys.Cancel...),
		suggest.WithKeys(suggest.ActionAccept, c.Keys.Accept...),
	}
}

// TokenFilter builds the dictionary token filter, nil when filtering is
// off. Symbols in the trigger pattern's literal prefix are always allowed.
func (c *Config) TokenFilter() *utils.TokenFilter {
	if !c.Dict.EnableFilter {
		return nil
	}
	symbols := c.Dict.FilterSymbols
	if re, err := regexp.Compile(strings.TrimPrefix(c.Suggest.Pattern, "^")); err == nil {
		prefix, _ := re.LiteralPrefix()
		for _, r := range utils.SigilSymbols(prefix) {
			if !strings.ContainsRune(symbols, r) {
				symbols += string(r)
			}
		}
	}
	return utils.NewTokenFilter(symbols)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/typr-suggest/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string, paths *utils.PathResolver) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	if paths == nil {
		log.Warn("No config directory available. Using built-in defaults...")
		return DefaultConfig(), ""
	}

	defaultPath := paths.GetConfigPath(ConfigFile)
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, keeping every value that still parses
// when the file as a whole does not decode.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "suggest"); ok {
		extractSuggestConfig(section, &config.Suggest)
	}
	if section, ok := utils.ExtractSection(tempConfig, "keys"); ok {
		extractKeysConfig(section, &config.Keys)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	return config, nil
}

func extractSuggestConfig(data map[string]any, s *SuggestConfig) {
	if val, ok := utils.ExtractString(data, "pattern"); ok {
		s.Pattern = val
	}
	if val, ok := utils.ExtractBool(data, "async"); ok {
		s.Async = val
	}
}

func extractKeysConfig(data map[string]any, keys *KeysConfig) {
	fields := map[string]*KeyList{
		"prev":   &keys.Prev,
		"next":   &keys.Next,
		"cancel": &keys.Cancel,
		"accept": &keys.Accept,
	}
	for name, field := range fields {
		val, ok := utils.ExtractStrings(data, name)
		if !ok {
			continue
		}
		if len(val) == 1 {
			val = suggest.ParseKeys(val[0])
		}
		*field = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		dict.Limit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_threshold"); ok {
		dict.MinFreqThreshold = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		dict.EnableFilter = val
	}
	if val, ok := utils.ExtractString(data, "filter_symbols"); ok {
		dict.FilterSymbols = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	return utils.AbsolutePath(configPath)
}
