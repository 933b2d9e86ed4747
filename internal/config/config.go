// Package config provides configuration loading and discovery for fnlint.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags (passed as overrides)
//  2. Environment variables (FNLINT_* prefix)
//  3. Config file (closest .fnlint.toml or fnlint.toml)
//  4. Built-in defaults
//
// Config file discovery starts from the target file's directory and walks
// up the filesystem until a config file is found. The closest config wins
// (no merging).
package config

import (
	"cmp"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".fnlint.toml", "fnlint.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "FNLINT_"

// Config represents the complete fnlint configuration.
type Config struct {
	// Dialect selects the parser: "modern" (default) or "legacy".
	Dialect string `json:"dialect" koanf:"dialect"`

	// Concurrency limits how many files are linted in parallel (0 = GOMAXPROCS).
	Concurrency int `json:"concurrency,omitempty" koanf:"concurrency"`

	// Rules contains rule selection and per-rule configuration.
	Rules RulesConfig `json:"rules" koanf:"rules"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// InlineDirectives controls fnlint-disable comments.
	InlineDirectives InlineDirectivesConfig `json:"inline-directives" koanf:"inline-directives"`

	// FileValidation configures checks that run before a file is read.
	FileValidation FileValidationConfig `json:"file-validation" koanf:"file-validation"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format: text, json, sarif, github-actions.
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output ("stdout", "stderr" or a file).
	Path string `json:"path,omitempty" koanf:"path"`

	// ShowSource enables source code snippets in text output.
	ShowSource bool `json:"show-source,omitempty" koanf:"show-source"`

	// FailLevel sets the minimum severity level that causes a non-zero exit code.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`
}

// FileValidationConfig configures pre-parse file validation checks.
//
// Example TOML configuration:
//
//	[file-validation]
//	max-file-size = 1048576
type FileValidationConfig struct {
	// MaxFileSize is the maximum file size in bytes (0 = unlimited).
	MaxFileSize int64 `json:"max-file-size,omitempty" koanf:"max-file-size"`
}

// InlineDirectivesConfig controls inline suppression comments such as
// `// fnlint-disable-next-line no-let`.
//
// Example TOML configuration:
//
//	[inline-directives]
//	enabled = true
//	warn-unused = false
type InlineDirectivesConfig struct {
	// Enabled controls whether inline directives are processed.
	Enabled bool `json:"enabled,omitempty" koanf:"enabled"`

	// WarnUnused reports directives that don't suppress any violations.
	WarnUnused bool `json:"warn-unused,omitempty" koanf:"warn-unused"`
}

// Default returns the default configuration.
// Rule-specific defaults are owned by each rule.
func Default() *Config {
	return &Config{
		Dialect: "modern",
		Output: OutputConfig{
			Format:     "text",
			Path:       "stdout",
			ShowSource: true,
			FailLevel:  "style", // Any violation causes exit code 1
		},
		InlineDirectives: InlineDirectivesConfig{
			Enabled: true,
		},
		FileValidation: FileValidationConfig{
			MaxFileSize: 1 << 20, // 1 MB
		},
	}
}

// Load loads configuration for a target file path.
// It discovers the closest config file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath), nil)
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath, nil)
}

func loadWithConfigPath(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if err := loadConfigFile(k, configPath); err != nil {
		return nil, err
	}

	// 3. Load environment variables (FNLINT_* prefix)
	// FNLINT_RULES_NO_LET_SEVERITY -> rules.no-let.severity
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	// 4. CLI overrides
	if err := loadOverrides(k, overrides); err != nil {
		return nil, err
	}

	cfg, err := decodeConfig(k.Raw())
	if err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

// loadConfigFile validates the file on its own before merging it, so
// errors point at what the user wrote rather than at merged defaults.
func loadConfigFile(k *koanf.Koanf, configPath string) error {
	if configPath == "" {
		return nil
	}
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(configPath), toml.Parser()); err != nil {
		return err
	}
	raw := fk.Raw()
	normalizeRuleShorthand(raw)
	if err := validateFile(configPath, raw); err != nil {
		return err
	}
	return k.Load(confmap.Provider(raw, ""), nil)
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated (or
// camel-cased) equivalents. Add new entries here when adding rules or
// options whose names cannot be recovered from an environment variable.
var knownHyphenatedKeys = map[string]string{
	"no.let":                  "no-let",
	"no.expression.statement": "no-expression-statement",
	"no.this.expression":      "no-this-expression",
	"no.loop.statement":       "no-loop-statement",
	"allowlocalmutation":      "allowLocalMutation",
	"ignorepattern":           "ignorePattern",
	"inline.directives":       "inline-directives",
	"warn.unused":             "warn-unused",
	"show.source":             "show-source",
	"fail.level":              "fail-level",
	"file.validation":         "file-validation",
	"max.file.size":           "max-file-size",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"dialect":           {},
	"concurrency":       {},
	"rules":             {},
	"output":            {},
	"inline-directives": {},
	"file-validation":   {},
}

// envKeyTransform converts environment variable names to config keys.
// FNLINT_OUTPUT_FORMAT -> output.format
// FNLINT_RULES_NO_LET_ALLOWLOCALMUTATION -> rules.no-let.allowLocalMutation
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	// Longest patterns first: "no.expression.statement" must not be split
	// by a shorter pattern it contains.
	for _, pattern := range hyphenPatterns {
		s = strings.ReplaceAll(s, pattern, knownHyphenatedKeys[pattern])
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	return s, v
}

var hyphenPatterns = func() []string {
	out := slices.Collect(maps.Keys(knownHyphenatedKeys))
	slices.SortFunc(out, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}()

// Discover finds the closest config file for a target file path.
// It walks up the directory tree from the target's directory,
// checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := filepath.Dir(absPath)

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
