package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the wsdlab service configuration.
type Config struct {
	HTTP       HTTPConfig                 `yaml:"http"`
	Auth       AuthConfig                 `yaml:"auth"`
	Logging    LoggingConfig              `yaml:"logging"`
	Text       TextConfig                 `yaml:"text"`
	Lexical    LexicalConfig              `yaml:"lexical"`
	Wikipedia  WikipediaConfig            `yaml:"wikipedia"`
	Oracle     OracleConfig               `yaml:"oracle"`
	Embeddings map[string]EmbeddingConfig `yaml:"embeddings"`
	OpenAI     OpenAIConfig               `yaml:"openai"`
	Cache      CacheConfig                `yaml:"cache"`
	Data       DataConfig                 `yaml:"data"`
	Batch      BatchConfig                `yaml:"batch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// CORSOrigins lists browser origins allowed to call the API. "*" allows any.
	CORSOrigins []string `yaml:"cors_origins"`
}

// TextConfig holds normalizer settings.
type TextConfig struct {
	StopwordsPath string `yaml:"stopwords_path"` // empty = bundled English list
}

// Lexical source drivers.
const (
	LexicalSQLite = "sqlite"
	LexicalYAML   = "yaml"
)

// LexicalConfig selects the dictionary backend.
type LexicalConfig struct {
	Driver string `yaml:"driver"` // sqlite (default), yaml
	Path   string `yaml:"path"`   // empty disables lexical mode
}

// WikipediaConfig holds encyclopedic source settings.
type WikipediaConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Language          string  `yaml:"language"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	MaxCandidates     int     `yaml:"max_candidates"`
	SummarySentences  int     `yaml:"summary_sentences"`
	URLResolveLimit   int     `yaml:"url_resolve_limit"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Concurrency       int     `yaml:"concurrency"`
	CacheTTLSec       int     `yaml:"cache_ttl_sec"`
	UserAgent         string  `yaml:"user_agent"`
}

// OracleConfig holds similarity oracle settings. Endpoints are tried in
// order, then the command.
type OracleConfig struct {
	Endpoints   []string `yaml:"endpoints"`
	Command     string   `yaml:"command"`
	TimeoutSec  int      `yaml:"timeout_sec"`
	Concurrency int      `yaml:"concurrency"`
	CacheTTLSec int      `yaml:"cache_ttl_sec"`
}

// EmbeddingConfig describes one vector file. The map key is the method label.
type EmbeddingConfig struct {
	Format string `yaml:"format"` // word2vec-bin, text (default)
	Path   string `yaml:"path"`
}

// OpenAIConfig describes an API-backed embedding source. Empty APIKey disables it.
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Label       string `yaml:"label"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// CacheConfig holds Redis/Valkey connection settings. Empty Addrs disables caching.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// DataConfig holds on-disk data locations.
type DataConfig struct {
	DatasetsDir string `yaml:"datasets_dir"`
	CorpusDir   string `yaml:"corpus_dir"`
	RunsDir     string `yaml:"runs_dir"`
}

// BatchConfig holds corpus run limits.
type BatchConfig struct {
	MaxLimit int `yaml:"max_limit"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults
// and validates the result.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
	if c.Lexical.Driver == "" {
		c.Lexical.Driver = LexicalSQLite
	}
	c.Wikipedia.applyDefaults()
	c.Oracle.applyDefaults()
	if c.OpenAI.Label == "" {
		c.OpenAI.Label = "openai"
	}
	if c.OpenAI.CacheTTLSec <= 0 {
		c.OpenAI.CacheTTLSec = 30 * 24 * 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Data.DatasetsDir == "" {
		c.Data.DatasetsDir = "data/datasets"
	}
	if c.Data.CorpusDir == "" {
		c.Data.CorpusDir = "data/corpus"
	}
	if c.Data.RunsDir == "" {
		c.Data.RunsDir = "data/runs"
	}
	if c.Batch.MaxLimit == 0 {
		c.Batch.MaxLimit = 1000
	}
}

func (w *WikipediaConfig) applyDefaults() {
	if w.Language == "" {
		w.Language = "en"
	}
	if w.TimeoutSec <= 0 {
		w.TimeoutSec = 5
	}
	if w.MaxCandidates <= 0 {
		w.MaxCandidates = 15
	}
	if w.SummarySentences <= 0 {
		w.SummarySentences = 3
	}
	if w.URLResolveLimit <= 0 {
		w.URLResolveLimit = 5
	}
	if w.RequestsPerSecond <= 0 {
		w.RequestsPerSecond = 5
	}
	if w.Concurrency <= 0 {
		w.Concurrency = 4
	}
	if w.CacheTTLSec <= 0 {
		w.CacheTTLSec = 7 * 24 * 3600
	}
}

func (o *OracleConfig) applyDefaults() {
	if o.TimeoutSec <= 0 {
		o.TimeoutSec = 10
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.CacheTTLSec <= 0 {
		o.CacheTTLSec = 30 * 24 * 3600
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Lexical.Driver {
	case LexicalSQLite, LexicalYAML:
	default:
		return fmt.Errorf("lexical.driver must be %q or %q, got %q", LexicalSQLite, LexicalYAML, c.Lexical.Driver)
	}
	for label, e := range c.Embeddings {
		switch strings.ToLower(e.Format) {
		case "", "text", "word2vec-bin":
		default:
			return fmt.Errorf("embeddings.%s.format must be \"text\" or \"word2vec-bin\", got %q", label, e.Format)
		}
		if e.Path == "" {
			return fmt.Errorf("embeddings.%s.path is required", label)
		}
		if label == "wikisim" {
			return fmt.Errorf("embeddings.%s: label is reserved for the oracle", label)
		}
	}
	if c.OpenAI.APIKey != "" {
		if c.OpenAI.Model == "" {
			return fmt.Errorf("openai.model is required when openai.api_key is set")
		}
		if _, dup := c.Embeddings[c.OpenAI.Label]; dup {
			return fmt.Errorf("openai.label %q collides with a file embedding", c.OpenAI.Label)
		}
	}
	if c.Batch.MaxLimit <= 0 {
		return fmt.Errorf("batch.max_limit must be positive, got %d", c.Batch.MaxLimit)
	}
	return nil
}

// Seconds converts a whole-second setting to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
