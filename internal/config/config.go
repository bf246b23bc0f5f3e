// Package config loads runtime settings from defaults, an optional YAML file,
// an optional .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "STRATEGY_WIZARD_"

// DefaultEnvFile is read when present unless another file is named.
const DefaultEnvFile = ".env"

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Endpoint        string        `yaml:"endpoint" validate:"required,url"`
	SubmitDelay     time.Duration `yaml:"submitDelay" validate:"gte=0"`
	RequestTimeout  time.Duration `yaml:"requestTimeout" validate:"gte=0"`
	ValidateRequest bool          `yaml:"validateRequest"`
	ListenAddr      string        `yaml:"listenAddr" validate:"required"`
	MockAddr        string        `yaml:"mockAddr" validate:"required"`
	LogLevel        string        `yaml:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat       string        `yaml:"logFormat" validate:"oneof=console json"`
	Metrics         bool          `yaml:"metrics"`
	InitialStrategy string        `yaml:"initialStrategy" validate:"omitempty,oneof=ma bb rsi adx kalman1st kalman2nd kalman3rd"`
	ThemeVariant    string        `yaml:"themeVariant" validate:"omitempty,oneof=dark"`
}

// Default is the configuration with no file or environment applied.
func Default() Config {
	return Config{
		Endpoint:        simulation.DefaultEndpoint,
		SubmitDelay:     simulation.DefaultDelay,
		RequestTimeout:  30 * time.Second,
		ValidateRequest: true,
		ListenAddr:      ":8080",
		MockAddr:        ":8090",
		LogLevel:        "info",
		LogFormat:       "console",
		Metrics:         true,
	}
}

type loadOptions struct {
	file        string
	envFile     string
	envExplicit bool
	lookup      func(string) (string, bool)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithFile reads a YAML file over the defaults. A missing file is an error.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.file = strings.TrimSpace(path)
	}
}

// WithEnvFile names the dotenv file. A missing named file is an error; the
// default .env is skipped silently when absent. An empty path disables it.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = strings.TrimSpace(path)
		o.envExplicit = true
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.lookup = fn
		}
	}
}

// Load resolves the configuration and validates it.
func Load(opts ...LoadOption) (Config, error) {
	o := loadOptions{envFile: DefaultEnvFile, lookup: os.LookupEnv}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cfg := Default()
	if o.file != "" {
		raw, err := os.ReadFile(o.file)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", o.file, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", o.file, err)
		}
	}

	dotenv := map[string]string{}
	if o.envFile != "" {
		values, err := godotenv.Read(o.envFile)
		switch {
		case err == nil:
			dotenv = values
		case errors.Is(err, os.ErrNotExist) && !o.envExplicit:
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", o.envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := o.lookup(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("ENDPOINT", &cfg.Endpoint)
	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("MOCK_ADDR", &cfg.MockAddr)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("INITIAL_STRATEGY", &cfg.InitialStrategy)
	str("THEME_VARIANT", &cfg.ThemeVariant)
	if err := dur("SUBMIT_DELAY", &cfg.SubmitDelay); err != nil {
		return err
	}
	if err := dur("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return err
	}
	if err := boolean("VALIDATE_REQUEST", &cfg.ValidateRequest); err != nil {
		return err
	}
	return boolean("METRICS", &cfg.Metrics)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
