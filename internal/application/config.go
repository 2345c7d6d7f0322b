package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/internal/domain"
	"github.com/ahrav/go-geomean/internal/ports"
)

// Defaults for a practice round: four teammates, a wide spread and answers
// anywhere from ten to a billion.
const (
	DefaultTeamSize  = 4
	DefaultLogStdDev = 4.0
	DefaultMinAnswer = 10
	DefaultMaxAnswer = 1_000_000_000
)

// Defaults for the accuracy harness.
const (
	DefaultBenchCases       = 10_000
	DefaultBenchMinValue    = 1.0
	DefaultBenchMaxValue    = 1e9
	DefaultBenchConcurrency = 4
)

// maxLogStdDev is the widest spread a practice round accepts.
const maxLogStdDev = 50.0

// PracticeConfig describes one practice problem.
type PracticeConfig struct {
	// TeamSize is the number of guesses shown to the user.
	TeamSize int `yaml:"team_size" validate:"min=1,max=1000"`
	// LogStdDev is the spread of the guesses around the correct answer in
	// natural-log units.
	LogStdDev float64 `yaml:"log_std_dev" validate:"min=0,max=50"`
	// MinAnswer is the inclusive lower bound of the correct answer.
	MinAnswer uint64 `yaml:"min_answer" validate:"min=1"`
	// MaxAnswer is the upper bound of the correct answer.
	MaxAnswer uint64 `yaml:"max_answer" validate:"gtfield=MinAnswer"`
}

// DefaultPracticeConfig returns the configuration used when none is given.
func DefaultPracticeConfig() PracticeConfig {
	return PracticeConfig{
		TeamSize:  DefaultTeamSize,
		LogStdDev: DefaultLogStdDev,
		MinAnswer: DefaultMinAnswer,
		MaxAnswer: DefaultMaxAnswer,
	}
}

// Validate reports the first configuration sentinel c violates:
// domain.ErrZeroTeamSize, domain.ErrInvalidAnswerRange or
// domain.ErrInvalidSpread.
func (c PracticeConfig) Validate() error {
	if c.TeamSize <= 0 {
		return domain.ErrZeroTeamSize
	}
	if c.MinAnswer == 0 || c.MinAnswer >= c.MaxAnswer {
		return domain.ErrInvalidAnswerRange
	}
	if math.IsNaN(c.LogStdDev) || math.IsInf(c.LogStdDev, 0) || c.LogStdDev < 0 || c.LogStdDev > maxLogStdDev {
		return domain.ErrInvalidSpread
	}
	return nil
}

// BenchConfig controls the accuracy harness.
type BenchConfig struct {
	// Cases is the number of random test cases.
	Cases int `yaml:"cases" validate:"min=1,max=10000000"`
	// MinValue and MaxValue bound the log-uniform case values.
	MinValue float64 `yaml:"min_value" validate:"min=1"`
	MaxValue float64 `yaml:"max_value" validate:"max=1e300"`
	// Concurrency bounds the number of methods evaluated at once.
	Concurrency int `yaml:"concurrency" validate:"min=1,max=64"`
	// Methods lists the registry names to evaluate. Empty means all.
	Methods []string `yaml:"methods" validate:"dive,required"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	// Method is the registry name of the method used by estimate.
	Method   string         `yaml:"method" validate:"required"`
	Practice PracticeConfig `yaml:"practice"`
	Bench    BenchConfig    `yaml:"bench"`
}

// DefaultConfig returns the configuration every loaded file is overlaid on.
func DefaultConfig() AppConfig {
	return AppConfig{
		Method:   estimators.MethodTableBased,
		Practice: DefaultPracticeConfig(),
		Bench: BenchConfig{
			Cases:       DefaultBenchCases,
			MinValue:    DefaultBenchMinValue,
			MaxValue:    DefaultBenchMaxValue,
			Concurrency: DefaultBenchConcurrency,
		},
	}
}

// ConfigLoader parses and validates AppConfig documents.
type ConfigLoader struct {
	validator *validator.Validate
}

// NewConfigLoader creates a loader with the struct-level rules registered.
func NewConfigLoader() *ConfigLoader {
	v := validator.New()
	v.RegisterStructValidation(validateBenchRange, BenchConfig{})
	return &ConfigLoader{validator: v}
}

// LoadFromFile reads the YAML file at path. A missing file is reported as
// ports.ErrConfigNotFound.
func (l *ConfigLoader) LoadFromFile(path string) (AppConfig, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, ports.NewConfigError(cleanPath, ports.ErrConfigNotFound)
		}
		return AppConfig{}, ports.NewConfigError(cleanPath, fmt.Errorf("failed to read file: %w", err))
	}

	return l.load(cleanPath, data)
}

// LoadFromReader reads a YAML document from r.
func (l *ConfigLoader) LoadFromReader(r io.Reader) (AppConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return AppConfig{}, ports.NewConfigError("reader", fmt.Errorf("failed to read data: %w", err))
	}
	return l.load("reader", data)
}

// load decodes data over the defaults in strict mode, so a typo in a key
// is an error rather than a silently ignored field.
func (l *ConfigLoader) load(source string, data []byte) (AppConfig, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return AppConfig{}, ports.NewConfigError(source, fmt.Errorf("YAML decode failed: %w", err))
	}

	if err := l.Validate(cfg); err != nil {
		return AppConfig{}, ports.NewConfigError(source, err)
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags and returns a
// *domain.ValidationError listing every failed field.
func (l *ConfigLoader) Validate(cfg AppConfig) error {
	err := l.validator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	verr := domain.NewValidationError("config")
	for _, fe := range fieldErrs {
		verr.AddError(fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return verr
}

// validateBenchRange requires a non-empty value range.
func validateBenchRange(sl validator.StructLevel) {
	b := sl.Current().Interface().(BenchConfig)
	if b.MaxValue <= b.MinValue {
		sl.ReportError(b.MaxValue, "MaxValue", "max_value", "gtfield", "MinValue")
	}
}
