package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"NewsCredibility/internal/credibility"
	"NewsCredibility/internal/logging"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "CREDIBILITY_CONFIG"
	envFileEnv      = "CREDIBILITY_ENV_FILE"

	databaseDriverEnv  = "DATABASE_DRIVER"
	databaseDSNEnv     = "DATABASE_DSN"
	classifierURLEnv   = "CLASSIFIER_URL"
	classifierKeyEnv   = "CLASSIFIER_API_KEY"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	logLevelEnv        = "LOG_LEVEL"
	classifierKindHTTP = "http"
	classifierKindLLM  = "openai"
	classifierKindNone = "none"
	weightSumTolerance = 1e-6
)

// Configuration validation errors.
var (
	ErrUnknownDriver     = errors.New("database.driver must be 'postgres' or 'sqlite'")
	ErrUnknownClassifier = errors.New("classifier.provider must be 'http', 'openai' or 'none'")
	ErrInvalidWeights    = errors.New("scoring.weights must be non-negative and sum to 1")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrMissingSchedule   = errors.New("scheduler.cronExpression is required when the scheduler is enabled")
	ErrInvalidDetector   = errors.New("detector minRatings must be at least 1 and fractions must lie within [0,1]")
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Logging       LoggingConfig      `yaml:"logging"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Detector      DetectorConfig     `yaml:"detector"`
}

// DatabaseConfig describes the storage connection.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when the recompute job should run.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ClassifierConfig selects the text classifier backend.
type ClassifierConfig struct {
	Provider          string  `yaml:"provider"`
	InferenceURL      string  `yaml:"inferenceUrl"`
	APIKey            string  `yaml:"apiKey"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// OpenAIConfig defines how to contact the chat completion API.
type OpenAIConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// WeightsConfig are the aggregator factors.
type WeightsConfig struct {
	SourceTrust float64 `yaml:"sourceTrust"`
	NLP         float64 `yaml:"nlp"`
	Community   float64 `yaml:"community"`
	CrossSource float64 `yaml:"crossSource"`
}

// ScoringConfig tunes the component scorers.
type ScoringConfig struct {
	Weights                   WeightsConfig `yaml:"weights"`
	DefaultSourceTrust        float64       `yaml:"defaultSourceTrust"`
	LongContentChars          int           `yaml:"longContentChars"`
	ShortContentChars         int           `yaml:"shortContentChars"`
	HighCredibilityAbove      float64       `yaml:"highCredibilityAbove"`
	LowCredibilityBelow       float64       `yaml:"lowCredibilityBelow"`
	HighImpact                float64       `yaml:"highImpact"`
	LowImpact                 float64       `yaml:"lowImpact"`
	FreezeCommunityWhenLocked *bool         `yaml:"freezeCommunityWhenLocked"`
}

// DetectorConfig exposes every manipulation threshold.
type DetectorConfig struct {
	MinRatings           int           `yaml:"minRatings"`
	SpikeWindow          time.Duration `yaml:"spikeWindow"`
	SpikeMinCount        int           `yaml:"spikeMinCount"`
	SpikeFraction        float64       `yaml:"spikeFraction"`
	NewAccountAge        time.Duration `yaml:"newAccountAge"`
	NewAccountFraction   float64       `yaml:"newAccountFraction"`
	NewAccountMinRatings int           `yaml:"newAccountMinRatings"`
	VarianceMinRatings   int           `yaml:"varianceMinRatings"`
	VarianceThreshold    float64       `yaml:"varianceThreshold"`
	ExtremityMinRatings  int           `yaml:"extremityMinRatings"`
	ExtremityHigh        float64       `yaml:"extremityHigh"`
	ExtremityLow         float64       `yaml:"extremityLow"`
	ExtremityFraction    float64       `yaml:"extremityFraction"`
	IPMinRatings         int           `yaml:"ipMinRatings"`
	IPFraction           float64       `yaml:"ipFraction"`
	IPMinCount           int           `yaml:"ipMinCount"`
}

// Load reads YAML configuration (if present), a .env file (if present) and
// applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if fileCfg, err := ReadFile(path, cfg); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = fileCfg
		}
	}

	envFile := os.Getenv(envFileEnv)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", envFile, err)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	return cfg
}

// ReadFile decodes a YAML file on top of base; keys absent from the file keep
// their base values.
func ReadFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	fileCfg := base
	if base.Scoring.FreezeCommunityWhenLocked != nil {
		freeze := *base.Scoring.FreezeCommunityWhenLocked
		fileCfg.Scoring.FreezeCommunityWhenLocked = &freeze
	}
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

// Validate checks the settings that would otherwise fail late at runtime.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return ErrUnknownDriver
	}

	switch c.Classifier.Provider {
	case classifierKindHTTP, classifierKindLLM, classifierKindNone, "":
	default:
		return ErrUnknownClassifier
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}

	w := c.Scoring.Weights
	if w.SourceTrust < 0 || w.NLP < 0 || w.Community < 0 || w.CrossSource < 0 {
		return ErrInvalidWeights
	}
	if math.Abs(w.SourceTrust+w.NLP+w.Community+w.CrossSource-1) > weightSumTolerance {
		return ErrInvalidWeights
	}

	if err := c.Detector.validate(); err != nil {
		return err
	}

	if c.Scheduler.Enabled && strings.TrimSpace(c.Scheduler.CronExpression) == "" {
		return ErrMissingSchedule
	}
	return nil
}

func (d DetectorConfig) validate() error {
	if d.MinRatings < 1 {
		return fmt.Errorf("%w: minRatings is %d", ErrInvalidDetector, d.MinRatings)
	}
	for name, n := range map[string]int{
		"spikeMinCount":        d.SpikeMinCount,
		"newAccountMinRatings": d.NewAccountMinRatings,
		"varianceMinRatings":   d.VarianceMinRatings,
		"extremityMinRatings":  d.ExtremityMinRatings,
		"ipMinRatings":         d.IPMinRatings,
		"ipMinCount":           d.IPMinCount,
	} {
		if n < 0 {
			return fmt.Errorf("%w: %s is %d", ErrInvalidDetector, name, n)
		}
	}
	if d.SpikeWindow <= 0 || d.NewAccountAge < 0 {
		return fmt.Errorf("%w: spikeWindow %s, newAccountAge %s", ErrInvalidDetector, d.SpikeWindow, d.NewAccountAge)
	}
	for name, f := range map[string]float64{
		"spikeFraction":      d.SpikeFraction,
		"newAccountFraction": d.NewAccountFraction,
		"extremityFraction":  d.ExtremityFraction,
		"ipFraction":         d.IPFraction,
	} {
		if f < 0 || f > 1 {
			return fmt.Errorf("%w: %s is %v", ErrInvalidDetector, name, f)
		}
	}
	if d.VarianceThreshold < 0 || d.ExtremityLow > d.ExtremityHigh {
		return fmt.Errorf("%w: varianceThreshold %v, extremity band [%v,%v]",
			ErrInvalidDetector, d.VarianceThreshold, d.ExtremityLow, d.ExtremityHigh)
	}
	return nil
}

// ClassifierKind returns the effective classifier backend, "none" when unset
// or when the chosen backend lacks credentials.
func (c Config) ClassifierKind() string {
	switch c.Classifier.Provider {
	case classifierKindHTTP:
		if c.Classifier.InferenceURL != "" {
			return classifierKindHTTP
		}
	case classifierKindLLM:
		if c.OpenAI.APIKey != "" && c.OpenAI.Model != "" {
			return classifierKindLLM
		}
	}
	return classifierKindNone
}

// EngineOptions translates scoring and detector settings into engine options.
func (c Config) EngineOptions() credibility.Options {
	opts := credibility.DefaultOptions()
	s := c.Scoring
	opts.Weights = credibility.Weights{
		SourceTrust: s.Weights.SourceTrust,
		NLP:         s.Weights.NLP,
		Community:   s.Weights.Community,
		CrossSource: s.Weights.CrossSource,
	}
	opts.DefaultSourceTrust = s.DefaultSourceTrust
	opts.LongContentChars = s.LongContentChars
	opts.ShortContentChars = s.ShortContentChars
	opts.HighCredibilityAbove = s.HighCredibilityAbove
	opts.LowCredibilityBelow = s.LowCredibilityBelow
	opts.HighImpact = s.HighImpact
	opts.LowImpact = s.LowImpact
	if s.FreezeCommunityWhenLocked != nil {
		opts.FreezeCommunityWhenLocked = *s.FreezeCommunityWhenLocked
	}
	opts.Detector = c.Detector.Params()
	return opts
}

// Params converts the detector section.
func (d DetectorConfig) Params() credibility.DetectorParams {
	return credibility.DetectorParams{
		MinRatings:           d.MinRatings,
		SpikeWindow:          d.SpikeWindow,
		SpikeMinCount:        d.SpikeMinCount,
		SpikeFraction:        d.SpikeFraction,
		NewAccountAge:        d.NewAccountAge,
		NewAccountFraction:   d.NewAccountFraction,
		NewAccountMinRatings: d.NewAccountMinRatings,
		VarianceMinRatings:   d.VarianceMinRatings,
		VarianceThreshold:    d.VarianceThreshold,
		ExtremityMinRatings:  d.ExtremityMinRatings,
		ExtremityHigh:        d.ExtremityHigh,
		ExtremityLow:         d.ExtremityLow,
		ExtremityFraction:    d.ExtremityFraction,
		IPMinRatings:         d.IPMinRatings,
		IPFraction:           d.IPFraction,
		IPMinCount:           d.IPMinCount,
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.InferenceURL = v
	}

	if v := os.Getenv(classifierKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	opts := credibility.DefaultOptions()
	p := opts.Detector
	freeze := opts.FreezeCommunityWhenLocked

	return Config{
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "file:credibility.db?_pragma=busy_timeout(5000)"},
		Scheduler: SchedulerConfig{Enabled: true, CronExpression: "0 */6 * * *", Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
		Classifier: ClassifierConfig{
			Provider:          classifierKindNone,
			InferenceURL:      "",
			RequestsPerSecond: 5,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Scoring: ScoringConfig{
			Weights: WeightsConfig{
				SourceTrust: opts.Weights.SourceTrust,
				NLP:         opts.Weights.NLP,
				Community:   opts.Weights.Community,
				CrossSource: opts.Weights.CrossSource,
			},
			DefaultSourceTrust:        opts.DefaultSourceTrust,
			LongContentChars:          opts.LongContentChars,
			ShortContentChars:         opts.ShortContentChars,
			HighCredibilityAbove:      opts.HighCredibilityAbove,
			LowCredibilityBelow:       opts.LowCredibilityBelow,
			HighImpact:                opts.HighImpact,
			LowImpact:                 opts.LowImpact,
			FreezeCommunityWhenLocked: &freeze,
		},
		Detector: DetectorConfig{
			MinRatings:           p.MinRatings,
			SpikeWindow:          p.SpikeWindow,
			SpikeMinCount:        p.SpikeMinCount,
			SpikeFraction:        p.SpikeFraction,
			NewAccountAge:        p.NewAccountAge,
			NewAccountFraction:   p.NewAccountFraction,
			NewAccountMinRatings: p.NewAccountMinRatings,
			VarianceMinRatings:   p.VarianceMinRatings,
			VarianceThreshold:    p.VarianceThreshold,
			ExtremityMinRatings:  p.ExtremityMinRatings,
			ExtremityHigh:        p.ExtremityHigh,
			ExtremityLow:         p.ExtremityLow,
			ExtremityFraction:    p.ExtremityFraction,
			IPMinRatings:         p.IPMinRatings,
			IPFraction:           p.IPFraction,
			IPMinCount:           p.IPMinCount,
		},
	}
}
