package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.ClassifierKind() != "none" {
		t.Fatalf("expected no classifier by default, got %s", cfg.ClassifierKind())
	}

	opts := cfg.EngineOptions()
	if opts.Weights.SourceTrust != 0.30 || opts.Weights.CrossSource != 0.15 {
		t.Fatalf("unexpected default weights %+v", opts.Weights)
	}
	if !opts.FreezeCommunityWhenLocked {
		t.Fatalf("freeze should default to true")
	}
	if opts.Detector.MinRatings != 3 {
		t.Fatalf("unexpected detector min ratings %d", opts.Detector.MinRatings)
	}
}

func TestReadFileKeepsDefaultsForMissingKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `
database:
  driver: postgres
  dsn: postgres://localhost/news
scheduler:
  enabled: false
scoring:
  weights:
    sourceTrust: 0.4
    nlp: 0.2
    community: 0.2
    crossSource: 0.2
  freezeCommunityWhenLocked: false
detector:
  spikeWindow: 30m
  minRatings: 4
`)

	cfg, err := ReadFile(path, defaultConfig())
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://localhost/news" {
		t.Fatalf("unexpected database %+v", cfg.Database)
	}
	if cfg.Scheduler.Enabled {
		t.Fatalf("scheduler should be disabled")
	}
	if cfg.Scheduler.CronExpression != "0 */6 * * *" {
		t.Fatalf("cron expression should keep default, got %q", cfg.Scheduler.CronExpression)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("log level should keep default, got %q", cfg.Logging.Level)
	}

	opts := cfg.EngineOptions()
	if opts.Weights.SourceTrust != 0.4 {
		t.Fatalf("weights not applied: %+v", opts.Weights)
	}
	if opts.FreezeCommunityWhenLocked {
		t.Fatalf("freeze override not applied")
	}
	if opts.Detector.SpikeWindow != 30*time.Minute || opts.Detector.MinRatings != 4 {
		t.Fatalf("detector overrides not applied: %+v", opts.Detector)
	}
	if opts.Detector.IPMinCount != 2 {
		t.Fatalf("untouched detector field lost its default: %d", opts.Detector.IPMinCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config should validate: %v", err)
	}
}

func TestReadFileDoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := defaultConfig()
	path := writeFile(t, "config.yaml", "scoring:\n  freezeCommunityWhenLocked: false\n")
	if _, err := ReadFile(path, base); err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !*base.Scoring.FreezeCommunityWhenLocked {
		t.Fatalf("base config was mutated")
	}
}

func TestReadFileErrors(t *testing.T) {
	t.Parallel()

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"), defaultConfig()); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := writeFile(t, "bad.yaml", "database: [unterminated")
	if _, err := ReadFile(path, defaultConfig()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, ErrUnknownDriver},
		{"unknown classifier", func(c *Config) { c.Classifier.Provider = "bert" }, ErrUnknownClassifier},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogLevel},
		{"weights do not sum to one", func(c *Config) { c.Scoring.Weights.NLP = 0.5 }, ErrInvalidWeights},
		{"negative weight", func(c *Config) {
			c.Scoring.Weights = WeightsConfig{SourceTrust: -0.5, NLP: 0.5, Community: 0.5, CrossSource: 0.5}
		}, ErrInvalidWeights},
		{"empty cron", func(c *Config) { c.Scheduler.CronExpression = " " }, ErrMissingSchedule},
		{"zero min ratings", func(c *Config) { c.Detector.MinRatings = 0 }, ErrInvalidDetector},
		{"negative fraction", func(c *Config) { c.Detector.SpikeFraction = -0.1 }, ErrInvalidDetector},
		{"fraction above one", func(c *Config) { c.Detector.IPFraction = 1.5 }, ErrInvalidDetector},
		{"negative count", func(c *Config) { c.Detector.ExtremityMinRatings = -1 }, ErrInvalidDetector},
		{"zero spike window", func(c *Config) { c.Detector.SpikeWindow = 0 }, ErrInvalidDetector},
		{"inverted extremity band", func(c *Config) {
			c.Detector.ExtremityLow, c.Detector.ExtremityHigh = 90, 10
		}, ErrInvalidDetector},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReadFileRejectsDetectorWithoutRatingGuard(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", "detector:\n  minRatings: 0\n  spikeFraction: -0.2\n")
	cfg, err := ReadFile(path, defaultConfig())
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidDetector) {
		t.Fatalf("Validate() = %v, want ErrInvalidDetector", err)
	}
}

func TestClassifierKind(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Classifier.Provider = "http"
	if cfg.ClassifierKind() != "none" {
		t.Fatalf("http without url should degrade to none")
	}
	cfg.Classifier.InferenceURL = "http://classifier:8000"
	if cfg.ClassifierKind() != "http" {
		t.Fatalf("expected http classifier")
	}

	cfg.Classifier.Provider = "openai"
	if cfg.ClassifierKind() != "none" {
		t.Fatalf("openai without key should degrade to none")
	}
	cfg.OpenAI.APIKey = "sk-test"
	if cfg.ClassifierKind() != "openai" {
		t.Fatalf("expected openai classifier")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "logging:\n  level: warn\nscheduler:\n  timezone: Europe/Berlin\n")
	envPath := writeFile(t, "test.env", "TELEGRAM_CHAT_ID=42\n")

	t.Setenv(configPathEnv, path)
	t.Setenv(envFileEnv, envPath)
	t.Setenv(databaseDSNEnv, "file:override.db")
	t.Setenv(logLevelEnv, "debug")
	t.Setenv(telegramChatIDEnv, "")
	os.Unsetenv(telegramChatIDEnv)

	cfg := Load()
	if cfg.Database.DSN != "file:override.db" {
		t.Fatalf("DSN env override not applied: %q", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("env should win over file, got %q", cfg.Logging.Level)
	}
	if cfg.Notifications.Telegram.ChatID != "42" {
		t.Fatalf("env file value not applied: %q", cfg.Notifications.Telegram.ChatID)
	}
	if cfg.Scheduler.Location().String() != "Europe/Berlin" {
		t.Fatalf("timezone not bound: %s", cfg.Scheduler.Location())
	}
}
