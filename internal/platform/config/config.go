package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	DBDriver     string
	DatabaseDSN  string
	KafkaBrokers []string
	JWTSecret    string
	LogLevel     string

	OutboxPollInterval    time.Duration
	EnableReviewReminders bool
	BootstrapAdminEmail   string
	BootstrapAdminName    string

	Policy EditorialPolicy
}

// EditorialPolicy holds the tunable workflow constants. It is read from the
// YAML file named by EDITORIAL_POLICY_FILE when one is set.
type EditorialPolicy struct {
	ReviewPeriod       time.Duration
	ReminderLeadTime   time.Duration
	DOIPrefix          string
	AutoAssignAttempts int
	IdempotencyTTL     time.Duration
}

type policyFile struct {
	ReviewPeriod       string `yaml:"review_period"`
	ReminderLeadTime   string `yaml:"reminder_lead_time"`
	DOIPrefix          string `yaml:"doi_prefix"`
	AutoAssignAttempts int    `yaml:"auto_assign_attempts"`
	IdempotencyTTL     string `yaml:"idempotency_ttl"`
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

func DefaultPolicy() EditorialPolicy {
	return EditorialPolicy{
		ReviewPeriod:       4 * 7 * 24 * time.Hour,
		ReminderLeadTime:   72 * time.Hour,
		DOIPrefix:          "10.5555",
		AutoAssignAttempts: 3,
		IdempotencyTTL:     7 * 24 * time.Hour,
	}
}

func Load() (Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ijaism"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = DriverPostgres
	}
	switch driver {
	case DriverPostgres, DriverMySQL, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = os.Getenv("POSTGRES_DSN")
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	pollInterval, err := envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}

	policy, err := LoadPolicy(os.Getenv("EDITORIAL_POLICY_FILE"))
	if err != nil {
		return Config{}, err
	}

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		DBDriver:     driver,
		DatabaseDSN:  dsn,
		KafkaBrokers: brokers,
		JWTSecret:    os.Getenv("JWT_SECRET"),
		LogLevel:     logLevel,

		OutboxPollInterval:    pollInterval,
		EnableReviewReminders: envBool("ENABLE_REVIEW_REMINDERS", true),
		BootstrapAdminEmail:   strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
		BootstrapAdminName:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_NAME")),

		Policy: policy,
	}, nil
}

// LoadPolicy reads the editorial policy file. An empty path yields the
// defaults; fields left out of the file keep their default values.
func LoadPolicy(path string) (EditorialPolicy, error) {
	policy := DefaultPolicy()
	path = strings.TrimSpace(path)
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return EditorialPolicy{}, fmt.Errorf("read editorial policy: %w", err)
	}
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return EditorialPolicy{}, fmt.Errorf("parse editorial policy: %w", err)
	}

	if policy.ReviewPeriod, err = overrideDuration("review_period", file.ReviewPeriod, policy.ReviewPeriod); err != nil {
		return EditorialPolicy{}, err
	}
	if policy.ReminderLeadTime, err = overrideDuration("reminder_lead_time", file.ReminderLeadTime, policy.ReminderLeadTime); err != nil {
		return EditorialPolicy{}, err
	}
	if policy.IdempotencyTTL, err = overrideDuration("idempotency_ttl", file.IdempotencyTTL, policy.IdempotencyTTL); err != nil {
		return EditorialPolicy{}, err
	}
	if prefix := strings.TrimSpace(file.DOIPrefix); prefix != "" {
		policy.DOIPrefix = prefix
	}
	if file.AutoAssignAttempts < 0 {
		return EditorialPolicy{}, errors.New("editorial policy: auto_assign_attempts must not be negative")
	}
	if file.AutoAssignAttempts > 0 {
		policy.AutoAssignAttempts = file.AutoAssignAttempts
	}
	return policy, nil
}

func overrideDuration(name string, raw string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("editorial policy: %s: %w", name, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("editorial policy: %s must be positive", name)
	}
	return parsed, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", name)
	}
	return parsed, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
