package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the bot process.
type Config struct {
	Port         string
	HTTP         HTTPConfig
	LeagueID     string
	Source       string
	Kickbase     KickbaseConfig
	Intervals    IntervalConfig
	ChatPageSize int
	Storage      StorageConfig
	Retry        RetryConfig
	Metrics      MetricsConfig
	Notify       NotifyConfig
	Log          LogConfig
}

// KickbaseConfig holds the account the bot logs in with.
type KickbaseConfig struct {
	Username string
	Password string
	BaseURL  string
}

// HTTPConfig bounds the status API and metrics listeners.
type HTTPConfig struct {
	ReadTimeout     Duration
	WriteTimeout    Duration
	IdleTimeout     Duration
	ShutdownTimeout Duration
}

// IntervalConfig is the pause after each poll cycle, per stream.
type IntervalConfig struct {
	Feed   Duration
	Chat   Duration
	Market Duration
}

// StorageConfig selects and configures the document store.
type StorageConfig struct {
	Backend             string
	FirestoreProjectID  string
	FirebaseCredentials string // base64 encoded service account JSON
	CredentialsFile     string
	SQLitePath          string
}

// RetryConfig bounds retries of a single upstream call.
type RetryConfig struct {
	Attempts int
	Backoff  Duration
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:     envOrDefault(envPort, defaultPort),
		HTTP: HTTPConfig{
			ReadTimeout:     durationEnvOrDefault(envHTTPRead, defaultHTTPRead),
			WriteTimeout:    durationEnvOrDefault(envHTTPWrite, defaultHTTPWrite),
			IdleTimeout:     durationEnvOrDefault(envHTTPIdle, defaultHTTPIdle),
			ShutdownTimeout: durationEnvOrDefault(envShutdown, defaultShutdown),
		},
		LeagueID: envOrDefault(envLeagueID, ""),
		Source:   strings.ToLower(envOrDefault(envSource, defaultSource)),
		Kickbase: KickbaseConfig{
			Username: envOrDefault(envKbUsername, ""),
			Password: envOrDefault(envKbPassword, ""),
			BaseURL:  envOrDefault(envKbBaseURL, ""),
		},
		Intervals: IntervalConfig{
			Feed:   durationEnvOrDefault(envFeedInterval, defaultFeedInterval),
			Chat:   durationEnvOrDefault(envChatInterval, defaultChatInterval),
			Market: durationEnvOrDefault(envMarketEvery, defaultMarketInterval),
		},
		ChatPageSize: intEnvOrDefault(envChatPageSize, defaultChatPageSize),
		Storage: StorageConfig{
			Backend:             strings.ToLower(envOrDefault(envStorageBackend, defaultBackend)),
			FirestoreProjectID:  envOrDefault(envFirestoreProj, ""),
			FirebaseCredentials: envOrDefault(envFirebaseCreds, ""),
			CredentialsFile:     envOrDefault(envFirebaseCredsFn, ""),
			SQLitePath:          envOrDefault(envSQLitePath, defaultSQLitePath),
		},
		Retry: RetryConfig{
			Attempts: intEnvOrDefault(envRetryAttempts, defaultRetryAttempts),
			Backoff:  durationEnvOrDefault(envRetryBackoff, defaultRetryBackoff),
		},
		Metrics: loadMetrics(),
		Notify:  loadNotify(),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
	}
}

// LoadDotEnv loads variables from the given .env files (default ./.env) without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Validate reports every setting the process cannot start with.
func (c Config) Validate() error {
	var problems []string
	if c.LeagueID == "" {
		problems = append(problems, envLeagueID+" is required")
	}

	switch c.Source {
	case SourceKickbase:
		if c.Kickbase.Username == "" || c.Kickbase.Password == "" {
			problems = append(problems, envKbUsername+" and "+envKbPassword+" are required for the kickbase source")
		}
	case SourceFixture:
	default:
		problems = append(problems, fmt.Sprintf("unknown %s %q", envSource, c.Source))
	}

	switch c.Storage.Backend {
	case BackendFirestore:
		if c.Storage.FirestoreProjectID == "" {
			problems = append(problems, envFirestoreProj+" is required for the firestore backend")
		}
		if _, err := c.Storage.CredentialsJSON(); err != nil {
			problems = append(problems, err.Error())
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			problems = append(problems, envSQLitePath+" is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown %s %q", envStorageBackend, c.Storage.Backend))
	}

	problems = append(problems, c.Metrics.problems(c.Port)...)

	if c.Notify.DiscordWebhookID != "" && c.Notify.DiscordWebhookToken == "" {
		problems = append(problems, envDiscordToken+" is required with "+envDiscordID)
	}
	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == 0 {
		problems = append(problems, envTelegramChatID+" must be a non-zero chat id with "+envTelegramToken)
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CredentialsJSON decodes the base64 service account, if one is set.
func (s StorageConfig) CredentialsJSON() ([]byte, error) {
	raw := strings.TrimSpace(s.FirebaseCredentials)
	if raw == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %v", envFirebaseCreds, err)
	}
	return data, nil
}
