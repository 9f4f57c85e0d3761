package config

import "time"

const (
	envPort         = "PORT"
	envHTTPRead     = "HTTP_READ_TIMEOUT"
	envHTTPWrite    = "HTTP_WRITE_TIMEOUT"
	envHTTPIdle     = "HTTP_IDLE_TIMEOUT"
	envShutdown     = "SHUTDOWN_TIMEOUT"
	envLeagueID     = "LEAGUE_ID"
	envSource       = "SOURCE"
	envKbUsername   = "KICKBASE_USERNAME"
	envKbPassword   = "KICKBASE_PASSWORD"
	envKbBaseURL    = "KICKBASE_BASE_URL"
	envFeedInterval = "FEED_INTERVAL"
	envChatInterval = "CHAT_INTERVAL"
	envMarketEvery  = "MARKET_INTERVAL"
	envChatPageSize = "CHAT_PAGE_SIZE"

	envStorageBackend  = "STORAGE_BACKEND"
	envFirestoreProj   = "FIRESTORE_PROJECT_ID"
	envFirebaseCreds   = "FIREBASE_CREDENTIALS"
	envFirebaseCredsFn = "FIREBASE_CREDENTIALS_FILE"
	envSQLitePath      = "SQLITE_PATH"

	envRetryAttempts = "SOURCE_RETRY_ATTEMPTS"
	envRetryBackoff  = "SOURCE_RETRY_BACKOFF"

	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	envNATSURL        = "NATS_URL"
	envNATSPrefix     = "NATS_SUBJECT_PREFIX"
	envDiscordID      = "DISCORD_WEBHOOK_ID"
	envDiscordToken   = "DISCORD_WEBHOOK_TOKEN"
	envTelegramToken  = "TELEGRAM_BOT_TOKEN"
	envTelegramChatID = "TELEGRAM_CHAT_ID"

	envLogLevel  = "LOG_LEVEL"
	envLogFormat = "LOG_FORMAT"

	defaultPort      = "4000"
	defaultHTTPRead  = 10 * Duration(time.Second)
	defaultHTTPWrite = 10 * Duration(time.Second)
	defaultHTTPIdle  = 60 * Duration(time.Second)
	defaultShutdown  = 10 * Duration(time.Second)

	// Kickbase tolerates a request every few seconds per stream; chat is the chattiest.
	defaultFeedInterval   = 15 * Duration(time.Second)
	defaultChatInterval   = 5 * Duration(time.Second)
	defaultMarketInterval = 60 * Duration(time.Second)
	defaultChatPageSize   = 100
	defaultSource         = SourceKickbase
	defaultBackend        = BackendFirestore
	defaultSQLitePath     = "./data/league-watch.db"
	defaultRetryAttempts  = 3
	defaultRetryBackoff   = 200 * Duration(time.Millisecond)
	defaultMetricsPort    = "9090"
	defaultServiceName    = "league-watch"
	defaultNATSPrefix     = "leaguewatch"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
)

// Source names.
const (
	SourceKickbase = "kickbase"
	SourceFixture  = "fixture"
)

// Storage backend names.
const (
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
)
