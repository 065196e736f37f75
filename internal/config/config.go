package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kickoffhq/matchday/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// IANA zone name matches are classified against, e.g. Europe/Berlin.
	// Empty means the host's local zone.
	DisplayTimeZone string

	CORSAllowedOrigins []string

	CacheEnabled bool
	CacheTTL     time.Duration

	ScoreAPIBaseURL               string
	ScoreAPIToken                 string
	ScoreAPITimeout               time.Duration
	ScoreAPIMaxRetries            int
	ScoreAPICircuitEnabled        bool
	ScoreAPICircuitFailureCount   int
	ScoreAPICircuitOpenTimeout    time.Duration
	ScoreAPICircuitHalfOpenMaxReq int

	PollLiveInterval  time.Duration
	PollIdleInterval  time.Duration
	PollStatsInterval time.Duration
	RefreshWorkers    int

	InternalJobToken string

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	LogLevel   logging.Level
	LogConsole bool
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "matchday-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		DisplayTimeZone:    strings.TrimSpace(getEnv("DISPLAY_TIMEZONE", "")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ScoreAPIBaseURL:    strings.TrimSpace(getEnv("SCOREAPI_BASE_URL", "https://api.football-data.org/v4")),
		ScoreAPIToken:      strings.TrimSpace(getEnv("SCOREAPI_TOKEN", "")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.DisplayTimeZone != "" {
		if _, err := time.LoadLocation(cfg.DisplayTimeZone); err != nil {
			return Config{}, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", cfg.DisplayTimeZone, err)
		}
	}

	logConsole, err := strconv.ParseBool(getEnv("APP_LOG_CONSOLE", boolString(appEnv == EnvDev)))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_CONSOLE: %w", err)
	}
	cfg.LogConsole = logConsole

	cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "60s")
	if err != nil {
		return Config{}, err
	}

	cfg.ScoreAPITimeout, err = getEnvAsDuration("SCOREAPI_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	cfg.ScoreAPIMaxRetries, err = getEnvAsInt("SCOREAPI_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_MAX_RETRIES: %w", err)
	}
	if cfg.ScoreAPIMaxRetries < 0 {
		return Config{}, fmt.Errorf("SCOREAPI_MAX_RETRIES must be >= 0")
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("SCOREAPI_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_CIRCUIT_ENABLED: %w", err)
	}
	cfg.ScoreAPICircuitEnabled = circuitEnabled
	cfg.ScoreAPICircuitFailureCount, err = getEnvAsInt("SCOREAPI_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.ScoreAPICircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SCOREAPI_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cfg.ScoreAPICircuitOpenTimeout, err = getEnvAsDuration("SCOREAPI_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	cfg.ScoreAPICircuitHalfOpenMaxReq, err = getEnvAsInt("SCOREAPI_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREAPI_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.ScoreAPICircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SCOREAPI_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.PollLiveInterval, err = getEnvAsDuration("POLL_LIVE_INTERVAL", "15s")
	if err != nil {
		return Config{}, err
	}
	cfg.PollIdleInterval, err = getEnvAsDuration("POLL_IDLE_INTERVAL", "30s")
	if err != nil {
		return Config{}, err
	}
	cfg.PollStatsInterval, err = getEnvAsDuration("POLL_STATS_INTERVAL", "10m")
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshWorkers, err = getEnvAsInt("REFRESH_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_WORKERS: %w", err)
	}
	if cfg.RefreshWorkers < 1 {
		return Config{}, fmt.Errorf("REFRESH_WORKERS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofEnabled = pprofEnabled
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeEnabled = pyroscopeEnabled
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Location resolves the configured display time zone.
func (c Config) Location() (*time.Location, error) {
	if c.DisplayTimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.DisplayTimeZone)
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}

	return out, nil
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
