// Пакет config — загрузка и валидация конфигурации Admin Module
// системы фрод-мониторинга FinShield из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Допустимые типы бэкенда документного хранилища.
const (
	DocstoreFirestore = "firestore"
	DocstorePostgres  = "postgres"
	DocstoreMemory    = "memory"
)

// Config содержит все параметры конфигурации Admin Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (диапазон 8040-8049)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- Документное хранилище ---

	// Тип бэкенда: firestore, postgres, memory
	Docstore string
	// GCP project ID (обязателен для firestore)
	FirestoreProjectID string
	// Путь к файлу credentials (пустая строка — Application Default Credentials)
	FirestoreCredentials string

	// --- PostgreSQL (для бэкенда postgres) ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- Кэш единичных записей ---

	// Максимальное количество записей в LRU-кэше
	CacheSize int
	// TTL записи кэша
	CacheTTL time.Duration

	// --- Координатор коллекций ---

	// Окно debounce для поискового фильтра (по умолчанию 500ms)
	SearchDebounce time.Duration
	// Размер страницы по умолчанию
	DefaultPageSize int

	// --- JWT (опционально, пустой AM_JWKS_URL отключает auth) ---

	JWKSURL             string
	JWTIssuer           string
	AdminGroups         []string
	ReadonlyGroups      []string
	JWKSClientTimeout   time.Duration
	JWKSRefreshInterval time.Duration
	JWTLeeway           time.Duration
	CACertPath          string

	// --- Dephealth (topologymetrics) ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
	DephealthIsEntry       bool
	// URL внешнего risk-scoring engine (пустая строка — не мониторится)
	RiskEngineURL string
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// AM_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("AM_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("AM_PORT: %w", err)
	}

	// AM_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("AM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("AM_LOG_LEVEL: %w", err)
	}

	// AM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("AM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("AM_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("AM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AM_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("AM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AM_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("AM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// AM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("AM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AM_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Документное хранилище ---

	// AM_DOCSTORE — тип бэкенда (по умолчанию firestore)
	cfg.Docstore = getEnvDefault("AM_DOCSTORE", DocstoreFirestore)
	switch cfg.Docstore {
	case DocstoreFirestore, DocstorePostgres, DocstoreMemory:
	default:
		return nil, fmt.Errorf("AM_DOCSTORE: недопустимое значение %q, допустимые: firestore, postgres, memory", cfg.Docstore)
	}

	if cfg.Docstore == DocstoreFirestore {
		// AM_FIRESTORE_PROJECT_ID — обязателен для firestore
		cfg.FirestoreProjectID, err = getEnvRequired("AM_FIRESTORE_PROJECT_ID")
		if err != nil {
			return nil, err
		}
		cfg.FirestoreCredentials = getEnvDefault("AM_FIRESTORE_CREDENTIALS", "")
	}

	if cfg.Docstore == DocstorePostgres {
		cfg.DBHost, err = getEnvRequired("AM_DB_HOST")
		if err != nil {
			return nil, err
		}
		cfg.DBPort, err = getEnvInt("AM_DB_PORT", 5432)
		if err != nil {
			return nil, fmt.Errorf("AM_DB_PORT: %w", err)
		}
		cfg.DBName, err = getEnvRequired("AM_DB_NAME")
		if err != nil {
			return nil, err
		}
		cfg.DBUser, err = getEnvRequired("AM_DB_USER")
		if err != nil {
			return nil, err
		}
		cfg.DBPassword, err = getEnvRequired("AM_DB_PASSWORD")
		if err != nil {
			return nil, err
		}
		cfg.DBSSLMode = getEnvDefault("AM_DB_SSLMODE", "disable")
	}

	// --- Кэш единичных записей ---

	cfg.CacheSize, err = getEnvInt("AM_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("AM_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("AM_CACHE_SIZE: значение должно быть >= 1")
	}
	cfg.CacheTTL, err = getEnvDuration("AM_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AM_CACHE_TTL: %w", err)
	}

	// --- Координатор коллекций ---

	cfg.SearchDebounce, err = getEnvDuration("AM_SEARCH_DEBOUNCE", 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("AM_SEARCH_DEBOUNCE: %w", err)
	}
	cfg.DefaultPageSize, err = getEnvInt("AM_DEFAULT_PAGE_SIZE", 10)
	if err != nil {
		return nil, fmt.Errorf("AM_DEFAULT_PAGE_SIZE: %w", err)
	}
	if cfg.DefaultPageSize < 1 {
		return nil, fmt.Errorf("AM_DEFAULT_PAGE_SIZE: значение должно быть >= 1")
	}

	// --- JWT ---

	// AM_JWKS_URL — URL JWKS endpoint Keycloak.
	// Пустое значение отключает JWT-аутентификацию (dev/demo режим).
	cfg.JWKSURL = getEnvDefault("AM_JWKS_URL", "")
	cfg.JWTIssuer = getEnvDefault("AM_JWT_ISSUER", "")
	cfg.AdminGroups = splitCSV(getEnvDefault("AM_ADMIN_GROUPS", "/finshield-admins"))
	cfg.ReadonlyGroups = splitCSV(getEnvDefault("AM_READONLY_GROUPS", "/finshield-analysts"))
	cfg.JWKSClientTimeout, err = getEnvDuration("AM_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AM_JWKS_CLIENT_TIMEOUT: %w", err)
	}
	cfg.JWKSRefreshInterval, err = getEnvDuration("AM_JWKS_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AM_JWKS_REFRESH_INTERVAL: %w", err)
	}
	cfg.JWTLeeway, err = getEnvDuration("AM_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AM_JWT_LEEWAY: %w", err)
	}
	cfg.CACertPath = getEnvDefault("AM_CA_CERT_PATH", "")

	// --- Dephealth ---

	cfg.DephealthGroup = getEnvDefault("AM_DEPHEALTH_GROUP", "finshield")
	cfg.DephealthCheckInterval, err = getEnvDuration("AM_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthIsEntry, err = getEnvBool("DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("DEPHEALTH_ISENTRY: %w", err)
	}
	cfg.RiskEngineURL = getEnvDefault("AM_RISK_ENGINE_URL", "")

	return cfg, nil
}

// DatabaseDSN возвращает DSN подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// MigrateURL возвращает URL подключения для golang-migrate (драйвер pgx5).
func (c *Config) MigrateURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// splitCSV разбивает строку по запятым, отбрасывая пустые элементы.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
