// Пакет config — загрузка и валидация конфигурации vidgrab
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации vidgrab.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера. Большой (15m): сервер отдаёт
	// медиафайлы и ждёт завершения yt-dlp внутри запроса.
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- yt-dlp ---

	// Путь к бинарнику yt-dlp (VG_YTDLP_PATH, legacy YTDLP_PATH)
	YtdlpPath string
	// Таймаут info-вызова (--dump-json), по умолчанию 30s
	InfoTimeout time.Duration
	// Таймаут download-вызова, по умолчанию 300s
	DownloadTimeout time.Duration

	// --- Хранилище загрузок ---

	// Holding directory: медиафайлы и JSON-метаданные записей
	HoldingDir string
	// TTL записи о загрузке (фиксированная политика 24h)
	RecordTTL time.Duration
	// Интервал периодической очистки истёкших записей
	SweepInterval time.Duration

	// --- Режим развёртывания ---

	// Serverless — ограниченный режим: локальный запуск yt-dlp невозможен,
	// загрузки делегируются внешнему сервису (DelegateURL) или отклоняются.
	Serverless bool
	// DelegateURL — базовый URL внешнего downloader-сервиса (пустая строка — не настроен)
	DelegateURL string

	// --- Удалённый файловый хостинг ---

	// UploadRemote — перезаливать готовые файлы на gofile.io и отдавать redirect URL
	UploadRemote bool

	// --- Кэш метаданных ---

	// Размер LRU-кэша ответов /info
	InfoCacheSize int
	// TTL записи кэша /info
	InfoCacheTTL time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// VG_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("VG_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("VG_PORT: %w", err)
	}

	// VG_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("VG_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("VG_LOG_LEVEL: %w", err)
	}

	// VG_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("VG_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("VG_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("VG_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VG_HTTP_READ_TIMEOUT: %w", err)
	}

	cfg.HTTPWriteTimeout, err = getEnvDuration("VG_HTTP_WRITE_TIMEOUT", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("VG_HTTP_WRITE_TIMEOUT: %w", err)
	}

	cfg.HTTPIdleTimeout, err = getEnvDuration("VG_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VG_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("VG_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VG_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- yt-dlp ---

	// VG_YTDLP_PATH — путь к бинарнику (legacy-переменная YTDLP_PATH тоже работает)
	cfg.YtdlpPath = getEnvDefault("VG_YTDLP_PATH", getEnvDefault("YTDLP_PATH", "yt-dlp"))

	cfg.InfoTimeout, err = getEnvDuration("VG_INFO_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VG_INFO_TIMEOUT: %w", err)
	}

	cfg.DownloadTimeout, err = getEnvDuration("VG_DOWNLOAD_TIMEOUT", 300*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VG_DOWNLOAD_TIMEOUT: %w", err)
	}

	// --- Режим развёртывания ---

	// VG_SERVERLESS — явный флаг; иначе автоопределение по VERCEL / VERCEL_URL
	serverlessDetected := os.Getenv("VERCEL") != "" || os.Getenv("VERCEL_URL") != ""
	cfg.Serverless, err = getEnvBool("VG_SERVERLESS", serverlessDetected)
	if err != nil {
		return nil, fmt.Errorf("VG_SERVERLESS: %w", err)
	}

	// VG_DELEGATE_URL — внешний downloader-сервис для serverless-режима
	cfg.DelegateURL = strings.TrimRight(getEnvDefault("VG_DELEGATE_URL", ""), "/")

	// --- Хранилище загрузок ---

	// VG_HOLDING_DIR — каталог для медиафайлов и метаданных.
	// По умолчанию: в serverless-режиме — temp-каталог системы,
	// иначе — ./tmp/downloads относительно рабочего каталога.
	cfg.HoldingDir = getEnvDefault("VG_HOLDING_DIR", defaultHoldingDir(cfg.Serverless))

	cfg.RecordTTL, err = getEnvDuration("VG_RECORD_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("VG_RECORD_TTL: %w", err)
	}

	cfg.SweepInterval, err = getEnvDuration("VG_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("VG_SWEEP_INTERVAL: %w", err)
	}

	// --- Удалённый файловый хостинг ---

	cfg.UploadRemote, err = getEnvBool("VG_UPLOAD_REMOTE", false)
	if err != nil {
		return nil, fmt.Errorf("VG_UPLOAD_REMOTE: %w", err)
	}

	// --- Кэш метаданных ---

	cfg.InfoCacheSize, err = getEnvInt("VG_INFO_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("VG_INFO_CACHE_SIZE: %w", err)
	}

	cfg.InfoCacheTTL, err = getEnvDuration("VG_INFO_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("VG_INFO_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

// defaultHoldingDir возвращает каталог загрузок по умолчанию.
func defaultHoldingDir(serverless bool) string {
	if serverless {
		return filepath.Join(os.TempDir(), "vidgrab")
	}
	return filepath.Join("tmp", "downloads")
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
