package config

import (
	"log/slog"
	"testing"
	"time"
)

// TestLoad_Defaults проверяет значения по умолчанию.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидался 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидался info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидался json", cfg.LogFormat)
	}
	if cfg.YtdlpPath != "yt-dlp" {
		t.Errorf("YtdlpPath = %q, ожидался yt-dlp", cfg.YtdlpPath)
	}
	if cfg.InfoTimeout != 30*time.Second {
		t.Errorf("InfoTimeout = %v, ожидался 30s", cfg.InfoTimeout)
	}
	if cfg.DownloadTimeout != 300*time.Second {
		t.Errorf("DownloadTimeout = %v, ожидался 300s", cfg.DownloadTimeout)
	}
	if cfg.RecordTTL != 24*time.Hour {
		t.Errorf("RecordTTL = %v, ожидался 24h", cfg.RecordTTL)
	}
	if cfg.SweepInterval != time.Hour {
		t.Errorf("SweepInterval = %v, ожидался 1h", cfg.SweepInterval)
	}
	if cfg.UploadRemote {
		t.Error("UploadRemote = true, ожидался false")
	}
}

// TestLoad_EnvOverrides проверяет чтение переменных окружения.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VG_PORT", "9090")
	t.Setenv("VG_LOG_LEVEL", "debug")
	t.Setenv("VG_LOG_FORMAT", "text")
	t.Setenv("VG_YTDLP_PATH", "/usr/local/bin/yt-dlp")
	t.Setenv("VG_RECORD_TTL", "1h")
	t.Setenv("VG_DELEGATE_URL", "https://dl.example.com/")
	t.Setenv("VG_UPLOAD_REMOTE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидался 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидался debug", cfg.LogLevel)
	}
	if cfg.YtdlpPath != "/usr/local/bin/yt-dlp" {
		t.Errorf("YtdlpPath = %q", cfg.YtdlpPath)
	}
	if cfg.RecordTTL != time.Hour {
		t.Errorf("RecordTTL = %v, ожидался 1h", cfg.RecordTTL)
	}
	// Завершающий слэш срезается
	if cfg.DelegateURL != "https://dl.example.com" {
		t.Errorf("DelegateURL = %q", cfg.DelegateURL)
	}
	if !cfg.UploadRemote {
		t.Error("UploadRemote = false, ожидался true")
	}
}

// TestLoad_LegacyYtdlpPath проверяет fallback на YTDLP_PATH.
func TestLoad_LegacyYtdlpPath(t *testing.T) {
	t.Setenv("YTDLP_PATH", "/opt/yt-dlp")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.YtdlpPath != "/opt/yt-dlp" {
		t.Errorf("YtdlpPath = %q, ожидался /opt/yt-dlp", cfg.YtdlpPath)
	}
}

// TestLoad_ServerlessAutoDetect проверяет автоопределение по VERCEL.
func TestLoad_ServerlessAutoDetect(t *testing.T) {
	t.Setenv("VERCEL", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Serverless {
		t.Error("Serverless = false, ожидался true при VERCEL=1")
	}

	// Явный флаг важнее автоопределения
	t.Setenv("VG_SERVERLESS", "false")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serverless {
		t.Error("Serverless = true, явный VG_SERVERLESS=false важнее")
	}
}

// TestLoad_InvalidValues проверяет ошибки валидации.
func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"нечисловой порт", "VG_PORT", "abc"},
		{"неизвестный уровень логирования", "VG_LOG_LEVEL", "verbose"},
		{"неизвестный формат логов", "VG_LOG_FORMAT", "xml"},
		{"некорректная длительность", "VG_RECORD_TTL", "1 day"},
		{"некорректный bool", "VG_SERVERLESS", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load с %s=%q: ожидалась ошибка", tt.key, tt.value)
			}
		})
	}
}

// TestParseLogLevel проверяет разбор уровней логирования.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if err != nil {
			t.Errorf("parseLogLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, ожидался %v", tt.in, got, tt.want)
		}
	}
	if _, err := parseLogLevel("trace"); err == nil {
		t.Error("parseLogLevel(trace): ожидалась ошибка")
	}
}
