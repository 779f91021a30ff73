// main.go — точка входа vidgrab.
// Сборка зависимостей: config → logger → store → yt-dlp runner → клиенты →
// сервисы → handlers → HTTP-сервер + фоновая очистка.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/bigkaa/vidgrab/internal/api/handlers"
	"github.com/bigkaa/vidgrab/internal/api/middleware"
	"github.com/bigkaa/vidgrab/internal/config"
	"github.com/bigkaa/vidgrab/internal/delegateclient"
	"github.com/bigkaa/vidgrab/internal/gofileclient"
	"github.com/bigkaa/vidgrab/internal/repository"
	"github.com/bigkaa/vidgrab/internal/server"
	"github.com/bigkaa/vidgrab/internal/service"
	"github.com/bigkaa/vidgrab/internal/ytdlp"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("vidgrab запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.Bool("serverless", cfg.Serverless),
	)

	// 3. Файловое хранилище записей о загрузках
	store, err := repository.NewFileStore(cfg.HoldingDir, logger)
	if err != nil {
		log.Fatalf("Ошибка инициализации хранилища: %v", err)
	}

	// 4. Запуск yt-dlp
	runner := ytdlp.NewRunner(cfg.YtdlpPath, cfg.InfoTimeout, cfg.DownloadTimeout, logger)

	// 5. Внешние клиенты (опциональные)
	var uploader service.Uploader
	if cfg.UploadRemote {
		uploader = gofileclient.New("", 0, logger)
	}

	var delegate service.Delegate
	if cfg.DelegateURL != "" {
		delegate = delegateclient.New(cfg.DelegateURL, logger)
	}

	// 6. Сервисный слой
	cache := service.NewCacheService(cfg.InfoCacheSize, cfg.InfoCacheTTL)
	infoService := service.NewInfoService(runner, cache, logger)
	downloadService := service.NewDownloadService(
		runner, store, uploader, delegate,
		cfg.Serverless, cfg.HoldingDir, cfg.RecordTTL, logger,
	)
	serveService := service.NewServeService(store, logger)

	// 7. Health handler
	healthHandler := handlers.NewHealthHandler(
		service.NewToolChecker(cfg.YtdlpPath),
		service.NewStorageChecker(cfg.HoldingDir),
	)

	// 8. API handler
	apiHandler := handlers.NewAPIHandler(
		infoService, downloadService, serveService, store,
		healthHandler, cfg.Serverless, logger,
	)

	// 9. Фоновая очистка истёкших записей
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	service.StartSweeper(sweepCtx, store, cfg.SweepInterval, logger)

	// 10. HTTP-сервер с middleware (метрики, логирование)
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 11. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		log.Fatalf("Сервер завершился с ошибкой: %v", err)
	}

	logger.Info("vidgrab остановлен")
}
