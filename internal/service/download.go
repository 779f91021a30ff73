// download.go — оркестратор загрузки.
// Полный pipeline: выбор format-выражения → локальный запуск yt-dlp либо
// делегирование внешнему сервису → перенос файла в holding directory →
// опциональная перезаливка на файловый хостинг → запись DownloadRecord.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/vidgrab/internal/delegateclient"
	"github.com/bigkaa/vidgrab/internal/domain/model"
	"github.com/bigkaa/vidgrab/internal/gofileclient"
	"github.com/bigkaa/vidgrab/internal/repository"
	"github.com/bigkaa/vidgrab/internal/ytdlp"
)

// Ошибки оркестратора.
var (
	// ErrServiceUnavailable — требуется делегирование, но делегат не настроен.
	ErrServiceUnavailable = errors.New("загрузка недоступна: внешний downloader-сервис не настроен")
	// ErrUploadFailed — файловый хостинг отклонил загрузку.
	ErrUploadFailed = errors.New("загрузка на файловый хостинг не удалась")
)

// Prometheus-метрики загрузок.
var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vg_downloads_total",
		Help: "Общее количество запросов загрузки (по статусу).",
	}, []string{"status"})

	downloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vg_download_duration_seconds",
		Help:    "Длительность pipeline загрузки (запрос → запись DownloadRecord).",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	activeDownloads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vg_active_downloads",
		Help: "Количество активных (in-progress) загрузок.",
	})
)

// DownloadRunner — локальный запуск загрузки через yt-dlp.
type DownloadRunner interface {
	Download(ctx context.Context, url, formatExpr, destDir string) (string, error)
}

// Uploader — перезаливка готового файла на файловый хостинг.
type Uploader interface {
	Upload(ctx context.Context, path, name string) (*gofileclient.UploadResult, error)
}

// Delegate — пересылка запроса загрузки внешнему downloader-сервису.
type Delegate interface {
	Download(ctx context.Context, req *delegateclient.Request) (*delegateclient.Result, error)
}

// DownloadRequest — входные параметры загрузки.
// Format задаёт формат явно (format_id yt-dlp); иначе выражение строится
// из пары PreferredFormat/PreferredQuality.
type DownloadRequest struct {
	URL              string `json:"url"`
	Format           string `json:"format"`
	PreferredFormat  string `json:"preferredFormat"`
	PreferredQuality string `json:"preferredQuality"`
}

// DownloadResult — ответ на запрос загрузки.
// Для локальных записей заполнены DownloadID и ExpiresAt; для перезалитых
// на хостинг — дополнительно DirectURL и FileID.
type DownloadResult struct {
	DownloadURL string     `json:"downloadUrl"`
	FileName    string     `json:"fileName"`
	DownloadID  string     `json:"downloadId,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	DirectURL   string     `json:"directUrl,omitempty"`
	FileID      string     `json:"fileId,omitempty"`
}

// DownloadService — оркестратор загрузки.
// Режим работы фиксируется при конструировании (serverless или нет) —
// глубокие слои не читают окружение сами.
type DownloadService struct {
	runner     DownloadRunner
	store      repository.RecordRepository
	uploader   Uploader // nil — перезаливка выключена
	delegate   Delegate // nil — делегат не настроен
	serverless bool
	holdingDir string
	recordTTL  time.Duration
	logger     *slog.Logger
}

// NewDownloadService создаёт оркестратор загрузки.
func NewDownloadService(
	runner DownloadRunner,
	store repository.RecordRepository,
	uploader Uploader,
	delegate Delegate,
	serverless bool,
	holdingDir string,
	recordTTL time.Duration,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		runner:     runner,
		store:      store,
		uploader:   uploader,
		delegate:   delegate,
		serverless: serverless,
		holdingDir: holdingDir,
		recordTTL:  recordTTL,
		logger:     logger.With(slog.String("component", "download_service")),
	}
}

// Download выполняет полный pipeline загрузки.
//
// Pipeline:
//  1. Валидация URL, выбор format-выражения
//  2. Serverless-режим → делегирование (или ErrServiceUnavailable);
//     иначе — локальный запуск yt-dlp в staging-каталог
//  3. Перенос файла в holding directory под новым UUID (atomic rename)
//  4. Опциональная перезаливка на gofile.io (локальный файл удаляется)
//  5. Запись DownloadRecord с ExpiresAt = now + TTL
//
// Повторов нет: единичный сбой внешнего инструмента терминален для запроса.
func (s *DownloadService) Download(ctx context.Context, req *DownloadRequest) (*DownloadResult, error) {
	start := time.Now()
	activeDownloads.Inc()
	defer activeDownloads.Dec()

	if err := ValidateURL(req.URL); err != nil {
		downloadsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	formatExpr := req.Format
	if formatExpr == "" {
		formatExpr = ytdlp.BuildFormatExpr(req.PreferredFormat, req.PreferredQuality)
	}

	var result *DownloadResult
	var err error
	if s.serverless {
		result, err = s.runDelegated(ctx, req)
	} else {
		result, err = s.runLocal(ctx, req.URL, formatExpr)
	}
	if err != nil {
		return nil, err
	}

	downloadsTotal.WithLabelValues("success").Inc()
	downloadDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("Загрузка завершена",
		slog.String("url", req.URL),
		slog.String("file_name", result.FileName),
		slog.Bool("remote", result.DirectURL != ""),
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// runDelegated пересылает запрос внешнему downloader-сервису.
// Локальный запуск в serverless-режиме не предпринимается никогда.
func (s *DownloadService) runDelegated(ctx context.Context, req *DownloadRequest) (*DownloadResult, error) {
	if s.delegate == nil {
		downloadsTotal.WithLabelValues("unavailable").Inc()
		return nil, ErrServiceUnavailable
	}

	res, err := s.delegate.Download(ctx, &delegateclient.Request{
		URL:              req.URL,
		Format:           req.Format,
		PreferredFormat:  req.PreferredFormat,
		PreferredQuality: req.PreferredQuality,
	})
	if err != nil {
		downloadsTotal.WithLabelValues("delegate_error").Inc()
		return nil, fmt.Errorf("делегирование загрузки: %w", err)
	}

	// Делегат уже разместил артефакт на хостинге — локального файла нет
	if res.DirectURL != "" {
		return s.storeRemote(ctx, res.DirectURL, res.FileName, res.MediaType, "")
	}

	return s.place(ctx, res.FilePath)
}

// runLocal запускает yt-dlp в staging-подкаталог holding directory.
// Staging внутри holding directory гарантирует атомарность rename
// (одна файловая система).
func (s *DownloadService) runLocal(ctx context.Context, url, formatExpr string) (*DownloadResult, error) {
	staging, err := os.MkdirTemp(s.holdingDir, "staging-*")
	if err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("создание staging-каталога: %w", err)
	}
	defer os.RemoveAll(staging)

	path, err := s.runner.Download(ctx, url, formatExpr, staging)
	if err != nil {
		downloadsTotal.WithLabelValues("tool_error").Inc()
		return nil, err
	}

	return s.place(ctx, path)
}

// place переносит готовый файл в holding directory под новым UUID,
// опционально перезаливает на хостинг и записывает DownloadRecord.
// При любом сбое после появления локального файла файл удаляется
// best-effort перед возвратом ошибки.
func (s *DownloadService) place(ctx context.Context, producedPath string) (*DownloadResult, error) {
	fileName := filepath.Base(producedPath)
	id := uuid.NewString()
	dest := filepath.Join(s.holdingDir, id+filepath.Ext(producedPath))

	if err := os.Rename(producedPath, dest); err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		s.removeProduced(producedPath)
		return nil, fmt.Errorf("перенос файла в holding directory: %w", err)
	}

	// Тегирование mp3 — best effort, сбой не прерывает pipeline
	if strings.EqualFold(filepath.Ext(fileName), ".mp3") {
		s.tagAudio(dest, strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	}

	if s.uploader != nil {
		up, err := s.uploader.Upload(ctx, dest, fileName)
		if err != nil {
			downloadsTotal.WithLabelValues("upload_error").Inc()
			s.removeProduced(dest)
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		// Локальная копия больше не нужна — клиентов обслуживает хостинг
		s.removeProduced(dest)
		return s.storeRemote(ctx, up.DownloadPage, fileName, "", up.FileID)
	}

	record := &model.DownloadRecord{
		ID:        id,
		FileName:  fileName,
		Location:  dest,
		Remote:    false,
		MediaType: repository.MediaTypeFor(fileName),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.recordTTL),
	}

	if err := s.store.Put(ctx, record); err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		s.removeProduced(dest)
		return nil, fmt.Errorf("сохранение записи о загрузке: %w", err)
	}

	expiresAt := record.ExpiresAt
	return &DownloadResult{
		DownloadURL: "/api/v1/files/" + record.ID,
		FileName:    record.FileName,
		DownloadID:  record.ID,
		ExpiresAt:   &expiresAt,
	}, nil
}

// storeRemote записывает DownloadRecord с удалённым URL.
func (s *DownloadService) storeRemote(ctx context.Context, directURL, fileName, mediaType, fileID string) (*DownloadResult, error) {
	if mediaType == "" {
		mediaType = repository.MediaTypeFor(fileName)
	}

	record := &model.DownloadRecord{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Location:  directURL,
		Remote:    true,
		MediaType: mediaType,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.recordTTL),
	}

	if err := s.store.Put(ctx, record); err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("сохранение записи о загрузке: %w", err)
	}

	return &DownloadResult{
		DownloadURL: "/api/v1/files/" + record.ID,
		FileName:    fileName,
		DirectURL:   directURL,
		FileID:      fileID,
	}, nil
}

// removeProduced удаляет локальный файл best-effort.
// Ошибка удаления логируется и не эскалируется.
func (s *DownloadService) removeProduced(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Не удалось удалить файл после сбоя pipeline",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
