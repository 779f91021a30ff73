// serve.go — сервис выдачи скачанных файлов.
// Pipeline: DownloadRecord (store) → redirect на хостинг либо streaming
// локального файла с корректными заголовками.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/vidgrab/internal/repository"
)

// Prometheus-метрики выдачи файлов.
var (
	servesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vg_file_serves_total",
		Help: "Общее количество запросов выдачи файлов (по статусу).",
	}, []string{"status"})

	serveBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vg_file_serve_bytes_total",
		Help: "Общее количество байт, отданных при выдаче локальных файлов.",
	})
)

// ServeService — сервис выдачи скачанных файлов по идентификатору записи.
type ServeService struct {
	store  repository.RecordRepository
	logger *slog.Logger
}

// NewServeService создаёт сервис выдачи файлов.
func NewServeService(store repository.RecordRepository, logger *slog.Logger) *ServeService {
	return &ServeService{
		store:  store,
		logger: logger.With(slog.String("component", "serve_service")),
	}
}

// Serve выдаёт файл записи id в ResponseWriter.
//
// Поведение по записи:
//   - запись не найдена → repository.ErrNotFound
//   - запись истекла → repository.ErrGone (файл и запись уже удалены)
//   - Remote → 302 redirect на удалённый URL
//   - локальная → streaming файла с Content-Type, Content-Disposition
//     (attachment) и запретом кэширования
//
// Ошибка после отправки заголовков логируется и не возвращается клиенту.
func (s *ServeService) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) error {
	start := time.Now()

	record, err := s.store.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			servesTotal.WithLabelValues("not_found").Inc()
		case errors.Is(err, repository.ErrGone):
			servesTotal.WithLabelValues("gone").Inc()
		default:
			servesTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	// Удалённая запись — клиента обслуживает файловый хостинг
	if record.Remote {
		servesTotal.WithLabelValues("redirect").Inc()
		http.Redirect(w, r, record.Location, http.StatusFound)
		return nil
	}

	file, err := os.Open(record.Location)
	if err != nil {
		// Запись есть, файла нет — рассинхронизация store и диска
		if os.IsNotExist(err) {
			s.logger.Warn("Файл записи отсутствует на диске",
				slog.String("id", id),
				slog.String("path", record.Location),
			)
			servesTotal.WithLabelValues("not_found").Inc()
			return repository.ErrNotFound
		}
		servesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("открытие файла %s: %w", record.Location, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		servesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("stat файла %s: %w", record.Location, err)
	}

	w.Header().Set("Content-Type", record.MediaType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", stat.Size()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, file)
	if err != nil {
		// Ошибка при streaming — заголовки уже отправлены, логируем
		s.logger.Error("Ошибка streaming файла",
			slog.String("id", id),
			slog.Int64("bytes_written", written),
			slog.String("error", err.Error()),
		)
		servesTotal.WithLabelValues("stream_error").Inc()
		return nil
	}

	servesTotal.WithLabelValues("success").Inc()
	serveBytesTotal.Add(float64(written))

	s.logger.Debug("Файл выдан",
		slog.String("id", id),
		slog.String("file_name", record.FileName),
		slog.Int64("bytes", written),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}
