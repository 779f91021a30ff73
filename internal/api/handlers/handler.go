// handler.go — основной обработчик API vidgrab.
// Объединяет health и бизнес-обработчики, делегируя запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/vidgrab/internal/repository"
	"github.com/bigkaa/vidgrab/internal/service"
)

// APIHandler — основной обработчик API vidgrab.
type APIHandler struct {
	info       *service.InfoService
	download   *service.DownloadService
	serve      *service.ServeService
	store      repository.RecordRepository
	health     *HealthHandler
	serverless bool
	logger     *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	info *service.InfoService,
	download *service.DownloadService,
	serve *service.ServeService,
	store repository.RecordRepository,
	health *HealthHandler,
	serverless bool,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		info:       info,
		download:   download,
		serve:      serve,
		store:      store,
		health:     health,
		serverless: serverless,
		logger:     logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
