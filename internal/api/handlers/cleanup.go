// cleanup.go — обработчик GET /api/v1/cleanup.
// Ручной запуск очистки истёкших записей (дополнение к фоновой очистке).
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/vidgrab/internal/api/errors"
)

// cleanupResponse — ответ GET /api/v1/cleanup.
type cleanupResponse struct {
	Message   string `json:"message"`
	Deleted   int    `json:"deleted"`
	Timestamp string `json:"timestamp"`
}

// Cleanup — реализация GET /api/v1/cleanup.
func (h *APIHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.SweepExpired(r.Context())
	if err != nil {
		h.logger.Error("Ошибка ручной очистки", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Очистка не удалась")
		return
	}

	writeJSON(w, http.StatusOK, cleanupResponse{
		Message:   "Cleanup completed",
		Deleted:   deleted,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
