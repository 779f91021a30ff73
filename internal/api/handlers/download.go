// download.go — обработчик POST /api/v1/download.
// Запуск полного pipeline загрузки: yt-dlp либо делегат, затем store.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/vidgrab/internal/api/errors"
	"github.com/bigkaa/vidgrab/internal/service"
	"github.com/bigkaa/vidgrab/internal/ytdlp"
)

// Download — реализация POST /api/v1/download.
func (h *APIHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req service.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}

	result, err := h.download.Download(r.Context(), &req)
	if err != nil {
		var timeoutErr *ytdlp.TimeoutError
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrServiceUnavailable):
			apierrors.ServiceUnavailable(w,
				"Загрузка в этом окружении недоступна: downloader-сервис не настроен")
		case errors.As(err, &timeoutErr):
			apierrors.WriteError(w, http.StatusGatewayTimeout, "TIMEOUT",
				"Загрузка превысила допустимое время")
		default:
			h.logger.Error("Ошибка загрузки",
				slog.String("url", req.URL),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
