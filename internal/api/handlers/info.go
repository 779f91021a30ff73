// info.go — обработчик POST /api/v1/info.
// Метаданные видео с нормализованным списком форматов.
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

// infoRequest — тело запроса POST /api/v1/info.
type infoRequest struct {
	URL string `json:"url"`
}

// GetInfo — реализация POST /api/v1/info.
func (h *APIHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}

	info, err := h.info.GetInfo(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, ytdlp.ErrEmptyOutput):
			apierrors.WriteError(w, http.StatusBadGateway, "EMPTY_OUTPUT",
				"Инструмент не вернул метаданных для этого URL")
		default:
			h.logger.Error("Ошибка получения метаданных",
				slog.String("url", req.URL),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, info)
}
