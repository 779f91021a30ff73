// file.go — обработчик GET /api/v1/files/{id}.
// Выдача скачанного файла: redirect на хостинг либо streaming с диска.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/vidgrab/internal/api/errors"
	"github.com/bigkaa/vidgrab/internal/repository"
)

// ServeFile — реализация GET /api/v1/files/{id}.
func (h *APIHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.ValidationError(w, "Идентификатор файла не задан")
		return
	}

	err := h.serve.Serve(r.Context(), w, r, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			apierrors.NotFound(w, "Файл не найден")
		case errors.Is(err, repository.ErrGone):
			apierrors.Gone(w, "Срок хранения файла истёк")
		default:
			h.logger.Error("Ошибка выдачи файла",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, "Внутренняя ошибка при выдаче файла")
		}
	}
}
