// tags.go — простановка ID3-тегов для mp3-файлов.
package service

import (
	"log/slog"

	"github.com/bogem/id3v2/v2"
)

// tagAudio проставляет заголовок ID3v2 (title) в mp3-файл.
// Best effort: любая ошибка логируется и не эскалируется — файл без
// тегов остаётся пригодным для выдачи.
func (s *DownloadService) tagAudio(path, title string) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		s.logger.Warn("Не удалось открыть mp3 для тегирования",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}
	defer tag.Close()

	tag.SetTitle(title)
	if err := tag.Save(); err != nil {
		s.logger.Warn("Не удалось сохранить ID3-теги",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
