// store.go — файловая реализация RecordRepository.
// Формат: <holding dir>/<id>.json с атомарной записью через temp + rename.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bigkaa/vidgrab/internal/domain/model"
)

// recordSuffix — расширение файлов метаданных в holding directory.
const recordSuffix = ".json"

// fileStore — реализация RecordRepository поверх файловой системы.
type fileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore создаёт файловое хранилище записей в каталоге dir.
// Каталог создаётся при необходимости.
func NewFileStore(dir string, logger *slog.Logger) (RecordRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание holding directory %s: %w", dir, err)
	}
	return &fileStore{
		dir:    dir,
		logger: logger.With(slog.String("component", "record_store")),
	}, nil
}

// Put сохраняет запись атомарно: запись во временный файл + rename.
// Коллизии идентификаторов исключены энтропией UUID, поэтому
// put-if-absent семантика не требуется.
func (s *fileStore) Put(_ context.Context, record *model.DownloadRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("сериализация записи %s: %w", record.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, record.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("создание временного файла записи: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("запись метаданных %s: %w", record.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("закрытие файла метаданных %s: %w", record.ID, err)
	}

	if err := os.Rename(tmpName, s.recordPath(record.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename файла метаданных %s: %w", record.ID, err)
	}

	return nil
}

// Get возвращает запись по идентификатору с ленивой очисткой истёкших.
func (s *fileStore) Get(ctx context.Context, id string) (*model.DownloadRecord, error) {
	record, err := s.read(id)
	if err != nil {
		return nil, err
	}

	if record.Expired(time.Now()) {
		// Lazy expiry: убираем медиафайл и запись, отдаём Gone (не NotFound)
		s.cleanup(record)
		return nil, ErrGone
	}

	return record, nil
}

// Delete удаляет запись и её локальный медиафайл. Идемпотентно.
func (s *fileStore) Delete(_ context.Context, id string) error {
	record, err := s.read(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	s.cleanup(record)
	return nil
}

// SweepExpired перебирает все записи и удаляет истёкшие вместе с файлами.
func (s *fileStore) SweepExpired(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("чтение holding directory: %w", err)
	}

	now := time.Now()
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordSuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		id := strings.TrimSuffix(entry.Name(), recordSuffix)
		record, err := s.read(id)
		if err != nil {
			// Нечитаемая запись — пропускаем, не прерывая обход
			s.logger.Warn("Пропущена нечитаемая запись при очистке",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}

		if record.Expired(now) {
			s.cleanup(record)
			deleted++
		}
	}

	return deleted, nil
}

// read читает и разбирает файл записи.
func (s *fileStore) read(id string) (*model.DownloadRecord, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение записи %s: %w", id, err)
	}

	var record model.DownloadRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("разбор записи %s: %w", id, err)
	}
	return &record, nil
}

// cleanup удаляет медиафайл (если локальный) и файл записи.
// Ошибки удаления логируются и не эскалируются: удаление уже
// удалённого файла — no-op.
func (s *fileStore) cleanup(record *model.DownloadRecord) {
	if !record.Remote && record.Location != "" {
		if err := os.Remove(record.Location); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("Не удалось удалить медиафайл",
				slog.String("id", record.ID),
				slog.String("path", record.Location),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := os.Remove(s.recordPath(record.ID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Не удалось удалить файл записи",
			slog.String("id", record.ID),
			slog.String("error", err.Error()),
		)
	}
}

// recordPath возвращает путь файла метаданных для идентификатора.
func (s *fileStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+recordSuffix)
}
