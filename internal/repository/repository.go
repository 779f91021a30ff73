// Пакет repository — слой хранения записей о загрузках.
// Одна запись — один JSON-файл в holding directory, рядом с медиафайлом.
// Блокировок нет: записи append-only с ключом-UUID, удаление идемпотентно.
package repository

import (
	"context"
	"errors"

	"github.com/bigkaa/vidgrab/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrGone — запись существовала, но истекла и была удалена.
	ErrGone = errors.New("срок действия записи истёк")
)

// RecordRepository — интерфейс доступа к записям о загрузках.
type RecordRepository interface {
	// Put сохраняет запись (атомарная запись файла, ключ — record.ID).
	Put(ctx context.Context, record *model.DownloadRecord) error
	// Get возвращает запись по идентификатору или ErrNotFound.
	// Истёкшая запись удаляется вместе с медиафайлом (lazy expiry),
	// возвращается ErrGone.
	Get(ctx context.Context, id string) (*model.DownloadRecord, error)
	// Delete удаляет запись и её локальный медиафайл.
	// Удаление несуществующей записи — no-op, не ошибка.
	Delete(ctx context.Context, id string) error
	// SweepExpired удаляет все истёкшие записи и их медиафайлы.
	// Возвращает количество удалённых записей.
	SweepExpired(ctx context.Context) (int, error)
}
