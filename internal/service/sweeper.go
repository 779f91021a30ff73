// sweeper.go — фоновая очистка истёкших записей.
// Периодический проход по store в дополнение к ленивой очистке при Get:
// записи, которые никто не запрашивал после истечения, всё равно удаляются.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/vidgrab/internal/repository"
)

var recordsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vg_records_swept_total",
	Help: "Общее количество истёкших записей, удалённых фоновой очисткой.",
})

// StartSweeper запускает фоновую горутину периодической очистки.
// Останавливается при отмене ctx.
func StartSweeper(ctx context.Context, store repository.RecordRepository, interval time.Duration, logger *slog.Logger) {
	log := logger.With(slog.String("component", "sweeper"))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info("Фоновая очистка запущена", slog.Duration("interval", interval))

		for {
			select {
			case <-ctx.Done():
				log.Info("Фоновая очистка остановлена")
				return
			case <-ticker.C:
				deleted, err := store.SweepExpired(ctx)
				if err != nil {
					log.Error("Ошибка фоновой очистки", slog.String("error", err.Error()))
					continue
				}
				if deleted > 0 {
					recordsSweptTotal.Add(float64(deleted))
					log.Info("Фоновая очистка завершена", slog.Int("deleted", deleted))
				}
			}
		}
	}()
}
