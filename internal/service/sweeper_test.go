package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bigkaa/vidgrab/internal/domain/model"
	"github.com/bigkaa/vidgrab/internal/repository"
)

// TestStartSweeper проверяет, что фоновая очистка удаляет истёкшие записи.
func TestStartSweeper(t *testing.T) {
	dir := t.TempDir()
	store, err := repository.NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mediaPath := filepath.Join(dir, "sw.mp4")
	if err := os.WriteFile(mediaPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("создание медиафайла: %v", err)
	}
	record := &model.DownloadRecord{
		ID:        "sw",
		FileName:  "sw.mp4",
		Location:  mediaPath,
		MediaType: "video/mp4",
		CreatedAt: time.Now().Add(-25 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put: %v", err)
	}

	StartSweeper(ctx, store, 20*time.Millisecond, testLogger())

	// Ждём как минимум один тик очистки. Наличие проверяем по файлам на
	// диске, не через Get: Get сам выполняет ленивую очистку.
	recordPath := filepath.Join(dir, "sw.json")
	deadline := time.After(2 * time.Second)
	for {
		_, recErr := os.Stat(recordPath)
		_, mediaErr := os.Stat(mediaPath)
		if errors.Is(recErr, os.ErrNotExist) && errors.Is(mediaErr, os.ErrNotExist) {
			return
		}
		select {
		case <-deadline:
			t.Fatal("очистка не удалила истёкшую запись")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
