package service

import (
	"testing"
	"time"

	"github.com/bigkaa/vidgrab/internal/domain/model"
)

// TestCacheService_GetSet проверяет базовые операции Get/Set.
func TestCacheService_GetSet(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)

	info := &model.VideoInfo{
		Title:    "Test Video",
		Uploader: "Tester",
		Duration: 42,
	}

	// Cache miss
	_, ok := cache.Get("https://example.com/v1")
	if ok {
		t.Fatal("ожидался cache miss для нового ключа")
	}

	// Set + cache hit
	cache.Set("https://example.com/v1", info)
	got, ok := cache.Get("https://example.com/v1")
	if !ok {
		t.Fatal("ожидался cache hit после Set")
	}
	if got.Title != "Test Video" {
		t.Errorf("Title = %q, ожидался %q", got.Title, "Test Video")
	}
}

// TestCacheService_Delete проверяет инвалидацию записи.
func TestCacheService_Delete(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)

	cache.Set("https://example.com/v1", &model.VideoInfo{Title: "del"})
	cache.Delete("https://example.com/v1")

	_, ok := cache.Get("https://example.com/v1")
	if ok {
		t.Fatal("ожидался cache miss после Delete")
	}
}

// TestCacheService_TTLExpiration проверяет автоматическое истечение TTL.
func TestCacheService_TTLExpiration(t *testing.T) {
	// Короткий TTL = 50ms для теста
	cache := NewCacheService(100, 50*time.Millisecond)

	cache.Set("https://example.com/v1", &model.VideoInfo{Title: "ttl"})

	_, ok := cache.Get("https://example.com/v1")
	if !ok {
		t.Fatal("ожидался cache hit сразу после Set")
	}

	time.Sleep(100 * time.Millisecond)

	_, ok = cache.Get("https://example.com/v1")
	if ok {
		t.Fatal("ожидался cache miss после истечения TTL")
	}
}
