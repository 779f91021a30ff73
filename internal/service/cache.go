// Пакет service — бизнес-логика vidgrab.
// CacheService — LRU-кэш ответов /info с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/vidgrab/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vg_info_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш метаданных видео.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vg_info_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша метаданных видео.",
	})
)

// CacheService — LRU-кэш метаданных видео с автоматическим TTL.
// Ключ — URL источника. Повторные запросы /info для одного URL не
// порождают повторных запусков yt-dlp в пределах TTL.
type CacheService struct {
	cache *expirable.LRU[string, *model.VideoInfo]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.VideoInfo](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает VideoInfo из кэша по URL.
// Возвращает (запись, true) при hit или (nil, false) при miss.
func (c *CacheService) Get(url string) (*model.VideoInfo, bool) {
	val, ok := c.cache.Get(url)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(url string, info *model.VideoInfo) {
	c.cache.Add(url, info)
}

// Delete удаляет запись из кэша.
func (c *CacheService) Delete(url string) {
	c.cache.Remove(url)
}
