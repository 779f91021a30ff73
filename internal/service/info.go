// info.go — сервис метаданных видео: валидация URL, кэш, запуск yt-dlp,
// нормализация списка форматов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/bigkaa/vidgrab/internal/domain/model"
	"github.com/bigkaa/vidgrab/internal/ytdlp"
)

// Ошибки валидации входных данных.
var (
	// ErrInvalidURL — отсутствующий или некорректный URL источника.
	ErrInvalidURL = errors.New("некорректный URL")
)

// uploaderUnknown — значение по умолчанию, когда источник не сообщил автора.
const uploaderUnknown = "Unknown"

// InfoRunner — запрос метаданных у внешнего инструмента.
type InfoRunner interface {
	FetchInfo(ctx context.Context, url string) (*ytdlp.RawInfo, error)
}

// InfoService — сервис получения метаданных видео.
type InfoService struct {
	runner InfoRunner
	cache  *CacheService
	logger *slog.Logger
}

// NewInfoService создаёт сервис метаданных.
func NewInfoService(runner InfoRunner, cache *CacheService, logger *slog.Logger) *InfoService {
	return &InfoService{
		runner: runner,
		cache:  cache,
		logger: logger.With(slog.String("component", "info_service")),
	}
}

// GetInfo возвращает метаданные видео с нормализованным списком форматов.
// Ответы кэшируются по URL в пределах TTL кэша.
func (s *InfoService) GetInfo(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	if info, ok := s.cache.Get(rawURL); ok {
		return info, nil
	}

	raw, err := s.runner.FetchInfo(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("получение метаданных %s: %w", rawURL, err)
	}

	info := buildVideoInfo(raw)
	s.cache.Set(rawURL, info)

	s.logger.Debug("Метаданные получены",
		slog.String("url", rawURL),
		slog.String("title", info.Title),
		slog.Int("formats", len(info.Formats)),
	)

	return info, nil
}

// buildVideoInfo отображает сырой ответ yt-dlp в доменную модель.
func buildVideoInfo(raw *ytdlp.RawInfo) *model.VideoInfo {
	uploader := raw.Uploader
	if uploader == "" {
		uploader = raw.Channel
	}
	if uploader == "" {
		uploader = uploaderUnknown
	}

	return &model.VideoInfo{
		Title:     raw.Title,
		Thumbnail: raw.Thumbnail,
		Duration:  int64(raw.Duration),
		Uploader:  uploader,
		ViewCount: raw.ViewCount,
		Formats:   ytdlp.NormalizeFormats(raw.Formats),
	}
}

// ValidateURL проверяет, что строка — абсолютный http(s) URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: URL не задан", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
