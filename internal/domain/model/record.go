// Пакет model — доменные модели vidgrab.
// DownloadRecord — запись о завершённой загрузке (хранится в holding directory).
// VideoInfo и VideoFormat — результат запроса метаданных через yt-dlp.
package model

import "time"

// DownloadRecord — запись о загрузке, доступной клиенту по идентификатору.
// Запись неизменяема после создания: обновлений нет, только создание и удаление.
type DownloadRecord struct {
	// ID — случайный идентификатор (UUID), внешний handle записи
	ID string `json:"id"`
	// FileName — человекочитаемое имя файла (title + расширение)
	FileName string `json:"fileName"`
	// Location — абсолютный локальный путь ИЛИ удалённый URL.
	// Интерпретация определяется ТОЛЬКО полем Remote, не содержимым.
	Location string `json:"location"`
	// Remote — true, если Location — URL файлового хостинга
	Remote bool `json:"remote"`
	// MediaType — MIME-тип файла (по расширению, если источник не сообщил)
	MediaType string `json:"mediaType"`
	// CreatedAt — время создания записи
	CreatedAt time.Time `json:"createdAt"`
	// ExpiresAt — время истечения: CreatedAt + TTL (по умолчанию 24h)
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired сообщает, истекла ли запись на момент now.
func (r *DownloadRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// VideoFormat — один выбираемый формат (качество + контейнер) исходного видео.
// Поля и JSON-имена соответствуют записям yt-dlp (--dump-json).
type VideoFormat struct {
	// FormatID — идентификатор формата yt-dlp, используется как есть при загрузке
	FormatID string `json:"format_id"`
	// Ext — расширение контейнера (mp4, webm, m4a, ...)
	Ext string `json:"ext"`
	// Resolution — "WxH" или "audio only"
	Resolution string `json:"resolution"`
	// Filesize — приблизительный размер в байтах (nil — неизвестен)
	Filesize *int64 `json:"filesize"`
	// FormatNote — человекочитаемая пометка качества (1080p, medium, ...)
	FormatNote string `json:"format_note"`
	// VCodec — видеокодек, sentinel "none" для audio-only
	VCodec string `json:"vcodec"`
	// ACodec — аудиокодек, sentinel "none" для video-only
	ACodec string `json:"acodec"`
	// FPS — частота кадров (nil для audio-only)
	FPS *float64 `json:"fps"`
}

// VideoInfo — метаданные видео для ответа POST /api/v1/info.
type VideoInfo struct {
	// Title — заголовок видео
	Title string `json:"title"`
	// Thumbnail — URL превью
	Thumbnail string `json:"thumbnail"`
	// Duration — длительность в секундах
	Duration int64 `json:"duration"`
	// Uploader — автор/канал ("Unknown", если источник не сообщил)
	Uploader string `json:"uploader"`
	// ViewCount — количество просмотров
	ViewCount int64 `json:"view_count"`
	// Formats — нормализованный список форматов (не более 30)
	Formats []VideoFormat `json:"formats"`
}
