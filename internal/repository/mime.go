// mime.go — статическая таблица MIME-типов по расширению файла.
// Используется, когда источник не сообщил тип содержимого.
package repository

import (
	"path/filepath"
	"strings"
)

// mimeTypes — соответствие расширений медиафайлов MIME-типам.
var mimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".flv":  "video/x-flv",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".opus": "audio/opus",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
}

// MediaTypeFor возвращает MIME-тип по расширению файла
// или application/octet-stream, если расширение неизвестно.
func MediaTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
