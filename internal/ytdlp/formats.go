// formats.go — нормализация списка форматов yt-dlp и построение
// format-выражений для загрузки.
package ytdlp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bigkaa/vidgrab/internal/domain/model"
)

// maxFormats — максимальное количество форматов в ответе /info.
const maxFormats = 30

// codecNone — sentinel yt-dlp для отсутствующего кодека.
const codecNone = "none"

// resolutionAudioOnly — метка разрешения для чисто аудио-форматов.
const resolutionAudioOnly = "audio only"

// audioContainers — контейнеры, для которых выбирается best-audio-only поток.
var audioContainers = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"opus": true,
}

// IsAudioContainer сообщает, является ли контейнер чисто аудио.
func IsAudioContainer(ext string) bool {
	return audioContainers[strings.ToLower(ext)]
}

// NormalizeFormats приводит разнородные записи yt-dlp к каноническому виду:
//  1. отбрасывает записи, где и видео-, и аудиокодек — "none";
//  2. дополняет отсутствующее разрешение ("WxH" либо "audio only");
//  3. сортирует по убыванию вертикального разрешения (стабильно);
//  4. убирает дубликаты по паре (resolution, ext), оставляя первый;
//  5. усекает список до maxFormats.
//
// Порядок и дедупликация воспроизводятся в точности: два формата с
// одинаковыми (resolution, ext) взаимозаменяемы с точки зрения
// пользователя, выживает лучший по сортировке.
func NormalizeFormats(raw []RawFormat) []model.VideoFormat {
	formats := make([]model.VideoFormat, 0, len(raw))
	for _, f := range raw {
		if f.VCodec == codecNone && f.ACodec == codecNone {
			continue
		}
		formats = append(formats, toVideoFormat(f))
	}

	sort.SliceStable(formats, func(i, j int) bool {
		return resolutionHeight(formats[i].Resolution) > resolutionHeight(formats[j].Resolution)
	})

	seen := make(map[string]bool, len(formats))
	out := formats[:0]
	for _, f := range formats {
		key := f.Resolution + "-" + f.Ext
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
		if len(out) == maxFormats {
			break
		}
	}

	return out
}

// toVideoFormat отображает одну запись yt-dlp в каноническую форму
// с явными правилами дополнения отсутствующих полей.
func toVideoFormat(f RawFormat) model.VideoFormat {
	resolution := f.Resolution
	if resolution == "" {
		if f.Width > 0 && f.Height > 0 {
			resolution = fmt.Sprintf("%dx%d", f.Width, f.Height)
		} else {
			resolution = resolutionAudioOnly
		}
	}

	filesize := f.Filesize
	if filesize == nil {
		filesize = f.FilesizeApprox
	}

	vcodec := f.VCodec
	if vcodec == "" {
		vcodec = codecNone
	}
	acodec := f.ACodec
	if acodec == "" {
		acodec = codecNone
	}

	return model.VideoFormat{
		FormatID:   f.FormatID,
		Ext:        f.Ext,
		Resolution: resolution,
		Filesize:   filesize,
		FormatNote: f.FormatNote,
		VCodec:     vcodec,
		ACodec:     acodec,
		FPS:        f.FPS,
	}
}

// resolutionHeight извлекает вертикальное разрешение из метки "WxH".
// Неразбираемые метки (включая "audio only") дают 0.
func resolutionHeight(resolution string) int {
	_, heightToken, ok := strings.Cut(resolution, "x")
	if !ok {
		return 0
	}
	height, err := strconv.Atoi(heightToken)
	if err != nil {
		return 0
	}
	return height
}

// BuildFormatExpr строит format-выражение yt-dlp из предпочтений
// контейнера и качества, когда явный format_id не задан:
//   - аудио-контейнеры (mp3, m4a, opus) — только best-audio-only потоки;
//   - качество "best" (или пустое) — best video + best audio с ограничением
//     по контейнеру;
//   - числовое качество N (допускается суффикс "p": "1080p") — дополнительно
//     ограничивает вертикальное разрешение.
func BuildFormatExpr(container, quality string) string {
	c := strings.ToLower(strings.TrimSpace(container))
	if c == "" {
		c = "mp4"
	}

	if audioContainers[c] {
		return fmt.Sprintf("bestaudio[ext=%s]/bestaudio", c)
	}

	q := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(quality)), "p")
	if height, err := strconv.Atoi(q); err == nil && height > 0 {
		return fmt.Sprintf(
			"bestvideo[height<=%d][ext=%s]+bestaudio/best[height<=%d][ext=%s]/best",
			height, c, height, c,
		)
	}

	return fmt.Sprintf("bestvideo[ext=%s]+bestaudio/best[ext=%s]/best", c, c)
}
