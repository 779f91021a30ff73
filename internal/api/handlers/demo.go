// demo.go — обработчик GET /api/v1/demo.
// Фиксированные метаданные для демонстрации UI без обращения к yt-dlp.
package handlers

import (
	"net/http"

	"github.com/bigkaa/vidgrab/internal/domain/model"
)

// demoVideoInfo возвращает фиксированный набор метаданных.
func demoVideoInfo() *model.VideoInfo {
	fps := 30.0
	sizes := []int64{52428800, 31457280, 15728640, 10485760, 3407872}

	return &model.VideoInfo{
		Title:     "Rick Astley - Never Gonna Give You Up (Official Video)",
		Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		Duration:  212,
		Uploader:  "Rick Astley",
		ViewCount: 1456789012,
		Formats: []model.VideoFormat{
			{
				FormatID: "137+140", Ext: "mp4", Resolution: "1920x1080",
				Filesize: &sizes[0], FormatNote: "1080p",
				VCodec: "avc1.640028", ACodec: "mp4a.40.2", FPS: &fps,
			},
			{
				FormatID: "136+140", Ext: "mp4", Resolution: "1280x720",
				Filesize: &sizes[1], FormatNote: "720p",
				VCodec: "avc1.4d401f", ACodec: "mp4a.40.2", FPS: &fps,
			},
			{
				FormatID: "135+140", Ext: "mp4", Resolution: "854x480",
				Filesize: &sizes[2], FormatNote: "480p",
				VCodec: "avc1.4d401e", ACodec: "mp4a.40.2", FPS: &fps,
			},
			{
				FormatID: "134+140", Ext: "mp4", Resolution: "640x360",
				Filesize: &sizes[3], FormatNote: "360p",
				VCodec: "avc1.4d401e", ACodec: "mp4a.40.2", FPS: &fps,
			},
			{
				FormatID: "140", Ext: "m4a", Resolution: "audio only",
				Filesize: &sizes[4], FormatNote: "medium",
				VCodec: "none", ACodec: "mp4a.40.2",
			},
		},
	}
}

// Demo — реализация GET /api/v1/demo.
func (h *APIHandler) Demo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, demoVideoInfo())
}
