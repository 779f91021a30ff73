// Пакет gofileclient — HTTP-клиент файлового хостинга gofile.io.
// Две операции API: выбор upload-сервера (GET /servers) и загрузка файла
// multipart-запросом на выбранный сервер.
package gofileclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// defaultAPIBase — базовый URL API gofile.io.
const defaultAPIBase = "https://api.gofile.io"

// UploadResult — результат успешной загрузки файла.
type UploadResult struct {
	// DownloadPage — публичная страница скачивания (redirect-цель)
	DownloadPage string
	// FileID — идентификатор файла на хостинге
	FileID string
}

// Client — HTTP-клиент gofile.io.
type Client struct {
	httpClient *http.Client
	apiBase    string
	// uploadURLFormat — шаблон URL загрузки; параметр — имя сервера.
	// Поле выделено для подмены в тестах.
	uploadURLFormat string
	logger          *slog.Logger
}

// New создаёт клиент gofile.io.
// apiBase — базовый URL API (пустая строка — продакшн API).
// timeout — таймаут HTTP-запросов; 0 — без ограничения
// (загрузка больших медиафайлов может занимать минуты).
func New(apiBase string, timeout time.Duration, logger *slog.Logger) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Client{
		httpClient:      &http.Client{Timeout: timeout},
		apiBase:         strings.TrimRight(apiBase, "/"),
		uploadURLFormat: "https://%s.gofile.io/contents/uploadFile",
		logger:          logger.With(slog.String("component", "gofile_client")),
	}
}

// serversResponse — ответ GET /servers.
type serversResponse struct {
	Status string `json:"status"`
	Data   struct {
		Servers []struct {
			Name string `json:"name"`
		} `json:"servers"`
	} `json:"data"`
}

// uploadResponse — ответ POST /contents/uploadFile.
type uploadResponse struct {
	Status string `json:"status"`
	Data   struct {
		DownloadPage string `json:"downloadPage"`
		FileID       string `json:"fileId"`
	} `json:"data"`
}

// BestServer запрашивает список upload-серверов и возвращает имя первого.
func (c *Client) BestServer(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/servers", http.NoBody)
	if err != nil {
		return "", fmt.Errorf("создание запроса servers: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("запрос списка серверов gofile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gofile servers вернул статус %d: %s", resp.StatusCode, bodyPrefix(body))
	}

	var servers serversResponse
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return "", fmt.Errorf("декодирование ответа servers: %w", err)
	}

	if servers.Status != "ok" || len(servers.Data.Servers) == 0 {
		return "", fmt.Errorf("нет доступных upload-серверов gofile (status=%s)", servers.Status)
	}

	return servers.Data.Servers[0].Name, nil
}

// Upload загружает файл path под именем name и возвращает UploadResult.
// Тело запроса формируется потоково через io.Pipe — файл не буферизуется
// в памяти целиком.
func (c *Client) Upload(ctx context.Context, path, name string) (*UploadResult, error) {
	server, err := c.BestServer(ctx)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("открытие файла для загрузки: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	uploadURL := fmt.Sprintf(c.uploadURLFormat, server)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, pr)
	if err != nil {
		return nil, fmt.Errorf("создание запроса uploadFile: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("загрузка файла на gofile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gofile uploadFile вернул статус %d: %s", resp.StatusCode, bodyPrefix(body))
	}

	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return nil, fmt.Errorf("декодирование ответа uploadFile: %w", err)
	}

	if upload.Status != "ok" || upload.Data.DownloadPage == "" {
		return nil, fmt.Errorf("gofile отклонил загрузку (status=%s)", upload.Status)
	}

	c.logger.Debug("Файл загружен на gofile",
		slog.String("server", server),
		slog.String("file_id", upload.Data.FileID),
		slog.Duration("duration", time.Since(start)),
	)

	return &UploadResult{
		DownloadPage: upload.Data.DownloadPage,
		FileID:       upload.Data.FileID,
	}, nil
}

// bodyPrefix усекает тело ответа для текста ошибки.
func bodyPrefix(b []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(b))
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
