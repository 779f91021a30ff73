// Пакет delegateclient — HTTP-клиент внешнего downloader-сервиса.
// В serverless-режиме vidgrab не запускает yt-dlp локально, а пересылает
// запрос загрузки делегату, который возвращает результат той же формы,
// что и локальный запуск: путь к файлу либо готовый удалённый URL.
package delegateclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Request — запрос загрузки, пересылаемый делегату as-is.
type Request struct {
	URL              string `json:"url"`
	Format           string `json:"format,omitempty"`
	PreferredFormat  string `json:"preferredFormat,omitempty"`
	PreferredQuality string `json:"preferredQuality,omitempty"`
}

// Result — результат загрузки от делегата.
// Ровно одно из полей FilePath / DirectURL заполнено.
type Result struct {
	// FilePath — путь к файлу на общем хранилище
	FilePath string `json:"filePath,omitempty"`
	// DirectURL — готовый URL на файловом хостинге
	DirectURL string `json:"directUrl,omitempty"`
	// FileName — человекочитаемое имя файла
	FileName string `json:"fileName"`
	// MediaType — MIME-тип (может быть пустым — определяется по расширению)
	MediaType string `json:"mediaType,omitempty"`
}

// Client — HTTP-клиент делегата.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New создаёт клиент делегата.
// baseURL — базовый URL downloader-сервиса.
// Клиент без таймаута: загрузка у делегата может длиться дольше любого
// разумного фиксированного потолка, ограничение — контекст запроса.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With(slog.String("component", "delegate_client")),
	}
}

// Download пересылает запрос загрузки делегату.
// POST {base}/api/v1/download
func (c *Client) Download(ctx context.Context, req *Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса делегату: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/download", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса делегату: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("запрос к делегату %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("делегат вернул статус %d: %s", resp.StatusCode, bodyPrefix(respBody))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("декодирование ответа делегата: %w", err)
	}

	if result.FilePath == "" && result.DirectURL == "" {
		return nil, fmt.Errorf("делегат не вернул ни пути к файлу, ни URL")
	}

	c.logger.Debug("Делегат выполнил загрузку",
		slog.String("file_name", result.FileName),
		slog.Bool("remote", result.DirectURL != ""),
	)

	return &result, nil
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
