package delegateclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestClient_Download проверяет пересылку запроса и разбор ответа.
func TestClient_Download(t *testing.T) {
	var gotReq Request

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/download" {
			t.Errorf("path = %q, ожидался /api/v1/download", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("декодирование запроса: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Result{
			DirectURL: "https://gofile.io/d/abc",
			FileName:  "video.mp4",
			MediaType: "video/mp4",
		})
	}))
	defer ts.Close()

	c := New(ts.URL+"/", testLogger()) // завершающий слэш срезается
	result, err := c.Download(context.Background(), &Request{
		URL:              "https://example.com/v",
		PreferredFormat:  "mp4",
		PreferredQuality: "720",
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if result.DirectURL != "https://gofile.io/d/abc" {
		t.Errorf("DirectURL = %q", result.DirectURL)
	}
	if gotReq.URL != "https://example.com/v" || gotReq.PreferredQuality != "720" {
		t.Errorf("запрос делегату = %+v", gotReq)
	}
}

// TestClient_Download_ErrorStatus проверяет ошибку с префиксом тела ответа.
func TestClient_Download_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	_, err := c.Download(context.Background(), &Request{URL: "https://example.com/v"})
	if err == nil || !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, ожидались статус и тело", err)
	}
}

// TestClient_Download_EmptyResult проверяет отказ при ответе без пути и URL.
func TestClient_Download_EmptyResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Result{FileName: "video.mp4"})
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	_, err := c.Download(context.Background(), &Request{URL: "https://example.com/v"})
	if err == nil {
		t.Fatal("ожидалась ошибка: делегат не вернул ни пути, ни URL")
	}
}
