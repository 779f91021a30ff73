package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/vidgrab/internal/delegateclient"
	"github.com/bigkaa/vidgrab/internal/gofileclient"
	"github.com/bigkaa/vidgrab/internal/repository"
)

// fakeDownloadRunner — стаб DownloadRunner: создаёт файл в destDir.
type fakeDownloadRunner struct {
	fileName   string
	err        error
	gotFormat  string
	gotDestDir string
}

func (f *fakeDownloadRunner) Download(_ context.Context, _, formatExpr, destDir string) (string, error) {
	f.gotFormat = formatExpr
	f.gotDestDir = destDir
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, f.fileName)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// fakeUploader — стаб Uploader.
type fakeUploader struct {
	result *gofileclient.UploadResult
	err    error
	calls  int
}

func (f *fakeUploader) Upload(_ context.Context, _, _ string) (*gofileclient.UploadResult, error) {
	f.calls++
	return f.result, f.err
}

// fakeDelegate — стаб Delegate.
type fakeDelegate struct {
	result *delegateclient.Result
	err    error
	calls  int
}

func (f *fakeDelegate) Download(_ context.Context, _ *delegateclient.Request) (*delegateclient.Result, error) {
	f.calls++
	return f.result, f.err
}

func newTestDownloadService(t *testing.T, runner DownloadRunner, uploader Uploader, delegate Delegate, serverless bool) (*DownloadService, repository.RecordRepository, string) {
	t.Helper()
	holdingDir := t.TempDir()
	store, err := repository.NewFileStore(holdingDir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	svc := NewDownloadService(runner, store, uploader, delegate,
		serverless, holdingDir, 24*time.Hour, testLogger())
	return svc, store, holdingDir
}

// TestDownloadService_LocalDownload проверяет локальный pipeline:
// staging, перенос в holding directory, запись метаданных.
func TestDownloadService_LocalDownload(t *testing.T) {
	runner := &fakeDownloadRunner{fileName: "My Video.mp4"}
	svc, store, holdingDir := newTestDownloadService(t, runner, nil, nil, false)

	result, err := svc.Download(context.Background(), &DownloadRequest{
		URL:    "https://example.com/v",
		Format: "22",
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if result.FileName != "My Video.mp4" {
		t.Errorf("FileName = %q, ожидался %q", result.FileName, "My Video.mp4")
	}
	if !strings.HasPrefix(result.DownloadURL, "/api/v1/files/") {
		t.Errorf("DownloadURL = %q, ожидался префикс /api/v1/files/", result.DownloadURL)
	}
	if result.DownloadID == "" || result.ExpiresAt == nil {
		t.Error("ожидались DownloadID и ExpiresAt для локальной записи")
	}
	if runner.gotFormat != "22" {
		t.Errorf("formatExpr = %q, ожидался явный %q", runner.gotFormat, "22")
	}

	// Запись читается из store, файл лежит в holding directory
	record, err := store.Get(context.Background(), result.DownloadID)
	if err != nil {
		t.Fatalf("Get записи: %v", err)
	}
	if record.Remote {
		t.Error("ожидалась локальная запись")
	}
	if filepath.Dir(record.Location) != holdingDir {
		t.Errorf("Location = %q вне holding directory %q", record.Location, holdingDir)
	}
	if _, err := os.Stat(record.Location); err != nil {
		t.Errorf("медиафайл отсутствует: %v", err)
	}
	// Staging-каталог убран
	entries, _ := os.ReadDir(holdingDir)
	for _, e := range entries {
		if e.IsDir() {
			t.Errorf("staging-каталог %s не удалён", e.Name())
		}
	}
}

// TestDownloadService_BuildsFormatExpr проверяет построение выражения
// из preferredFormat/preferredQuality при пустом format.
func TestDownloadService_BuildsFormatExpr(t *testing.T) {
	runner := &fakeDownloadRunner{fileName: "v.mp4"}
	svc, _, _ := newTestDownloadService(t, runner, nil, nil, false)

	_, err := svc.Download(context.Background(), &DownloadRequest{
		URL:              "https://example.com/v",
		PreferredFormat:  "mp4",
		PreferredQuality: "720",
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	want := "bestvideo[height<=720][ext=mp4]+bestaudio/best[height<=720][ext=mp4]/best"
	if runner.gotFormat != want {
		t.Errorf("formatExpr = %q, ожидался %q", runner.gotFormat, want)
	}
}

// TestDownloadService_InvalidURL проверяет отказ без запуска инструмента.
func TestDownloadService_InvalidURL(t *testing.T) {
	runner := &fakeDownloadRunner{fileName: "v.mp4"}
	svc, _, _ := newTestDownloadService(t, runner, nil, nil, false)

	_, err := svc.Download(context.Background(), &DownloadRequest{URL: "ftp://bad"})
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("err = %v, ожидался ErrInvalidURL", err)
	}
	if runner.gotDestDir != "" {
		t.Error("инструмент не должен запускаться при некорректном URL")
	}
}

// TestDownloadService_ServerlessWithoutDelegate проверяет 503-семантику:
// в serverless-режиме без делегата локальный запуск не предпринимается.
func TestDownloadService_ServerlessWithoutDelegate(t *testing.T) {
	runner := &fakeDownloadRunner{fileName: "v.mp4"}
	svc, _, _ := newTestDownloadService(t, runner, nil, nil, true)

	_, err := svc.Download(context.Background(), &DownloadRequest{URL: "https://example.com/v"})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, ожидался ErrServiceUnavailable", err)
	}
	if runner.gotDestDir != "" {
		t.Error("локальный запуск в serverless-режиме недопустим")
	}
}

// TestDownloadService_ServerlessDelegatesRemote проверяет делегирование
// с удалённым результатом.
func TestDownloadService_ServerlessDelegatesRemote(t *testing.T) {
	runner := &fakeDownloadRunner{fileName: "v.mp4"}
	delegate := &fakeDelegate{
		result: &delegateclient.Result{
			DirectURL: "https://gofile.io/d/abc",
			FileName:  "video.mp4",
			MediaType: "video/mp4",
		},
	}
	svc, store, _ := newTestDownloadService(t, runner, nil, delegate, true)

	result, err := svc.Download(context.Background(), &DownloadRequest{URL: "https://example.com/v"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if delegate.calls != 1 {
		t.Errorf("delegate.calls = %d, ожидался 1", delegate.calls)
	}
	if result.DirectURL != "https://gofile.io/d/abc" {
		t.Errorf("DirectURL = %q", result.DirectURL)
	}

	id := strings.TrimPrefix(result.DownloadURL, "/api/v1/files/")
	record, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get записи: %v", err)
	}
	if !record.Remote {
		t.Error("ожидалась удалённая запись")
	}
	if record.Location != "https://gofile.io/d/abc" {
		t.Errorf("Location = %q", record.Location)
	}
}

// TestDownloadService_DelegateError проверяет проброс ошибки делегата.
func TestDownloadService_DelegateError(t *testing.T) {
	delegate := &fakeDelegate{err: errors.New("delegate down")}
	svc, _, _ := newTestDownloadService(t, &fakeDownloadRunner{fileName: "v.mp4"}, nil, delegate, true)

	_, err := svc.Download(context.Background(), &DownloadRequest{URL: "https://example.com/v"})
	if err == nil || !strings.Contains(err.Error(), "delegate down") {
		t.Fatalf("err = %v, ожидалась ошибка делегата", err)
	}
}

// TestDownloadService_UploadRemote проверяет перезаливку на хостинг:
// локальный файл удаляется, запись — удалённая.
func TestDownloadService_UploadRemote(t *testing.T) {
	runner := &fakeDownloadRunner{fileName: "v.mp4"}
	uploader := &fakeUploader{
		result: &gofileclient.UploadResult{
			DownloadPage: "https://gofile.io/d/xyz",
			FileID:       "xyz",
		},
	}
	svc, store, holdingDir := newTestDownloadService(t, runner, uploader, nil, false)

	result, err := svc.Download(context.Background(), &DownloadRequest{URL: "https://example.com/v"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if uploader.calls != 1 {
		t.Errorf("uploader.calls = %d, ожидался 1", uploader.calls)
	}
	if result.DirectURL != "https://gofile.io/d/xyz" || result.FileID != "xyz" {
		t.Errorf("result = %+v", result)
	}

	// Локальных медиафайлов не осталось — только JSON записи
	entries, _ := os.ReadDir(holdingDir)
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			t.Errorf("локальный файл %s не удалён после перезаливки", e.Name())
		}
	}

	id := strings.TrimPrefix(result.DownloadURL, "/api/v1/files/")
	record, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get записи: %v", err)
	}
	if !record.Remote {
		t.Error("ожидалась удалённая запись после перезаливки")
	}
}

// TestDownloadService_UploadFailureCleansUp проверяет удаление файла
// при сбое перезаливки.
func TestDownloadService_UploadFailureCleansUp(t *testing.T) {
	runner := &fakeDownloadRunner{fileName: "v.mp4"}
	uploader := &fakeUploader{err: errors.New("hosting down")}
	svc, _, holdingDir := newTestDownloadService(t, runner, uploader, nil, false)

	_, err := svc.Download(context.Background(), &DownloadRequest{URL: "https://example.com/v"})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v, ожидался ErrUploadFailed", err)
	}

	entries, _ := os.ReadDir(holdingDir)
	if len(entries) != 0 {
		t.Errorf("holding directory не пуста после сбоя: %d элементов", len(entries))
	}
}

// TestDownloadService_RunnerErrorCleansStaging проверяет удаление
// staging-каталога при сбое инструмента.
func TestDownloadService_RunnerError(t *testing.T) {
	runner := &fakeDownloadRunner{err: errors.New("tool failed")}
	svc, _, holdingDir := newTestDownloadService(t, runner, nil, nil, false)

	_, err := svc.Download(context.Background(), &DownloadRequest{URL: "https://example.com/v"})
	if err == nil {
		t.Fatal("ожидалась ошибка инструмента")
	}

	entries, _ := os.ReadDir(holdingDir)
	if len(entries) != 0 {
		t.Errorf("staging-каталог не удалён после сбоя: %d элементов", len(entries))
	}
}
