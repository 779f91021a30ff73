// Пакет ytdlp — обёртка над внешним бинарником yt-dlp.
// Runner запускает процесс с ограничением по времени, полностью буферизует
// stdout/stderr и разбирает JSON-вывод. Вся логика извлечения видео
// делегирована бинарнику — пакет не знает ничего о конкретных сайтах.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// Ошибки запуска внешнего инструмента.
var (
	// ErrEmptyOutput — нулевой код выхода, но пустой stdout.
	ErrEmptyOutput = errors.New("yt-dlp завершился успешно, но не вернул данных")
)

const (
	// stderrPrefixLen — сколько байт stderr попадает в текст ошибки.
	stderrPrefixLen = 200
	// killGrace — окно между SIGTERM и принудительным SIGKILL при таймауте.
	killGrace = 5 * time.Second
)

// TimeoutError — процесс не уложился в отведённое время и был остановлен.
type TimeoutError struct {
	// Stderr — усечённый префикс stderr для диагностики
	Stderr string
}

func (e *TimeoutError) Error() string {
	if e.Stderr == "" {
		return "yt-dlp: превышен таймаут выполнения"
	}
	return fmt.Sprintf("yt-dlp: превышен таймаут выполнения: %s", e.Stderr)
}

// ToolError — процесс завершился с ненулевым кодом выхода.
type ToolError struct {
	// ExitCode — код выхода процесса
	ExitCode int
	// Signal — имя сигнала, если процесс был убит сигналом
	Signal string
	// Stderr — усечённый префикс stderr
	Stderr string
}

func (e *ToolError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("yt-dlp завершился по сигналу %s: %s", e.Signal, e.Stderr)
	}
	return fmt.Sprintf("yt-dlp завершился с кодом %d: %s", e.ExitCode, e.Stderr)
}

// Runner — исполнитель вызовов yt-dlp.
type Runner struct {
	bin             string
	infoTimeout     time.Duration
	downloadTimeout time.Duration
	logger          *slog.Logger
}

// NewRunner создаёт Runner.
// bin — путь к бинарнику yt-dlp (или имя в PATH).
func NewRunner(bin string, infoTimeout, downloadTimeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		bin:             bin,
		infoTimeout:     infoTimeout,
		downloadTimeout: downloadTimeout,
		logger:          logger.With(slog.String("component", "ytdlp_runner")),
	}
}

// Bin возвращает настроенный путь к бинарнику (для readiness probe).
func (r *Runner) Bin() string {
	return r.bin
}

// RawInfo — ответ yt-dlp --dump-json до нормализации.
type RawInfo struct {
	Title     string      `json:"title"`
	Thumbnail string      `json:"thumbnail"`
	Duration  float64     `json:"duration"`
	Uploader  string      `json:"uploader"`
	Channel   string      `json:"channel"`
	ViewCount int64       `json:"view_count"`
	Formats   []RawFormat `json:"formats"`
}

// RawFormat — одна запись formats[] из вывода yt-dlp.
// Набор полей разнится между версиями инструмента, поэтому все поля
// необязательные, со значениями по умолчанию на стороне нормализатора.
type RawFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	Resolution     string   `json:"resolution"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *int64   `json:"filesize_approx"`
	FormatNote     string   `json:"format_note"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	FPS            *float64 `json:"fps"`
}

// FetchInfo запрашивает метаданные видео (--dump-json) и разбирает первый
// JSON-объект вывода. Таймаут — infoTimeout.
func (r *Runner) FetchInfo(ctx context.Context, url string) (*RawInfo, error) {
	stdout, err := r.run(ctx, r.infoTimeout,
		"--dump-json", "--no-warnings", "--no-playlist", url)
	if err != nil {
		return nil, err
	}
	return parseInfoOutput(stdout)
}

// Download скачивает видео в destDir с указанным format-выражением.
// Возвращает путь к готовому файлу. Таймаут — downloadTimeout.
// Имя файла формируется шаблоном %(title)s.%(ext)s — из него гейтвей
// получает человекочитаемое имя для Content-Disposition.
func (r *Runner) Download(ctx context.Context, url, formatExpr, destDir string) (string, error) {
	args := []string{
		"-f", formatExpr,
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		"--no-playlist",
		"--no-warnings",
		"--no-cache-dir",
		"--print", "after_move:filepath",
		url,
	}

	stdout, err := r.run(ctx, r.downloadTimeout, args...)
	if err != nil {
		return "", err
	}

	path := extractFilePath(stdout, destDir)
	if path == "" {
		return "", fmt.Errorf("не удалось определить путь скачанного файла")
	}
	return path, nil
}

// run выполняет один вызов yt-dlp: полная буферизация stdout/stderr,
// таймаут с graceful-завершением (SIGTERM, затем SIGKILL через killGrace).
// Вывод буферизуется целиком, НЕ построчно: JSON метаданных бывает
// больше любого разумного размера строки.
func (r *Runner) run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// При отмене контекста — SIGTERM; если процесс не умер за killGrace,
	// exec принудительно убивает его (WaitDelay).
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGrace

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	r.logger.Debug("yt-dlp завершился",
		slog.Duration("duration", duration),
		slog.Int("stdout_bytes", stdout.Len()),
		slog.Int("stderr_bytes", stderr.Len()),
	)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Stderr: stderrPrefix(stderr.Bytes())}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			sig := ""
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				sig = ws.Signal().String()
			}
			return nil, &ToolError{
				ExitCode: exitErr.ExitCode(),
				Signal:   sig,
				Stderr:   stderrPrefix(stderr.Bytes()),
			}
		}
		return nil, fmt.Errorf("запуск %s: %w", r.bin, err)
	}

	if len(bytes.TrimSpace(stdout.Bytes())) == 0 {
		return nil, ErrEmptyOutput
	}

	return stdout.Bytes(), nil
}

// parseInfoOutput разбирает newline-delimited JSON вывод --dump-json.
// С --no-playlist ожидается один объект, но разбор устойчив к
// нескольким строкам: берётся первый валидный объект.
func parseInfoOutput(out []byte) (*RawInfo, error) {
	for _, line := range bytes.Split(out, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var info RawInfo
		if err := json.Unmarshal(line, &info); err != nil {
			continue
		}
		return &info, nil
	}
	return nil, fmt.Errorf("не удалось разобрать JSON-вывод yt-dlp")
}

// extractFilePath находит путь скачанного файла в stdout
// (--print after_move:filepath печатает его последней строкой).
// Fallback — самый свежий файл в destDir.
func extractFilePath(out []byte, destDir string) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		if _, err := os.Stat(line); err == nil {
			return line
		}
	}

	// Fallback: единственный (или самый свежий) файл в staging-каталоге
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return ""
	}
	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(destDir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	return newest
}

// stderrPrefix усекает stderr до stderrPrefixLen байт для текста ошибки.
func stderrPrefix(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= stderrPrefixLen {
		return s
	}
	return s[:stderrPrefixLen] + "..."
}
