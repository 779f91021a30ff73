// readiness.go — проверки готовности для /health/ready.
// Две зависимости: исполняемый файл yt-dlp в PATH и доступная на запись
// holding directory.
package service

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ToolChecker — проверка доступности внешнего инструмента yt-dlp.
type ToolChecker struct {
	bin string
}

// NewToolChecker создаёт проверку инструмента.
func NewToolChecker(bin string) *ToolChecker {
	return &ToolChecker{bin: bin}
}

// CheckReady проверяет, что бинарник yt-dlp находится в PATH.
func (c *ToolChecker) CheckReady() (status, message string) {
	path, err := exec.LookPath(c.bin)
	if err != nil {
		return "fail", fmt.Sprintf("yt-dlp не найден: %v", err)
	}
	return "ok", path
}

// StorageChecker — проверка доступности holding directory на запись.
type StorageChecker struct {
	dir string
}

// NewStorageChecker создаёт проверку holding directory.
func NewStorageChecker(dir string) *StorageChecker {
	return &StorageChecker{dir: dir}
}

// CheckReady проверяет запись во временный файл внутри holding directory.
func (c *StorageChecker) CheckReady() (status, message string) {
	probe := filepath.Join(c.dir, ".readiness-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return "fail", fmt.Sprintf("holding directory недоступна на запись: %v", err)
	}
	_ = os.Remove(probe)
	return "ok", c.dir
}
