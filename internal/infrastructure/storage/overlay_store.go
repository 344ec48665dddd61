package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"lesion-bot/internal/domain/port"
)

var overlayID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileOverlayStore складывает наложения Grad-CAM в каталог на диске.
type FileOverlayStore struct {
	dir       string
	urlPrefix string
}

// NewFileOverlayStore создаёт каталог dir, если его нет.
func NewFileOverlayStore(dir, urlPrefix string) (*FileOverlayStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create heatmap dir %s: %w", dir, err)
	}
	return &FileOverlayStore{dir: dir, urlPrefix: urlPrefix}, nil
}

// FileName имя файла наложения для анализа id.
func FileName(id string) string {
	return "gradcam_" + id + ".jpg"
}

// Save записывает JPEG и возвращает путь вида <prefix>/gradcam_<id>.jpg.
func (s *FileOverlayStore) Save(ctx context.Context, id string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !overlayID.MatchString(id) {
		return "", fmt.Errorf("invalid overlay id %q", id)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty overlay %s", id)
	}

	name := FileName(id)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create overlay %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write overlay %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close overlay %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("store overlay %s: %w", name, err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Path абсолютный путь к файлу наложения на диске.
func (s *FileOverlayStore) Path(id string) string {
	return filepath.Join(s.dir, FileName(id))
}

var _ port.OverlayStore = (*FileOverlayStore)(nil)
