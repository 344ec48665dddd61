package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

// Limits ограничения на загружаемое изображение.
type Limits struct {
	MaxBytes int64 // максимальный размер файла
	MinSide  int   // минимальная сторона в пикселях
	MaxSide  int   // максимальная сторона в пикселях
}

// DefaultLimits 10 МБ и стороны от 100 до 4000 пикселей.
func DefaultLimits() Limits {
	return Limits{MaxBytes: 10 << 20, MinSide: 100, MaxSide: 4000}
}

// Decode проверяет и декодирует изображение в RGB.
// Размеры проверяются по заголовку до полного декодирования.
func Decode(data []byte, limits Limits) (entity.LesionImage, error) {
	if len(data) == 0 {
		return entity.LesionImage{}, fmt.Errorf("%w: empty payload", entity.ErrInvalidImage)
	}
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return entity.LesionImage{}, fmt.Errorf("%w: size %d exceeds %d bytes", entity.ErrInvalidImage, len(data), limits.MaxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entity.LesionImage{}, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	if limits.MaxSide > 0 && (cfg.Width > limits.MaxSide || cfg.Height > limits.MaxSide) {
		return entity.LesionImage{}, fmt.Errorf("%w: dimensions %dx%d too large (max %dx%d)",
			entity.ErrInvalidImage, cfg.Width, cfg.Height, limits.MaxSide, limits.MaxSide)
	}
	if cfg.Width < limits.MinSide || cfg.Height < limits.MinSide {
		return entity.LesionImage{}, fmt.Errorf("%w: dimensions %dx%d too small (min %dx%d)",
			entity.ErrInvalidImage, cfg.Width, cfg.Height, limits.MinSide, limits.MinSide)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return entity.LesionImage{}, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}

	img := entity.FromImage(src)
	img.Format = format
	img.Raw = data
	return img, nil
}

// Decoder декодер загрузок с фиксированными ограничениями.
type Decoder struct {
	Limits Limits
}

// NewDecoder создаёт декодер. Нулевой maxBytes означает ограничение по умолчанию.
func NewDecoder(maxBytes int64) *Decoder {
	limits := DefaultLimits()
	if maxBytes > 0 {
		limits.MaxBytes = maxBytes
	}
	return &Decoder{Limits: limits}
}

func (d *Decoder) Decode(data []byte) (entity.LesionImage, error) {
	return Decode(data, d.Limits)
}

var _ port.ImageDecoder = (*Decoder)(nil)
