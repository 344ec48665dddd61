//go:build !gocv
// +build !gocv

package vision

import (
	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

type GoCVOverlayRenderer struct {
	Quality int
}

// NewGoCVOverlayRenderer создаёт рендерер-заглушку (без OpenCV).
func NewGoCVOverlayRenderer() *GoCVOverlayRenderer {
	return &GoCVOverlayRenderer{Quality: 90}
}

// Render возвращает ошибку, если сборка без тега gocv.
func (r *GoCVOverlayRenderer) Render(img entity.LesionImage, saliency *entity.SaliencyMap, alpha float64) ([]byte, error) {
	_ = img
	_ = saliency
	_ = alpha
	return nil, entity.ErrVisionDisabled
}

var _ port.OverlayRenderer = (*GoCVOverlayRenderer)(nil)
