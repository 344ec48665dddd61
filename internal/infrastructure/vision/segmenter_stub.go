//go:build !gocv
// +build !gocv

package vision

import (
	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

type GoCVSegmenter struct {
	BlurKernel int
}

// NewGoCVSegmenter создаёт сегментатор-заглушку (без OpenCV).
func NewGoCVSegmenter() *GoCVSegmenter {
	return &GoCVSegmenter{BlurKernel: 5}
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *GoCVSegmenter) Segment(img entity.LesionImage) (*entity.SegmentationMask, error) {
	_ = img
	return nil, entity.ErrVisionDisabled
}

var _ port.LesionSegmenter = (*GoCVSegmenter)(nil)
