package port

import "lesion-bot/internal/domain/entity"

// LesionSegmenter отделяет поражение от окружающей кожи
type LesionSegmenter interface {
	// Segment возвращает маску крупнейшего контура или entity.ErrSegmentationFailure
	Segment(img entity.LesionImage) (*entity.SegmentationMask, error)
}
