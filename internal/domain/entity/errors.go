package entity

import "errors"

var (
	// ErrSegmentationFailure контур поражения не найден.
	ErrSegmentationFailure = errors.New("segmentation failure: no lesion contour found")
	// ErrSaliencyGeneration карту важности построить не удалось.
	ErrSaliencyGeneration = errors.New("saliency generation failure")
	// ErrClassifierInvocation классификатор вернул ошибку, анализ прерывается.
	ErrClassifierInvocation = errors.New("classifier invocation failure")
	// ErrRiskScoring правила оценки риска не удалось применить.
	ErrRiskScoring = errors.New("risk scoring failure")

	ErrLayerNotFound      = errors.New("target layer not found")
	ErrDegenerateSaliency = errors.New("saliency map has zero dynamic range")
	ErrInvalidImage       = errors.New("invalid image")
	ErrVisionDisabled     = errors.New("gocv build tag is not enabled")
)
