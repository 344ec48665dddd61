package port

import (
	"time"

	"lesion-bot/internal/domain/entity"
)

// AnalysisRecorder собирает метрики конвейера
type AnalysisRecorder interface {
	ObserveAnalysis(outcome string, elapsed time.Duration)
	SegmentationFailed()
	SaliencyFailed()
	RiskAssessed(assessment entity.RiskAssessment)
}
