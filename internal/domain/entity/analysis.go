package entity

// AnalysisRequest входные данные одного запуска конвейера.
type AnalysisRequest struct {
	Image        LesionImage
	Patient      *PatientRiskFactors
	BodyLocation *string
}

// AnalysisResult итоговый ответ конвейера.
type AnalysisResult struct {
	AnalysisID       string           `json:"analysis_id"`
	Diagnosis        Diagnosis        `json:"diagnosis"`
	ClinicalAnalysis ClinicalAnalysis `json:"clinical_analysis"`
	Visualization    Visualization    `json:"visualization"`
	RiskAssessment   RiskAssessment   `json:"risk_assessment"`
	Recommendation   string           `json:"recommendation"`
}

// Diagnosis предсказание классификатора.
type Diagnosis struct {
	PrimaryPrediction SkinClass    `json:"primary_prediction"`
	PrimaryName       string       `json:"primary_name"`
	Confidence        float64      `json:"confidence"`
	AllPredictions    []ClassScore `json:"all_predictions"`
	EnsembleConsensus *bool        `json:"ensemble_consensus"`
}

// ClinicalAnalysis признаки, посчитанные по изображению.
type ClinicalAnalysis struct {
	ABCDEScore   ABCDEScore `json:"abcde_score"`
	SkinTone     string     `json:"skin_tone"`
	BodyLocation *string    `json:"body_location"`
}

// Visualization пути к визуализациям. nil означает, что визуализации нет.
type Visualization struct {
	OverlayPath      *string `json:"overlay_path"`
	SegmentationMask *string `json:"segmentation_mask"`
}
