package entity

// RiskTier уровень риска.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// PatientRiskFactors данные пациента, собранные до анализа.
// Любое поле может отсутствовать.
type PatientRiskFactors struct {
	Age            *int            `json:"age" yaml:"age"`
	Gender         *string         `json:"gender" yaml:"gender"`
	SkinType       *string         `json:"skin_type" yaml:"skin_type"`
	FamilyHistory  map[string]bool `json:"family_history" yaml:"family_history"`
	MedicalHistory map[string]bool `json:"medical_history" yaml:"medical_history"`
}

// Ключи медицинского анамнеза, которые учитывает оценка риска.
const (
	HistorySmoking           = "smoking"
	HistoryRegularSkinChecks = "regular_skin_checks"
	HistoryMelanoma          = "melanoma"
	HistorySkinCancer        = "skin_cancer"
)

// RiskAssessment итог оценки риска меланомы.
// Degraded выставляется только у резервного результата, когда правила не удалось применить.
type RiskAssessment struct {
	OverallRisk       RiskTier `json:"overall_risk"`
	MelanomaRiskScore float64  `json:"melanoma_risk_score"`
	RiskFactors       []string `json:"risk_factors"`
	ProtectiveFactors []string `json:"protective_factors"`
	Recommendation    string   `json:"recommendation"`
	Degraded          bool     `json:"degraded"`
	MissingInputs     []string `json:"missing_inputs,omitempty"`
}
