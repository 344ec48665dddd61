package service

import (
	"fmt"
	"log/slog"
	"math"

	"lesion-bot/internal/domain/entity"
)

const (
	noRiskFactors      = "No significant risk factors identified"
	incompleteFactor   = "Unable to complete full risk assessment"
	missingABCDEPrefix = "abcde."
	missingPatient     = "patient_risk_factors"
)

// RiskScorer детерминированная аддитивная оценка риска меланомы.
type RiskScorer struct {
	rules  RiskRules
	logger *slog.Logger
}

func NewRiskScorer(rules RiskRules, logger *slog.Logger) *RiskScorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskScorer{rules: rules, logger: logger}
}

// Rules возвращает действующую таблицу правил.
func (s *RiskScorer) Rules() RiskRules {
	return s.rules
}

// Assess всегда возвращает заполненную оценку. Если правила применить не удалось,
// возвращается резервный результат с Degraded = true.
func (s *RiskScorer) Assess(class entity.SkinClass, confidence float64, abcde entity.ABCDEScore, patient *entity.PatientRiskFactors) (result entity.RiskAssessment) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("risk scoring panicked", "panic", r)
			result = s.Degraded()
		}
	}()

	result, err := s.score(class, confidence, abcde, patient)
	if err != nil {
		s.logger.Warn("risk scoring degraded", "error", err)
		return s.Degraded()
	}

	s.logger.Info("risk assessment",
		"overall_risk", result.OverallRisk,
		"score", result.MelanomaRiskScore,
		"missing_inputs", result.MissingInputs,
	)
	return result
}

// Degraded резервный результат: средний риск 0.5 и общая рекомендация.
func (s *RiskScorer) Degraded() entity.RiskAssessment {
	return entity.RiskAssessment{
		OverallRisk:       entity.RiskMedium,
		MelanomaRiskScore: 0.5,
		RiskFactors:       []string{incompleteFactor},
		ProtectiveFactors: []string{},
		Recommendation:    s.rules.Recommendations.Degraded,
		Degraded:          true,
	}
}

func (s *RiskScorer) score(class entity.SkinClass, confidence float64, abcde entity.ABCDEScore, patient *entity.PatientRiskFactors) (entity.RiskAssessment, error) {
	r := s.rules
	if class == "" {
		return entity.RiskAssessment{}, fmt.Errorf("%w: empty predicted class", entity.ErrRiskScoring)
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return entity.RiskAssessment{}, fmt.Errorf("%w: confidence %v outside [0, 1]", entity.ErrRiskScoring, confidence)
	}
	for name, v := range map[string]float64{
		entity.FeatureAsymmetry: abcde.Asymmetry,
		entity.FeatureBorder:    abcde.Border,
		entity.FeatureColor:     abcde.Color,
		entity.FeatureDiameter:  abcde.DiameterMM,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return entity.RiskAssessment{}, fmt.Errorf("%w: abcde %s is not finite", entity.ErrRiskScoring, name)
		}
	}

	var (
		risk       float64
		factors    []string
		protective = []string{}
		missing    []string
	)

	switch {
	case class == r.MelanomaClass:
		risk = confidence
		factors = append(factors, fmt.Sprintf("AI detected melanoma (confidence: %.2f%%)", confidence*100))
	case r.malignant(class):
		risk = r.MalignantBase
		factors = append(factors, fmt.Sprintf("AI detected %s", class))
	default:
		risk = r.BenignBase
	}

	if !abcde.Valid {
		missing = append(missing, missingABCDEPrefix+"all")
	} else {
		for _, f := range abcde.Fallbacks {
			missing = append(missing, missingABCDEPrefix+f)
		}
	}
	if abcde.Asymmetry > r.Asymmetry.Threshold {
		risk += r.Asymmetry.Increment
		factors = append(factors, "High asymmetry score")
	}
	if abcde.Border > r.Border.Threshold {
		risk += r.Border.Increment
		factors = append(factors, "Irregular border detected")
	}
	if abcde.Color > r.Color.Threshold {
		risk += r.Color.Increment
		factors = append(factors, "High color variation")
	}
	if abcde.DiameterMM > r.Diameter.Threshold {
		risk += r.Diameter.Increment
		factors = append(factors, fmt.Sprintf("Lesion diameter > %gmm (%.1fmm)", r.Diameter.Threshold, abcde.DiameterMM))
	}

	if patient == nil {
		missing = append(missing, missingPatient)
	} else {
		if patient.Age != nil {
			age := *patient.Age
			switch {
			case age < 0:
				return entity.RiskAssessment{}, fmt.Errorf("%w: negative age %d", entity.ErrRiskScoring, age)
			case age > r.SeniorAge:
				risk += r.SeniorIncrement
				factors = append(factors, fmt.Sprintf("Age > %d", r.SeniorAge))
			case age < r.YoungAge:
				protective = append(protective, fmt.Sprintf("Age < %d", r.YoungAge))
			}
		}

		if patient.SkinType != nil {
			if t, ok := entity.ParseFitzpatrick(*patient.SkinType); ok && t.Fair() {
				risk += r.FairSkinIncrement
				factors = append(factors, "Fair skin (Fitzpatrick Type I-II)")
			} else if !ok {
				s.logger.Debug("unrecognized skin type ignored", "skin_type", *patient.SkinType)
			}
		}

		for _, key := range r.FamilyHistoryKeys {
			if patient.FamilyHistory[key] {
				risk += r.FamilyHistoryIncrement
				factors = append(factors, "Family history of melanoma/skin cancer")
				break
			}
		}

		if smoking, ok := patient.MedicalHistory[entity.HistorySmoking]; ok && !smoking {
			protective = append(protective, "Non-smoker")
		}
		if patient.MedicalHistory[entity.HistoryRegularSkinChecks] {
			protective = append(protective, "Regular skin checks")
		}
	}

	risk = clamp01(risk)
	tier := r.Tier(risk)
	if len(factors) == 0 {
		factors = []string{noRiskFactors}
	}

	return entity.RiskAssessment{
		OverallRisk:       tier,
		MelanomaRiskScore: risk,
		RiskFactors:       factors,
		ProtectiveFactors: protective,
		Recommendation:    r.Recommendation(tier),
		MissingInputs:     missing,
	}, nil
}
