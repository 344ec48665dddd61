package service

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lesion-bot/internal/domain/entity"
)

// Gate порог признака и прибавка к риску, если порог превышен.
type Gate struct {
	Threshold float64 `yaml:"threshold"`
	Increment float64 `yaml:"increment"`
}

// Recommendations тексты рекомендаций по уровням риска.
type Recommendations struct {
	Low      string `yaml:"low"`
	Medium   string `yaml:"medium"`
	High     string `yaml:"high"`
	Degraded string `yaml:"degraded"`
}

// RiskRules все константы оценки риска в одной таблице.
type RiskRules struct {
	LowThreshold  float64 `yaml:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold"`

	MelanomaClass    entity.SkinClass   `yaml:"melanoma_class"`
	MalignantClasses []entity.SkinClass `yaml:"malignant_classes"`
	MalignantBase    float64            `yaml:"malignant_base"`
	BenignBase       float64            `yaml:"benign_base"`

	Asymmetry Gate `yaml:"asymmetry"`
	Border    Gate `yaml:"border"`
	Color     Gate `yaml:"color"`
	Diameter  Gate `yaml:"diameter_mm"`

	SeniorAge              int      `yaml:"senior_age"`
	SeniorIncrement        float64  `yaml:"senior_increment"`
	YoungAge               int      `yaml:"young_age"`
	FairSkinIncrement      float64  `yaml:"fair_skin_increment"`
	FamilyHistoryIncrement float64  `yaml:"family_history_increment"`
	FamilyHistoryKeys      []string `yaml:"family_history_keys"`

	Recommendations Recommendations `yaml:"recommendations"`
}

// DefaultRiskRules возвращает исходные пороги и прибавки.
func DefaultRiskRules() RiskRules {
	return RiskRules{
		LowThreshold:  0.3,
		HighThreshold: 0.7,

		MelanomaClass:    entity.ClassMEL,
		MalignantClasses: []entity.SkinClass{entity.ClassBCC, entity.ClassSCC},
		MalignantBase:    0.3,
		BenignBase:       0.1,

		Asymmetry: Gate{Threshold: 0.6, Increment: 0.1},
		Border:    Gate{Threshold: 0.6, Increment: 0.1},
		Color:     Gate{Threshold: 0.7, Increment: 0.1},
		Diameter:  Gate{Threshold: 6, Increment: 0.15},

		SeniorAge:              60,
		SeniorIncrement:        0.1,
		YoungAge:               30,
		FairSkinIncrement:      0.15,
		FamilyHistoryIncrement: 0.2,
		FamilyHistoryKeys:      []string{entity.HistoryMelanoma, entity.HistorySkinCancer},

		Recommendations: Recommendations{
			Low:      "Monitor lesion. Schedule routine dermatology check-up.",
			Medium:   "Dermatologist consultation recommended within 4 weeks.",
			High:     "Urgent dermatologist consultation recommended within 2 weeks.",
			Degraded: "Consult with a dermatologist for proper evaluation.",
		},
	}
}

// LoadRiskRules накладывает YAML-файл на значения по умолчанию.
// Пустой путь возвращает значения по умолчанию.
func LoadRiskRules(path string) (RiskRules, error) {
	rules := DefaultRiskRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RiskRules{}, fmt.Errorf("read risk rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RiskRules{}, fmt.Errorf("parse risk rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return RiskRules{}, fmt.Errorf("risk rules %s: %w", path, err)
	}
	return rules, nil
}

// Validate проверяет согласованность таблицы.
func (r RiskRules) Validate() error {
	var errs []error
	if !(r.LowThreshold > 0 && r.LowThreshold < r.HighThreshold && r.HighThreshold <= 1) {
		errs = append(errs, fmt.Errorf("thresholds must satisfy 0 < low (%v) < high (%v) <= 1", r.LowThreshold, r.HighThreshold))
	}
	if _, err := entity.ParseSkinClass(string(r.MelanomaClass)); err != nil {
		errs = append(errs, fmt.Errorf("melanoma_class: %w", err))
	}
	for _, c := range r.MalignantClasses {
		if _, err := entity.ParseSkinClass(string(c)); err != nil {
			errs = append(errs, fmt.Errorf("malignant_classes: %w", err))
		}
	}
	for name, v := range map[string]float64{"malignant_base": r.MalignantBase, "benign_base": r.BenignBase} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %v", name, v))
		}
	}
	increments := map[string]float64{
		"asymmetry.increment":      r.Asymmetry.Increment,
		"border.increment":         r.Border.Increment,
		"color.increment":          r.Color.Increment,
		"diameter_mm.increment":    r.Diameter.Increment,
		"senior_increment":         r.SeniorIncrement,
		"fair_skin_increment":      r.FairSkinIncrement,
		"family_history_increment": r.FamilyHistoryIncrement,
	}
	for name, v := range increments {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}
	return errors.Join(errs...)
}

// Tier переводит числовой риск в уровень по двум порогам.
func (r RiskRules) Tier(score float64) entity.RiskTier {
	switch {
	case score < r.LowThreshold:
		return entity.RiskLow
	case score < r.HighThreshold:
		return entity.RiskMedium
	default:
		return entity.RiskHigh
	}
}

// Recommendation текст рекомендации для уровня.
func (r RiskRules) Recommendation(tier entity.RiskTier) string {
	switch tier {
	case entity.RiskLow:
		return r.Recommendations.Low
	case entity.RiskMedium:
		return r.Recommendations.Medium
	default:
		return r.Recommendations.High
	}
}

func (r RiskRules) malignant(c entity.SkinClass) bool {
	for _, m := range r.MalignantClasses {
		if m == c {
			return true
		}
	}
	return false
}
