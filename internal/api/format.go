package telegram

import (
	"fmt"
	"sort"
	"strings"

	"lesion-bot/internal/domain/entity"
)

var riskLabels = map[entity.RiskTier]string{
	entity.RiskLow:    "🟢 низкий",
	entity.RiskMedium: "🟡 средний",
	entity.RiskHigh:   "🔴 высокий",
}

// FormatResult готовит текстовый ответ по результату анализа.
func FormatResult(res *entity.AnalysisResult) string {
	var sb strings.Builder

	d := res.Diagnosis
	sb.WriteString("🔬 Результат анализа\n\n")
	fmt.Fprintf(&sb, "Предполагаемый диагноз: %s (%s), уверенность %.1f%%\n", d.PrimaryName, d.PrimaryPrediction, d.Confidence*100)
	if len(d.AllPredictions) > 1 {
		sb.WriteString("Другие варианты:\n")
		for _, p := range d.AllPredictions[1:] {
			fmt.Fprintf(&sb, "• %s — %.1f%%\n", p.Name, p.Confidence*100)
		}
	}

	c := res.ClinicalAnalysis
	a := c.ABCDEScore
	sb.WriteString("\n📐 ABCDE\n")
	fmt.Fprintf(&sb, "A асимметрия: %.2f\n", a.Asymmetry)
	fmt.Fprintf(&sb, "B граница: %.2f\n", a.Border)
	fmt.Fprintf(&sb, "C цвет: %.2f\n", a.Color)
	fmt.Fprintf(&sb, "D диаметр: %.1f мм\n", a.DiameterMM)
	if !a.Valid {
		sb.WriteString("⚠️ Контур поражения не найден, показаны значения по умолчанию\n")
	} else if len(a.Fallbacks) > 0 {
		fmt.Fprintf(&sb, "⚠️ По умолчанию: %s\n", strings.Join(a.Fallbacks, ", "))
	}
	fmt.Fprintf(&sb, "\nТон кожи: %s\n", c.SkinTone)
	if c.BodyLocation != nil {
		fmt.Fprintf(&sb, "Локализация: %s\n", *c.BodyLocation)
	}

	r := res.RiskAssessment
	fmt.Fprintf(&sb, "\n⚖️ Риск: %s (%.2f)\n", riskLabel(r.OverallRisk), r.MelanomaRiskScore)
	if r.Degraded {
		sb.WriteString("⚠️ Оценка риска неполная\n")
	}
	writeList(&sb, "Факторы риска:", r.RiskFactors)
	writeList(&sb, "Защитные факторы:", r.ProtectiveFactors)

	fmt.Fprintf(&sb, "\n💡 %s\n", res.Recommendation)
	if res.Visualization.OverlayPath == nil {
		sb.WriteString("\nТепловая карта недоступна.")
	}
	sb.WriteString("\nЭто не диагноз. Обратитесь к дерматологу.")

	return sb.String()
}

// FormatProfile показывает сохранённые факторы риска.
func FormatProfile(p *entity.PatientRiskFactors) string {
	if p == nil {
		return msgProfileEmpty
	}

	var sb strings.Builder
	sb.WriteString("👤 Профиль\n")
	if p.Age != nil {
		fmt.Fprintf(&sb, "Возраст: %d\n", *p.Age)
	}
	if p.Gender != nil {
		fmt.Fprintf(&sb, "Пол: %s\n", *p.Gender)
	}
	if p.SkinType != nil {
		fmt.Fprintf(&sb, "Тип кожи: %s\n", *p.SkinType)
	}
	if keys := trueKeys(p.FamilyHistory); len(keys) > 0 {
		fmt.Fprintf(&sb, "Семейный анамнез: %s\n", strings.Join(keys, ", "))
	}
	if v, ok := p.MedicalHistory[entity.HistorySmoking]; ok {
		fmt.Fprintf(&sb, "Курение: %s\n", yesNo(v))
	}
	if v, ok := p.MedicalHistory[entity.HistoryRegularSkinChecks]; ok {
		fmt.Fprintf(&sb, "Регулярные осмотры: %s\n", yesNo(v))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func riskLabel(t entity.RiskTier) string {
	if l, ok := riskLabels[t]; ok {
		return l
	}
	return string(t)
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + "\n")
	for _, item := range items {
		sb.WriteString("• " + item + "\n")
	}
}

func trueKeys(m map[string]bool) []string {
	var keys []string
	for k, v := range m {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}
