package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"lesion-bot/internal/domain/entity"
)

// Ключи команды /profile.
const (
	profileAge     = "age"
	profileGender  = "gender"
	profileSkin    = "skin"
	profileFamily  = "family"
	profileSmoking = "smoking"
	profileChecks  = "checks"
)

// ParseProfile разбирает аргументы /profile вида "age=65 skin=II family=melanoma"
// и возвращает функцию, применяющую их к профилю. Профиль меняется только
// если разобраны все пары.
func ParseProfile(args string) (func(*entity.PatientRiskFactors), error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no profile fields")
	}

	var updates []func(*entity.PatientRiskFactors)
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || value == "" {
			return nil, fmt.Errorf("expected key=value, got %q", field)
		}

		update, err := profileUpdate(strings.ToLower(key), value)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}

	return func(p *entity.PatientRiskFactors) {
		for _, update := range updates {
			update(p)
		}
	}, nil
}

func profileUpdate(key, value string) (func(*entity.PatientRiskFactors), error) {
	switch key {
	case profileAge:
		age, err := strconv.Atoi(value)
		if err != nil || age < 0 || age > 130 {
			return nil, fmt.Errorf("age must be a number between 0 and 130, got %q", value)
		}
		return func(p *entity.PatientRiskFactors) { p.Age = &age }, nil

	case profileGender:
		return func(p *entity.PatientRiskFactors) { p.Gender = &value }, nil

	case profileSkin:
		tone, ok := entity.ParseFitzpatrick(value)
		if !ok {
			return nil, fmt.Errorf("skin must be a Fitzpatrick type I-VI, got %q", value)
		}
		label := tone.String()
		return func(p *entity.PatientRiskFactors) { p.SkinType = &label }, nil

	case profileFamily:
		history := make(map[string]bool)
		if strings.ToLower(value) != "none" {
			for _, item := range strings.Split(value, ",") {
				item = strings.ToLower(strings.TrimSpace(item))
				if item == "" {
					continue
				}
				history[item] = true
			}
		}
		return func(p *entity.PatientRiskFactors) { p.FamilyHistory = history }, nil

	case profileSmoking:
		return historyFlag(entity.HistorySmoking, value)

	case profileChecks:
		return historyFlag(entity.HistoryRegularSkinChecks, value)

	default:
		return nil, fmt.Errorf("unknown profile field %q", key)
	}
}

func historyFlag(key, value string) (func(*entity.PatientRiskFactors), error) {
	flag, err := parseYesNo(value)
	if err != nil {
		return nil, err
	}
	return func(p *entity.PatientRiskFactors) {
		if p.MedicalHistory == nil {
			p.MedicalHistory = make(map[string]bool)
		}
		p.MedicalHistory[key] = flag
	}, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "да", "true", "1":
		return true, nil
	case "no", "n", "нет", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", s)
}
