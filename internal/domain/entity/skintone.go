package entity

import (
	"strconv"
	"strings"
)

// FitzpatrickType тип кожи по шкале Фицпатрика, от I до VI.
type FitzpatrickType int

const (
	FitzpatrickI FitzpatrickType = iota + 1
	FitzpatrickII
	FitzpatrickIII
	FitzpatrickIV
	FitzpatrickV
	FitzpatrickVI
)

// DefaultSkinTone возвращается, когда изображение не удалось прочитать.
const DefaultSkinTone = FitzpatrickIII

var romanNumerals = []string{"I", "II", "III", "IV", "V", "VI"}

// String возвращает короткое имя вида "Type III".
func (t FitzpatrickType) String() string {
	if t < FitzpatrickI || t > FitzpatrickVI {
		return "Type ?"
	}
	return "Type " + romanNumerals[t-1]
}

// Label добавляет суффикс шкалы для отображения: "Type III (Fitzpatrick)".
func (t FitzpatrickType) Label() string {
	return t.String() + " (Fitzpatrick)"
}

// Fair сообщает о светлой коже (типы I и II).
func (t FitzpatrickType) Fair() bool {
	return t == FitzpatrickI || t == FitzpatrickII
}

// ParseFitzpatrick разбирает "Type II", "II", "2" или "Type II (Fitzpatrick)".
func ParseFitzpatrick(s string) (FitzpatrickType, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimSpace(strings.TrimSuffix(v, "(FITZPATRICK)"))
	v = strings.TrimSpace(strings.TrimPrefix(v, "TYPE"))
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 1 && n <= 6 {
			return FitzpatrickType(n), true
		}
		return 0, false
	}
	for i, r := range romanNumerals {
		if v == r {
			return FitzpatrickType(i + 1), true
		}
	}
	return 0, false
}
