package entity

import "image"

// Evolution отражает изменение поражения во времени.
// Для одного снимка оно всегда неизвестно.
type Evolution string

const EvolutionUnknown Evolution = "unknown"

// Имена признаков ABCDE, используются в списке подставленных значений.
const (
	FeatureAsymmetry = "asymmetry"
	FeatureBorder    = "border"
	FeatureColor     = "color"
	FeatureDiameter  = "diameter_mm"
)

// Нейтральные значения признаков, которые подставляются при ошибке расчёта.
const (
	DefaultAsymmetry  = 0.5
	DefaultBorder     = 0.5
	DefaultColor      = 0.5
	DefaultDiameterMM = 5.0
)

// SegmentationMask бинарная маска поражения и его внешний контур.
type SegmentationMask struct {
	Width   int           // ширина маски, совпадает с изображением
	Height  int           // высота маски
	Pix     []byte        // 255 внутри поражения, 0 снаружи
	Contour []image.Point // внешний контур по порядку обхода
}

// Inside сообщает, принадлежит ли пиксель поражению.
func (m *SegmentationMask) Inside(x, y int) bool {
	return m.Pix[y*m.Width+x] != 0
}

// Area возвращает число пикселей поражения.
func (m *SegmentationMask) Area() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// ABCDEScore признаки поражения по правилу ABCDE.
// Asymmetry, Border и Color лежат в [0, 1], DiameterMM строго больше нуля.
// Valid равен false, если сегментация не удалась и все поля взяты по умолчанию;
// Fallbacks перечисляет признаки, для которых подставлено нейтральное значение.
type ABCDEScore struct {
	Asymmetry  float64   `json:"asymmetry"`
	Border     float64   `json:"border"`
	Color      float64   `json:"color"`
	DiameterMM float64   `json:"diameter_mm"`
	Evolution  Evolution `json:"evolution"`
	Valid      bool      `json:"valid"`
	Fallbacks  []string  `json:"fallbacks,omitempty"`
}

// DefaultABCDEScore возвращает нейтральные значения для случая, когда поражение не найдено.
func DefaultABCDEScore() ABCDEScore {
	return ABCDEScore{
		Asymmetry:  DefaultAsymmetry,
		Border:     DefaultBorder,
		Color:      DefaultColor,
		DiameterMM: DefaultDiameterMM,
		Evolution:  EvolutionUnknown,
		Valid:      false,
		Fallbacks:  []string{FeatureAsymmetry, FeatureBorder, FeatureColor, FeatureDiameter},
	}
}

// Complete сообщает, что все признаки посчитаны, а не подставлены.
func (s ABCDEScore) Complete() bool {
	return s.Valid && len(s.Fallbacks) == 0
}
