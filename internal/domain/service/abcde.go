package service

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

const (
	// DefaultPixelsPerMM грубая калибровка без эталонного объекта на снимке.
	DefaultPixelsPerMM = 10.0

	colorVarianceDivisor = 2000.0
)

var errDegenerateLesion = errors.New("degenerate lesion geometry")

// ABCDEAnalyzer считает признаки поражения по правилу ABCDE.
type ABCDEAnalyzer struct {
	segmenter   port.LesionSegmenter
	pixelsPerMM float64
	logger      *slog.Logger
}

// NewABCDEAnalyzer создаёт анализатор поверх сегментатора.
func NewABCDEAnalyzer(segmenter port.LesionSegmenter, pixelsPerMM float64, logger *slog.Logger) *ABCDEAnalyzer {
	if pixelsPerMM <= 0 {
		pixelsPerMM = DefaultPixelsPerMM
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ABCDEAnalyzer{segmenter: segmenter, pixelsPerMM: pixelsPerMM, logger: logger}
}

// Analyze сегментирует поражение и считает признаки.
// Если поражение не найдено, возвращаются нейтральные значения, ошибка наружу не выходит.
func (a *ABCDEAnalyzer) Analyze(img entity.LesionImage) (score entity.ABCDEScore) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("abcde analysis panicked", "panic", r)
			score = entity.DefaultABCDEScore()
		}
	}()

	mask, err := a.segmenter.Segment(img)
	if err != nil {
		a.logger.Warn("lesion segmentation failed, using neutral ABCDE defaults", "error", err)
		return entity.DefaultABCDEScore()
	}
	return a.Score(img, mask)
}

// Score считает четыре признака по готовой маске. Каждый признак считается отдельно:
// ошибка одного заменяет только его значение на нейтральное.
func (a *ABCDEAnalyzer) Score(img entity.LesionImage, mask *entity.SegmentationMask) entity.ABCDEScore {
	score := entity.ABCDEScore{Evolution: entity.EvolutionUnknown, Valid: true}

	score.Asymmetry = round2(a.measure(&score, entity.FeatureAsymmetry, entity.DefaultAsymmetry, func() (float64, error) {
		return Asymmetry(mask)
	}))
	score.Border = round2(a.measure(&score, entity.FeatureBorder, entity.DefaultBorder, func() (float64, error) {
		return BorderIrregularity(mask.Contour)
	}))
	score.Color = round2(a.measure(&score, entity.FeatureColor, entity.DefaultColor, func() (float64, error) {
		return ColorVariation(img, mask)
	}))

	diameter := a.measure(&score, entity.FeatureDiameter, entity.DefaultDiameterMM, func() (float64, error) {
		return DiameterMM(mask.Contour, a.pixelsPerMM)
	})
	if r := round2(diameter); r > 0 {
		diameter = r
	}
	score.DiameterMM = diameter

	a.logger.Info("abcde scores",
		"asymmetry", score.Asymmetry,
		"border", score.Border,
		"color", score.Color,
		"diameter_mm", score.DiameterMM,
		"fallbacks", score.Fallbacks,
	)
	return score
}

func (a *ABCDEAnalyzer) measure(score *entity.ABCDEScore, name string, def float64, fn func() (float64, error)) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("abcde feature panicked", "feature", name, "panic", r)
			score.Fallbacks = append(score.Fallbacks, name)
			v = def
		}
	}()

	v, err := fn()
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = fmt.Errorf("non-finite value %v", v)
	}
	if err != nil {
		a.logger.Warn("abcde feature fallback", "feature", name, "default", def, "error", err)
		score.Fallbacks = append(score.Fallbacks, name)
		return def
	}
	return v
}

// Asymmetry сравнивает половины маски слева и справа от центроида:
// правая половина отражается, средняя абсолютная разница по общей ширине
// нормируется на 255 и умножается на 2.
func Asymmetry(mask *entity.SegmentationMask) (float64, error) {
	if err := validateMask(mask); err != nil {
		return 0, err
	}
	cxf, _, ok := Centroid(mask.Contour)
	if !ok {
		return 0, errDegenerateLesion
	}
	cx := int(cxf)
	if cx < 0 || cx > mask.Width {
		return 0, fmt.Errorf("centroid x=%d outside mask width %d", cx, mask.Width)
	}

	width := min(cx, mask.Width-cx)
	if width == 0 {
		return 0, errDegenerateLesion
	}

	var diff float64
	for y := 0; y < mask.Height; y++ {
		row := mask.Pix[y*mask.Width : (y+1)*mask.Width]
		for k := 0; k < width; k++ {
			left := float64(row[cx-1-k])
			right := float64(row[cx+k])
			diff += math.Abs(left - right)
		}
	}
	mean := diff / float64(width*mask.Height) / 255.0
	return clamp01(mean * 2), nil
}

// BorderIrregularity возвращает 1 - 4πS/P²: ноль для окружности, больше для рваного края.
func BorderIrregularity(contour []image.Point) (float64, error) {
	area := PolygonArea(contour)
	if area == 0 {
		return 0, errDegenerateLesion
	}
	perimeter := Perimeter(contour)
	circularity := 4 * math.Pi * area / (perimeter * perimeter)
	return clamp01(1 - circularity), nil
}

// ColorVariation средняя по каналам дисперсия цвета внутри маски, делённая на 2000.
func ColorVariation(img entity.LesionImage, mask *entity.SegmentationMask) (float64, error) {
	if err := validateMask(mask); err != nil {
		return 0, err
	}
	if img.Empty() || img.Width != mask.Width || img.Height != mask.Height {
		return 0, fmt.Errorf("mask %dx%d does not match image %dx%d", mask.Width, mask.Height, img.Width, img.Height)
	}

	var n float64
	var sum, sumSq [3]float64
	for i, m := range mask.Pix {
		if m == 0 {
			continue
		}
		n++
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i*3+c])
			sum[c] += v
			sumSq[c] += v * v
		}
	}
	if n == 0 {
		return 0, errDegenerateLesion
	}

	var avg float64
	for c := 0; c < 3; c++ {
		mean := sum[c] / n
		avg += math.Max(sumSq[c]/n-mean*mean, 0)
	}
	avg /= 3
	return clamp01(avg / colorVarianceDivisor), nil
}

// DiameterMM диаметр минимальной описанной окружности в миллиметрах.
func DiameterMM(contour []image.Point, pixelsPerMM float64) (float64, error) {
	if pixelsPerMM <= 0 {
		return 0, fmt.Errorf("invalid pixels per mm %v", pixelsPerMM)
	}
	if len(contour) == 0 {
		return 0, errDegenerateLesion
	}
	c := MinEnclosingCircle(contour)
	d := 2 * c.Radius / pixelsPerMM
	if d <= 0 {
		return 0, errDegenerateLesion
	}
	return d, nil
}

func validateMask(mask *entity.SegmentationMask) error {
	if mask == nil {
		return errors.New("nil segmentation mask")
	}
	if mask.Width <= 0 || mask.Height <= 0 || len(mask.Pix) != mask.Width*mask.Height {
		return fmt.Errorf("malformed segmentation mask %dx%d with %d pixels", mask.Width, mask.Height, len(mask.Pix))
	}
	return nil
}
