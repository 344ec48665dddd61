package service

import (
	"log/slog"
	"math"

	"lesion-bot/internal/domain/entity"
)

// FitzpatrickReference примерный диапазон RGB для типа кожи.
type FitzpatrickReference struct {
	Type        entity.FitzpatrickType
	Description string
	Min         [3]float64
	Max         [3]float64
}

// Midpoint середина диапазона, используется как центроид класса.
func (r FitzpatrickReference) Midpoint() [3]float64 {
	return [3]float64{(r.Min[0] + r.Max[0]) / 2, (r.Min[1] + r.Max[1]) / 2, (r.Min[2] + r.Max[2]) / 2}
}

// FitzpatrickReferences справочные диапазоны для шести типов.
var FitzpatrickReferences = []FitzpatrickReference{
	{entity.FitzpatrickI, "Pale white skin, always burns, never tans", [3]float64{240, 234, 230}, [3]float64{255, 250, 245}},
	{entity.FitzpatrickII, "White skin, burns easily, tans minimally", [3]float64{230, 215, 200}, [3]float64{245, 235, 225}},
	{entity.FitzpatrickIII, "Light brown skin, burns moderately, tans gradually", [3]float64{210, 190, 170}, [3]float64{235, 220, 205}},
	{entity.FitzpatrickIV, "Moderate brown skin, burns minimally, tans well", [3]float64{180, 160, 140}, [3]float64{215, 195, 175}},
	{entity.FitzpatrickV, "Dark brown skin, rarely burns, tans profusely", [3]float64{140, 120, 100}, [3]float64{185, 165, 145}},
	{entity.FitzpatrickVI, "Deeply pigmented dark brown to black, never burns", [3]float64{80, 60, 50}, [3]float64{145, 125, 105}},
}

// SkinToneClassifier определяет тип кожи по центральной части снимка.
type SkinToneClassifier struct {
	logger *slog.Logger
}

func NewSkinToneClassifier(logger *slog.Logger) *SkinToneClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SkinToneClassifier{logger: logger}
}

// Classify берёт медиану каждого канала в центральной области 50%×50%
// и выбирает ближайший по евклидову расстоянию тип.
func (c *SkinToneClassifier) Classify(img entity.LesionImage) entity.FitzpatrickType {
	if img.Empty() {
		c.logger.Warn("could not read image for skin tone, using default", "default", entity.DefaultSkinTone.String())
		return entity.DefaultSkinTone
	}

	median := CenterMedianRGB(img)
	tone := ClassifyRGB(median)
	c.logger.Info("classified skin tone", "skin_tone", tone.Label(), "median_rgb", median)
	return tone
}

// CenterMedianRGB медиана каналов в области [h/4, 3h/4) × [w/4, 3w/4).
func CenterMedianRGB(img entity.LesionImage) [3]float64 {
	x0, x1 := img.Width/4, 3*img.Width/4
	y0, y1 := img.Height/4, 3*img.Height/4
	if x1 <= x0 || y1 <= y0 {
		x0, x1, y0, y1 = 0, img.Width, 0, img.Height
	}

	var hist [3][256]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b := img.RGB(x, y)
			hist[0][r]++
			hist[1][g]++
			hist[2][b]++
		}
	}

	n := (x1 - x0) * (y1 - y0)
	var out [3]float64
	for ch := range hist {
		out[ch] = histogramMedian(hist[ch][:], n)
	}
	return out
}

// histogramMedian при чётном n усредняет два средних значения.
func histogramMedian(hist []int, n int) float64 {
	lo, hi := (n-1)/2, n/2
	loVal, hiVal := -1, -1
	seen := 0
	for v, cnt := range hist {
		if cnt == 0 {
			continue
		}
		seen += cnt
		if loVal < 0 && seen > lo {
			loVal = v
		}
		if seen > hi {
			hiVal = v
			break
		}
	}
	return float64(loVal+hiVal) / 2
}

// ClassifyRGB возвращает тип с ближайшим центроидом.
func ClassifyRGB(rgb [3]float64) entity.FitzpatrickType {
	best := entity.DefaultSkinTone
	bestDist := math.Inf(1)
	for _, ref := range FitzpatrickReferences {
		m := ref.Midpoint()
		d := math.Sqrt((rgb[0]-m[0])*(rgb[0]-m[0]) + (rgb[1]-m[1])*(rgb[1]-m[1]) + (rgb[2]-m[2])*(rgb[2]-m[2]))
		if d < bestDist {
			best, bestDist = ref.Type, d
		}
	}
	return best
}
