package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lesion-bot/internal/domain/entity"
)

func TestClassifyRGB_Midpoints(t *testing.T) {
	for _, ref := range FitzpatrickReferences {
		require.Equal(t, ref.Type, ClassifyRGB(ref.Midpoint()), ref.Type.String())
	}
}

func TestSkinToneClassifier_Classify(t *testing.T) {
	c := NewSkinToneClassifier(discardLogger())

	mid := FitzpatrickReferences[4].Midpoint()
	img := solidImage(40, 40, uint8(mid[0]), uint8(mid[1]), uint8(mid[2]))
	require.Equal(t, entity.FitzpatrickV, c.Classify(img))
}

func TestSkinToneClassifier_SamplesCenterOnly(t *testing.T) {
	c := NewSkinToneClassifier(discardLogger())

	// Тёмная рамка, светлый центр: по краям тип VI, в центре тип I.
	img := solidImage(40, 40, 100, 80, 60)
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			i := (y*40 + x) * 3
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 250, 242, 238
		}
	}
	require.Equal(t, entity.FitzpatrickI, c.Classify(img))
}

func TestSkinToneClassifier_UnreadableImage(t *testing.T) {
	c := NewSkinToneClassifier(discardLogger())
	require.Equal(t, entity.FitzpatrickIII, c.Classify(entity.LesionImage{}))
	require.Equal(t, "Type III (Fitzpatrick)", c.Classify(entity.LesionImage{}).Label())
}

func TestHistogramMedian(t *testing.T) {
	hist := make([]int, 256)
	hist[1], hist[2], hist[3], hist[4] = 1, 1, 1, 1
	require.Equal(t, 2.5, histogramMedian(hist, 4))

	hist = make([]int, 256)
	hist[10], hist[200] = 2, 1
	require.Equal(t, 10.0, histogramMedian(hist, 3))
}

func TestCenterMedianRGB_TinyImage(t *testing.T) {
	img := entity.NewLesionImage(1, 1, []byte{9, 8, 7})
	require.Equal(t, [3]float64{9, 8, 7}, CenterMedianRGB(img))
}
