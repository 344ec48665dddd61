//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/require"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/service"
)

// lesionImage светлая кожа с тёмным диском в центре.
func lesionImage(w, h, cx, cy, r int) entity.LesionImage {
	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				pix[i], pix[i+1], pix[i+2] = 90, 50, 40
			} else {
				pix[i], pix[i+1], pix[i+2] = 225, 205, 185
			}
		}
	}
	return entity.NewLesionImage(w, h, pix)
}

func TestGoCVSegmenter_Disc(t *testing.T) {
	img := lesionImage(200, 200, 100, 100, 40)

	mask, err := NewGoCVSegmenter().Segment(img)
	require.NoError(t, err)
	require.Equal(t, 200, mask.Width)
	require.True(t, mask.Inside(100, 100))
	require.False(t, mask.Inside(5, 5))
	require.InDelta(t, 3.14159*40*40, float64(mask.Area()), 300)

	irr, err := service.BorderIrregularity(mask.Contour)
	require.NoError(t, err)
	require.Less(t, irr, 0.2)

	d, err := service.DiameterMM(mask.Contour, 10)
	require.NoError(t, err)
	require.InDelta(t, 8.0, d, 0.5)
}

func TestGoCVSegmenter_EmptyImage(t *testing.T) {
	_, err := NewGoCVSegmenter().Segment(entity.LesionImage{})
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestGoCVOverlayRenderer_Render(t *testing.T) {
	img := lesionImage(64, 48, 32, 24, 10)
	saliency := &entity.SaliencyMap{Width: 2, Height: 2, Values: []float64{0, 0.5, 0.5, 1}}

	data, err := NewGoCVOverlayRenderer().Render(img, saliency, 0.4)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 64, decoded.Bounds().Dx())
	require.Equal(t, 48, decoded.Bounds().Dy())
}

func TestGoCVOverlayRenderer_MalformedMap(t *testing.T) {
	_, err := NewGoCVOverlayRenderer().Render(lesionImage(8, 8, 4, 4, 2), &entity.SaliencyMap{Width: 2, Height: 2}, 0.4)
	require.Error(t, err)
}
