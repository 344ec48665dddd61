//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"

	"gocv.io/x/gocv"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

// GoCVOverlayRenderer раскрашивает карту важности палитрой Jet и накладывает её на снимок.
type GoCVOverlayRenderer struct {
	Quality int // качество JPEG
}

func NewGoCVOverlayRenderer() *GoCVOverlayRenderer {
	return &GoCVOverlayRenderer{Quality: 90}
}

// Render масштабирует карту билинейно до размера снимка, раскрашивает и смешивает:
// overlay = alpha·heatmap + (1-alpha)·image.
func (r *GoCVOverlayRenderer) Render(img entity.LesionImage, saliency *entity.SaliencyMap, alpha float64) ([]byte, error) {
	if saliency == nil || saliency.Width <= 0 || saliency.Height <= 0 || len(saliency.Values) != saliency.Width*saliency.Height {
		return nil, errors.New("malformed saliency map")
	}

	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(src, &bgr, gocv.ColorRGBToBGR)

	raw := gocv.NewMatWithSize(saliency.Height, saliency.Width, gocv.MatTypeCV32F)
	defer raw.Close()
	for y := 0; y < saliency.Height; y++ {
		for x := 0; x < saliency.Width; x++ {
			raw.SetFloatAt(y, x, float32(saliency.At(x, y)))
		}
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(raw, &resized, image.Pt(img.Width, img.Height), 0, 0, gocv.InterpolationLinear)

	scaled := gocv.NewMat()
	defer scaled.Close()
	resized.ConvertToWithParams(&scaled, gocv.MatTypeCV8U, 255, 0)

	heatmap := gocv.NewMat()
	defer heatmap.Close()
	gocv.ApplyColorMap(scaled, &heatmap, gocv.ColormapJet)

	overlay := gocv.NewMat()
	defer overlay.Close()
	gocv.AddWeighted(heatmap, alpha, bgr, 1-alpha, 0, &overlay)

	out, err := overlay.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: r.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ port.OverlayRenderer = (*GoCVOverlayRenderer)(nil)
