package service

import (
	"image"
	"io"
	"log/slog"
	"math"

	"lesion-bot/internal/domain/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// circleContour многоугольник из n вершин, вписанный в окружность.
func circleContour(cx, cy, r, n int) []image.Point {
	pts := make([]image.Point, n)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = image.Pt(
			cx+int(math.Round(float64(r)*math.Cos(theta))),
			cy+int(math.Round(float64(r)*math.Sin(theta))),
		)
	}
	return pts
}

// circleMask заполненный диск вместе с контуром.
func circleMask(w, h, cx, cy, r int) *entity.SegmentationMask {
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				pix[y*w+x] = 255
			}
		}
	}
	return &entity.SegmentationMask{Width: w, Height: h, Pix: pix, Contour: circleContour(cx, cy, r, 96)}
}

func solidImage(w, h int, r, g, b uint8) entity.LesionImage {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return entity.NewLesionImage(w, h, pix)
}

type fakeSegmenter struct {
	mask *entity.SegmentationMask
	err  error
}

func (f fakeSegmenter) Segment(entity.LesionImage) (*entity.SegmentationMask, error) {
	return f.mask, f.err
}
