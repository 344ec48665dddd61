//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

// GoCVSegmenter выделяет поражение порогом Оцу по яркости.
type GoCVSegmenter struct {
	BlurKernel int // сторона ядра гауссова размытия, нечётная
}

// NewGoCVSegmenter создаёт сегментатор с ядром 5×5.
func NewGoCVSegmenter() *GoCVSegmenter {
	return &GoCVSegmenter{BlurKernel: 5}
}

// Segment переводит изображение в серое, размывает, бинаризует по Оцу с инверсией
// (поражение темнее кожи) и берёт внешний контур наибольшей площади.
func (s *GoCVSegmenter) Segment(img entity.LesionImage) (*entity.SegmentationMask, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(s.BlurKernel, s.BlurKernel), 0, 0, gocv.BorderDefault)

	// Порог выбирается автоматически, переданное значение игнорируется.
	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(blur, &thresh, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return nil, entity.ErrSegmentationFailure
	}

	largest, largestArea := 0, -1.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > largestArea {
			largest, largestArea = i, area
		}
	}

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), img.Height, img.Width, gocv.MatTypeCV8U)
	defer mask.Close()
	gocv.DrawContours(&mask, contours, largest, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	pix := make([]byte, img.Width*img.Height)
	copy(pix, mask.ToBytes())

	return &entity.SegmentationMask{
		Width:   img.Width,
		Height:  img.Height,
		Pix:     pix,
		Contour: contours.At(largest).ToPoints(),
	}, nil
}

// toMat копирует RGB-буфер в gocv.Mat с тремя каналами.
func toMat(img entity.LesionImage) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: empty image", entity.ErrInvalidImage)
	}
	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix[:img.Width*img.Height*3])
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	return mat, nil
}

// Проверка реализации интерфейса
var _ port.LesionSegmenter = (*GoCVSegmenter)(nil)
