package entity

import (
	"image"
	"image/color"
)

// LesionImage декодированное изображение кожи в RGB.
// Pix хранит пиксели построчно, по 3 байта (R, G, B) на пиксель.
// После загрузки изображение не меняется: все компоненты конвейера только читают его.
type LesionImage struct {
	Width  int    // ширина в пикселях
	Height int    // высота в пикселях
	Pix    []byte // RGB-буфер длиной Width*Height*3
	Format string // исходный формат файла (jpeg, png, ...)
	Raw    []byte // исходные байты файла, их получает классификатор
}

// NewLesionImage собирает изображение из RGB-буфера.
func NewLesionImage(width, height int, pix []byte) LesionImage {
	return LesionImage{Width: width, Height: height, Pix: pix}
}

// FromImage переводит произвольное image.Image в RGB-буфер.
func FromImage(src image.Image) LesionImage {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
			i += 3
		}
	}
	return LesionImage{Width: w, Height: h, Pix: pix}
}

// Empty сообщает, что буфер не соответствует размерам.
func (img LesionImage) Empty() bool {
	return img.Width <= 0 || img.Height <= 0 || len(img.Pix) < img.Width*img.Height*3
}

// RGB возвращает цвет пикселя (x, y).
func (img LesionImage) RGB(x, y int) (r, g, b uint8) {
	i := (y*img.Width + x) * 3
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// ToRGBA копирует изображение в *image.RGBA для кодеков и масштабирования.
func (img LesionImage) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for p, q := 0, 0; p < len(img.Pix) && q < len(out.Pix); p, q = p+3, q+4 {
		out.Pix[q] = img.Pix[p]
		out.Pix[q+1] = img.Pix[p+1]
		out.Pix[q+2] = img.Pix[p+2]
		out.Pix[q+3] = 0xff
	}
	return out
}
