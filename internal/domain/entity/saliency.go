package entity

import "fmt"

// Tensor трёхмерный массив C×H×W в порядке каналов.
type Tensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// NewTensor создаёт нулевой тензор заданной формы.
func NewTensor(channels, height, width int) *Tensor {
	return &Tensor{
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float32, channels*height*width),
	}
}

func (t *Tensor) offset(c, y, x int) int {
	return (c*t.Height+y)*t.Width + x
}

// At возвращает значение в канале c, строке y, столбце x.
func (t *Tensor) At(c, y, x int) float32 {
	return t.Data[t.offset(c, y, x)]
}

// Set записывает значение в канал c, строку y, столбец x.
func (t *Tensor) Set(c, y, x int, v float32) {
	t.Data[t.offset(c, y, x)] = v
}

// Validate проверяет, что размер данных совпадает с формой.
func (t *Tensor) Validate() error {
	if t == nil {
		return fmt.Errorf("nil tensor")
	}
	if t.Channels <= 0 || t.Height <= 0 || t.Width <= 0 {
		return fmt.Errorf("invalid tensor shape %dx%dx%d", t.Channels, t.Height, t.Width)
	}
	if len(t.Data) != t.Channels*t.Height*t.Width {
		return fmt.Errorf("tensor data length %d does not match shape %dx%dx%d",
			len(t.Data), t.Channels, t.Height, t.Width)
	}
	return nil
}

// SameShape сравнивает формы двух тензоров.
func (t *Tensor) SameShape(o *Tensor) bool {
	return t.Channels == o.Channels && t.Height == o.Height && t.Width == o.Width
}

// LayerCapture результат одного инструментированного прохода вперёд и назад:
// выход слоя и градиент скалярного выхода целевого класса по этому выходу.
// Значение принадлежит вызову и не разделяется между запросами.
type LayerCapture struct {
	Layer       string
	ClassIndex  int
	Activations *Tensor
	Gradients   *Tensor
}

// SaliencyMap карта важности, нормированная в [0, 1], построчно.
type SaliencyMap struct {
	Width  int
	Height int
	Values []float64
}

// At возвращает важность в точке (x, y).
func (m *SaliencyMap) At(x, y int) float64 {
	return m.Values[y*m.Width+x]
}
