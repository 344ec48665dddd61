package service

import (
	"image"
	"math"
	"math/rand/v2"
)

// Circle окружность на плоскости изображения.
type Circle struct {
	X, Y   float64
	Radius float64
}

func (c Circle) contains(x, y float64) bool {
	return math.Hypot(x-c.X, y-c.Y) <= c.Radius*(1+1e-9)+1e-9
}

// PolygonArea площадь замкнутого контура по формуле шнурков.
func PolygonArea(contour []image.Point) float64 {
	return math.Abs(signedArea(contour))
}

func signedArea(contour []image.Point) float64 {
	n := len(contour)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p, q := contour[i], contour[(i+1)%n]
		sum += float64(p.X*q.Y - q.X*p.Y)
	}
	return sum / 2
}

// Perimeter длина замкнутого контура.
func Perimeter(contour []image.Point) float64 {
	n := len(contour)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p, q := contour[i], contour[(i+1)%n]
		sum += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return sum
}

// Centroid центр масс области, ограниченной контуром (моменты m10/m00, m01/m00).
// ok равен false для вырожденного контура нулевой площади.
func Centroid(contour []image.Point) (cx, cy float64, ok bool) {
	a := signedArea(contour)
	if a == 0 {
		return 0, 0, false
	}
	n := len(contour)
	var sx, sy float64
	for i := 0; i < n; i++ {
		p, q := contour[i], contour[(i+1)%n]
		cross := float64(p.X*q.Y - q.X*p.Y)
		sx += float64(p.X+q.X) * cross
		sy += float64(p.Y+q.Y) * cross
	}
	return sx / (6 * a), sy / (6 * a), true
}

// MinEnclosingCircle минимальная окружность, содержащая все точки (алгоритм Вельцля).
func MinEnclosingCircle(points []image.Point) Circle {
	if len(points) == 0 {
		return Circle{}
	}
	pts := make([][2]float64, len(points))
	for i, p := range points {
		pts[i] = [2]float64{float64(p.X), float64(p.Y)}
	}
	// Порядок фиксирован, чтобы результат не зависел от запуска.
	rng := rand.New(rand.NewPCG(1, uint64(len(pts))))
	rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	c := Circle{X: pts[0][0], Y: pts[0][1]}
	for i := 1; i < len(pts); i++ {
		if c.contains(pts[i][0], pts[i][1]) {
			continue
		}
		c = Circle{X: pts[i][0], Y: pts[i][1]}
		for j := 0; j < i; j++ {
			if c.contains(pts[j][0], pts[j][1]) {
				continue
			}
			c = circleFrom2(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if c.contains(pts[k][0], pts[k][1]) {
					continue
				}
				c = circleFrom3(pts[i], pts[j], pts[k])
			}
		}
	}
	return c
}

func circleFrom2(a, b [2]float64) Circle {
	x, y := (a[0]+b[0])/2, (a[1]+b[1])/2
	return Circle{X: x, Y: y, Radius: math.Hypot(a[0]-x, a[1]-y)}
}

func circleFrom3(a, b, c [2]float64) Circle {
	bx, by := b[0]-a[0], b[1]-a[1]
	cx, cy := c[0]-a[0], c[1]-a[1]
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		// Точки на одной прямой: окружность строится на самой дальней паре.
		best := circleFrom2(a, b)
		for _, cand := range []Circle{circleFrom2(a, c), circleFrom2(b, c)} {
			if cand.Radius > best.Radius {
				best = cand
			}
		}
		return best
	}
	b2, c2 := bx*bx+by*by, cx*cx+cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Circle{X: ux + a[0], Y: uy + a[1], Radius: math.Hypot(ux, uy)}
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
