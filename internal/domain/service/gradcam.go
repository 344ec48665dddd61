package service

import (
	"fmt"
	"math"

	"lesion-bot/internal/domain/entity"
)

// GradCAMPlusPlus строит карту важности по выходу слоя и градиенту класса.
// Вес канала k равен сумме α·ReLU(g) по пространству, где
// α = g² / (2g² + ΣA_k·g³), а нулевой знаменатель заменяется единицей.
// Карта = ReLU(Σ w_k·A_k), затем приводится к [0, 1].
func GradCAMPlusPlus(capture *entity.LayerCapture) (*entity.SaliencyMap, error) {
	if capture == nil {
		return nil, fmt.Errorf("%w: empty layer capture", entity.ErrSaliencyGeneration)
	}
	acts, grads := capture.Activations, capture.Gradients
	if err := acts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: activations: %v", entity.ErrSaliencyGeneration, err)
	}
	if err := grads.Validate(); err != nil {
		return nil, fmt.Errorf("%w: gradients: %v", entity.ErrSaliencyGeneration, err)
	}
	if !acts.SameShape(grads) {
		return nil, fmt.Errorf("%w: activations %dx%dx%d and gradients %dx%dx%d differ in shape",
			entity.ErrSaliencyGeneration,
			acts.Channels, acts.Height, acts.Width, grads.Channels, grads.Height, grads.Width)
	}

	plane := acts.Height * acts.Width
	cam := make([]float64, plane)
	for k := 0; k < acts.Channels; k++ {
		a := acts.Data[k*plane : (k+1)*plane]
		g := grads.Data[k*plane : (k+1)*plane]

		var actSum float64
		for _, v := range a {
			actSum += float64(v)
		}

		var weight float64
		for i := range g {
			gv := float64(g[i])
			g2 := gv * gv
			denom := 2*g2 + actSum*g2*gv
			if denom == 0 {
				denom = 1
			}
			weight += g2 / denom * math.Max(gv, 0)
		}

		for i := range cam {
			cam[i] += weight * float64(a[i])
		}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range cam {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value in map", entity.ErrSaliencyGeneration)
		}
		v = math.Max(v, 0)
		cam[i] = v
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi-lo <= 0 {
		return nil, fmt.Errorf("%w: %w", entity.ErrSaliencyGeneration, entity.ErrDegenerateSaliency)
	}

	span := hi - lo
	for i := range cam {
		cam[i] = (cam[i] - lo) / span
	}
	return &entity.SaliencyMap{Width: acts.Width, Height: acts.Height, Values: cam}, nil
}
