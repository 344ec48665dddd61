package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"lesion-bot/internal/domain/entity"
)

func TestSaliencyService_Generate(t *testing.T) {
	explainer := &fakeExplainer{capture: rampCapture()}
	renderer := &fakeRenderer{}
	store := &memoryStore{}
	svc := NewSaliencyService(explainer, renderer, store, "layer4", 0.4, discardLogger())

	path, overlay, err := svc.Generate(context.Background(), solidImage(8, 8, 200, 150, 120), entity.ClassMEL, "id-1")
	require.NoError(t, err)
	require.Equal(t, "/heatmaps/gradcam_id-1.jpg", path)
	require.Equal(t, []byte("jpeg"), overlay)
	require.Equal(t, "layer4", explainer.lastLayer)
	require.Equal(t, entity.ClassMEL.Index(), explainer.lastTarget)
	require.InDelta(t, 0.4, renderer.alpha, 1e-9)
	require.Contains(t, store.files, "id-1")
}

func TestSaliencyService_InvalidAlphaFallsBack(t *testing.T) {
	renderer := &fakeRenderer{}
	svc := NewSaliencyService(&fakeExplainer{capture: rampCapture()}, renderer, &memoryStore{}, "layer4", 1.5, discardLogger())

	_, _, err := svc.Generate(context.Background(), solidImage(8, 8, 1, 1, 1), entity.ClassNV, "id")
	require.NoError(t, err)
	require.InDelta(t, DefaultOverlayAlpha, renderer.alpha, 1e-9)
}

func TestSaliencyService_Failures(t *testing.T) {
	flat := &entity.LayerCapture{
		Activations: &entity.Tensor{Channels: 1, Height: 2, Width: 2, Data: []float32{1, 1, 1, 1}},
		Gradients:   &entity.Tensor{Channels: 1, Height: 2, Width: 2, Data: []float32{0.5, 0.5, 0.5, 0.5}},
	}

	tests := []struct {
		name      string
		explainer *fakeExplainer
		renderer  *fakeRenderer
		class     entity.SkinClass
		wantIs    error
	}{
		{
			name:      "missing layer",
			explainer: &fakeExplainer{err: entity.ErrLayerNotFound},
			renderer:  &fakeRenderer{},
			class:     entity.ClassMEL,
			wantIs:    entity.ErrLayerNotFound,
		},
		{
			name:      "prepare failure",
			explainer: &fakeExplainer{prepErr: errors.New("resize failed")},
			renderer:  &fakeRenderer{},
			class:     entity.ClassMEL,
		},
		{
			name:      "degenerate map",
			explainer: &fakeExplainer{capture: flat},
			renderer:  &fakeRenderer{},
			class:     entity.ClassMEL,
			wantIs:    entity.ErrDegenerateSaliency,
		},
		{
			name:      "hook panic",
			explainer: &fakeExplainer{panicMsg: "gradient hook exploded"},
			renderer:  &fakeRenderer{},
			class:     entity.ClassMEL,
		},
		{
			name:      "render failure",
			explainer: &fakeExplainer{capture: rampCapture()},
			renderer:  &fakeRenderer{err: errors.New("colormap")},
			class:     entity.ClassMEL,
		},
		{
			name:      "unknown class",
			explainer: &fakeExplainer{capture: rampCapture()},
			renderer:  &fakeRenderer{},
			class:     entity.SkinClass("XYZ"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSaliencyService(tt.explainer, tt.renderer, &memoryStore{}, "layer4", 0.4, discardLogger())

			path, overlay, err := svc.Generate(context.Background(), solidImage(8, 8, 1, 1, 1), tt.class, "id")
			require.Error(t, err)
			require.ErrorIs(t, err, entity.ErrSaliencyGeneration)
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
			}
			require.Empty(t, path)
			require.Nil(t, overlay)
		})
	}
}
