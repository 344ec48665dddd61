package inference

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesion-bot/internal/domain/entity"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func solid(w, h int, r, g, b byte) entity.LesionImage {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	img := entity.NewLesionImage(w, h, pix)
	img.Format = "png"
	img.Raw = []byte("raw-bytes")
	return img
}

func TestPredict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predictions", r.URL.Path)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "raw-bytes", string(body))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"class":      "MEL",
			"confidence": 0.85,
			"predictions": map[string]float64{
				"MEL": 0.85, "NV": 0.05, "BKL": 0.05, "AK": 0.03, "DF": 0.02,
			},
		})
	})

	pred, err := c.Predict(context.Background(), solid(4, 4, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, entity.ClassMEL, pred.PrimaryClass)
	assert.InDelta(t, 0.85, pred.Confidence, 1e-9)
	require.Len(t, pred.TopK, 3)
	assert.Equal(t, entity.ClassMEL, pred.TopK[0].Class)
	assert.Equal(t, "Melanoma", pred.TopK[0].Name)
	// равные уверенности упорядочены по номеру выхода модели
	assert.Equal(t, entity.ClassBKL, pred.TopK[1].Class)
	assert.Equal(t, entity.ClassNV, pred.TopK[2].Class)
	assert.Nil(t, pred.EnsembleConsensus)
}

func TestPredictWithoutDistribution(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"class":"NV","confidence":0.6}`))
	})

	pred, err := c.Predict(context.Background(), solid(4, 4, 1, 2, 3))
	require.NoError(t, err)
	require.Len(t, pred.TopK, 1)
	assert.Equal(t, entity.ClassNV, pred.TopK[0].Class)
}

func TestPredictErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"unknown class", http.StatusOK, `{"class":"XYZ","confidence":0.5}`},
		{"confidence out of range", http.StatusOK, `{"class":"MEL","confidence":1.5}`},
		{"broken json", http.StatusOK, `{"class":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})
			_, err := c.Predict(context.Background(), solid(4, 4, 1, 2, 3))
			require.Error(t, err)
		})
	}
}

func TestPredictRequiresRawBytes(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", time.Second, nil)
	img := solid(4, 4, 1, 2, 3)
	img.Raw = nil

	_, err := c.Predict(context.Background(), img)
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestPrepareForExplanation(t *testing.T) {
	c := NewClient("http://unused", time.Second, nil)

	tensor, err := c.PrepareForExplanation(context.Background(), solid(300, 200, 255, 0, 128))
	require.NoError(t, err)
	require.NoError(t, tensor.Validate())
	assert.Equal(t, 3, tensor.Channels)
	assert.Equal(t, InputSize, tensor.Height)
	assert.Equal(t, InputSize, tensor.Width)

	want := [3]float32{
		(1 - 0.485) / 0.229,
		(0 - 0.456) / 0.224,
		(128.0/255 - 0.406) / 0.225,
	}
	for ch := 0; ch < 3; ch++ {
		assert.InDelta(t, want[ch], tensor.At(ch, 0, 0), 0.02)
		assert.InDelta(t, want[ch], tensor.At(ch, 111, 150), 0.02)
		assert.InDelta(t, want[ch], tensor.At(ch, 223, 223), 0.02)
	}

	_, err = c.PrepareForExplanation(context.Background(), entity.LesionImage{})
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestInstrument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/explanations", r.URL.Path)

		var req explanationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "layer4", req.Layer)
		assert.Equal(t, 4, req.ClassIndex)
		assert.Equal(t, []int{3, 2, 2}, req.Input.Shape)

		_ = json.NewEncoder(w).Encode(explanationResponse{
			Layer:       req.Layer,
			Activations: &wireTensor{Shape: []int{1, 2, 2}, Data: []float32{1, 2, 3, 4}},
			Gradients:   &wireTensor{Shape: []int{1, 2, 2}, Data: []float32{0.1, 0.1, 0.1, 0.1}},
		})
	})

	capture, err := c.Instrument(context.Background(), entity.NewTensor(3, 2, 2), "layer4", 4)
	require.NoError(t, err)
	assert.Equal(t, "layer4", capture.Layer)
	assert.Equal(t, 4, capture.ClassIndex)
	assert.Equal(t, float32(4), capture.Activations.At(0, 1, 1))
	assert.True(t, capture.Activations.SameShape(capture.Gradients))
}

func TestInstrumentUnknownLayer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "layer not found", http.StatusNotFound)
	})

	_, err := c.Instrument(context.Background(), entity.NewTensor(3, 2, 2), "layer9", 0)
	require.ErrorIs(t, err, entity.ErrLayerNotFound)
}

func TestInstrumentMalformedCapture(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"activations":{"shape":[1,2,2],"data":[1,2,3]},"gradients":{"shape":[1,2,2],"data":[1,2,3,4]}}`))
	})

	_, err := c.Instrument(context.Background(), entity.NewTensor(3, 2, 2), "layer4", 0)
	require.Error(t, err)
}
