package app

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"lesion-bot/internal/domain/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func solidImage(w, h int, r, g, b uint8) entity.LesionImage {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return entity.NewLesionImage(w, h, pix)
}

// diskMask круг радиуса r в центре изображения w×h.
func diskMask(w, h, r int) *entity.SegmentationMask {
	cx, cy := w/2, h/2
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				pix[y*w+x] = 255
			}
		}
	}
	contour := make([]image.Point, 96)
	for i := range contour {
		theta := 2 * math.Pi * float64(i) / 96
		contour[i] = image.Pt(
			cx+int(math.Round(float64(r)*math.Cos(theta))),
			cy+int(math.Round(float64(r)*math.Sin(theta))),
		)
	}
	return &entity.SegmentationMask{Width: w, Height: h, Pix: pix, Contour: contour}
}

type fakeClassifier struct {
	pred *entity.ClassifierPrediction
	err  error
}

func (f fakeClassifier) Predict(context.Context, entity.LesionImage) (*entity.ClassifierPrediction, error) {
	return f.pred, f.err
}

func prediction(class entity.SkinClass, confidence float64) *entity.ClassifierPrediction {
	return &entity.ClassifierPrediction{
		PrimaryClass: class,
		Confidence:   confidence,
		TopK:         []entity.ClassScore{{Class: class, Name: class.Name(), Confidence: confidence}},
	}
}

type fakeSegmenter struct {
	mask *entity.SegmentationMask
	err  error
}

func (f fakeSegmenter) Segment(entity.LesionImage) (*entity.SegmentationMask, error) {
	return f.mask, f.err
}

type fakeExplainer struct {
	prepErr    error
	err        error
	panicMsg   string
	capture    *entity.LayerCapture
	lastLayer  string
	lastTarget int
}

func (f *fakeExplainer) PrepareForExplanation(context.Context, entity.LesionImage) (*entity.Tensor, error) {
	if f.prepErr != nil {
		return nil, f.prepErr
	}
	return entity.NewTensor(3, 4, 4), nil
}

func (f *fakeExplainer) Instrument(_ context.Context, _ *entity.Tensor, layer string, classIndex int) (*entity.LayerCapture, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.lastLayer, f.lastTarget = layer, classIndex
	if f.err != nil {
		return nil, f.err
	}
	return f.capture, nil
}

func rampCapture() *entity.LayerCapture {
	return &entity.LayerCapture{
		Activations: &entity.Tensor{Channels: 1, Height: 2, Width: 2, Data: []float32{1, 2, 3, 4}},
		Gradients:   &entity.Tensor{Channels: 1, Height: 2, Width: 2, Data: []float32{0.1, 0.1, 0.1, 0.1}},
	}
}

type fakeRenderer struct {
	err   error
	alpha float64
}

func (f *fakeRenderer) Render(_ entity.LesionImage, m *entity.SaliencyMap, alpha float64) ([]byte, error) {
	f.alpha = alpha
	if f.err != nil {
		return nil, f.err
	}
	if m == nil {
		return nil, errors.New("nil map")
	}
	return []byte("jpeg"), nil
}

type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *memoryStore) Save(_ context.Context, id string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[id] = data
	return "/heatmaps/gradcam_" + id + ".jpg", nil
}

type fakeRecorder struct {
	mu           sync.Mutex
	outcomes     []string
	segmentation int
	saliency     int
	risks        []entity.RiskAssessment
}

func (r *fakeRecorder) ObserveAnalysis(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakeRecorder) SegmentationFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segmentation++
}

func (r *fakeRecorder) SaliencyFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saliency++
}

func (r *fakeRecorder) RiskAssessed(a entity.RiskAssessment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.risks = append(r.risks, a)
}

type fakeDecoder struct {
	img entity.LesionImage
	err error
}

func (f fakeDecoder) Decode([]byte) (entity.LesionImage, error) {
	return f.img, f.err
}
