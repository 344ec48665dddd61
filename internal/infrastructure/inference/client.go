package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

const (
	// InputSize сторона входа модели.
	InputSize = 224
	topK      = 3
)

var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Client HTTP-клиент сервера модели.
// Реализует и классификацию, и инструментированный проход для объяснений.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient создаёт клиента сервера модели.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type predictionResponse struct {
	Class       string             `json:"class"`
	Confidence  float64            `json:"confidence"`
	Predictions map[string]float64 `json:"predictions"`
}

// Predict отправляет исходные байты изображения и разбирает ответ модели.
func (c *Client) Predict(ctx context.Context, img entity.LesionImage) (*entity.ClassifierPrediction, error) {
	if len(img.Raw) == 0 {
		return nil, fmt.Errorf("predict: %w: no encoded image bytes", entity.ErrInvalidImage)
	}

	contentType := "application/octet-stream"
	if img.Format != "" {
		contentType = "image/" + img.Format
	}

	var resp predictionResponse
	if err := c.do(ctx, "/predictions", contentType, img.Raw, &resp); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	pred, err := toPrediction(resp)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	c.logger.Info("prediction", "class", pred.PrimaryClass, "confidence", pred.Confidence)
	return pred, nil
}

func toPrediction(resp predictionResponse) (*entity.ClassifierPrediction, error) {
	primary, err := entity.ParseSkinClass(resp.Class)
	if err != nil {
		return nil, err
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v outside [0, 1]", resp.Confidence)
	}

	scores := make([]entity.ClassScore, 0, len(resp.Predictions))
	for label, p := range resp.Predictions {
		cls, err := entity.ParseSkinClass(label)
		if err != nil {
			return nil, err
		}
		scores = append(scores, entity.ClassScore{Class: cls, Name: cls.Name(), Confidence: p})
	}
	if len(scores) == 0 {
		scores = append(scores, entity.ClassScore{Class: primary, Name: primary.Name(), Confidence: resp.Confidence})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Class.Index() < scores[j].Class.Index()
	})
	if len(scores) > topK {
		scores = scores[:topK]
	}

	return &entity.ClassifierPrediction{
		PrimaryClass: primary,
		Confidence:   resp.Confidence,
		TopK:         scores,
	}, nil
}

// PrepareForExplanation масштабирует изображение до 224×224 и нормирует каналы
// средними и отклонениями ImageNet.
func (c *Client) PrepareForExplanation(ctx context.Context, img entity.LesionImage) (*entity.Tensor, error) {
	_ = ctx
	if img.Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrInvalidImage)
	}

	src := img.ToRGBA()
	dst := image.NewRGBA(image.Rect(0, 0, InputSize, InputSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	t := entity.NewTensor(3, InputSize, InputSize)
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			px := dst.RGBAAt(x, y)
			for ch, v := range [3]uint8{px.R, px.G, px.B} {
				t.Set(ch, y, x, (float32(v)/255-imagenetMean[ch])/imagenetStd[ch])
			}
		}
	}
	return t, nil
}

type wireTensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

func fromWire(w *wireTensor) (*entity.Tensor, error) {
	if w == nil || len(w.Shape) != 3 {
		return nil, fmt.Errorf("tensor must have shape [C, H, W]")
	}
	t := &entity.Tensor{Channels: w.Shape[0], Height: w.Shape[1], Width: w.Shape[2], Data: w.Data}
	return t, t.Validate()
}

type explanationRequest struct {
	Layer      string     `json:"layer"`
	ClassIndex int        `json:"class_index"`
	Input      wireTensor `json:"input"`
}

type explanationResponse struct {
	Layer       string      `json:"layer"`
	Activations *wireTensor `json:"activations"`
	Gradients   *wireTensor `json:"gradients"`
}

// Instrument просит сервер выполнить проход вперёд и назад и вернуть выход слоя
// и градиент. Каждый ответ принадлежит своему вызову.
func (c *Client) Instrument(ctx context.Context, input *entity.Tensor, layer string, classIndex int) (*entity.LayerCapture, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("instrument: %w", err)
	}

	body, err := json.Marshal(explanationRequest{
		Layer:      layer,
		ClassIndex: classIndex,
		Input: wireTensor{
			Shape: []int{input.Channels, input.Height, input.Width},
			Data:  input.Data,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("instrument: encode request: %w", err)
	}

	var resp explanationResponse
	if err := c.do(ctx, "/explanations", "application/json", body, &resp); err != nil {
		return nil, fmt.Errorf("instrument layer %q: %w", layer, err)
	}

	acts, err := fromWire(resp.Activations)
	if err != nil {
		return nil, fmt.Errorf("instrument: activations: %w", err)
	}
	grads, err := fromWire(resp.Gradients)
	if err != nil {
		return nil, fmt.Errorf("instrument: gradients: %w", err)
	}

	return &entity.LayerCapture{
		Layer:       layer,
		ClassIndex:  classIndex,
		Activations: acts,
		Gradients:   grads,
	}, nil
}

func (c *Client) do(ctx context.Context, path, contentType string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && path == "/explanations" {
		return entity.ErrLayerNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Проверка реализации интерфейсов
var (
	_ port.Classifier = (*Client)(nil)
	_ port.Explainer  = (*Client)(nil)
)
