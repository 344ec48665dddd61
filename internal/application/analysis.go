package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
	"lesion-bot/internal/domain/service"
)

// Исходы анализа для метрик.
const (
	OutcomeOK              = "ok"
	OutcomeInvalidImage    = "invalid_image"
	OutcomeClassifierError = "classifier_error"
)

// AnalysisService собирает конвейер анализа поражения кожи.
type AnalysisService struct {
	users      *UserService
	decoder    port.ImageDecoder
	classifier port.Classifier
	abcde      *service.ABCDEAnalyzer
	skinTone   *service.SkinToneClassifier
	saliency   *SaliencyService
	risk       *service.RiskScorer
	recorder   port.AnalysisRecorder
	concurrent bool
	logger     *slog.Logger
	newID      func() string
}

// AnalysisOutput содержит итог анализа и картинку с тепловой картой, если она есть.
type AnalysisOutput struct {
	Result  *entity.AnalysisResult
	Overlay []byte
}

// AnalysisDeps зависимости конвейера. Saliency и Recorder необязательны.
type AnalysisDeps struct {
	Users      *UserService
	Decoder    port.ImageDecoder
	Classifier port.Classifier
	ABCDE      *service.ABCDEAnalyzer
	SkinTone   *service.SkinToneClassifier
	Saliency   *SaliencyService
	Risk       *service.RiskScorer
	Recorder   port.AnalysisRecorder
	Logger     *slog.Logger

	// Concurrent запускает ABCDE и оценку тона кожи параллельно
	Concurrent bool
}

// NewAnalysisService создаёт сервис анализа.
func NewAnalysisService(deps AnalysisDeps) *AnalysisService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	risk := deps.Risk
	if risk == nil {
		risk = service.NewRiskScorer(service.DefaultRiskRules(), logger)
	}
	return &AnalysisService{
		users:      deps.Users,
		decoder:    deps.Decoder,
		classifier: deps.Classifier,
		abcde:      deps.ABCDE,
		skinTone:   deps.SkinTone,
		saliency:   deps.Saliency,
		risk:       risk,
		recorder:   deps.Recorder,
		concurrent: deps.Concurrent,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// BeginCheck переводит пользователя в ожидание фотографии.
func (s *AnalysisService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.users.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// ProcessPhoto декодирует фото пользователя и запускает анализ с его профилем риска.
// Пользователь возвращается в главное меню при любом исходе.
func (s *AnalysisService) ProcessPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*AnalysisOutput, error) {
	if s.decoder == nil {
		return nil, errors.New("image decoder is not configured")
	}

	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	defer func() {
		if _, err := s.users.SetState(context.WithoutCancel(ctx), userID, chatID, entity.StateMainMenu); err != nil {
			s.logger.Error("reset user state", "user_id", userID, "error", err)
		}
	}()

	img, err := s.decoder.Decode(photo)
	if err != nil {
		s.observe(OutcomeInvalidImage, time.Now())
		return nil, err
	}

	return s.Analyze(ctx, entity.AnalysisRequest{
		Image:   img,
		Patient: user.RiskFactors(),
	})
}

// Analyze выполняет полный конвейер для одного изображения.
// Ошибка возвращается только при сбое классификатора; остальные сбои
// заменяются значениями по умолчанию.
func (s *AnalysisService) Analyze(ctx context.Context, req entity.AnalysisRequest) (*AnalysisOutput, error) {
	start := time.Now()

	if s.classifier == nil {
		return nil, fmt.Errorf("%w: classifier is not configured", entity.ErrClassifierInvocation)
	}

	pred, err := s.classifier.Predict(ctx, req.Image)
	if err == nil && pred == nil {
		err = errors.New("empty prediction")
	}
	if err != nil {
		s.logger.Error("classifier failed", "error", err)
		s.observe(OutcomeClassifierError, start)
		if errors.Is(err, entity.ErrInvalidImage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrClassifierInvocation, err)
	}

	abcde, tone := s.features(req.Image)
	if !abcde.Valid {
		s.recordSegmentationFailure()
	}

	id := s.newID()
	var overlayPath *string
	var overlay []byte
	if s.saliency != nil {
		path, data, err := s.saliency.Generate(ctx, req.Image, pred.PrimaryClass, id)
		if err != nil {
			s.logger.Warn("saliency map unavailable", "analysis_id", id, "error", err)
			if s.recorder != nil {
				s.recorder.SaliencyFailed()
			}
		} else {
			overlayPath, overlay = &path, data
		}
	}

	risk := s.risk.Assess(pred.PrimaryClass, pred.Confidence, abcde, req.Patient)
	if s.recorder != nil {
		s.recorder.RiskAssessed(risk)
	}

	result := &entity.AnalysisResult{
		AnalysisID: id,
		Diagnosis: entity.Diagnosis{
			PrimaryPrediction: pred.PrimaryClass,
			PrimaryName:       pred.PrimaryClass.Name(),
			Confidence:        pred.Confidence,
			AllPredictions:    pred.TopK,
			EnsembleConsensus: pred.EnsembleConsensus,
		},
		ClinicalAnalysis: entity.ClinicalAnalysis{
			ABCDEScore:   abcde,
			SkinTone:     tone.Label(),
			BodyLocation: req.BodyLocation,
		},
		Visualization:  entity.Visualization{OverlayPath: overlayPath},
		RiskAssessment: risk,
		Recommendation: risk.Recommendation,
	}

	s.logger.Info("analysis completed",
		"analysis_id", id,
		"class", pred.PrimaryClass,
		"risk", risk.OverallRisk,
		"score", risk.MelanomaRiskScore,
		"overlay", overlayPath != nil,
		"elapsed", time.Since(start))
	s.observe(OutcomeOK, start)

	return &AnalysisOutput{Result: result, Overlay: overlay}, nil
}

// features считает ABCDE и тон кожи. Обе функции не возвращают ошибок,
// поэтому errgroup используется только для ожидания.
func (s *AnalysisService) features(img entity.LesionImage) (entity.ABCDEScore, entity.FitzpatrickType) {
	abcde := entity.DefaultABCDEScore()
	tone := entity.DefaultSkinTone

	if !s.concurrent {
		if s.abcde != nil {
			abcde = s.abcde.Analyze(img)
		}
		if s.skinTone != nil {
			tone = s.skinTone.Classify(img)
		}
		return abcde, tone
	}

	var g errgroup.Group
	if s.abcde != nil {
		g.Go(func() error {
			abcde = s.abcde.Analyze(img)
			return nil
		})
	}
	if s.skinTone != nil {
		g.Go(func() error {
			tone = s.skinTone.Classify(img)
			return nil
		})
	}
	_ = g.Wait()

	return abcde, tone
}

func (s *AnalysisService) recordSegmentationFailure() {
	if s.recorder != nil {
		s.recorder.SegmentationFailed()
	}
}

func (s *AnalysisService) observe(outcome string, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveAnalysis(outcome, time.Since(start))
	}
}
