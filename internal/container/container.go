package container

import (
	"log/slog"

	app "lesion-bot/internal/application"
	"lesion-bot/internal/domain/port"
	"lesion-bot/internal/domain/service"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
	RiskScorer      *service.RiskScorer
}

// Deps внешние реализации портов, собранные в main.
type Deps struct {
	UserRepo   port.UserRepository
	Decoder    port.ImageDecoder
	Classifier port.Classifier
	Explainer  port.Explainer
	Segmenter  port.LesionSegmenter
	Renderer   port.OverlayRenderer
	Store      port.OverlayStore
	Recorder   port.AnalysisRecorder
	Logger     *slog.Logger
}

// Options параметры анализа из конфигурации.
type Options struct {
	ExplainLayer       string
	OverlayAlpha       float64
	PixelsPerMM        float64
	RiskRules          service.RiskRules
	ConcurrentFeatures bool
}

func New(deps Deps, opts Options) *Container {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userService := app.NewUserService(deps.UserRepo)
	riskScorer := service.NewRiskScorer(opts.RiskRules, logger.With("component", "risk"))

	var saliency *app.SaliencyService
	if deps.Explainer != nil {
		saliency = app.NewSaliencyService(deps.Explainer, deps.Renderer, deps.Store,
			opts.ExplainLayer, opts.OverlayAlpha, logger.With("component", "saliency"))
	}

	analysisService := app.NewAnalysisService(app.AnalysisDeps{
		Users:      userService,
		Decoder:    deps.Decoder,
		Classifier: deps.Classifier,
		ABCDE:      service.NewABCDEAnalyzer(deps.Segmenter, opts.PixelsPerMM, logger.With("component", "abcde")),
		SkinTone:   service.NewSkinToneClassifier(logger.With("component", "skin_tone")),
		Saliency:   saliency,
		Risk:       riskScorer,
		Recorder:   deps.Recorder,
		Logger:     logger.With("component", "analysis"),
		Concurrent: opts.ConcurrentFeatures,
	})

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
		RiskScorer:      riskScorer,
	}
}
