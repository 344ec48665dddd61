package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

const namespace = "lesion"

// Recorder метрики конвейера анализа в собственном реестре Prometheus.
type Recorder struct {
	registry      *prometheus.Registry
	analyses      *prometheus.CounterVec
	duration      prometheus.Histogram
	segmentation  prometheus.Counter
	saliency      prometheus.Counter
	riskTiers     *prometheus.CounterVec
	degradedRisks prometheus.Counter
}

// NewRecorder регистрирует метрики и стандартные коллекторы процесса.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analysis requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		segmentation: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segmentation_failures_total",
			Help:      "Analyses that fell back to default ABCDE scores.",
		}),
		saliency: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saliency_failures_total",
			Help:      "Analyses returned without a Grad-CAM overlay.",
		}),
		riskTiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Risk assessments by tier.",
		}, []string{"tier"}),
		degradedRisks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_degraded_total",
			Help:      "Risk assessments that returned the degraded placeholder.",
		}),
	}

	r.registry.MustRegister(
		r.analyses,
		r.duration,
		r.segmentation,
		r.saliency,
		r.riskTiers,
		r.degradedRisks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveAnalysis(outcome string, elapsed time.Duration) {
	r.analyses.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}

func (r *Recorder) SegmentationFailed() {
	r.segmentation.Inc()
}

func (r *Recorder) SaliencyFailed() {
	r.saliency.Inc()
}

func (r *Recorder) RiskAssessed(a entity.RiskAssessment) {
	r.riskTiers.WithLabelValues(string(a.OverallRisk)).Inc()
	if a.Degraded {
		r.degradedRisks.Inc()
	}
}

// Handler отдаёт метрики в формате Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Nop пустой регистратор для CLI и тестов.
type Nop struct{}

func (Nop) ObserveAnalysis(string, time.Duration) {}
func (Nop) SegmentationFailed() {}
func (Nop) SaliencyFailed() {}
func (Nop) RiskAssessed(entity.RiskAssessment) {}

var (
	_ port.AnalysisRecorder = (*Recorder)(nil)
	_ port.AnalysisRecorder = Nop{}
)
