package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesion-bot/internal/domain/entity"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.ObserveAnalysis("ok", 300*time.Millisecond)
	r.ObserveAnalysis("ok", time.Second)
	r.ObserveAnalysis("classifier_error", 10*time.Millisecond)
	r.SegmentationFailed()
	r.SaliencyFailed()
	r.SaliencyFailed()
	r.RiskAssessed(entity.RiskAssessment{OverallRisk: entity.RiskHigh})
	r.RiskAssessed(entity.RiskAssessment{OverallRisk: entity.RiskMedium, Degraded: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.analyses.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.analyses.WithLabelValues("classifier_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.segmentation))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.saliency))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.riskTiers.WithLabelValues("high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.degradedRisks))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder()
	r.SaliencyFailed()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lesion_saliency_failures_total 1")
}
