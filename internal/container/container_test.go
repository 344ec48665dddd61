package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lesion-bot/config"
	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/infrastructure/metrics"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		ModelServerURL:   "http://127.0.0.1:0",
		ModelTimeout:     time.Second,
		ExplainLayer:     "layer4",
		HeatmapDir:       filepath.Join(t.TempDir(), "heatmaps"),
		HeatmapURLPrefix: "/heatmaps",
		OverlayAlpha:     0.4,
		PixelsPerMM:      10,
		MaxUploadSize:    10 << 20,
	}
}

func TestFromConfig(t *testing.T) {
	cfg := testConfig(t)

	c, err := FromConfig(cfg, metrics.Nop{}, nil)
	require.NoError(t, err)
	require.NotNil(t, c.AnalysisService)
	require.DirExists(t, cfg.HeatmapDir)

	user, err := c.AnalysisService.BeginCheck(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)
}

func TestFromConfig_RiskRules(t *testing.T) {
	cfg := testConfig(t)
	cfg.RiskRulesPath = filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.RiskRulesPath, []byte("senior_age: 70\n"), 0o644))

	c, err := FromConfig(cfg, metrics.Nop{}, nil)
	require.NoError(t, err)
	require.Equal(t, 70, c.RiskScorer.Rules().SeniorAge)

	cfg.RiskRulesPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = FromConfig(cfg, metrics.Nop{}, nil)
	require.Error(t, err)
}
