package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/edurec/core"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine.HistoryLimit != 1000 {
		t.Errorf("history limit = %d, want 1000", cfg.Engine.HistoryLimit)
	}
	if cfg.Engine.RecommendationHistoryLimit != 100 {
		t.Errorf("recommendation history limit = %d, want 100", cfg.Engine.RecommendationHistoryLimit)
	}
	if cfg.Engine.SimilarUserThreshold != 0.3 || cfg.Engine.SimilarUserTopK != 10 {
		t.Errorf("similar user params = %v/%d", cfg.Engine.SimilarUserThreshold, cfg.Engine.SimilarUserTopK)
	}
	if cfg.Engine.DefaultMaxResults != 10 {
		t.Errorf("default max results = %d, want 10", cfg.Engine.DefaultMaxResults)
	}
	if cfg.Experiment.MinObservations != 10 {
		t.Errorf("min observations = %d, want 10", cfg.Experiment.MinObservations)
	}

	w := cfg.Weights()
	if w.Weight(core.InteractionComplete) != 1.0 || w.Weight(core.InteractionSkip) != -0.2 {
		t.Errorf("default weights not applied: %v", w)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
engine:
  interaction_weights:
    view: 0.2
    like: 0.6
  history_limit: 50
  similar_user_threshold: 0.5
experiment:
  min_observations: 3
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.HistoryLimit != 50 {
		t.Errorf("history limit = %d, want 50", cfg.Engine.HistoryLimit)
	}
	if cfg.Engine.SimilarUserThreshold != 0.5 {
		t.Errorf("similar user threshold = %v, want 0.5", cfg.Engine.SimilarUserThreshold)
	}
	if cfg.Experiment.MinObservations != 3 {
		t.Errorf("min observations = %d, want 3", cfg.Experiment.MinObservations)
	}
	// 未配置的字段回落默认值
	if cfg.Engine.DefaultMaxResults != 10 {
		t.Errorf("default max results = %d, want default 10", cfg.Engine.DefaultMaxResults)
	}

	w := cfg.Weights()
	if w.Weight(core.InteractionView) != 0.2 || w.Weight(core.InteractionLike) != 0.6 {
		t.Errorf("configured weights not applied: %v", w)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
