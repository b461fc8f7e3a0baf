package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/animator"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const sampleConfig = `
[log]
level = "debug"

[engine]
tick_rate = 30
profiling = true

[animator]
max_bones = 64
blend_duration = 0.5
duration_policy = "longest"

[scene]
workers = 3
`

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Engine.TickRate != 30 || !cfg.Engine.Profiling {
		t.Fatalf("unexpected log/engine sections: %+v %+v", cfg.Log, cfg.Engine)
	}
	if cfg.Animator.MaxBones != 64 || cfg.Animator.BlendDuration != 0.5 || cfg.Animator.DurationPolicy != "longest" {
		t.Fatalf("unexpected animator section: %+v", cfg.Animator)
	}
	if cfg.Animator.BlendStep != animator.DefaultBlendStep || cfg.Animator.Speed != 1 {
		t.Fatalf("expected untouched keys to keep defaults, got %+v", cfg.Animator)
	}
	if cfg.Scene.Workers != 3 || cfg.Scene.QueueSize != Default().Scene.QueueSize {
		t.Fatalf("unexpected scene section: %+v", cfg.Scene)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "[animator]\nmax_boness = 3\n",
		"bad level":    "[log]\nlevel = \"loud\"\n",
		"bad bones":    "[animator]\nmax_bones = 0\n",
		"bad step":     "[animator]\nblend_step = 1.5\n",
		"bad policy":   "[animator]\nduration_policy = \"forever\"\n",
		"bad workers":  "[scene]\nworkers = 0\n",
		"bad tickrate": "[engine]\ntick_rate = -1\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
	if _, err := Parse([]byte("[animator\n")); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Engine.TickRate = 0
	cfg.Scene.QueueSize = 0
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Fatalf("expected two joined errors, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil || cfg.Engine.TickRate != 30 {
		t.Fatalf("expected tick rate 30, got %+v (%v)", cfg.Engine, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSectionOptions(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	m, err := model.NewModel(append(cfg.Animator.ModelOptions(),
		model.WithHierarchy(model.ImportedNode{Name: "root"}),
		model.WithClips(model.ImportedClip{
			Name: "clip", Duration: 1,
			Channels: []model.ImportedChannel{{
				BoneName:     "root",
				PositionKeys: []animation.VectorKeyframe{{Time: 0}, {Time: 4, Value: mgl32.Vec3{1, 0, 0}}},
			}},
		}),
	)...)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	clip, _ := m.Animation(0)
	if clip.DurationPolicy() != animation.DurationLongestTrack || clip.Duration() != 4 {
		t.Fatalf("expected longest-track clip of 4 ticks, got %v %v", clip.DurationPolicy(), clip.Duration())
	}

	a := animator.NewAnimator(append(cfg.Animator.Options(), animator.WithModel(m))...)
	if len(a.FinalBoneMatrices()) != 64 {
		t.Fatalf("expected 64 matrices, got %d", len(a.FinalBoneMatrices()))
	}

	if got := len(cfg.Scene.Options()); got != 2 {
		t.Fatalf("expected 2 scene options, got %d", got)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.toml")
	if err := os.WriteFile(path, []byte("[engine]\ntick_rate = 10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	changes := make(chan Config, 16)
	w, err := Watch(path, func(c Config) { changes <- c }, func(error) {})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[engine]\ntick_rate = 45\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	// A truncating write can surface an empty file first; wait for the final contents.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Engine.TickRate == 45 {
				if err := w.Close(); err != nil {
					t.Fatalf("close: %v", err)
				}
				if err := w.Close(); err != nil {
					t.Fatalf("second close: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}
}
