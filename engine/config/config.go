package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/animator"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/scene"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of the animation runtime, as read from a TOML file.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Engine   EngineConfig   `toml:"engine"`
	Animator AnimatorConfig `toml:"animator"`
	Scene    SceneConfig    `toml:"scene"`
}

// LogConfig configures the shared logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error or fatal.
	Level string `toml:"level"`
}

// EngineConfig configures the tick loop.
type EngineConfig struct {
	// TickRate is the number of updates per second.
	TickRate int `toml:"tick_rate"`

	// Profiling enables the once-per-second stats log line.
	Profiling bool `toml:"profiling"`
}

// AnimatorConfig configures every Animator created from it.
type AnimatorConfig struct {
	MaxBones       int     `toml:"max_bones"`
	BlendStep      float32 `toml:"blend_step"`
	BlendDuration  float32 `toml:"blend_duration"`
	Speed          float32 `toml:"speed"`
	DurationPolicy string  `toml:"duration_policy"`
}

// SceneConfig configures the per-scene update worker pool.
type SceneConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Engine: EngineConfig{TickRate: 60},
		Animator: AnimatorConfig{
			MaxBones:       animator.DefaultMaxBones,
			BlendStep:      animator.DefaultBlendStep,
			Speed:          1,
			DurationPolicy: animation.DurationShortestTrack.String(),
		},
		Scene: SceneConfig{
			Workers:   max(runtime.NumCPU()-1, 1),
			QueueSize: scene.DefaultQueueSize,
		},
	}
}

// Load reads a TOML config file over the defaults. Keys missing from the file keep their
// default values; unknown keys are rejected.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the loaded, validated configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the parsed, validated configuration
//   - error: a parse or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("parse: %w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value and reports all problems at once.
//
// Returns:
//   - error: the joined ErrInvalidConfig errors, or nil
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level %q is not a level", c.Log.Level)
	}
	if c.Engine.TickRate < 1 {
		invalid("engine.tick_rate must be at least 1, got %d", c.Engine.TickRate)
	}
	if c.Animator.MaxBones < 1 {
		invalid("animator.max_bones must be at least 1, got %d", c.Animator.MaxBones)
	}
	if !(c.Animator.BlendStep > 0 && c.Animator.BlendStep <= 1) {
		invalid("animator.blend_step must be in (0, 1], got %v", c.Animator.BlendStep)
	}
	if !(c.Animator.BlendDuration >= 0) {
		invalid("animator.blend_duration must not be negative, got %v", c.Animator.BlendDuration)
	}
	if math.IsNaN(float64(c.Animator.Speed)) || math.IsInf(float64(c.Animator.Speed), 0) {
		invalid("animator.speed must be finite, got %v", c.Animator.Speed)
	}
	if _, ok := animation.ParseDurationPolicy(c.Animator.DurationPolicy); !ok {
		invalid("animator.duration_policy %q is not shortest or longest", c.Animator.DurationPolicy)
	}
	if c.Scene.Workers < 1 {
		invalid("scene.workers must be at least 1, got %d", c.Scene.Workers)
	}
	if c.Scene.QueueSize < 1 {
		invalid("scene.queue_size must be at least 1, got %d", c.Scene.QueueSize)
	}
	return errors.Join(errs...)
}

// Options converts the section into Animator builder options.
//
// Returns:
//   - []animator.AnimatorBuilderOption: the options
func (c AnimatorConfig) Options() []animator.AnimatorBuilderOption {
	return []animator.AnimatorBuilderOption{
		animator.WithMaxBones(c.MaxBones),
		animator.WithBlendStep(c.BlendStep),
		animator.WithBlendDuration(c.BlendDuration),
		animator.WithSpeed(c.Speed),
	}
}

// ModelOptions converts the section's clip settings into Model builder options.
//
// Returns:
//   - []model.ModelBuilderOption: the options
func (c AnimatorConfig) ModelOptions() []model.ModelBuilderOption {
	policy, _ := animation.ParseDurationPolicy(c.DurationPolicy)
	return []model.ModelBuilderOption{model.WithDurationPolicy(policy)}
}

// Options converts the section into Scene builder options.
//
// Returns:
//   - []scene.SceneBuilderOption: the options
func (c SceneConfig) Options() []scene.SceneBuilderOption {
	return []scene.SceneBuilderOption{
		scene.WithWorkers(c.Workers),
		scene.WithQueueSize(c.QueueSize),
	}
}
