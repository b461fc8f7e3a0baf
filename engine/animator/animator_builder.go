package animator

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/charmbracelet/log"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithModel is an option builder that assigns a Model to the Animator during construction.
//
// Parameters:
//   - m: the Model to associate with this animator
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the model option to an animator
func WithModel(m model.Model) AnimatorBuilderOption {
	return func(a *animator) {
		a.model = m
	}
}

// WithMaxBones is an option builder that sets the capacity of the final bone matrix array.
// Bones with an id at or above the capacity are not written. Values below 1 keep the default.
//
// Parameters:
//   - maxBones: the matrix capacity
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the max bones option to an animator
func WithMaxBones(maxBones int) AnimatorBuilderOption {
	return func(a *animator) {
		a.maxBones = maxBones
	}
}

// WithBlendStep is an option builder that sets the fixed blend factor increment per update.
//
// Parameters:
//   - step: the increment added to the blend factor on every blending update
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the blend step option to an animator
func WithBlendStep(step float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.blendStep = step
	}
}

// WithBlendDuration is an option builder that makes cross-fades last a fixed number of seconds
// regardless of frame rate. When set above 0 it replaces the fixed blend step with dt / seconds.
//
// Parameters:
//   - seconds: the cross-fade length
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the blend duration option to an animator
func WithBlendDuration(seconds float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.blendDuration = seconds
	}
}

// WithSpeed is an option builder that sets the playback speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the speed option to an animator
func WithSpeed(speed float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.speed = speed
	}
}

// WithLogger is an option builder that sets the Animator's logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger option to an animator
func WithLogger(logger *log.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		a.logger = logger
	}
}
