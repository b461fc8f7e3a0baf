package game_object

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/animator"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uuid.UUID) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is updated by its scene.
//
// Parameters:
//   - enabled: true to update the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the Model for this GameObject and configures the Animator the object creates
// for it. The model is shared; the Animator is owned by this object alone.
//
// Parameters:
//   - m: the Model to associate
//   - animatorOptions: options applied to the object's Animator after the model
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model, animatorOptions ...animator.AnimatorBuilderOption) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
		obj.animatorOptions = append(obj.animatorOptions, animatorOptions...)
	}
}

// WithAnimatorOptions configures the Animator the object creates, including one created later
// by SetModel.
//
// Parameters:
//   - animatorOptions: options applied to the object's Animator after the model
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Animator options
func WithAnimatorOptions(animatorOptions ...animator.AnimatorBuilderOption) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.animatorOptions = append(obj.animatorOptions, animatorOptions...)
	}
}

// WithPosition sets the initial world position of the GameObject.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//   - z: the z position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = mgl32.Vec3{x, y, z}
	}
}

// WithScale sets the initial world scale of the GameObject.
//
// Parameters:
//   - sx: the x scale
//   - sy: the y scale
//   - sz: the z scale
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithRotation sets the initial world orientation of the GameObject.
//
// Parameters:
//   - q: the orientation
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation
func WithRotation(q mgl32.Quat) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = q.Normalize()
	}
}
