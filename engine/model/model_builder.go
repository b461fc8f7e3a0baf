package model

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/charmbracelet/log"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithHierarchy is an option builder that sets the node hierarchy of the Model.
//
// Parameters:
//   - root: the top node of the hierarchy
//
// Returns:
//   - ModelBuilderOption: a function that applies the hierarchy option to a model
func WithHierarchy(root ImportedNode) ModelBuilderOption {
	return func(m *model) {
		m.root = &root
	}
}

// WithBones is an option builder that appends mesh bones (joint name + inverse bind matrix)
// to the Model's bone table. Bones receive dense ids in the order given; repeated names keep
// their first entry.
//
// Parameters:
//   - bones: the bones to register
//
// Returns:
//   - ModelBuilderOption: a function that applies the bones option to a model
func WithBones(bones ...ImportedBone) ModelBuilderOption {
	return func(m *model) {
		m.bones = append(m.bones, bones...)
	}
}

// WithClips is an option builder that appends raw animation clips. Each channel is resolved
// against the bone table by joint name when the Model is built.
//
// Parameters:
//   - clips: the clips to build
//
// Returns:
//   - ModelBuilderOption: a function that applies the clips option to a model
func WithClips(clips ...ImportedClip) ModelBuilderOption {
	return func(m *model) {
		m.clips = append(m.clips, clips...)
	}
}

// WithAnimations is an option builder that appends already built animation clips. Every bone
// id they reference must exist in the bone table.
//
// Parameters:
//   - animations: the animation clips to add
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations ...animation.Animation) ModelBuilderOption {
	return func(m *model) {
		m.prebuilt = append(m.prebuilt, animations...)
	}
}

// WithDurationPolicy is an option builder that sets the duration policy for clips built from WithClips.
//
// Parameters:
//   - policy: the duration policy
//
// Returns:
//   - ModelBuilderOption: a function that applies the duration policy option to a model
func WithDurationPolicy(policy animation.DurationPolicy) ModelBuilderOption {
	return func(m *model) {
		m.policy = policy
	}
}

// WithLogger is an option builder that sets the logger used while building the Model.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ModelBuilderOption: a function that applies the logger option to a model
func WithLogger(logger *log.Logger) ModelBuilderOption {
	return func(m *model) {
		m.logger = logger
	}
}
