package animation

// AnimationBuilderOption is a functional option for configuring an Animation via NewAnimation.
type AnimationBuilderOption func(*animation)

// WithDurationPolicy is an option builder that sets how inserted bones constrain the clip duration.
//
// Parameters:
//   - policy: the duration policy
//
// Returns:
//   - AnimationBuilderOption: a function that applies the policy option to an animation
func WithDurationPolicy(policy DurationPolicy) AnimationBuilderOption {
	return func(a *animation) {
		a.policy = policy
	}
}

// WithBones is an option builder that inserts bones at construction time, as if each were
// passed to InsertBone in order.
//
// Parameters:
//   - bones: the bones to insert
//
// Returns:
//   - AnimationBuilderOption: a function that applies the bones option to an animation
func WithBones(bones ...*Bone) AnimationBuilderOption {
	return func(a *animation) {
		a.pending = append(a.pending, bones...)
	}
}
