package animation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform represents a decomposed transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns the transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform as Translate * Rotate * Scale.
//
// Returns:
//   - mgl32.Mat4: the column-major local matrix
func (t Transform) Matrix() mgl32.Mat4 {
	return common.ComposeTRS(t.Translation, t.Rotation, t.Scale)
}

// BlendTransforms interpolates two decomposed transforms: translation and scale are lerped,
// rotation is slerped along the shortest arc. A factor of 0 returns a and a factor of 1 returns b
// unchanged; factors outside [0, 1] are clamped.
//
// Parameters:
//   - a: the transform at factor 0
//   - b: the transform at factor 1
//   - factor: the blend weight
//
// Returns:
//   - Transform: the blended transform
func BlendTransforms(a, b Transform, factor float32) Transform {
	factor = common.Clamp(factor, 0, 1)
	switch factor {
	case 0:
		return a
	case 1:
		return b
	}
	return Transform{
		Translation: common.LerpVec3(a.Translation, b.Translation, factor),
		Rotation:    common.SlerpQuat(a.Rotation, b.Rotation, factor),
		Scale:       common.LerpVec3(a.Scale, b.Scale, factor),
	}
}

// Bone holds the three keyframe tracks that animate one skeletal joint within one clip.
// A Bone is immutable after construction; evaluation returns values instead of caching them,
// so one Bone may be sampled by any number of Animators concurrently.
type Bone struct {
	name string
	id   int32

	positions VectorTrack
	rotations QuaternionTrack
	scales    VectorTrack

	lastTimestamp float32
}

// NewBone builds a Bone from raw keyframe lists. A missing (empty) channel is replaced with a
// single rest keyframe at time 0: zero translation, identity rotation or unit scale.
//
// Parameters:
//   - name: the joint name, matching the hierarchy node it animates
//   - id: the dense bone id from the owning model's BoneInfo table
//   - positions: translation keyframes
//   - rotations: rotation keyframes
//   - scales: scale keyframes
//
// Returns:
//   - *Bone: the bone
//   - error: an error if any non-empty channel is malformed
func NewBone(name string, id int32, positions []VectorKeyframe, rotations []QuaternionKeyframe, scales []VectorKeyframe) (*Bone, error) {
	if len(positions) == 0 {
		positions = []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{}}}
	}
	if len(rotations) == 0 {
		rotations = []QuaternionKeyframe{{Time: 0, Value: mgl32.QuatIdent()}}
	}
	if len(scales) == 0 {
		scales = []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{1, 1, 1}}}
	}

	b := &Bone{name: name, id: id}

	var err error
	if b.positions, err = NewVectorTrack(positions); err != nil {
		return nil, fmt.Errorf("bone %q position track: %w", name, err)
	}
	if b.rotations, err = NewQuaternionTrack(rotations); err != nil {
		return nil, fmt.Errorf("bone %q rotation track: %w", name, err)
	}
	if b.scales, err = NewVectorTrack(scales); err != nil {
		return nil, fmt.Errorf("bone %q scale track: %w", name, err)
	}

	b.lastTimestamp = max(b.positions.LastTimestamp(), b.rotations.LastTimestamp(), b.scales.LastTimestamp())
	return b, nil
}

// Name returns the joint name.
func (b *Bone) Name() string { return b.name }

// ID returns the dense bone id.
func (b *Bone) ID() int32 { return b.id }

// LastTimestamp returns the latest keyframe time across all three tracks.
func (b *Bone) LastTimestamp() float32 { return b.lastTimestamp }

// Positions returns the translation track.
func (b *Bone) Positions() VectorTrack { return b.positions }

// Rotations returns the rotation track.
func (b *Bone) Rotations() QuaternionTrack { return b.rotations }

// Scales returns the scale track.
func (b *Bone) Scales() VectorTrack { return b.scales }

// Pose samples all three tracks at the given clip-local time.
//
// Parameters:
//   - time: the clip-local time in ticks
//
// Returns:
//   - Transform: the decomposed local transform
//   - bool: true if any track had to clamp time to its keyed range
func (b *Bone) Pose(time float32) (Transform, bool) {
	pos, pc := b.positions.ValueAt(time)
	rot, rc := b.rotations.ValueAt(time)
	scl, sc := b.scales.ValueAt(time)
	return Transform{Translation: pos, Rotation: rot, Scale: scl}, pc || rc || sc
}

// Update evaluates the bone's local transform at the given clip-local time:
// Translate(position) * Rotate(rotation) * Scale(scale).
//
// Parameters:
//   - time: the clip-local time in ticks
//
// Returns:
//   - mgl32.Mat4: the local transform
func (b *Bone) Update(time float32) mgl32.Mat4 {
	pose, _ := b.Pose(time)
	return pose.Matrix()
}

// UpdateBlend evaluates this bone at time and other at otherTime independently, then
// interpolates the two decomposed poses by blendFactor. A factor of 0 yields exactly
// Update(time) and a factor of 1 yields exactly other.Update(otherTime).
// A nil other contributes nothing and the result is Update(time).
//
// Parameters:
//   - time: this bone's clip-local time
//   - other: the matching bone in the clip being blended towards (may be nil)
//   - otherTime: the other clip's clip-local time
//   - blendFactor: the blend weight in [0, 1]
//
// Returns:
//   - mgl32.Mat4: the blended local transform
func (b *Bone) UpdateBlend(time float32, other *Bone, otherTime, blendFactor float32) mgl32.Mat4 {
	pose, _ := b.Pose(time)
	if other == nil {
		return pose.Matrix()
	}
	otherPose, _ := other.Pose(otherTime)
	return BlendTransforms(pose, otherPose, blendFactor).Matrix()
}
