package model

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
)

// NoBone is the BoneID of a hierarchy node that is not a skinning bone.
const NoBone int32 = -1

// --- Skeleton Types ---

// BoneInfo is one entry of the model's inverse bind pose table.
type BoneInfo struct {
	// ID is the dense index of this bone into the final matrix array (0..BoneCount-1).
	ID int32

	// Name is the joint name shared by the hierarchy node and the animation channels.
	Name string

	// Offset transforms from model space to bone space at bind pose (inverse bind matrix).
	Offset mgl32.Mat4
}

// Node is one element of the model's transform hierarchy, stored in a flat arena.
// The root is always at index 0 and children are listed in import order.
type Node struct {
	// Name is the node identifier, matched against bone names at load.
	Name string

	// BoneID is the dense bone id of the joint this node drives, or NoBone.
	BoneID int32

	// Transform is the node's rest transform relative to its parent, used when
	// no active clip animates it.
	Transform mgl32.Mat4

	// Parent is the arena index of the parent node (-1 for the root).
	Parent int

	// Children are the arena indices of the child nodes.
	Children []int
}

// --- Import Types ---

// ImportedModel is the universal description of a skinned model produced by an Importer.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Root is the top of the node hierarchy.
	Root ImportedNode

	// Bones are the skinned joints in mesh order with their inverse bind matrices.
	Bones []ImportedBone

	// Clips are the animation clips bundled with the model.
	Clips []ImportedClip
}

// ImportedNode is a node of the imported hierarchy. A zero Transform is read as identity.
type ImportedNode struct {
	// Name is the node identifier.
	Name string

	// Transform is the rest transform relative to the parent.
	Transform mgl32.Mat4

	// Children are the child nodes in order.
	Children []ImportedNode
}

// ImportedBone is a skinned joint declared by the mesh. A zero Offset is read as identity.
type ImportedBone struct {
	// Name is the joint name.
	Name string

	// Offset is the inverse bind matrix.
	Offset mgl32.Mat4
}

// ImportedClip is a raw animation clip before it is resolved against the bone table.
type ImportedClip struct {
	// Name is the clip identifier.
	Name string

	// Duration is the declared length of the clip in ticks.
	Duration float32

	// TicksPerSecond is the clip time scale (0 selects the engine default).
	TicksPerSecond float32

	// Channels contains keyframe data for each animated joint.
	Channels []ImportedChannel
}

// ImportedChannel contains the keyframe data for a single joint, addressed by name.
type ImportedChannel struct {
	// BoneName is the joint this channel animates.
	BoneName string

	// PositionKeys are keyframes for translation.
	PositionKeys []animation.VectorKeyframe

	// RotationKeys are keyframes for rotation.
	RotationKeys []animation.QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []animation.VectorKeyframe
}

// Importer produces an ImportedModel from some external source (file format, procedural rig).
type Importer interface {
	// Import reads the source and returns the model description.
	//
	// Returns:
	//   - *ImportedModel: the imported model
	//   - error: an error if the source could not be read
	Import() (*ImportedModel, error)
}

// identityIfZero reads an all-zero matrix as identity.
func identityIfZero(m mgl32.Mat4) mgl32.Mat4 {
	if m == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return m
}
