package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrAnimationNotFound is returned when an animation index or name does not resolve to a clip.
	ErrAnimationNotFound = errors.New("animation not found")

	// ErrBoneNotFound is returned when an animation references a bone id missing from the bone table.
	ErrBoneNotFound = errors.New("bone not found")

	// ErrNoRootNode is returned when a model is built without a node hierarchy.
	ErrNoRootNode = errors.New("model has no root node")
)

// model is the implementation of the Model interface.
type model struct {
	name   string
	logger *log.Logger

	nodes []Node

	boneInfo []BoneInfo
	boneIDs  map[string]int32

	animations     []animation.Animation
	animationIndex map[string]int

	// build inputs, consumed by NewModel
	root     *ImportedNode
	bones    []ImportedBone
	clips    []ImportedClip
	prebuilt []animation.Animation
	policy   animation.DurationPolicy
}

// Model defines the interface for a loaded skinned model: the transform hierarchy, the
// inverse bind pose table and the animation clips that drive it.
// A Model is read-only after construction and may be shared by any number of Animators
// on any number of goroutines.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// RootNode returns the top of the hierarchy (arena index 0).
	//
	// Returns:
	//   - Node: the root node
	RootNode() Node

	// Node returns the hierarchy node at the given arena index.
	// The returned Children slice is shared with the model and must not be modified.
	//
	// Parameters:
	//   - index: the arena index
	//
	// Returns:
	//   - Node: the node
	//   - bool: false if the index is out of range
	Node(index int) (Node, bool)

	// NodeCount returns the number of nodes in the hierarchy.
	//
	// Returns:
	//   - int: the node count
	NodeCount() int

	// Nodes returns a copy of the node arena in index order.
	//
	// Returns:
	//   - []Node: the nodes
	Nodes() []Node

	// BoneInfo looks up the bone table entry for a joint name.
	//
	// Parameters:
	//   - name: the joint name
	//
	// Returns:
	//   - BoneInfo: the entry
	//   - bool: true if found
	BoneInfo(name string) (BoneInfo, bool)

	// BoneInfoByID looks up the bone table entry for a dense bone id.
	//
	// Parameters:
	//   - id: the bone id
	//
	// Returns:
	//   - BoneInfo: the entry
	//   - bool: true if found
	BoneInfoByID(id int32) (BoneInfo, bool)

	// BoneCount returns the number of entries in the bone table. Ids are 0..BoneCount-1.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// Animation retrieves the clip at the given index.
	//
	// Parameters:
	//   - index: the clip index
	//
	// Returns:
	//   - animation.Animation: the clip, or nil
	//   - bool: false if the index is out of range
	Animation(index int) (animation.Animation, bool)

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// AnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	AnimationIndex(name string) int
}

var _ Model = &model{}

// NewModel creates a new Model from the hierarchy, bones and clips supplied through options.
//
// Bone ids are assigned densely from 0 in first-seen order: mesh bones (WithBones) first, then
// joints that are referenced only by animation channels, which get an identity offset. Hierarchy
// nodes are then matched to bones by name.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the assembled model
//   - error: ErrNoRootNode without a hierarchy, or an error for a malformed clip
func NewModel(options ...ModelBuilderOption) (Model, error) {
	m := &model{
		boneIDs:        make(map[string]int32),
		animationIndex: make(map[string]int),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.logger == nil {
		m.logger = common.NewLogger("model")
	}
	if m.root == nil {
		return nil, ErrNoRootNode
	}

	for _, b := range m.bones {
		m.registerBone(b.Name, identityIfZero(b.Offset))
	}

	for _, clip := range m.clips {
		anim, err := m.buildClip(clip)
		if err != nil {
			return nil, err
		}
		m.addAnimation(anim)
	}
	for _, anim := range m.prebuilt {
		if anim == nil {
			continue
		}
		for _, b := range anim.Bones() {
			if _, ok := m.BoneInfoByID(b.ID()); !ok {
				return nil, fmt.Errorf("animation %q bone %q id %d: %w", anim.Name(), b.Name(), b.ID(), ErrBoneNotFound)
			}
		}
		m.addAnimation(anim)
	}

	m.flatten(*m.root, -1)

	m.root, m.bones, m.clips, m.prebuilt = nil, nil, nil, nil
	m.logger.Debug("model loaded", "name", m.name, "nodes", len(m.nodes), "bones", len(m.boneInfo), "animations", len(m.animations))
	return m, nil
}

// FromImported builds a Model from an importer's output. Options are applied after the
// imported data, so they can rename the model or set the clip duration policy.
//
// Parameters:
//   - im: the imported model description
//   - options: additional ModelBuilderOption functions
//
// Returns:
//   - Model: the assembled model
//   - error: an error if the description is nil or malformed
func FromImported(im *ImportedModel, options ...ModelBuilderOption) (Model, error) {
	if im == nil {
		return nil, ErrNoRootNode
	}
	opts := []ModelBuilderOption{
		WithName(im.Name),
		WithHierarchy(im.Root),
		WithBones(im.Bones...),
		WithClips(im.Clips...),
	}
	return NewModel(append(opts, options...)...)
}

// Load runs an Importer and builds a Model from its output.
//
// Parameters:
//   - importer: the model source
//   - options: additional ModelBuilderOption functions
//
// Returns:
//   - Model: the assembled model
//   - error: the import or build error
func Load(importer Importer, options ...ModelBuilderOption) (Model, error) {
	im, err := importer.Import()
	if err != nil {
		return nil, fmt.Errorf("import model: %w", err)
	}
	return FromImported(im, options...)
}

func (m *model) registerBone(name string, offset mgl32.Mat4) int32 {
	if id, ok := m.boneIDs[name]; ok {
		return id
	}
	id := int32(len(m.boneInfo))
	m.boneInfo = append(m.boneInfo, BoneInfo{ID: id, Name: name, Offset: offset})
	m.boneIDs[name] = id
	return id
}

func (m *model) buildClip(clip ImportedClip) (animation.Animation, error) {
	anim := animation.NewAnimation(clip.Name, clip.Duration, clip.TicksPerSecond, animation.WithDurationPolicy(m.policy))
	for _, ch := range clip.Channels {
		id, ok := m.boneIDs[ch.BoneName]
		if !ok {
			id = m.registerBone(ch.BoneName, mgl32.Ident4())
			m.logger.Debug("bone referenced only by animation", "clip", clip.Name, "bone", ch.BoneName, "id", id)
		}
		bone, err := animation.NewBone(ch.BoneName, id, ch.PositionKeys, ch.RotationKeys, ch.ScaleKeys)
		if err != nil {
			return nil, fmt.Errorf("clip %q: %w", clip.Name, err)
		}
		anim.InsertBone(bone)
	}
	return anim, nil
}

func (m *model) addAnimation(anim animation.Animation) {
	if _, exists := m.animationIndex[anim.Name()]; !exists {
		m.animationIndex[anim.Name()] = len(m.animations)
	}
	m.animations = append(m.animations, anim)
}

// flatten appends n and its subtree to the arena and returns n's index.
func (m *model) flatten(n ImportedNode, parent int) int {
	index := len(m.nodes)
	boneID := NoBone
	if id, ok := m.boneIDs[n.Name]; ok {
		boneID = id
	}
	m.nodes = append(m.nodes, Node{
		Name:      n.Name,
		BoneID:    boneID,
		Transform: identityIfZero(n.Transform),
		Parent:    parent,
	})
	if len(n.Children) > 0 {
		children := make([]int, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, m.flatten(c, index))
		}
		m.nodes[index].Children = children
	}
	return index
}

func (m *model) Name() string {
	return m.name
}

func (m *model) RootNode() Node {
	return m.nodes[0]
}

func (m *model) Node(index int) (Node, bool) {
	if index < 0 || index >= len(m.nodes) {
		return Node{}, false
	}
	return m.nodes[index], true
}

func (m *model) NodeCount() int {
	return len(m.nodes)
}

func (m *model) Nodes() []Node {
	return append([]Node(nil), m.nodes...)
}

func (m *model) BoneInfo(name string) (BoneInfo, bool) {
	id, ok := m.boneIDs[name]
	if !ok {
		return BoneInfo{}, false
	}
	return m.boneInfo[id], true
}

func (m *model) BoneInfoByID(id int32) (BoneInfo, bool) {
	if id < 0 || int(id) >= len(m.boneInfo) {
		return BoneInfo{}, false
	}
	return m.boneInfo[id], true
}

func (m *model) BoneCount() int {
	return len(m.boneInfo)
}

func (m *model) Animation(index int) (animation.Animation, bool) {
	if index < 0 || index >= len(m.animations) {
		return nil, false
	}
	return m.animations[index], true
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name()
	}
	return names
}

func (m *model) AnimationIndex(name string) int {
	if i, ok := m.animationIndex[name]; ok {
		return i
	}
	return -1
}
