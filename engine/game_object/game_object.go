package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/animator"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type gameObject struct {
	enabled atomic.Bool

	// animatorOptions configure the Animator whenever the object creates one.
	animatorOptions []animator.AnimatorBuilderOption

	mu       *sync.RWMutex
	id       uuid.UUID
	mdl      model.Model
	animator animator.Animator
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

// GameObject defines the interface for a scene entity: a shared skinned Model, the entity's
// own Animator and a world transform.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uuid.UUID: the object ID
	ID() uuid.UUID

	// Enabled returns whether this object is updated by its scene.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Animator returns the Animator owned by this object, or nil if no model is set.
	//
	// Returns:
	//   - animator.Animator: the associated Animator, or nil
	Animator() animator.Animator

	// Update advances the object's Animator by dt seconds. Objects without an Animator do nothing.
	//
	// Parameters:
	//   - dt: elapsed real time in seconds
	//
	// Returns:
	//   - error: the Animator's update error
	Update(dt float32) error

	// Position returns the world position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the world orientation.
	//
	// Returns:
	//   - mgl32.Quat: the orientation
	Rotation() mgl32.Quat

	// Scale returns the world scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// WorldMatrix composes the world transform as Translate * Rotate * Scale.
	//
	// Returns:
	//   - mgl32.Mat4: the model-to-world matrix
	WorldMatrix() mgl32.Mat4

	// SetID sets the object's unique identifier. A scene keeps the ID the object had when
	// it was added, so set it before adding.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uuid.UUID)

	// SetEnabled sets whether the object is updated by its scene.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object. The object's Animator is created on first use
	// with the object's animator options, and is reset to Idle on the new model otherwise.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)

	// SetPosition sets the world position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the world orientation.
	//
	// Parameters:
	//   - q: the orientation
	SetRotation(q mgl32.Quat)

	// SetScale sets the world scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects are enabled by default and get a random ID unless WithID is given.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:       &sync.RWMutex{},
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.id == uuid.Nil {
		obj.id = uuid.New()
	}
	if obj.mdl != nil {
		obj.animator = obj.newAnimator(obj.mdl)
	}
	return obj
}

func (g *gameObject) newAnimator(m model.Model) animator.Animator {
	return animator.NewAnimator(append([]animator.AnimatorBuilderOption{animator.WithModel(m)}, g.animatorOptions...)...)
}

func (g *gameObject) ID() uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mdl
}

func (g *gameObject) Animator() animator.Animator {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.animator
}

func (g *gameObject) Update(dt float32) error {
	a := g.Animator()
	if a == nil {
		return nil
	}
	return a.UpdateAnimation(dt)
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *gameObject) Rotation() mgl32.Quat {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale
}

func (g *gameObject) WorldMatrix() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return common.ComposeTRS(g.position, g.rotation, g.scale)
}

func (g *gameObject) SetID(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
	if g.animator == nil {
		g.animator = g.newAnimator(m)
		return
	}
	g.animator.SetModel(m)
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = mgl32.Vec3{x, y, z}
}

func (g *gameObject) SetRotation(q mgl32.Quat) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = q.Normalize()
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = mgl32.Vec3{sx, sy, sz}
}
