package animator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultMaxBones is the capacity of the final bone matrix array.
	DefaultMaxBones = 100

	// DefaultBlendStep is the blend factor increment applied on every blending update.
	DefaultBlendStep float32 = 0.02
)

var (
	// ErrNoModel is returned when playback is requested on an Animator without a model.
	ErrNoModel = errors.New("animator has no model")

	// ErrInvalidBlendFactor is returned when advancing the blend would leave the blend factor
	// NaN or negative. The update is skipped.
	ErrInvalidBlendFactor = errors.New("invalid blend factor")
)

// animator is the implementation of the Animator interface.
type animator struct {
	mu     *sync.Mutex
	logger *log.Logger

	model model.Model

	maxBones      int
	blendStep     float32
	blendDuration float32
	speed         float32

	state                 State
	current, next         int
	currentTime, nextTime float32
	blendFactor           float32

	final []mgl32.Mat4
	queue *common.RingQueue[nodeVisit]
}

// Animator defines the interface for per-entity skeletal playback.
// An Animator owns its own clock, blend state and final bone matrix array; the model and its
// clips are shared read-only. Distinct Animators on one model may be updated in parallel.
type Animator interface {
	// PlayAnimation requests playback of the clip at the given model index.
	// From Idle the clip starts playing at time 0. From Playing the clip becomes the
	// blend target and a cross-fade begins. From Blending the blend target is replaced
	// and its clock restarts while the blend factor is kept.
	// An invalid index stops playback (the Animator returns to Idle).
	//
	// Parameters:
	//   - index: the clip index in the model
	//
	// Returns:
	//   - error: ErrNoModel, or model.ErrAnimationNotFound for an invalid index
	PlayAnimation(index int) error

	// UpdateAnimation advances the active clip clocks by dt seconds and recomputes the final
	// bone matrices. Clip time advances by ticksPerSecond * speed * dt and wraps modulo the
	// clip duration. While blending, the blend factor advances by the blend step; once it
	// passes 1 the target clip becomes the current clip. Idle updates do nothing.
	//
	// Parameters:
	//   - dt: elapsed real time in seconds
	//
	// Returns:
	//   - error: ErrInvalidBlendFactor if the blend could not advance; state is unchanged
	UpdateAnimation(dt float32) error

	// FinalBoneMatrices returns the per-bone skinning matrices indexed by bone id. Its length is
	// the max bone count and unused entries are identity. The slice is owned by the Animator,
	// is overwritten by UpdateAnimation and must not be modified.
	//
	// Returns:
	//   - []mgl32.Mat4: the final bone matrices
	FinalBoneMatrices() []mgl32.Mat4

	// State returns the current playback state.
	//
	// Returns:
	//   - State: Idle, Playing or Blending
	State() State

	// Current returns the index of the clip being played.
	//
	// Returns:
	//   - int: the clip index
	//   - bool: false when Idle
	Current() (int, bool)

	// Next returns the index of the clip being blended towards.
	//
	// Returns:
	//   - int: the clip index
	//   - bool: false unless Blending
	Next() (int, bool)

	// CurrentTime returns the current clip's local time in ticks.
	//
	// Returns:
	//   - float32: the current time
	CurrentTime() float32

	// NextTime returns the blend target's local time in ticks.
	//
	// Returns:
	//   - float32: the next time
	NextTime() float32

	// BlendFactor returns the cross-fade weight of the blend target in [0, 1].
	//
	// Returns:
	//   - float32: the blend factor (0 when not blending)
	BlendFactor() float32

	// CancelBlend stops an in-progress blend and keeps playing the current clip.
	CancelBlend()

	// Stop returns the Animator to Idle. The final matrices keep their last values.
	Stop()

	// SetModel replaces the model, returns to Idle and resets the final matrices to identity.
	//
	// Parameters:
	//   - m: the model to animate (nil detaches the model)
	SetModel(m model.Model)

	// Model returns the animated model.
	//
	// Returns:
	//   - model.Model: the model, or nil
	Model() model.Model

	// SetSpeed sets the playback speed multiplier (1.0 = normal, 0.5 = half speed).
	//
	// Parameters:
	//   - speed: the speed multiplier
	SetSpeed(speed float32)

	// Speed returns the playback speed multiplier.
	//
	// Returns:
	//   - float32: the speed multiplier
	Speed() float32
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: a new Idle Animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		mu:        &sync.Mutex{},
		maxBones:  DefaultMaxBones,
		blendStep: DefaultBlendStep,
		speed:     1,
		current:   -1,
		next:      -1,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.logger == nil {
		a.logger = common.NewLogger("animator")
	}
	if a.maxBones < 1 {
		a.maxBones = DefaultMaxBones
	}
	a.final = make([]mgl32.Mat4, a.maxBones)
	a.resetLocked(a.model)
	return a
}

func (a *animator) PlayAnimation(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.model == nil {
		return ErrNoModel
	}
	if _, ok := a.model.Animation(index); !ok {
		if a.state != StateIdle {
			a.logger.Warn("invalid animation requested, stopping playback", "index", index, "state", a.state)
			a.stopLocked()
		}
		return fmt.Errorf("play animation %d: %w", index, model.ErrAnimationNotFound)
	}

	switch a.state {
	case StateIdle:
		a.current = index
		a.currentTime = 0
		a.state = StatePlaying
	case StatePlaying:
		a.next = index
		a.nextTime = 0
		a.blendFactor = 0
		a.state = StateBlending
	case StateBlending:
		a.next = index
		a.nextTime = 0
	}
	return nil
}

func (a *animator) UpdateAnimation(dt float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.model == nil || a.state == StateIdle {
		return nil
	}
	current, ok := a.model.Animation(a.current)
	if !ok {
		a.stopLocked()
		return fmt.Errorf("update animation %d: %w", a.current, model.ErrAnimationNotFound)
	}

	if a.state == StatePlaying {
		a.currentTime = a.advance(current, a.currentTime, dt)
		a.evaluate(poseSource{current: current, currentTime: a.currentTime})
		return nil
	}

	next, ok := a.model.Animation(a.next)
	if !ok {
		a.cancelBlendLocked()
		a.currentTime = a.advance(current, a.currentTime, dt)
		a.evaluate(poseSource{current: current, currentTime: a.currentTime})
		return nil
	}

	candidate := a.blendFactor + a.stepFor(dt)
	if math.IsNaN(float64(candidate)) || candidate < 0 {
		a.logger.Error("blend factor out of range, skipping update", "blend_factor", candidate, "current", a.current, "next", a.next)
		return fmt.Errorf("blend %d -> %d at %v: %w", a.current, a.next, candidate, ErrInvalidBlendFactor)
	}

	a.currentTime = a.advance(current, a.currentTime, dt)
	a.nextTime = a.advance(next, a.nextTime, dt)

	if candidate > 1 {
		a.current, a.currentTime = a.next, a.nextTime
		a.cancelBlendLocked()
		a.logger.Debug("blend complete", "current", a.current)
		a.evaluate(poseSource{current: next, currentTime: a.currentTime})
		return nil
	}

	a.blendFactor = candidate
	a.evaluate(poseSource{
		current:     current,
		next:        next,
		currentTime: a.currentTime,
		nextTime:    a.nextTime,
		blendFactor: a.blendFactor,
		blending:    true,
	})
	return nil
}

// advance moves a clip-local time forward by dt seconds at the clip's rate and wraps it.
func (a *animator) advance(clip animation.Animation, time, dt float32) float32 {
	return clip.WrapTime(time + clip.TicksPerSecond()*a.speed*dt)
}

// stepFor returns the blend factor increment for an update of dt seconds.
func (a *animator) stepFor(dt float32) float32 {
	if a.blendDuration > 0 {
		return dt / a.blendDuration
	}
	return a.blendStep
}

func (a *animator) FinalBoneMatrices() []mgl32.Mat4 {
	return a.final
}

func (a *animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *animator) Current() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.state != StateIdle
}

func (a *animator) Next() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next, a.state == StateBlending
}

func (a *animator) CurrentTime() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentTime
}

func (a *animator) NextTime() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nextTime
}

func (a *animator) BlendFactor() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blendFactor
}

func (a *animator) CancelBlend() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelBlendLocked()
}

func (a *animator) cancelBlendLocked() {
	if a.state == StateBlending {
		a.state = StatePlaying
	}
	a.next = -1
	a.nextTime = 0
	a.blendFactor = 0
}

func (a *animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *animator) stopLocked() {
	a.state = StateIdle
	a.current, a.next = -1, -1
	a.currentTime, a.nextTime = 0, 0
	a.blendFactor = 0
}

func (a *animator) SetModel(m model.Model) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked(m)
}

// resetLocked attaches m, returns to Idle and resets the final matrices to identity.
func (a *animator) resetLocked(m model.Model) {
	a.model = m
	a.stopLocked()
	for i := range a.final {
		a.final[i] = mgl32.Ident4()
	}
	if m == nil {
		a.queue = nil
		return
	}
	a.queue = common.NewRingQueue[nodeVisit](m.NodeCount())
	if m.BoneCount() > len(a.final) {
		a.logger.Warn("model has more bones than the matrix capacity, extra bones are ignored",
			"model", m.Name(), "bones", m.BoneCount(), "max_bones", len(a.final))
	}
}

func (a *animator) Model() model.Model {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model
}

func (a *animator) SetSpeed(speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.speed = speed
}

func (a *animator) Speed() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speed
}
