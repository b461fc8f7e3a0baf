package animation

import (
	"math"
	"sync"
)

// DefaultTicksPerSecond is the playback rate assumed when a clip declares none (0 or negative).
const DefaultTicksPerSecond float32 = 25

// DurationPolicy selects how inserted bones constrain a clip's duration.
type DurationPolicy int

const (
	// DurationShortestTrack clamps the clip duration to the smallest last-keyframe time over
	// all inserted bones: duration = min(duration, bone.LastTimestamp()). This keeps every
	// sampled time inside every bone's keyed range.
	DurationShortestTrack DurationPolicy = iota

	// DurationLongestTrack sets the clip duration to the largest last-keyframe time over all
	// inserted bones so no keyframes are cut off. Bones that end earlier hold their last pose.
	DurationLongestTrack
)

// String returns the config name of the policy.
func (p DurationPolicy) String() string {
	switch p {
	case DurationShortestTrack:
		return "shortest"
	case DurationLongestTrack:
		return "longest"
	default:
		return "unknown"
	}
}

// ParseDurationPolicy maps a config name ("shortest", "longest") to a DurationPolicy.
//
// Parameters:
//   - name: the policy name
//
// Returns:
//   - DurationPolicy: the parsed policy (DurationShortestTrack when ok is false)
//   - bool: true if the name was recognized
func ParseDurationPolicy(name string) (DurationPolicy, bool) {
	switch name {
	case "shortest", "":
		return DurationShortestTrack, true
	case "longest":
		return DurationLongestTrack, true
	default:
		return DurationShortestTrack, false
	}
}

// animation is the implementation of the Animation interface.
type animation struct {
	mu *sync.RWMutex

	name           string
	duration       float32
	ticksPerSecond float32
	policy         DurationPolicy

	bonesByID   map[int32]*Bone
	bonesByName map[string]*Bone
	bones       []*Bone

	pending []*Bone
}

// Animation defines the interface for a single keyframe clip (walk, run, attack, etc.).
//
// An Animation is filled with Bones at load time through InsertBone and is read-only
// afterwards; FindBone and the accessors are safe for concurrent use by many Animators.
type Animation interface {
	// Name returns the clip identifier.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// Duration returns the clip length in ticks, as constrained by the duration policy.
	//
	// Returns:
	//   - float32: the clip duration
	Duration() float32

	// TicksPerSecond returns the clip's native time scale.
	//
	// Returns:
	//   - float32: ticks per real second (always > 0)
	TicksPerSecond() float32

	// DurationPolicy returns the policy used when bones were inserted.
	//
	// Returns:
	//   - DurationPolicy: the active policy
	DurationPolicy() DurationPolicy

	// InsertBone adds a bone to the clip, replacing any bone with the same id, and updates the
	// clip duration according to the duration policy. Load-time only.
	//
	// Parameters:
	//   - bone: the bone to insert (nil is ignored)
	InsertBone(bone *Bone)

	// FindBone looks up a bone by its dense id.
	//
	// Parameters:
	//   - id: the bone id
	//
	// Returns:
	//   - *Bone: the bone, or nil
	//   - bool: true if found
	FindBone(id int32) (*Bone, bool)

	// FindBoneByName looks up a bone by joint name.
	//
	// Parameters:
	//   - name: the joint name
	//
	// Returns:
	//   - *Bone: the bone, or nil
	//   - bool: true if found
	FindBoneByName(name string) (*Bone, bool)

	// BoneCount returns the number of bones animated by this clip.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// Bones returns the clip's bones in insertion order.
	//
	// Returns:
	//   - []*Bone: a copy of the bone list
	Bones() []*Bone

	// WrapTime maps any clip-local time into [0, Duration()), which makes playback loop.
	// Negative times wrap forward. Returns 0 for clips with no positive duration.
	//
	// Parameters:
	//   - time: the unwrapped time in ticks
	//
	// Returns:
	//   - float32: the wrapped time
	WrapTime(time float32) float32
}

var _ Animation = &animation{}

// NewAnimation creates an empty clip. The declared duration is the starting bound that
// DurationShortestTrack shrinks as bones are inserted.
//
// Parameters:
//   - name: the clip name
//   - duration: the declared clip duration in ticks
//   - ticksPerSecond: the clip time scale (values <= 0 select DefaultTicksPerSecond)
//   - options: variadic list of AnimationBuilderOption functions
//
// Returns:
//   - Animation: the new clip
func NewAnimation(name string, duration, ticksPerSecond float32, options ...AnimationBuilderOption) Animation {
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	a := &animation{
		mu:             &sync.RWMutex{},
		name:           name,
		duration:       duration,
		ticksPerSecond: ticksPerSecond,
		bonesByID:      make(map[int32]*Bone),
		bonesByName:    make(map[string]*Bone),
	}
	for _, opt := range options {
		opt(a)
	}
	for _, b := range a.pending {
		a.InsertBone(b)
	}
	a.pending = nil
	return a
}

func (a *animation) Name() string {
	return a.name
}

func (a *animation) Duration() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.duration
}

func (a *animation) TicksPerSecond() float32 {
	return a.ticksPerSecond
}

func (a *animation) DurationPolicy() DurationPolicy {
	return a.policy
}

func (a *animation) InsertBone(bone *Bone) {
	if bone == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if prev, ok := a.bonesByID[bone.ID()]; ok {
		for i, b := range a.bones {
			if b == prev {
				a.bones[i] = bone
				break
			}
		}
		delete(a.bonesByName, prev.Name())
	} else {
		a.bones = append(a.bones, bone)
	}
	a.bonesByID[bone.ID()] = bone
	a.bonesByName[bone.Name()] = bone

	switch a.policy {
	case DurationLongestTrack:
		var longest float32
		for _, b := range a.bones {
			longest = max(longest, b.LastTimestamp())
		}
		a.duration = longest
	default:
		a.duration = min(a.duration, bone.LastTimestamp())
	}
}

func (a *animation) FindBone(id int32) (*Bone, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.bonesByID[id]
	return b, ok
}

func (a *animation) FindBoneByName(name string) (*Bone, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.bonesByName[name]
	return b, ok
}

func (a *animation) BoneCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.bones)
}

func (a *animation) Bones() []*Bone {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*Bone(nil), a.bones...)
}

func (a *animation) WrapTime(time float32) float32 {
	d := a.Duration()
	if d <= 0 || math.IsNaN(float64(time)) || math.IsInf(float64(time), 0) {
		return 0
	}
	t := float32(math.Mod(float64(time), float64(d)))
	if t < 0 {
		t += d
	}
	// float32 rounding of t+d can land exactly on d for tiny negative t.
	if t >= d {
		t = 0
	}
	return t
}
