package animation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptyTrack is returned when a track is built without any keyframes.
	ErrEmptyTrack = errors.New("track has no keyframes")

	// ErrUnorderedTrack is returned when keyframe timestamps are not strictly increasing.
	ErrUnorderedTrack = errors.New("track timestamps are not strictly increasing")
)

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in clip ticks.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value mgl32.Vec3
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in clip ticks.
	Time float32

	// Value is the rotation at this keyframe.
	Value mgl32.Quat
}

// VectorTrack is an immutable, time-ordered sequence of vector keyframes for one
// translation or scale channel. Values between keyframes are linearly interpolated.
type VectorTrack struct {
	keys []VectorKeyframe
}

// QuaternionTrack is an immutable, time-ordered sequence of rotation keyframes.
// Values between keyframes are interpolated along the shortest arc.
type QuaternionTrack struct {
	keys []QuaternionKeyframe
}

// NewVectorTrack validates and copies the given keyframes into a VectorTrack.
//
// Parameters:
//   - keys: keyframes with strictly increasing timestamps (at least one)
//
// Returns:
//   - VectorTrack: the track
//   - error: ErrEmptyTrack or ErrUnorderedTrack when the input is malformed
func NewVectorTrack(keys []VectorKeyframe) (VectorTrack, error) {
	if len(keys) == 0 {
		return VectorTrack{}, ErrEmptyTrack
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i].Time > keys[i-1].Time) {
			return VectorTrack{}, fmt.Errorf("keyframe %d at %v after %v: %w", i, keys[i].Time, keys[i-1].Time, ErrUnorderedTrack)
		}
	}
	return VectorTrack{keys: append([]VectorKeyframe(nil), keys...)}, nil
}

// NewQuaternionTrack validates and copies the given keyframes into a QuaternionTrack.
// Every stored rotation is normalized.
//
// Parameters:
//   - keys: keyframes with strictly increasing timestamps (at least one)
//
// Returns:
//   - QuaternionTrack: the track
//   - error: ErrEmptyTrack or ErrUnorderedTrack when the input is malformed
func NewQuaternionTrack(keys []QuaternionKeyframe) (QuaternionTrack, error) {
	if len(keys) == 0 {
		return QuaternionTrack{}, ErrEmptyTrack
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i].Time > keys[i-1].Time) {
			return QuaternionTrack{}, fmt.Errorf("keyframe %d at %v after %v: %w", i, keys[i].Time, keys[i-1].Time, ErrUnorderedTrack)
		}
	}
	out := make([]QuaternionKeyframe, len(keys))
	for i, k := range keys {
		out[i] = QuaternionKeyframe{Time: k.Time, Value: k.Value.Normalize()}
	}
	return QuaternionTrack{keys: out}, nil
}

// ValueAt returns the interpolated vector at the given clip-local time.
// Times past the last keyframe return the last value and report clamped; times before
// the first keyframe return the first value and report clamped.
//
// Parameters:
//   - time: the clip-local time in ticks
//
// Returns:
//   - mgl32.Vec3: the interpolated value
//   - bool: true if time fell outside the keyed range
func (t VectorTrack) ValueAt(time float32) (mgl32.Vec3, bool) {
	if len(t.keys) == 0 {
		return mgl32.Vec3{}, true
	}
	if len(t.keys) == 1 {
		return t.keys[0].Value, false
	}
	i, f, clamped := segment(len(t.keys), func(k int) float32 { return t.keys[k].Time }, time)
	if i == len(t.keys)-1 {
		return t.keys[i].Value, clamped
	}
	return common.LerpVec3(t.keys[i].Value, t.keys[i+1].Value, f), clamped
}

// ValueAt returns the interpolated rotation at the given clip-local time, following the
// same clamping rules as VectorTrack.ValueAt.
//
// Parameters:
//   - time: the clip-local time in ticks
//
// Returns:
//   - mgl32.Quat: the interpolated, normalized rotation
//   - bool: true if time fell outside the keyed range
func (t QuaternionTrack) ValueAt(time float32) (mgl32.Quat, bool) {
	if len(t.keys) == 0 {
		return mgl32.QuatIdent(), true
	}
	if len(t.keys) == 1 {
		return t.keys[0].Value, false
	}
	i, f, clamped := segment(len(t.keys), func(k int) float32 { return t.keys[k].Time }, time)
	if i == len(t.keys)-1 {
		return t.keys[i].Value, clamped
	}
	return common.SlerpQuat(t.keys[i].Value, t.keys[i+1].Value, f), clamped
}

// Len returns the number of keyframes in the track.
func (t VectorTrack) Len() int { return len(t.keys) }

// Len returns the number of keyframes in the track.
func (t QuaternionTrack) Len() int { return len(t.keys) }

// LastTimestamp returns the time of the final keyframe, or 0 for an empty track.
func (t VectorTrack) LastTimestamp() float32 {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[len(t.keys)-1].Time
}

// LastTimestamp returns the time of the final keyframe, or 0 for an empty track.
func (t QuaternionTrack) LastTimestamp() float32 {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[len(t.keys)-1].Time
}

// Keyframes returns a copy of the track's keyframes.
func (t VectorTrack) Keyframes() []VectorKeyframe {
	return append([]VectorKeyframe(nil), t.keys...)
}

// Keyframes returns a copy of the track's keyframes.
func (t QuaternionTrack) Keyframes() []QuaternionKeyframe {
	return append([]QuaternionKeyframe(nil), t.keys...)
}

// segment locates the keyframe interval containing time for a track of n >= 2 keys.
// It performs a lower-bound search for the first key whose timestamp exceeds time; the key
// before it is the interval start. When time is at or beyond the last key, the last index
// is returned so callers can use its value directly.
func segment(n int, timeAt func(int) float32, time float32) (index int, factor float32, clamped bool) {
	if time < timeAt(0) || math.IsNaN(float64(time)) {
		return 0, 0, true
	}
	last := n - 1
	if time >= timeAt(last) {
		return last, 0, time > timeAt(last)
	}

	// upper is the smallest key index with timeAt(upper) > time; it is in [1, last].
	upper := sort.Search(n, func(k int) bool { return timeAt(k) > time })
	index = upper - 1

	t0, t1 := timeAt(index), timeAt(upper)
	factor = common.Clamp((time-t0)/(t1-t0), 0, 1)
	return index, factor, false
}
