package animation

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/go-gl/mathgl/mgl32"
)

const testEpsilon = 1e-5

func TestVectorTrackSingleKeyIsConstant(t *testing.T) {
	track, err := NewVectorTrack([]VectorKeyframe{{Time: 0, Value: mgl32.Vec3{1, 2, 3}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tm := range []float32{-5, 0, 0.5, 100} {
		got, _ := track.ValueAt(tm)
		if got != (mgl32.Vec3{1, 2, 3}) {
			t.Fatalf("expected constant value at t=%v, got %v", tm, got)
		}
	}
}

func TestVectorTrackInterpolation(t *testing.T) {
	track, err := NewVectorTrack([]VectorKeyframe{
		{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
		{Time: 10, Value: mgl32.Vec3{10, 20, -10}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		time    float32
		want    mgl32.Vec3
		clamped bool
	}{
		{0, mgl32.Vec3{0, 0, 0}, false},
		{5, mgl32.Vec3{5, 10, -5}, false},
		{10, mgl32.Vec3{10, 20, -10}, false},
		{12, mgl32.Vec3{10, 20, -10}, true},
		{-1, mgl32.Vec3{0, 0, 0}, true},
	}
	for _, c := range cases {
		got, clamped := track.ValueAt(c.time)
		if !common.NearVec3(got, c.want, testEpsilon) {
			t.Fatalf("t=%v: expected %v, got %v", c.time, c.want, got)
		}
		if clamped != c.clamped {
			t.Fatalf("t=%v: expected clamped=%v, got %v", c.time, c.clamped, clamped)
		}
	}
}

func TestVectorTrackPicksSegment(t *testing.T) {
	track, err := NewVectorTrack([]VectorKeyframe{
		{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
		{Time: 1, Value: mgl32.Vec3{1, 0, 0}},
		{Time: 3, Value: mgl32.Vec3{1, 4, 0}},
		{Time: 4, Value: mgl32.Vec3{0, 0, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := track.ValueAt(2)
	want := mgl32.Vec3{1, 2, 0}
	if !common.NearVec3(got, want, testEpsilon) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	got, _ = track.ValueAt(1)
	if !common.NearVec3(got, mgl32.Vec3{1, 0, 0}, testEpsilon) {
		t.Fatalf("expected exact key value at t=1, got %v", got)
	}
}

func TestVectorTrackNaNTimeClampsToFirst(t *testing.T) {
	track, _ := NewVectorTrack([]VectorKeyframe{
		{Time: 0, Value: mgl32.Vec3{1, 1, 1}},
		{Time: 1, Value: mgl32.Vec3{2, 2, 2}},
	})
	got, clamped := track.ValueAt(float32(math.NaN()))
	if got != (mgl32.Vec3{1, 1, 1}) || !clamped {
		t.Fatalf("expected first value clamped, got %v clamped=%v", got, clamped)
	}
}

func TestQuaternionTrackEndpointsAndMidpoint(t *testing.T) {
	axis := mgl32.Vec3{0, 1, 0}
	track, err := NewQuaternionTrack([]QuaternionKeyframe{
		{Time: 0, Value: mgl32.QuatIdent()},
		{Time: 2, Value: mgl32.QuatRotate(math.Pi/2, axis)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := track.ValueAt(0)
	if !common.NearQuat(got, mgl32.QuatIdent(), testEpsilon) {
		t.Fatalf("expected identity at t=0, got %v", got)
	}
	got, _ = track.ValueAt(2)
	if !got.OrientationEqualThreshold(mgl32.QuatRotate(math.Pi/2, axis), testEpsilon) {
		t.Fatalf("expected quarter turn at t=2, got %v", got)
	}
	got, _ = track.ValueAt(1)
	if !got.OrientationEqualThreshold(mgl32.QuatRotate(math.Pi/4, axis), testEpsilon) {
		t.Fatalf("expected eighth turn at t=1, got %v", got)
	}
	if l := got.Len(); math.Abs(float64(l-1)) > testEpsilon {
		t.Fatalf("expected unit quaternion, got length %f", l)
	}
}

func TestQuaternionTrackNormalizesInput(t *testing.T) {
	track, err := NewQuaternionTrack([]QuaternionKeyframe{{Time: 0, Value: mgl32.Quat{W: 2}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := track.ValueAt(0)
	if !common.NearQuat(got, mgl32.QuatIdent(), testEpsilon) {
		t.Fatalf("expected normalized identity, got %v", got)
	}
}

func TestTrackRejectsMalformedInput(t *testing.T) {
	if _, err := NewVectorTrack(nil); !errors.Is(err, ErrEmptyTrack) {
		t.Fatalf("expected ErrEmptyTrack, got %v", err)
	}
	if _, err := NewQuaternionTrack(nil); !errors.Is(err, ErrEmptyTrack) {
		t.Fatalf("expected ErrEmptyTrack, got %v", err)
	}

	dup := []VectorKeyframe{{Time: 1}, {Time: 1}}
	if _, err := NewVectorTrack(dup); !errors.Is(err, ErrUnorderedTrack) {
		t.Fatalf("expected ErrUnorderedTrack for duplicate time, got %v", err)
	}
	back := []QuaternionKeyframe{{Time: 2, Value: mgl32.QuatIdent()}, {Time: 1, Value: mgl32.QuatIdent()}}
	if _, err := NewQuaternionTrack(back); !errors.Is(err, ErrUnorderedTrack) {
		t.Fatalf("expected ErrUnorderedTrack for decreasing time, got %v", err)
	}
}

func TestTrackCopiesInput(t *testing.T) {
	keys := []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{1, 0, 0}}}
	track, _ := NewVectorTrack(keys)
	keys[0].Value = mgl32.Vec3{9, 9, 9}
	if got, _ := track.ValueAt(0); got != (mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("expected track to be unaffected by caller mutation, got %v", got)
	}
	if track.Len() != 1 || track.LastTimestamp() != 0 {
		t.Fatalf("expected len 1 and last timestamp 0, got %d and %v", track.Len(), track.LastTimestamp())
	}
}
