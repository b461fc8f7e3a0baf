package animation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func boneEndingAt(t *testing.T, name string, id int32, last float32) *Bone {
	t.Helper()
	return mustBone(t, name, id, []VectorKeyframe{{Time: 0}, {Time: last, Value: mgl32.Vec3{1, 0, 0}}}, nil, nil)
}

func TestNewAnimationDefaultsTicksPerSecond(t *testing.T) {
	a := NewAnimation("idle", 10, 0)
	if a.TicksPerSecond() != DefaultTicksPerSecond {
		t.Fatalf("expected %v ticks/sec, got %v", DefaultTicksPerSecond, a.TicksPerSecond())
	}
	if a.Name() != "idle" || a.Duration() != 10 {
		t.Fatalf("expected idle/10, got %s/%v", a.Name(), a.Duration())
	}
	if a.DurationPolicy() != DurationShortestTrack {
		t.Fatalf("expected shortest-track policy by default, got %v", a.DurationPolicy())
	}
}

func TestInsertBoneShortestTrackPolicy(t *testing.T) {
	a := NewAnimation("walk", 30, 24)
	a.InsertBone(boneEndingAt(t, "hip", 0, 20))
	if a.Duration() != 20 {
		t.Fatalf("expected duration 20, got %v", a.Duration())
	}
	a.InsertBone(boneEndingAt(t, "knee", 1, 25))
	if a.Duration() != 20 {
		t.Fatalf("expected duration to stay 20, got %v", a.Duration())
	}
	a.InsertBone(boneEndingAt(t, "foot", 2, 12))
	if a.Duration() != 12 {
		t.Fatalf("expected duration 12, got %v", a.Duration())
	}
}

func TestInsertBoneLongestTrackPolicy(t *testing.T) {
	a := NewAnimation("walk", 5, 24, WithDurationPolicy(DurationLongestTrack))
	a.InsertBone(boneEndingAt(t, "hip", 0, 20))
	a.InsertBone(boneEndingAt(t, "knee", 1, 8))
	if a.Duration() != 20 {
		t.Fatalf("expected duration 20, got %v", a.Duration())
	}
}

func TestWithBonesAppliesPolicyRegardlessOfOrder(t *testing.T) {
	hip := boneEndingAt(t, "hip", 0, 20)
	knee := boneEndingAt(t, "knee", 1, 8)
	a := NewAnimation("walk", 5, 24, WithBones(hip, knee), WithDurationPolicy(DurationLongestTrack))
	if a.Duration() != 20 || a.BoneCount() != 2 {
		t.Fatalf("expected duration 20 with 2 bones, got %v with %d", a.Duration(), a.BoneCount())
	}
}

func TestFindBone(t *testing.T) {
	a := NewAnimation("wave", 10, 24)
	hip := boneEndingAt(t, "hip", 0, 10)
	arm := boneEndingAt(t, "arm", 3, 10)
	a.InsertBone(hip)
	a.InsertBone(arm)
	a.InsertBone(nil)

	if b, ok := a.FindBone(3); !ok || b != arm {
		t.Fatalf("expected arm for id 3, got %v %v", b, ok)
	}
	if _, ok := a.FindBone(1); ok {
		t.Fatalf("expected id 1 to be absent")
	}
	if b, ok := a.FindBoneByName("hip"); !ok || b != hip {
		t.Fatalf("expected hip by name, got %v %v", b, ok)
	}
	if a.BoneCount() != 2 {
		t.Fatalf("expected 2 bones, got %d", a.BoneCount())
	}
}

func TestInsertBoneReplacesSameID(t *testing.T) {
	a := NewAnimation("wave", 10, 24)
	a.InsertBone(boneEndingAt(t, "old", 0, 10))
	replacement := boneEndingAt(t, "new", 0, 10)
	a.InsertBone(replacement)

	if a.BoneCount() != 1 {
		t.Fatalf("expected 1 bone after replace, got %d", a.BoneCount())
	}
	if b, _ := a.FindBone(0); b != replacement {
		t.Fatalf("expected replacement bone for id 0")
	}
	if _, ok := a.FindBoneByName("old"); ok {
		t.Fatalf("expected old name to be removed from index")
	}
	if bones := a.Bones(); len(bones) != 1 || bones[0] != replacement {
		t.Fatalf("expected ordered list to hold replacement, got %v", bones)
	}
}

func TestWrapTime(t *testing.T) {
	a := NewAnimation("loop", 10, 24)
	cases := []struct{ in, want float32 }{
		{0, 0},
		{4, 4},
		{10, 0},
		{23, 3},
		{-2, 8},
	}
	for _, c := range cases {
		got := a.WrapTime(c.in)
		if d := got - c.want; d > testEpsilon || d < -testEpsilon {
			t.Fatalf("WrapTime(%v): expected %v, got %v", c.in, c.want, got)
		}
		if got < 0 || got >= a.Duration() {
			t.Fatalf("WrapTime(%v) = %v outside [0, %v)", c.in, got, a.Duration())
		}
	}

	if got := NewAnimation("empty", 0, 24).WrapTime(5); got != 0 {
		t.Fatalf("expected 0 for zero-duration clip, got %v", got)
	}
}

func TestParseDurationPolicy(t *testing.T) {
	for _, p := range []DurationPolicy{DurationShortestTrack, DurationLongestTrack} {
		got, ok := ParseDurationPolicy(p.String())
		if !ok || got != p {
			t.Fatalf("expected %v to round-trip, got %v %v", p, got, ok)
		}
	}
	if _, ok := ParseDurationPolicy("forever"); ok {
		t.Fatalf("expected unknown policy to be rejected")
	}
}
