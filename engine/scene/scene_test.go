package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/animator"
	"github.com/Carmen-Shannon/oxy-skin/engine/game_object"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

func sharedModel(t *testing.T) model.Model {
	t.Helper()
	keys := []animation.VectorKeyframe{{Time: 0}, {Time: 10, Value: mgl32.Vec3{10, 0, 0}}}
	m, err := model.NewModel(
		model.WithHierarchy(model.ImportedNode{Name: "root"}),
		model.WithBones(model.ImportedBone{Name: "root"}),
		model.WithClips(
			model.ImportedClip{Name: "a", Duration: 10, TicksPerSecond: 10, Channels: []model.ImportedChannel{{BoneName: "root", PositionKeys: keys}}},
			model.ImportedClip{Name: "b", Duration: 10, TicksPerSecond: 10, Channels: []model.ImportedChannel{{BoneName: "root", PositionKeys: keys}}},
		),
	)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m
}

func TestAddGetRemove(t *testing.T) {
	s := NewScene("test", WithWorkers(2))
	if s.Name() != "test" || s.Active() {
		t.Fatalf("expected inactive scene named test")
	}

	obj := game_object.NewGameObject()
	id := s.Add(obj)
	if id != obj.ID() || s.Get(id) != obj || s.Count() != 1 {
		t.Fatalf("expected object registered under its id")
	}

	// Re-adding the same id replaces without duplicating order entries.
	s.Add(obj)
	if s.Count() != 1 || len(s.Objects()) != 1 {
		t.Fatalf("expected a single entry, got %d", len(s.Objects()))
	}

	if s.Add(nil) != uuid.Nil {
		t.Fatalf("expected nil object to be ignored")
	}

	s.Remove(uuid.New())
	s.Remove(id)
	if s.Get(id) != nil || s.Count() != 0 {
		t.Fatalf("expected object to be removed")
	}
}

func TestObjectsKeepInsertionOrder(t *testing.T) {
	a := game_object.NewGameObject()
	b := game_object.NewGameObject()
	c := game_object.NewGameObject()
	s := NewScene("order", WithObjects(a, b), WithActive(true))
	s.Add(c)

	objs := s.Objects()
	if len(objs) != 3 || objs[0] != a || objs[1] != b || objs[2] != c {
		t.Fatalf("expected insertion order a, b, c")
	}
	if !s.Active() {
		t.Fatalf("expected active scene")
	}

	s.Clear()
	if s.Count() != 0 || len(s.Objects()) != 0 {
		t.Fatalf("expected empty scene after clear")
	}
}

func TestUpdateAdvancesEnabledObjectsInParallel(t *testing.T) {
	m := sharedModel(t)
	s := NewScene("crowd", WithWorkers(4), WithQueueSize(8))

	const n = 32
	objs := make([]game_object.GameObject, n)
	for i := range objs {
		objs[i] = game_object.NewGameObject(game_object.WithModel(m))
		if err := objs[i].Animator().PlayAnimation(0); err != nil {
			t.Fatalf("play: %v", err)
		}
		s.Add(objs[i])
	}
	objs[0].SetEnabled(false)

	if err := s.Update(0.1); err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := objs[0].Animator().CurrentTime(); got != 0 {
		t.Fatalf("expected disabled object to stay at 0, got %v", got)
	}
	for i := 1; i < n; i++ {
		if got := objs[i].Animator().CurrentTime(); got < 0.999 || got > 1.001 {
			t.Fatalf("object %d: expected time 1, got %v", i, got)
		}
		pos := objs[i].Animator().FinalBoneMatrices()[0].Col(3).Vec3()
		if !common.NearVec3(pos, mgl32.Vec3{1, 0, 0}, 1e-4) {
			t.Fatalf("object %d: expected root at (1, 0, 0), got %v", i, pos)
		}
	}
}

func TestUpdateJoinsObjectErrors(t *testing.T) {
	m := sharedModel(t)
	good := game_object.NewGameObject(game_object.WithModel(m))
	bad := game_object.NewGameObject(game_object.WithModel(m, animator.WithBlendStep(-1)))
	s := NewScene("errors", WithObjects(good, bad), WithWorkers(2))

	for _, obj := range []game_object.GameObject{good, bad} {
		_ = obj.Animator().PlayAnimation(0)
		_ = obj.Animator().PlayAnimation(1)
	}

	err := s.Update(0.1)
	if !errors.Is(err, animator.ErrInvalidBlendFactor) {
		t.Fatalf("expected ErrInvalidBlendFactor in joined error, got %v", err)
	}
	if good.Animator().BlendFactor() == 0 {
		t.Fatalf("expected healthy object to keep blending")
	}

	if err := NewScene("empty").Update(0.1); err != nil {
		t.Fatalf("expected empty scene update to succeed, got %v", err)
	}
}
