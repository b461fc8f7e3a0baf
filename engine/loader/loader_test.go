package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/animator"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const testEpsilon = 1e-5

var (
	handInverseBind = mgl32.Translate3D(-1, -1, 0)
	handRestTurn    = mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})
)

const handRestTRS = `"translation": [0, 1, 0], "rotation": [0, 0, 0.70710678, 0.70710678]`

// armDocument returns a two-joint glTF rig root -> hand with one clip "slide" that moves
// the hand from (0, 0, 0) to (4, 0, 0) over two seconds. All data lives in a data URI.
func armDocument(t *testing.T) []byte {
	t.Helper()
	return armDocumentWith(t, handRestTRS, "translation")
}

// armDocumentWith builds the arm rig with the given hand node transform properties and
// the slide sampler bound to the given target path.
func armDocumentWith(t *testing.T, handRest, path string) []byte {
	t.Helper()

	var bin bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&bin, binary.LittleEndian, v); err != nil {
			t.Fatalf("encode buffer: %v", err)
		}
	}
	ident := mgl32.Ident4()
	write([]float32{0, 2})             // times @0
	write([]float32{0, 0, 0, 4, 0, 0}) // translations @8
	write(ident[:])                    // root inverse bind @32
	write(handInverseBind[:])          // hand inverse bind @96

	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin.Bytes())

	return []byte(fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"name": "arm", "nodes": [0]}],
  "nodes": [
    {"name": "root", "translation": [1, 0, 0], "children": [1]},
    {"name": "hand", %s}
  ],
  "skins": [{"joints": [0, 1], "inverseBindMatrices": 2}],
  "animations": [{
    "name": "slide",
    "channels": [{"sampler": 0, "target": {"node": 1, "path": %q}}],
    "samplers": [{"input": 0, "output": 1, "interpolation": "LINEAR"}]
  }],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [0], "max": [2]},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "MAT4"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 8},
    {"buffer": 0, "byteOffset": 8, "byteLength": 24},
    {"buffer": 0, "byteOffset": 32, "byteLength": 128}
  ],
  "buffers": [{"byteLength": %d, "uri": %q}]
}`, handRest, path, bin.Len(), uri))
}

func writeArm(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arm.gltf")
	if err := os.WriteFile(path, armDocument(t), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestGLTFFileImportsRig(t *testing.T) {
	m, err := model.Load(GLTFFile(writeArm(t)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if m.Name() != "arm" || m.NodeCount() != 2 || m.BoneCount() != 2 {
		t.Fatalf("expected arm with 2 nodes and 2 bones, got %q %d %d", m.Name(), m.NodeCount(), m.BoneCount())
	}
	if root := m.RootNode(); root.Name != "root" || !common.NearMat4(root.Transform, mgl32.Translate3D(1, 0, 0), testEpsilon) {
		t.Fatalf("unexpected root node %+v", root)
	}

	hand, ok := m.BoneInfo("hand")
	if !ok || hand.ID != 1 {
		t.Fatalf("expected hand bone id 1, got %+v (%v)", hand, ok)
	}
	if !common.NearMat4(hand.Offset, handInverseBind, testEpsilon) {
		t.Fatalf("expected hand inverse bind %v, got %v", handInverseBind, hand.Offset)
	}

	clip, ok := m.Animation(m.AnimationIndex("slide"))
	if !ok {
		t.Fatalf("expected slide clip")
	}
	if clip.Duration() != 2 || clip.TicksPerSecond() != 1 {
		t.Fatalf("expected 2 ticks at 1 tick/s, got %v at %v", clip.Duration(), clip.TicksPerSecond())
	}
	bone, ok := clip.FindBoneByName("hand")
	if !ok {
		t.Fatalf("expected hand channel")
	}
	pose, _ := bone.Pose(1)
	if !common.NearVec3(pose.Translation, mgl32.Vec3{2, 0, 0}, testEpsilon) {
		t.Fatalf("expected hand at (2,0,0) mid-clip, got %v", pose.Translation)
	}
	if !common.NearQuat(pose.Rotation, handRestTurn, testEpsilon) || !common.NearVec3(pose.Scale, mgl32.Vec3{1, 1, 1}, testEpsilon) {
		t.Fatalf("expected rest rotation and scale, got %v %v", pose.Rotation, pose.Scale)
	}
}

func TestUnanimatedPathsKeepRestPose(t *testing.T) {
	cases := []struct {
		name     string
		handRest string
	}{
		{"trs", handRestTRS},
		{"matrix", `"matrix": [0, 1, 0, 0, -1, 0, 0, 0, 0, 0, 1, 0, 0, 1, 0, 1]`},
	}
	for _, c := range cases {
		l := NewLoader(BackendTypeGLTF)
		m, err := l.LoadReader(c.name, bytes.NewReader(armDocumentWith(t, c.handRest, "scale")))
		if err != nil {
			t.Fatalf("%s: load: %v", c.name, err)
		}

		clip, _ := m.Animation(0)
		bone, ok := clip.FindBoneByName("hand")
		if !ok {
			t.Fatalf("%s: expected hand channel", c.name)
		}
		pose, _ := bone.Pose(1)
		if !common.NearVec3(pose.Translation, mgl32.Vec3{0, 1, 0}, testEpsilon) {
			t.Fatalf("%s: expected rest translation (0,1,0), got %v", c.name, pose.Translation)
		}
		if !pose.Rotation.OrientationEqualThreshold(handRestTurn, testEpsilon) {
			t.Fatalf("%s: expected rest rotation %v, got %v", c.name, handRestTurn, pose.Rotation)
		}
		if !common.NearVec3(pose.Scale, mgl32.Vec3{2, 0, 0}, testEpsilon) {
			t.Fatalf("%s: expected animated scale (2,0,0), got %v", c.name, pose.Scale)
		}

		a := animator.NewAnimator(animator.WithModel(m))
		if err := a.PlayAnimation(0); err != nil {
			t.Fatalf("%s: play: %v", c.name, err)
		}
		if err := a.UpdateAnimation(1); err != nil {
			t.Fatalf("%s: update: %v", c.name, err)
		}
		hand, _ := m.BoneInfo("hand")
		global := a.FinalBoneMatrices()[hand.ID].Mul4(handInverseBind.Inv())
		if got := global.Col(3).Vec3(); !common.NearVec3(got, mgl32.Vec3{1, 1, 0}, testEpsilon) {
			t.Fatalf("%s: expected hand at (1,1,0), got %v", c.name, got)
		}
	}
}

func TestLoaderCachesByPath(t *testing.T) {
	path := writeArm(t)
	l := NewLoader(BackendTypeGLTF, WithModelOptions(model.WithDurationPolicy(animation.DurationLongestTrack)))

	a, err := l.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := l.Load(path)
	if err != nil || a != b {
		t.Fatalf("expected cached model on second load (%v)", err)
	}
	if clip, _ := a.Animation(0); clip.DurationPolicy() != animation.DurationLongestTrack {
		t.Fatalf("expected model options applied, got %v", clip.DurationPolicy())
	}
	if len(l.Models()) != 1 {
		t.Fatalf("expected one cached model, got %d", len(l.Models()))
	}

	l.Evict(path)
	if l.Get(path) != nil {
		t.Fatalf("expected model evicted")
	}
}

func TestLoadReader(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	m, err := l.LoadReader("streamed", bytes.NewReader(armDocument(t)))
	if err != nil {
		t.Fatalf("load reader: %v", err)
	}
	if m.Name() != "streamed" || l.Get("streamed") != m {
		t.Fatalf("expected model cached under stream name, got %q", m.Name())
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	if _, err := l.Load("arm.fbx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestMultipleRootsGetSyntheticRoot(t *testing.T) {
	doc := `{
  "asset": {"version": "2.0"},
  "nodes": [
    {"name": "left", "children": [2]},
    {"name": "right"},
    {"name": ""}
  ]
}`
	l := NewLoader(BackendTypeGLTF)
	m, err := l.LoadReader("pair", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	root := m.RootNode()
	if root.Name != "pair" || len(root.Children) != 2 {
		t.Fatalf("expected synthetic root with 2 children, got %+v", root)
	}
	names := make([]string, 0, m.NodeCount())
	for _, n := range m.Nodes() {
		names = append(names, n.Name)
	}
	if got := strings.Join(names, ","); got != "pair,left,node_2,right" {
		t.Fatalf("expected depth-first names pair,left,node_2,right, got %s", got)
	}
	if m.BoneCount() != 0 {
		t.Fatalf("expected no bones without skins, got %d", m.BoneCount())
	}
}
