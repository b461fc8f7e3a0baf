package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfSkeletonExtractor converts a glTF node graph and its skins into the model's
// import hierarchy and inverse bind pose table.
type gltfSkeletonExtractor struct {
	doc *gltf.Document

	// names holds one unique name per glTF node index.
	names []string
}

func newGLTFSkeletonExtractor(doc *gltf.Document) *gltfSkeletonExtractor {
	return &gltfSkeletonExtractor{doc: doc, names: gltfUniqueNodeNames(doc)}
}

// gltfUniqueNodeNames names every node, falling back to node_<i> and suffixing repeats,
// so that bones and channels can be matched by name.
func gltfUniqueNodeNames(doc *gltf.Document) []string {
	names := make([]string, len(doc.Nodes))
	seen := make(map[string]bool, len(doc.Nodes))
	for i, n := range doc.Nodes {
		name := ""
		if n != nil {
			name = n.Name
		}
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		if seen[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// gltfIndices widens glTF index slices to int.
func gltfIndices[T ~uint32 | ~int](in []T) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

// gltfDefaultScene returns the index of the document's default scene, or -1 without scenes.
func gltfDefaultScene(doc *gltf.Document) int {
	if len(doc.Scenes) == 0 {
		return -1
	}
	if doc.Scene != nil {
		if s := int(*doc.Scene); s >= 0 && s < len(doc.Scenes) {
			return s
		}
	}
	return 0
}

// NodeName returns the unique name of a glTF node.
func (e *gltfSkeletonExtractor) NodeName(index int) (string, bool) {
	if index < 0 || index >= len(e.names) {
		return "", false
	}
	return e.names[index], true
}

// NodeRest returns the decomposed rest transform of a glTF node.
func (e *gltfSkeletonExtractor) NodeRest(index int) (animation.Transform, bool) {
	if index < 0 || index >= len(e.doc.Nodes) || e.doc.Nodes[index] == nil {
		return animation.Transform{}, false
	}
	return gltfNodeRest(e.doc.Nodes[index]), true
}

// ExtractHierarchy builds the node tree of the default scene.
// Multiple scene roots are gathered under a synthetic identity root named rootName.
func (e *gltfSkeletonExtractor) ExtractHierarchy(rootName string) (model.ImportedNode, error) {
	roots := e.sceneRoots()
	if len(roots) == 0 {
		return model.ImportedNode{}, model.ErrNoRootNode
	}

	visited := make(map[int]bool, len(e.doc.Nodes))
	children := make([]model.ImportedNode, 0, len(roots))
	for _, r := range roots {
		n, err := e.buildNode(r, visited)
		if err != nil {
			return model.ImportedNode{}, err
		}
		children = append(children, n)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return model.ImportedNode{Name: rootName, Transform: mgl32.Ident4(), Children: children}, nil
}

// sceneRoots returns the root node indices of the default scene, or every parentless node
// when the document has no scenes.
func (e *gltfSkeletonExtractor) sceneRoots() []int {
	if scene := gltfDefaultScene(e.doc); scene >= 0 {
		if s := e.doc.Scenes[scene]; s != nil {
			return gltfIndices(s.Nodes)
		}
	}

	hasParent := make([]bool, len(e.doc.Nodes))
	for _, n := range e.doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range gltfIndices(n.Children) {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

func (e *gltfSkeletonExtractor) buildNode(index int, visited map[int]bool) (model.ImportedNode, error) {
	if index < 0 || index >= len(e.doc.Nodes) || e.doc.Nodes[index] == nil {
		return model.ImportedNode{}, fmt.Errorf("node %d: index out of range", index)
	}
	if visited[index] {
		return model.ImportedNode{}, fmt.Errorf("node %d: already reachable from another parent", index)
	}
	visited[index] = true

	node := e.doc.Nodes[index]
	out := model.ImportedNode{
		Name:      e.names[index],
		Transform: gltfNodeTransform(node),
		Children:  make([]model.ImportedNode, 0, len(node.Children)),
	}
	for _, c := range gltfIndices(node.Children) {
		child, err := e.buildNode(c, visited)
		if err != nil {
			return model.ImportedNode{}, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

// ExtractBones returns one bone per skin joint in skin order. A joint shared by several
// skins keeps the inverse bind matrix of the first skin that lists it.
func (e *gltfSkeletonExtractor) ExtractBones() ([]model.ImportedBone, error) {
	var bones []model.ImportedBone
	seen := make(map[int]bool)

	for si, skin := range e.doc.Skins {
		if skin == nil {
			continue
		}

		var inverseBind []mgl32.Mat4
		if skin.InverseBindMatrices != nil {
			var err error
			inverseBind, err = e.readMat4(int(*skin.InverseBindMatrices))
			if err != nil {
				return nil, fmt.Errorf("skin %d: inverse bind matrices: %w", si, err)
			}
		}

		for ji, joint := range gltfIndices(skin.Joints) {
			name, ok := e.NodeName(joint)
			if !ok {
				return nil, fmt.Errorf("skin %d joint %d: invalid node index %d", si, ji, joint)
			}
			if seen[joint] {
				continue
			}
			seen[joint] = true

			offset := mgl32.Ident4()
			if ji < len(inverseBind) {
				offset = inverseBind[ji]
			}
			bones = append(bones, model.ImportedBone{Name: name, Offset: offset})
		}
	}
	return bones, nil
}

func (e *gltfSkeletonExtractor) readMat4(accessor int) ([]mgl32.Mat4, error) {
	if accessor < 0 || accessor >= len(e.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessor)
	}
	data, err := modeler.ReadAccessor(e.doc, e.doc.Accessors[accessor], nil)
	if err != nil {
		return nil, err
	}
	cols, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float MAT4, got %T", accessor, data)
	}
	out := make([]mgl32.Mat4, len(cols))
	for i, m := range cols {
		// glTF matrices are column-major like mgl32.
		for c := range 4 {
			for r := range 4 {
				out[i][c*4+r] = m[c][r]
			}
		}
	}
	return out, nil
}

// gltfNodeMatrix reports the node's explicit matrix, if it has one.
func gltfNodeMatrix(node *gltf.Node) (mgl32.Mat4, bool) {
	if node.Matrix == gltf.DefaultMatrix || node.Matrix == ([16]float64{}) {
		return mgl32.Mat4{}, false
	}
	var m mgl32.Mat4
	for i, v := range node.Matrix {
		m[i] = float32(v)
	}
	return m, true
}

// gltfNodeTransform returns the node's local rest transform, from its matrix when one
// is given and from its TRS properties otherwise.
func gltfNodeTransform(node *gltf.Node) mgl32.Mat4 {
	if m, ok := gltfNodeMatrix(node); ok {
		return m
	}
	return gltfNodeRest(node).Matrix()
}

// gltfNodeRest returns the node's rest transform split into translation, rotation and scale.
// Paths a clip leaves unanimated hold these values.
func gltfNodeRest(node *gltf.Node) animation.Transform {
	if m, ok := gltfNodeMatrix(node); ok {
		t, r, s := common.DecomposeTRS(m)
		return animation.Transform{Translation: t, Rotation: r, Scale: s}
	}

	t := node.Translation
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	return animation.Transform{
		Translation: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation:    mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize(),
		Scale:       mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}
