package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/qmuntal/gltf"
)

// gltfLoaderBackend is a loaderBackend for .gltf and .glb files.
// Only the node graph, skins and animations are read; meshes and materials are ignored.
type gltfLoaderBackend struct{}

var _ loaderBackend = gltfLoaderBackend{}

func (gltfLoaderBackend) Load(path string) (*model.ImportedModel, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return gltfImportDocument(doc, gltfModelName(doc, path))
}

func (gltfLoaderBackend) LoadReader(name string, r io.Reader) (*model.ImportedModel, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return gltfImportDocument(doc, name)
}

// gltfImportDocument extracts the rig of a decoded document.
func gltfImportDocument(doc *gltf.Document, name string) (*model.ImportedModel, error) {
	skeleton := newGLTFSkeletonExtractor(doc)

	root, err := skeleton.ExtractHierarchy(name)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}
	bones, err := skeleton.ExtractBones()
	if err != nil {
		return nil, fmt.Errorf("skeleton: %w", err)
	}
	clips, err := newGLTFAnimationExtractor(doc, skeleton).ExtractAllAnimations()
	if err != nil {
		return nil, fmt.Errorf("animations: %w", err)
	}

	return &model.ImportedModel{
		Name:  name,
		Root:  root,
		Bones: bones,
		Clips: clips,
	}, nil
}

// gltfModelName prefers the default scene name and falls back to the file name without extension.
func gltfModelName(doc *gltf.Document, path string) string {
	if scene := gltfDefaultScene(doc); scene >= 0 {
		if s := doc.Scenes[scene]; s != nil && s.Name != "" {
			return s.Name
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
