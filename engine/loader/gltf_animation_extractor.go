package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfAnimationExtractor converts glTF animations into imported clips keyed by node name.
type gltfAnimationExtractor struct {
	doc      *gltf.Document
	skeleton *gltfSkeletonExtractor
}

func newGLTFAnimationExtractor(doc *gltf.Document, skeleton *gltfSkeletonExtractor) *gltfAnimationExtractor {
	return &gltfAnimationExtractor{doc: doc, skeleton: skeleton}
}

// ExtractAllAnimations extracts every animation in document order.
func (e *gltfAnimationExtractor) ExtractAllAnimations() ([]model.ImportedClip, error) {
	clips := make([]model.ImportedClip, 0, len(e.doc.Animations))
	for i := range e.doc.Animations {
		clip, err := e.ExtractAnimation(i)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

// ExtractAnimation extracts one animation. Translation, rotation and scale channels that
// target the same node are merged into one channel, and a path the clip does not animate
// holds the node's rest value. glTF keys are in seconds, so the clip runs at one tick per
// second and lasts until its latest key.
func (e *gltfAnimationExtractor) ExtractAnimation(index int) (model.ImportedClip, error) {
	if index < 0 || index >= len(e.doc.Animations) || e.doc.Animations[index] == nil {
		return model.ImportedClip{}, fmt.Errorf("animation index %d out of range", index)
	}
	anim := e.doc.Animations[index]

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", index)
	}

	// channels keep first-seen node order so clip bone order is stable across loads
	var channels []model.ImportedChannel
	var nodes []int
	byNode := make(map[int]int)
	var maxTime float32

	for ci, ch := range anim.Channels {
		if ch == nil || ch.Target.Node == nil || ch.Target.Path == gltf.TRSWeights {
			continue
		}
		node := int(*ch.Target.Node)
		boneName, ok := e.skeleton.NodeName(node)
		if !ok {
			return model.ImportedClip{}, fmt.Errorf("%q channel %d: invalid node index %d", name, ci, node)
		}
		si := int(ch.Sampler)
		if si < 0 || si >= len(anim.Samplers) || anim.Samplers[si] == nil {
			return model.ImportedClip{}, fmt.Errorf("%q channel %d: invalid sampler index %d", name, ci, si)
		}
		sampler := anim.Samplers[si]

		times, err := e.readScalars(int(sampler.Input))
		if err != nil {
			return model.ImportedClip{}, fmt.Errorf("%q channel %d: timestamps: %w", name, ci, err)
		}
		if len(times) > 0 {
			maxTime = max(maxTime, times[len(times)-1])
		}

		slot, ok := byNode[node]
		if !ok {
			slot = len(channels)
			byNode[node] = slot
			nodes = append(nodes, node)
			channels = append(channels, model.ImportedChannel{BoneName: boneName})
		}
		out := &channels[slot]

		// cubic spline samplers store in-tangent, value and out-tangent per key
		stride, pick := 1, 0
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			stride, pick = 3, 1
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			values, err := e.readVec3(int(sampler.Output))
			if err != nil {
				return model.ImportedClip{}, fmt.Errorf("%q channel %d: values: %w", name, ci, err)
			}
			keys := make([]animation.VectorKeyframe, 0, len(times))
			for k, t := range times {
				if v := k*stride + pick; v < len(values) {
					keys = append(keys, animation.VectorKeyframe{Time: t, Value: values[v]})
				}
			}
			if ch.Target.Path == gltf.TRSTranslation {
				out.PositionKeys = keys
			} else {
				out.ScaleKeys = keys
			}

		case gltf.TRSRotation:
			values, err := e.readQuat(int(sampler.Output))
			if err != nil {
				return model.ImportedClip{}, fmt.Errorf("%q channel %d: values: %w", name, ci, err)
			}
			keys := make([]animation.QuaternionKeyframe, 0, len(times))
			for k, t := range times {
				if v := k*stride + pick; v < len(values) {
					keys = append(keys, animation.QuaternionKeyframe{Time: t, Value: values[v]})
				}
			}
			out.RotationKeys = keys
		}
	}

	for slot, node := range nodes {
		e.fillRest(&channels[slot], node)
	}

	return model.ImportedClip{
		Name:           name,
		Duration:       maxTime,
		TicksPerSecond: 1,
		Channels:       channels,
	}, nil
}

// fillRest gives every empty path of out a single key holding the node's rest value.
func (e *gltfAnimationExtractor) fillRest(out *model.ImportedChannel, node int) {
	rest, ok := e.skeleton.NodeRest(node)
	if !ok {
		return
	}
	if len(out.PositionKeys) == 0 {
		out.PositionKeys = []animation.VectorKeyframe{{Time: 0, Value: rest.Translation}}
	}
	if len(out.RotationKeys) == 0 {
		out.RotationKeys = []animation.QuaternionKeyframe{{Time: 0, Value: rest.Rotation}}
	}
	if len(out.ScaleKeys) == 0 {
		out.ScaleKeys = []animation.VectorKeyframe{{Time: 0, Value: rest.Scale}}
	}
}

func (e *gltfAnimationExtractor) read(accessor int) (any, error) {
	if accessor < 0 || accessor >= len(e.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessor)
	}
	return modeler.ReadAccessor(e.doc, e.doc.Accessors[accessor], nil)
}

func (e *gltfAnimationExtractor) readScalars(accessor int) ([]float32, error) {
	data, err := e.read(accessor)
	if err != nil {
		return nil, err
	}
	v, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float SCALAR, got %T", accessor, data)
	}
	return v, nil
}

func (e *gltfAnimationExtractor) readVec3(accessor int) ([]mgl32.Vec3, error) {
	data, err := e.read(accessor)
	if err != nil {
		return nil, err
	}
	v, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float VEC3, got %T", accessor, data)
	}
	out := make([]mgl32.Vec3, len(v))
	for i := range v {
		out[i] = mgl32.Vec3(v[i])
	}
	return out, nil
}

// readQuat reads xyzw rotations, including the normalized integer encodings glTF allows.
func (e *gltfAnimationExtractor) readQuat(accessor int) ([]mgl32.Quat, error) {
	data, err := e.read(accessor)
	if err != nil {
		return nil, err
	}

	var xyzw [][4]float32
	switch v := data.(type) {
	case [][4]float32:
		xyzw = v
	case [][4]int8:
		xyzw = make([][4]float32, len(v))
		for i, q := range v {
			for c := range 4 {
				xyzw[i][c] = max(float32(q[c])/127, -1)
			}
		}
	case [][4]int16:
		xyzw = make([][4]float32, len(v))
		for i, q := range v {
			for c := range 4 {
				xyzw[i][c] = max(float32(q[c])/32767, -1)
			}
		}
	default:
		return nil, fmt.Errorf("accessor %d: expected VEC4 rotation, got %T", accessor, data)
	}

	out := make([]mgl32.Quat, len(xyzw))
	for i, q := range xyzw {
		out[i] = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
	}
	return out, nil
}
