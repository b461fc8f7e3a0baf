package animator

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/animation"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// nodeVisit is one pending entry of the breadth-first walk: a node and the accumulated
// transform of its parent.
type nodeVisit struct {
	index  int
	parent mgl32.Mat4
}

// poseSource describes which clips feed the local transforms of a single evaluation.
type poseSource struct {
	current, next         animation.Animation
	currentTime, nextTime float32
	blendFactor           float32
	blending              bool
}

// evaluate walks the model hierarchy breadth-first from the root, composing each node's local
// transform onto its parent's, and writes global * offset into the final matrix of every node
// that is a skinning bone with an id below the matrix capacity.
func (a *animator) evaluate(src poseSource) {
	a.queue.Reset()
	// The queue holds at most NodeCount entries, which is its capacity.
	_ = a.queue.Enqueue(nodeVisit{index: 0, parent: mgl32.Ident4()})

	clampedBones := 0
	firstClamped := ""
	for !a.queue.IsEmpty() {
		visit, err := a.queue.Dequeue()
		if err != nil {
			return
		}
		node, ok := a.model.Node(visit.index)
		if !ok {
			continue
		}

		local, clamped := localTransform(node, src)
		if clamped {
			if clampedBones == 0 {
				firstClamped = node.Name
			}
			clampedBones++
		}
		global := visit.parent.Mul4(local)

		if id := node.BoneID; id >= 0 && int(id) < len(a.final) {
			if info, ok := a.model.BoneInfoByID(id); ok {
				a.final[id] = global.Mul4(info.Offset)
			}
		}

		for _, child := range node.Children {
			_ = a.queue.Enqueue(nodeVisit{index: child, parent: global})
		}
	}

	// A shortest-track clip never runs past a key, so clamping here means a track starts late.
	if clampedBones > 0 {
		a.logger.Debug("bone tracks clamped inside clip duration",
			"bones", clampedBones, "first", firstClamped,
			"current_time", src.currentTime, "next_time", src.nextTime)
	}
}

// localTransform chooses the node's local transform for this frame: the blended pose when both
// clips animate the bone, the single-clip pose when only one does, and the node's rest transform
// when no active clip animates it. The flag reports a sampled track that had to clamp in a clip
// whose duration is its shortest track.
func localTransform(node model.Node, src poseSource) (mgl32.Mat4, bool) {
	if node.BoneID == model.NoBone || src.current == nil {
		return node.Transform, false
	}

	cur, inCurrent := src.current.FindBone(node.BoneID)
	var next *animation.Bone
	inNext := false
	if src.blending && src.next != nil {
		next, inNext = src.next.FindBone(node.BoneID)
	}

	switch {
	case inCurrent && inNext:
		pose, cc := cur.Pose(src.currentTime)
		otherPose, nc := next.Pose(src.nextTime)
		return animation.BlendTransforms(pose, otherPose, src.blendFactor).Matrix(),
			reportsClamp(src.current, cc) || reportsClamp(src.next, nc)
	case inCurrent:
		pose, cc := cur.Pose(src.currentTime)
		return pose.Matrix(), reportsClamp(src.current, cc)
	case inNext:
		pose, nc := next.Pose(src.nextTime)
		return pose.Matrix(), reportsClamp(src.next, nc)
	default:
		return node.Transform, false
	}
}

func reportsClamp(clip animation.Animation, clamped bool) bool {
	return clamped && clip.DurationPolicy() == animation.DurationShortestTrack
}
