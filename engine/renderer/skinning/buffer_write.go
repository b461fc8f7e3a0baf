package skinning

import "github.com/cogentcore/webgpu/wgpu"

// MatrixStride is the size in bytes of one column-major 4x4 float32 matrix in a storage buffer.
const MatrixStride = 64

// BufferWrite describes a single GPU buffer write operation at a given byte offset.
type BufferWrite struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// Queue is the part of a GPU queue the stager writes through. *wgpu.Queue satisfies it.
type Queue interface {
	WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error
}

var _ Queue = (*wgpu.Queue)(nil)

// InstanceOffset returns the byte offset of an instance's palette in a buffer that packs
// maxBones matrices per instance.
//
// Parameters:
//   - instance: the instance slot
//   - maxBones: matrices per instance
//
// Returns:
//   - uint64: the byte offset
func InstanceOffset(instance, maxBones int) uint64 {
	return uint64(instance) * uint64(maxBones) * MatrixStride
}
