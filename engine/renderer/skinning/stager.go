package skinning

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// stager is the implementation of the Stager interface.
type stager struct {
	mu *sync.Mutex

	writes []BufferWrite

	// staging holds the copied matrix bytes of every staged write. It is reused across frames;
	// queue.WriteBuffer copies data internally before returning.
	staging []byte
}

// Stager collects per-frame bone matrix palettes and submits them to a GPU queue in one pass.
// Stage may be called from many goroutines; Flush drains everything staged so far.
type Stager interface {
	// Stage copies matrices into the staging area and records a write of them to buffer at offset.
	// The caller may overwrite matrices as soon as Stage returns.
	//
	// Parameters:
	//   - buffer: the destination storage buffer
	//   - offset: the destination byte offset
	//   - matrices: the matrices to upload
	Stage(buffer *wgpu.Buffer, offset uint64, matrices []mgl32.Mat4)

	// Staged returns copies of the writes recorded since the last Flush or Reset.
	// The copies stay valid after the staging area is reused.
	//
	// Returns:
	//   - []BufferWrite: the pending writes
	Staged() []BufferWrite

	// Len returns the number of pending writes.
	//
	// Returns:
	//   - int: the pending write count
	Len() int

	// Size returns the number of pending bytes.
	//
	// Returns:
	//   - int: the pending byte count
	Size() int

	// Flush submits every pending write to q in staging order and clears the stage.
	// Writes with a nil buffer are skipped. All writes are attempted even if some fail.
	//
	// Parameters:
	//   - q: the destination queue
	//
	// Returns:
	//   - error: the joined write errors, or nil
	Flush(q Queue) error

	// Reset drops every pending write without submitting it.
	Reset()
}

var _ Stager = &stager{}

// NewStager creates a new empty Stager.
//
// Parameters:
//   - options: a variadic list of StagerBuilderOption functions
//
// Returns:
//   - Stager: the new stager
func NewStager(options ...StagerBuilderOption) Stager {
	s := &stager{mu: &sync.Mutex{}}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *stager) Stage(buffer *wgpu.Buffer, offset uint64, matrices []mgl32.Mat4) {
	if len(matrices) == 0 {
		return
	}
	raw := common.SliceToBytes(matrices)

	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.staging)
	s.staging = append(s.staging, raw...)
	s.writes = append(s.writes, BufferWrite{
		Buffer: buffer,
		Offset: offset,
		Data:   s.staging[start:len(s.staging):len(s.staging)],
	})
}

func (s *stager) Staged() []BufferWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BufferWrite, len(s.writes))
	for i, w := range s.writes {
		out[i] = BufferWrite{Buffer: w.Buffer, Offset: w.Offset, Data: append([]byte(nil), w.Data...)}
	}
	return out
}

func (s *stager) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *stager) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staging)
}

func (s *stager) Flush(q Queue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for i, w := range s.writes {
		if w.Buffer == nil {
			continue
		}
		if err := q.WriteBuffer(w.Buffer, w.Offset, w.Data); err != nil {
			errs = append(errs, fmt.Errorf("write %d at offset %d: %w", i, w.Offset, err))
		}
	}
	s.resetLocked()
	return errors.Join(errs...)
}

func (s *stager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *stager) resetLocked() {
	clear(s.writes)
	s.writes = s.writes[:0]
	s.staging = s.staging[:0]
}
