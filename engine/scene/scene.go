package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/game_object"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultQueueSize is the task queue length of the scene's update worker pool.
const DefaultQueueSize = 256

// Scene defines the interface for a collection of animated game objects that are advanced together
// once per frame.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the scene name.
	//
	// Parameters:
	//   - name: the new scene name
	SetName(name string)

	// Active returns whether the engine updates this scene each tick.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether the engine updates this scene each tick.
	//
	// Parameters:
	//   - active: true to activate
	SetActive(active bool)

	// Count returns the number of objects in the scene.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// Add registers an object with the scene. Objects with a nil ID are assigned a new one.
	// Adding an object whose ID is already registered replaces the previous object.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uuid.UUID: the object's ID
	Add(obj game_object.GameObject) uuid.UUID

	// Get returns the object with the given ID, or nil if it is not registered.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	Get(id uuid.UUID) game_object.GameObject

	// Remove unregisters the object with the given ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uuid.UUID)

	// Clear removes every object from the scene.
	Clear()

	// Objects returns the registered objects in the order they were added.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// Update advances the Animator of every enabled object by dt seconds. The per-object updates
	// run in parallel on the scene's worker pool and Update returns once all have finished.
	//
	// Parameters:
	//   - dt: elapsed real time in seconds
	//
	// Returns:
	//   - error: the joined errors of the objects that failed to update, or nil
	Update(dt float32) error
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool
	logger *log.Logger

	registry map[uuid.UUID]game_object.GameObject
	order    []uuid.UUID

	updatePool     worker.DynamicWorkerPool
	updateWorkers  int
	queueSize      int
	pendingObjects []game_object.GameObject

	// reusable per-frame buffers
	batch []game_object.GameObject
	errs  []error
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given name and options.
// The scene starts inactive unless WithActive(true) is given.
//
// Parameters:
//   - name: the scene name
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		registry:      make(map[uuid.UUID]game_object.GameObject),
		updateWorkers: max(runtime.NumCPU()-1, 1),
		queueSize:     DefaultQueueSize,
	}

	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = common.NewLogger("scene")
	}

	// Initialize the pool after options so WithWorkers and WithQueueSize can override the defaults.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, s.queueSize, 1*time.Second)

	for _, obj := range s.pendingObjects {
		s.addLocked(obj)
	}
	s.pendingObjects = nil

	s.logger.Debug("scene created", "name", s.name, "workers", s.updateWorkers, "queue_size", s.queueSize)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uuid.UUID {
	if obj == nil {
		return uuid.Nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

func (s *scene) addLocked(obj game_object.GameObject) uuid.UUID {
	if obj.ID() == uuid.Nil {
		obj.SetID(uuid.New())
	}
	id := obj.ID()
	if _, exists := s.registry[id]; !exists {
		s.order = append(s.order, id)
	}
	s.registry[id] = obj
	return id
}

func (s *scene) Get(id uuid.UUID) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[id]; !exists {
		return
	}
	delete(s.registry, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[uuid.UUID]game_object.GameObject)
	s.order = nil
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objs := make([]game_object.GameObject, 0, len(s.order))
	for _, id := range s.order {
		objs = append(objs, s.registry[id])
	}
	return objs
}

func (s *scene) Update(dt float32) error {
	// The write lock also serializes concurrent Update calls, which share the batch buffers.
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.batch[:0]
	for _, id := range s.order {
		if obj := s.registry[id]; obj.Enabled() && obj.Animator() != nil {
			batch = append(batch, obj)
		}
	}
	s.batch = batch
	if len(batch) == 0 {
		return nil
	}

	if cap(s.errs) < len(batch) {
		s.errs = make([]error, len(batch))
	}
	errs := s.errs[:len(batch)]
	clear(errs)

	// Each animator owns its state and the shared model is read-only, so objects update in
	// parallel. A WaitGroup is the per-frame barrier; the pool's own Wait blocks until its
	// workers idle-exit.
	var wg sync.WaitGroup
	for i, obj := range batch {
		wg.Add(1)
		idx, objCap := i, obj
		s.updatePool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				// errors are collected per slot and joined after the barrier
				if err := objCap.Update(dt); err != nil {
					errs[idx] = fmt.Errorf("object %s: %w", objCap.ID(), err)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Warn("objects failed to update", "scene", s.name, "err", err)
	}
	return err
}
