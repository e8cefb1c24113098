package planningscene

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/pourdemo/logging"
)

const changeBufferSize = 100

type memoryStore struct {
	mu sync.RWMutex

	world    map[string]CollisionObject
	attached map[string]AttachedCollisionObject

	closed     bool
	changeChan chan Change
	logger     logging.Logger
}

// NewStore returns an in-memory Store.
func NewStore(logger logging.Logger) Store {
	return &memoryStore{
		world:      map[string]CollisionObject{},
		attached:   map[string]AttachedCollisionObject{},
		changeChan: make(chan Change, changeBufferSize),
		logger:     logger,
	}
}

func (s *memoryStore) ApplyCollisionObject(ctx context.Context, obj CollisionObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.applyObjectLocked(obj)
}

func (s *memoryStore) ApplyCollisionObjects(ctx context.Context, objs []CollisionObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for i, obj := range objs {
		if err := s.applyObjectLocked(obj); err != nil {
			return errors.Wrapf(err, "applying object %d of %d", i+1, len(objs))
		}
	}
	return nil
}

func (s *memoryStore) ApplyAttachedCollisionObject(ctx context.Context, obj AttachedCollisionObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.applyAttachedLocked(obj)
}

func (s *memoryStore) ApplyDiff(ctx context.Context, diff Diff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !diff.IsDiff {
		for id := range s.world {
			s.emitLocked(Change{Type: ChangeRemoved, ID: id})
		}
		for id, a := range s.attached {
			s.emitLocked(Change{Type: ChangeDetached, ID: id, LinkName: a.LinkName})
		}
		s.world = map[string]CollisionObject{}
		s.attached = map[string]AttachedCollisionObject{}
	}
	for _, obj := range diff.World {
		if err := s.applyObjectLocked(obj); err != nil {
			return errors.Wrapf(err, "applying scene diff %q", diff.Name)
		}
	}
	for _, a := range diff.Attached {
		if err := s.applyAttachedLocked(a); err != nil {
			return errors.Wrapf(err, "applying scene diff %q", diff.Name)
		}
	}
	return nil
}

func (s *memoryStore) applyObjectLocked(obj CollisionObject) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	obj = obj.Clone()
	existing, exists := s.world[obj.ID]
	switch obj.Operation {
	case Add:
		obj.Operation = Add
		s.world[obj.ID] = obj
		if exists {
			s.emitLocked(Change{Type: ChangeUpdated, ID: obj.ID})
		} else {
			s.emitLocked(Change{Type: ChangeAdded, ID: obj.ID})
		}
	case Remove:
		if obj.ID == "" {
			for id := range s.world {
				s.emitLocked(Change{Type: ChangeRemoved, ID: id})
			}
			s.world = map[string]CollisionObject{}
			return nil
		}
		if !exists {
			return errors.Wrapf(ErrObjectNotFound, "cannot remove %q", obj.ID)
		}
		delete(s.world, obj.ID)
		s.emitLocked(Change{Type: ChangeRemoved, ID: obj.ID})
	case Append:
		if !exists {
			obj.Operation = Add
			s.world[obj.ID] = obj
			s.emitLocked(Change{Type: ChangeAdded, ID: obj.ID})
			return nil
		}
		s.world[obj.ID] = appendShapes(existing, obj)
		s.emitLocked(Change{Type: ChangeUpdated, ID: obj.ID})
	case Move:
		if !exists {
			return errors.Wrapf(ErrObjectNotFound, "cannot move %q", obj.ID)
		}
		existing.Pose = obj.Pose
		if obj.Frame != "" {
			existing.Frame = obj.Frame
		}
		s.world[obj.ID] = existing
		s.emitLocked(Change{Type: ChangeUpdated, ID: obj.ID})
	default:
		return errors.Errorf("unknown operation %s on %q", obj.Operation, obj.ID)
	}
	return nil
}

func (s *memoryStore) applyAttachedLocked(a AttachedCollisionObject) error {
	a = a.Clone()
	id := a.Object.ID
	switch a.Object.Operation {
	case Add, Append:
		if a.LinkName == "" {
			return errors.Errorf("cannot attach %q without a link name", id)
		}
		if err := a.Object.Validate(); err != nil {
			return err
		}
		if prev, ok := s.attached[id]; ok && a.Object.Operation == Append {
			prev.Object = appendShapes(prev.Object, a.Object)
			prev.LinkName = a.LinkName
			a = prev
		} else if worldObj, inWorld := s.world[id]; inWorld && a.Object.ShapeCount() == 0 {
			// attaching an object by name takes its shapes from the world
			a.Object = worldObj
		}
		if _, inWorld := s.world[id]; inWorld {
			delete(s.world, id)
			s.emitLocked(Change{Type: ChangeRemoved, ID: id})
		}
		a.Object.Operation = Add
		s.attached[id] = a
		s.emitLocked(Change{Type: ChangeAttached, ID: id, LinkName: a.LinkName})
	case Remove:
		ids := []string{id}
		if id == "" {
			ids = lo.Keys(s.attached)
			if a.LinkName != "" {
				ids = lo.Filter(ids, func(k string, _ int) bool { return s.attached[k].LinkName == a.LinkName })
			}
		}
		for _, detachID := range ids {
			prev, ok := s.attached[detachID]
			if !ok {
				return errors.Wrapf(ErrObjectNotFound, "cannot detach %q", detachID)
			}
			delete(s.attached, detachID)
			s.emitLocked(Change{Type: ChangeDetached, ID: detachID, LinkName: prev.LinkName})
			// the detached object stays in the scene as a world object
			prev.Object.Operation = Add
			s.world[detachID] = prev.Object
			s.emitLocked(Change{Type: ChangeAdded, ID: detachID})
		}
	default:
		return errors.Errorf("operation %s is not supported on attached object %q", a.Object.Operation, id)
	}
	return nil
}

func appendShapes(existing, extra CollisionObject) CollisionObject {
	existing.Primitives = append(existing.Primitives, extra.Primitives...)
	existing.PrimitivePoses = append(existing.PrimitivePoses, extra.PrimitivePoses...)
	existing.Meshes = append(existing.Meshes, extra.Meshes...)
	existing.MeshPoses = append(existing.MeshPoses, extra.MeshPoses...)
	return existing
}

func (s *memoryStore) Objects(ctx context.Context, ids ...string) (map[string]CollisionObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if len(ids) == 0 {
		ids = lo.Keys(s.world)
	}
	found := make(map[string]CollisionObject, len(ids))
	for _, id := range ids {
		if obj, ok := s.world[id]; ok {
			found[id] = obj.Clone()
		}
	}
	return found, nil
}

func (s *memoryStore) AttachedObjects(ctx context.Context, ids ...string) (map[string]AttachedCollisionObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if len(ids) == 0 {
		ids = lo.Keys(s.attached)
	}
	found := make(map[string]AttachedCollisionObject, len(ids))
	for _, id := range ids {
		if a, ok := s.attached[id]; ok {
			found[id] = a.Clone()
		}
	}
	return found, nil
}

func (s *memoryStore) ObjectIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	ids := lo.Keys(s.world)
	sort.Strings(ids)
	return ids, nil
}

func (s *memoryStore) StreamChanges(ctx context.Context) (<-chan Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.changeChan, nil
}

func (s *memoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.changeChan)
	return nil
}

func (s *memoryStore) emitLocked(change Change) {
	s.logger.Debugw("planning scene change", "type", change.Type.String(), "id", change.ID, "link", change.LinkName)
	select {
	case s.changeChan <- change:
	default:
		// Channel is full, skip this update
	}
}
