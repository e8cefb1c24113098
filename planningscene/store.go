package planningscene

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrObjectNotFound is returned when an operation names an object the scene does not hold.
	ErrObjectNotFound = errors.New("collision object not found")
	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("planning scene store is closed")
)

// ChangeType describes what happened to an object in a Change.
type ChangeType int

// Change types emitted by a Store.
const (
	ChangeAdded ChangeType = iota
	ChangeUpdated
	ChangeRemoved
	ChangeAttached
	ChangeDetached
)

func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeAttached:
		return "attached"
	case ChangeDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// Change is a single object change emitted on StreamChanges.
type Change struct {
	Type ChangeType
	ID   string
	// LinkName is set for attach and detach changes.
	LinkName string
}

// Store holds the collision objects of a planning scene.
type Store interface {
	// ApplyCollisionObject applies a single world object operation.
	ApplyCollisionObject(ctx context.Context, obj CollisionObject) error
	// ApplyCollisionObjects applies the objects in order. It stops at the first failure and
	// does not roll back objects already applied.
	ApplyCollisionObjects(ctx context.Context, objs []CollisionObject) error
	// ApplyAttachedCollisionObject attaches (Add, Append) or detaches (Remove) an object.
	ApplyAttachedCollisionObject(ctx context.Context, obj AttachedCollisionObject) error
	// ApplyDiff applies a planning scene diff.
	ApplyDiff(ctx context.Context, diff Diff) error

	// Objects returns the world objects with the given ids, or all of them when none are given.
	// Unknown ids are omitted.
	Objects(ctx context.Context, ids ...string) (map[string]CollisionObject, error)
	// AttachedObjects returns the attached objects with the given ids, or all of them.
	AttachedObjects(ctx context.Context, ids ...string) (map[string]AttachedCollisionObject, error)
	// ObjectIDs lists world object ids in sorted order.
	ObjectIDs(ctx context.Context) ([]string, error)

	// StreamChanges returns a channel of scene changes. Changes are dropped while the
	// channel is full and the channel is closed by Close.
	StreamChanges(ctx context.Context) (<-chan Change, error)
	Close(ctx context.Context) error
}
