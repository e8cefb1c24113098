package planningscene

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"go.viam.com/pourdemo/referenceframe"
	"go.viam.com/pourdemo/spatialmath"
)

// ToWorldState snapshots the store as a WorldState. World objects are grouped by their frame and
// attached objects by the link they are attached to.
func ToWorldState(ctx context.Context, store Store) (*referenceframe.WorldState, error) {
	world, err := store.Objects(ctx)
	if err != nil {
		return nil, err
	}
	attached, err := store.AttachedObjects(ctx)
	if err != nil {
		return nil, err
	}

	byFrame := map[string][]spatialmath.Geometry{}
	add := func(frame string, obj CollisionObject) error {
		geometries, err := obj.Geometries()
		if err != nil {
			return err
		}
		byFrame[frame] = append(byFrame[frame], geometries...)
		return nil
	}
	for _, id := range sortedKeys(world) {
		obj := world[id]
		if err := add(obj.ParentFrame(), obj); err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(attached) {
		a := attached[id]
		if err := add(a.LinkName, a.Object); err != nil {
			return nil, err
		}
	}

	frames := lo.Keys(byFrame)
	sort.Strings(frames)
	obstacles := make([]*referenceframe.GeometriesInFrame, 0, len(frames))
	for _, frame := range frames {
		obstacles = append(obstacles, referenceframe.NewGeometriesInFrame(frame, byFrame[frame]))
	}
	return referenceframe.NewWorldState(obstacles)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
