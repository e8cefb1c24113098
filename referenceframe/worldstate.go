package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
	commonpb "go.viam.com/api/common/v1"
)

// WorldState is a struct to store the data representation of the robot's environment.
type WorldState struct {
	Obstacles []*GeometriesInFrame
}

// NewWorldState instantiates a WorldState, rejecting duplicate geometry labels across frames.
func NewWorldState(obstacles []*GeometriesInFrame) (*WorldState, error) {
	seen := map[string]struct{}{}
	for _, gf := range obstacles {
		for _, g := range gf.Geometries() {
			label := g.Label()
			if label == "" {
				continue
			}
			if _, ok := seen[label]; ok {
				return nil, errors.Errorf("cannot specify multiple geometries with the same name: %s", label)
			}
			seen[label] = struct{}{}
		}
	}
	return &WorldState{Obstacles: obstacles}, nil
}

// String returns a short summary of the obstacles per frame.
func (ws *WorldState) String() string {
	if ws == nil {
		return "empty world"
	}
	count := 0
	for _, gf := range ws.Obstacles {
		count += len(gf.Geometries())
	}
	return fmt.Sprintf("%d geometries in %d frames", count, len(ws.Obstacles))
}

// WorldStateFromProtobuf takes the protobuf definition of a WorldState and converts it to a WorldState.
func WorldStateFromProtobuf(proto *commonpb.WorldState) (*WorldState, error) {
	if proto == nil {
		return &WorldState{}, nil
	}
	obstacles := make([]*GeometriesInFrame, 0, len(proto.GetObstacles()))
	for _, protoGeometries := range proto.GetObstacles() {
		geometries, err := ProtobufToGeometriesInFrame(protoGeometries)
		if err != nil {
			return nil, err
		}
		obstacles = append(obstacles, geometries)
	}
	return NewWorldState(obstacles)
}

// WorldStateToProtobuf takes a WorldState and converts it to the protobuf definition of a WorldState.
func WorldStateToProtobuf(worldState *WorldState) *commonpb.WorldState {
	list := make([]*commonpb.GeometriesInFrame, 0, len(worldState.Obstacles))
	for _, geometries := range worldState.Obstacles {
		list = append(list, GeometriesInFrameToProtobuf(geometries))
	}
	return &commonpb.WorldState{Obstacles: list}
}
