package config

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/pourdemo/referenceframe"
	"go.viam.com/pourdemo/spatialmath"
)

// Translation is the position of a frame in its parent. It is always in meters.
type Translation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Orientation is an orientation vector, with theta being in degrees and being the rotation
// around the orientation vector. An all zero orientation is no rotation.
type Orientation struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	TH float64 `json:"th"`
}

// FrameConfig is a pose and the frame it is expressed in. An empty parent is the world frame.
type FrameConfig struct {
	Parent      string      `json:"parent,omitempty"`
	Translation Translation `json:"translation"`
	Orientation Orientation `json:"orientation"`
}

// Validate rejects non finite values.
func (fc *FrameConfig) Validate(path string) error {
	for _, v := range []float64{
		fc.Translation.X, fc.Translation.Y, fc.Translation.Z,
		fc.Orientation.X, fc.Orientation.Y, fc.Orientation.Z, fc.Orientation.TH,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return goutils.NewConfigValidationError(path, errors.New("pose values must be finite"))
		}
	}
	return nil
}

// Pose returns the configured pose.
func (fc *FrameConfig) Pose() spatialmath.Pose {
	pt := r3.Vector{X: fc.Translation.X, Y: fc.Translation.Y, Z: fc.Translation.Z}
	o := fc.Orientation
	if o.X == 0 && o.Y == 0 && o.Z == 0 {
		return spatialmath.NewPose(pt, &spatialmath.OrientationVectorDegrees{Theta: o.TH, OZ: 1})
	}
	return spatialmath.NewPose(pt, &spatialmath.OrientationVectorDegrees{Theta: o.TH, OX: o.X, OY: o.Y, OZ: o.Z})
}

// PoseInFrame returns the configured pose in its parent frame.
func (fc *FrameConfig) PoseInFrame() *referenceframe.PoseInFrame {
	return referenceframe.NewPoseInFrame(fc.Parent, fc.Pose())
}
