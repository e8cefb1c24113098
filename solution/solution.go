// Package solution holds the result of a manipulation planning task: an ordered list of joint
// trajectory segments, each with the planning scene change it causes.
package solution

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/pourdemo/planningscene"
)

// JointTrajectoryPoint is one waypoint of a joint trajectory. Velocities, Accelerations and
// Effort are optional.
type JointTrajectoryPoint struct {
	Positions     []float64
	Velocities    []float64
	Accelerations []float64
	Effort        []float64
	TimeFromStart time.Duration
}

// JointTrajectory is a timed sequence of joint positions for the named joints.
type JointTrajectory struct {
	Frame      string
	JointNames []string
	Points     []JointTrajectoryPoint
}

// IsEmpty returns whether the trajectory has no points.
func (jt *JointTrajectory) IsEmpty() bool {
	return jt == nil || len(jt.Points) == 0
}

// Duration returns the time from start of the last point.
func (jt *JointTrajectory) Duration() time.Duration {
	if jt.IsEmpty() {
		return 0
	}
	return jt.Points[len(jt.Points)-1].TimeFromStart
}

// Validate checks that every point has a position per joint, that the optional vectors match
// too, and that time never goes backwards.
func (jt *JointTrajectory) Validate() error {
	if jt.IsEmpty() {
		return nil
	}
	if len(jt.JointNames) == 0 {
		return errors.New("trajectory has points but no joint names")
	}
	if dups := lo.FindDuplicates(jt.JointNames); len(dups) > 0 {
		return errors.Errorf("trajectory names joints more than once: %v", dups)
	}
	n := len(jt.JointNames)
	var last time.Duration
	for i, p := range jt.Points {
		if len(p.Positions) != n {
			return errors.Errorf("point %d has %d positions for %d joints", i, len(p.Positions), n)
		}
		for name, v := range map[string][]float64{"velocities": p.Velocities, "accelerations": p.Accelerations, "effort": p.Effort} {
			if len(v) != 0 && len(v) != n {
				return errors.Errorf("point %d has %d %s for %d joints", i, len(v), name, n)
			}
		}
		if p.TimeFromStart < last {
			return errors.Errorf("point %d time from start %s is before the previous point's %s", i, p.TimeFromStart, last)
		}
		last = p.TimeFromStart
	}
	return nil
}

// SubTrajectory is one segment of a solution.
type SubTrajectory struct {
	ID         uint32
	StageID    uint32
	Cost       float64
	Comment    string
	Trajectory JointTrajectory
	SceneDiff  planningscene.Diff
}

// Solution is an ordered list of segments to be played back in sequence.
type Solution struct {
	TaskID          string
	SubTrajectories []SubTrajectory
}

// Cost returns the sum of the segment costs.
func (s *Solution) Cost() float64 {
	return lo.SumBy(s.SubTrajectories, func(st SubTrajectory) float64 { return st.Cost })
}

// Validate checks every segment's trajectory.
func (s *Solution) Validate() error {
	for i := range s.SubTrajectories {
		if err := s.SubTrajectories[i].Trajectory.Validate(); err != nil {
			return errors.Wrapf(err, "subtrajectory %d (id %d)", i, s.SubTrajectories[i].ID)
		}
	}
	return nil
}

// Summary renders a table with one row per segment.
func (s *Solution) Summary() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "ID", "Comment", "Cost", "Points", "Duration", "Joints", "Scene Diff"})
	for i, st := range s.SubTrajectories {
		diff := fmt.Sprintf("%d world, %d attached", len(st.SceneDiff.World), len(st.SceneDiff.Attached))
		if !st.SceneDiff.IsDiff {
			diff += " (full scene)"
		}
		t.AppendRow(table.Row{
			i,
			st.ID,
			st.Comment,
			fmt.Sprintf("%.3f", st.Cost),
			len(st.Trajectory.Points),
			st.Trajectory.Duration().String(),
			strings.Join(st.Trajectory.JointNames, ","),
			diff,
		})
	}
	t.AppendFooter(table.Row{"", "", "total", fmt.Sprintf("%.3f", s.Cost()), "", "", "", ""})
	return t.Render()
}
