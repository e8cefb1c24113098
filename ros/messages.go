package ros

import "time"

// Field names follow the lowercased layout gobag emits when it renders bag messages as JSON.

// Time is a ROS time or duration.
type Time struct {
	Secs  int64 `json:"secs"`
	Nsecs int64 `json:"nsecs"`
}

// Duration converts the value to a time.Duration.
func (t Time) Duration() time.Duration {
	return time.Duration(t.Secs)*time.Second + time.Duration(t.Nsecs)
}

// NewTime splits a duration into seconds and nanoseconds.
func NewTime(d time.Duration) Time {
	return Time{Secs: int64(d / time.Second), Nsecs: int64(d % time.Second)}
}

// Header is std_msgs/Header.
type Header struct {
	Seq     uint32 `json:"seq"`
	Stamp   Time   `json:"stamp"`
	FrameID string `json:"frame_id"`
}

// Point is geometry_msgs/Point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is geometry_msgs/Quaternion.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Pose is geometry_msgs/Pose.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// SolidPrimitive is shape_msgs/SolidPrimitive.
type SolidPrimitive struct {
	Type       uint8     `json:"type"`
	Dimensions []float64 `json:"dimensions"`
}

// MeshTriangle is shape_msgs/MeshTriangle.
type MeshTriangle struct {
	VertexIndices [3]uint32 `json:"vertex_indices"`
}

// Mesh is shape_msgs/Mesh.
type Mesh struct {
	Triangles []MeshTriangle `json:"triangles"`
	Vertices  []Point        `json:"vertices"`
}

// CollisionObject is moveit_msgs/CollisionObject.
type CollisionObject struct {
	Header         Header           `json:"header"`
	Pose           Pose             `json:"pose"`
	ID             string           `json:"id"`
	Primitives     []SolidPrimitive `json:"primitives"`
	PrimitivePoses []Pose           `json:"primitive_poses"`
	Meshes         []Mesh           `json:"meshes"`
	MeshPoses      []Pose           `json:"mesh_poses"`
	Operation      uint8            `json:"operation"`
}

// AttachedCollisionObject is moveit_msgs/AttachedCollisionObject.
type AttachedCollisionObject struct {
	LinkName   string          `json:"link_name"`
	Object     CollisionObject `json:"object"`
	TouchLinks []string        `json:"touch_links"`
	Weight     float64         `json:"weight"`
}

// PlanningSceneWorld is moveit_msgs/PlanningSceneWorld.
type PlanningSceneWorld struct {
	CollisionObjects []CollisionObject `json:"collision_objects"`
}

// RobotState is the part of moveit_msgs/RobotState that carries attached objects.
type RobotState struct {
	AttachedCollisionObjects []AttachedCollisionObject `json:"attached_collision_objects"`
	IsDiff                   bool                      `json:"is_diff"`
}

// PlanningScene is moveit_msgs/PlanningScene.
type PlanningScene struct {
	Name       string             `json:"name"`
	RobotState RobotState         `json:"robot_state"`
	World      PlanningSceneWorld `json:"world"`
	IsDiff     bool               `json:"is_diff"`
}

// JointTrajectoryPoint is trajectory_msgs/JointTrajectoryPoint.
type JointTrajectoryPoint struct {
	Positions     []float64 `json:"positions"`
	Velocities    []float64 `json:"velocities"`
	Accelerations []float64 `json:"accelerations"`
	Effort        []float64 `json:"effort"`
	TimeFromStart Time      `json:"time_from_start"`
}

// JointTrajectory is trajectory_msgs/JointTrajectory.
type JointTrajectory struct {
	Header     Header                 `json:"header"`
	JointNames []string               `json:"joint_names"`
	Points     []JointTrajectoryPoint `json:"points"`
}

// RobotTrajectory is moveit_msgs/RobotTrajectory without the multi-dof part.
type RobotTrajectory struct {
	JointTrajectory JointTrajectory `json:"joint_trajectory"`
}

// SolutionInfo is moveit_task_constructor_msgs/SolutionInfo.
type SolutionInfo struct {
	ID      uint32  `json:"id"`
	Cost    float64 `json:"cost"`
	Comment string  `json:"comment"`
	StageID uint32  `json:"stage_id"`
}

// SubTrajectory is moveit_task_constructor_msgs/SubTrajectory.
type SubTrajectory struct {
	Info       SolutionInfo    `json:"info"`
	Trajectory RobotTrajectory `json:"trajectory"`
	SceneDiff  PlanningScene   `json:"scene_diff"`
}

// Solution is moveit_task_constructor_msgs/Solution.
type Solution struct {
	TaskID        string          `json:"task_id"`
	SubTrajectory []SubTrajectory `json:"sub_trajectory"`
}

// SolutionMessage is a Solution as read from a bag, with the recording time.
type SolutionMessage struct {
	Meta Time     `json:"meta"`
	Data Solution `json:"data"`
}
