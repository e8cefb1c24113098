package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/spatialmath"
	"go.viam.com/pourdemo/utils"
)

const validConfig = `{
	"planning_group": {"name": "panda_arm", "joints": ["j1", "j2"], "limits": [{"min": -2, "max": 2}, {"min": -1, "max": 1}]},
	"confirm": "auto",
	"strict_scene": true,
	"scene": {
		"tabletop": {"translation": {"x": 0.5, "y": 0, "z": 0.8}},
		"bottle": {"parent": "world", "translation": {"x": 0.5, "y": 0.15, "z": 0.8}},
		"glass": {"translation": {"x": 0.5, "y": -0.15, "z": 0.8}, "orientation": {"x": 0, "y": 0, "z": 1, "th": 90}},
		"glass_mesh": "file://${POURDEMO_MESH_DIR}/glass.stl"
	},
	"packages": {"mtc_pour": "share/mtc_pour"},
	"source": {"type": "directory", "path": "solutions"},
	"log": {"level": "debug", "file": "logs/pour.log", "patterns": [{"pattern": "pour.*", "level": "warn"}]}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pour.json")
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}

func TestRead(t *testing.T) {
	t.Setenv("POURDEMO_MESH_DIR", "/opt/meshes")
	path := writeConfig(t, validConfig)
	dir := filepath.Dir(path)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Topic, test.ShouldEqual, DefaultTopic)
	test.That(t, cfg.Confirm, test.ShouldEqual, ConfirmAuto)
	test.That(t, cfg.PlanningGroup.Joints, test.ShouldResemble, []string{"j1", "j2"})
	test.That(t, cfg.Scene.GlassMesh, test.ShouldEqual, "file:///opt/meshes/glass.stl")
	test.That(t, cfg.Scene.BottleMesh, test.ShouldBeEmpty)
	test.That(t, cfg.Packages["mtc_pour"], test.ShouldEqual, filepath.Join(dir, "share", "mtc_pour"))
	test.That(t, cfg.Source.Path, test.ShouldEqual, filepath.Join(dir, "solutions"))
	test.That(t, cfg.Source.Topic, test.ShouldEqual, DefaultTopic)
	test.That(t, cfg.Log.File, test.ShouldEqual, filepath.Join(dir, "logs", "pour.log"))
	test.That(t, cfg.Log.LogLevel(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.GoalTolerance, test.ShouldBeNil)
	test.That(t, cfg.StrictScene, test.ShouldBeTrue)

	tabletop := cfg.Scene.Tabletop.PoseInFrame()
	test.That(t, tabletop.Parent(), test.ShouldEqual, "world")
	test.That(t, tabletop.Pose().Point().Z, test.ShouldAlmostEqual, 0.8)
	test.That(t, spatialmath.OrientationAlmostEqual(tabletop.Pose().Orientation(), spatialmath.NewZeroOrientation()),
		test.ShouldBeTrue)

	glass := cfg.Scene.Glass.Pose().Orientation().OrientationVectorDegrees()
	test.That(t, glass.OZ, test.ShouldAlmostEqual, 1)
	test.That(t, glass.Theta, test.ShouldAlmostEqual, 90, 1e-6)

	_, err = Read(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromReaderDefaults(t *testing.T) {
	cfg, err := FromReader("", strings.NewReader(`{"planning_group": {"name": "arm", "joints": ["a"]}, "source": {"type": "rosbag", "path": "pour.bag", "topic": "/recorded"}}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Confirm, test.ShouldEqual, ConfirmConsole)
	test.That(t, cfg.StrictScene, test.ShouldBeFalse)

	commented, err := FromReader("", strings.NewReader(`{
		// recorded by the pour task
		planning_group: {name: "arm", joints: ["a", "b",]},
		confirm: "auto",
	}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, commented.PlanningGroup.Joints, test.ShouldResemble, []string{"a", "b"})
	test.That(t, commented.Confirm, test.ShouldEqual, ConfirmAuto)
	test.That(t, cfg.Source.Path, test.ShouldEqual, "pour.bag")
	test.That(t, cfg.Source.Topic, test.ShouldEqual, "/recorded")
	test.That(t, cfg.Log.LogLevel(), test.ShouldEqual, logging.INFO)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name     string
		content  string
		contains string
	}{
		{"bad json", `{"planning_group": `, "decode"},
		{"no joints", `{"planning_group": {"name": "arm"}}`, "no joints"},
		{"confirm", `{"planning_group": {"name": "arm", "joints": ["a"]}, "confirm": "maybe"}`, "maybe"},
		{"source type", `{"planning_group": {"name": "arm", "joints": ["a"]}, "source": {"type": "kafka", "path": "x"}}`, "kafka"},
		{"source path", `{"planning_group": {"name": "arm", "joints": ["a"]}, "source": {"type": "rosbag"}}`, "path"},
		{"log level", `{"planning_group": {"name": "arm", "joints": ["a"]}, "log": {"level": "loud"}}`, "loud"},
		{"log pattern", `{"planning_group": {"name": "arm", "joints": ["a"]}, "log": {"patterns": [{"pattern": "a..b", "level": "info"}]}}`, "a..b"},
		{"tolerance", `{"planning_group": {"name": "arm", "joints": ["a"]}, "goal_tolerance": -1}`, "goal_tolerance"},
		{"package", `{"planning_group": {"name": "arm", "joints": ["a"]}, "packages": {"mtc_pour": ""}}`, "mtc_pour"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("", strings.NewReader(tc.content))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.contains)
		})
	}
}

func TestSampleConfig(t *testing.T) {
	cfg, err := Read(utils.ResolveFile("etc/configs/pour.json"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(cfg.PlanningGroup.Joints), test.ShouldEqual, 7)
	test.That(t, cfg.PlanningGroup.CheckLimits(make([]float64, 7)), test.ShouldNotBeNil)
	test.That(t, cfg.Source.Type, test.ShouldEqual, SourceRosbag)
	test.That(t, cfg.Source.Path, test.ShouldEqual, utils.ResolveFile("etc/configs/pour.bag"))
}
