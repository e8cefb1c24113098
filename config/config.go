// Package config defines the configuration file of the pour demo helper.
package config

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/motion"
)

// DefaultTopic is the topic the pour task publishes its solutions on.
const DefaultTopic = "/mtc_pour/solution"

// Confirmation modes.
const (
	ConfirmConsole = "console"
	ConfirmAuto    = "auto"
)

// Solution source types.
const (
	SourceRosbag    = "rosbag"
	SourceDirectory = "directory"
)

// Config is the demo helper configuration.
type Config struct {
	ConfigFilePath string `json:"-"`

	Topic           string               `json:"topic"`
	PlanningGroup   motion.PlanningGroup `json:"planning_group"`
	Confirm         string               `json:"confirm,omitempty"`
	StrictScene     bool                 `json:"strict_scene,omitempty"`
	// GoalTolerance overrides how far, in radians, the arm may end from the last trajectory point.
	GoalTolerance *float64 `json:"goal_tolerance,omitempty"`

	Scene SceneConfig `json:"scene"`

	// Packages maps ROS package names to directories for package:// mesh locators.
	Packages map[string]string `json:"packages,omitempty"`
	// PackagePath is a list of directories holding packages, in the format of ROS_PACKAGE_PATH.
	PackagePath string `json:"package_path,omitempty"`

	Source SourceConfig `json:"source"`
	Log    LogConfig    `json:"log"`
}

// SceneConfig places the table, bottle and glass.
type SceneConfig struct {
	Tabletop   FrameConfig `json:"tabletop"`
	Bottle     FrameConfig `json:"bottle"`
	Glass      FrameConfig `json:"glass"`
	BottleMesh string      `json:"bottle_mesh,omitempty"`
	GlassMesh  string      `json:"glass_mesh,omitempty"`
}

// SourceConfig describes where solutions are read from.
type SourceConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
	// Topic is the recorded topic in a bag. Defaults to the configured topic.
	Topic string `json:"topic,omitempty"`
}

// LogConfig configures the log level and an optional rotating log file.
type LogConfig struct {
	Level      string                        `json:"level,omitempty"`
	File       string                        `json:"file,omitempty"`
	MaxSizeMB  int                           `json:"max_size_mb,omitempty"`
	MaxBackups int                           `json:"max_backups,omitempty"`
	Patterns   []logging.LoggerPatternConfig `json:"patterns,omitempty"`
}

// Validate returns an error if the config is not usable.
func (c *Config) Validate(path string) error {
	if c.Topic == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "topic")
	}
	if err := c.PlanningGroup.Validate(joinPath(path, "planning_group")); err != nil {
		return err
	}
	switch c.Confirm {
	case "", ConfirmConsole, ConfirmAuto:
	default:
		return goutils.NewConfigValidationError(path, errors.Errorf("unknown confirm mode %q", c.Confirm))
	}
	if c.GoalTolerance != nil && *c.GoalTolerance < 0 {
		return goutils.NewConfigValidationError(path, errors.New("goal_tolerance cannot be negative"))
	}
	for name, dir := range c.Packages {
		if name == "" || dir == "" {
			return goutils.NewConfigValidationError(joinPath(path, "packages"),
				errors.Errorf("package %q has an empty name or directory", name))
		}
	}
	if err := c.Scene.Validate(joinPath(path, "scene")); err != nil {
		return err
	}
	if err := c.Source.Validate(joinPath(path, "source")); err != nil {
		return err
	}
	return c.Log.Validate(joinPath(path, "log"))
}

// Validate checks the scene frames.
func (sc *SceneConfig) Validate(path string) error {
	if err := sc.Tabletop.Validate(joinPath(path, "tabletop")); err != nil {
		return err
	}
	if err := sc.Bottle.Validate(joinPath(path, "bottle")); err != nil {
		return err
	}
	return sc.Glass.Validate(joinPath(path, "glass"))
}

// Validate checks the source type and path.
func (sc *SourceConfig) Validate(path string) error {
	switch sc.Type {
	case "":
		return nil
	case SourceRosbag, SourceDirectory:
	default:
		return goutils.NewConfigValidationError(path, errors.Errorf("unknown source type %q", sc.Type))
	}
	if sc.Path == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "path")
	}
	return nil
}

// Validate checks the levels and logger patterns.
func (lc *LogConfig) Validate(path string) error {
	if lc.Level != "" {
		if _, err := logging.LevelFromString(lc.Level); err != nil {
			return goutils.NewConfigValidationError(path, err)
		}
	}
	if lc.MaxSizeMB < 0 || lc.MaxBackups < 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_size_mb and max_backups cannot be negative"))
	}
	for i, p := range lc.Patterns {
		if !logging.ValidatePattern(p.Pattern) {
			return goutils.NewConfigValidationError(path, errors.Errorf("patterns.%d: invalid logger pattern %q", i, p.Pattern))
		}
		if _, err := logging.LevelFromString(p.Level); err != nil {
			return goutils.NewConfigValidationError(path, errors.Wrapf(err, "patterns.%d", i))
		}
	}
	return nil
}

// LogLevel returns the configured level, INFO when unset.
func (lc *LogConfig) LogLevel() logging.Level {
	level, err := logging.LevelFromString(lc.Level)
	if lc.Level == "" || err != nil {
		return logging.INFO
	}
	return level
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
