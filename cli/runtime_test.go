package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/pourdemo/config"
	"go.viam.com/pourdemo/logging"
)

func TestNewLogger(t *testing.T) {
	t.Cleanup(func() {
		test.That(t, logging.GlobalRegistry().UpdateConfig(nil, logging.INFO, logging.NewTestLogger(t)), test.ShouldBeNil)
	})

	t.Run("writes to the log file", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "pour.log")
		cfg := &config.Config{Log: config.LogConfig{File: logFile}}
		var errOut bytes.Buffer
		logger, fileAppender, err := newLogger(cfg, false, &errOut)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fileAppender, test.ShouldNotBeNil)

		logger.Infow("scene ready", "objects", 3)
		logger.Debugw("hidden")
		test.That(t, fileAppender.Close(), test.ShouldBeNil)

		//nolint:gosec
		data, err := os.ReadFile(logFile)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, string(data), test.ShouldContainSubstring, "scene ready")
		test.That(t, string(data), test.ShouldNotContainSubstring, "hidden")
		test.That(t, errOut.String(), test.ShouldContainSubstring, "scene ready")
	})

	t.Run("bad pattern level releases the log file", func(t *testing.T) {
		logging.NewBlankLogger("pourdemo").Sublogger("rotation")
		logFile := filepath.Join(t.TempDir(), "pour.log")
		cfg := &config.Config{Log: config.LogConfig{
			File:     logFile,
			Patterns: []logging.LoggerPatternConfig{{Pattern: "pourdemo.rotation", Level: "loud"}},
		}}
		logger, fileAppender, err := newLogger(cfg, true, &bytes.Buffer{})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "pourdemo.rotation")
		test.That(t, logger, test.ShouldBeNil)
		test.That(t, fileAppender, test.ShouldBeNil)
		_, err = os.Stat(logFile)
		test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
	})
}
