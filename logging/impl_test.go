package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"
)

type BasicStruct struct {
	X int
	y string
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))

	_, err = time.Parse(DefaultTimeFormatStr, actualParts[0])
	test.That(t, err, test.ShouldBeNil)
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])

	// Filename:line_number. Only the filename must match.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[3], test.ShouldEqual, expectedParts[3])
	if len(actualParts) == 4 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[4]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[4]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func newBufferLogger(level Level) (*impl, *bytes.Buffer) {
	notStdout := &bytes.Buffer{}
	return &impl{"", NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(notStdout)}, newRegistry()}, notStdout
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, notStdout := newBufferLogger(DEBUG)

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout, "2023-10-30T09:12:09.459Z\tINFO\tlogging/impl_test.go:67\timpl Info log")

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout, "2023-10-30T09:12:09.459Z\tINFO\tlogging/impl_test.go:70\timpl infof log")

	logger.Infow("impl logw", "key", "value")
	assertLogMatches(t, notStdout, "2023-10-30T09:12:09.459Z\tINFO\tlogging/impl_test.go:73\timpl logw\t{\"key\":\"value\"}")

	logger.Warnw("BasicStruct", "implOneKey", "1val", "BasicStruct", BasicStruct{1, "alice"})
	assertLogMatches(t, notStdout,
		"2023-10-30T09:12:09.459Z\tWARN\tlogging/impl_test.go:76\tBasicStruct\t{\"BasicStruct\":{\"X\":1},\"implOneKey\":\"1val\"}")

	logger.Errorw("unpaired", "dangling")
	output, err := notStdout.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	test.That(t, output, test.ShouldContainSubstring, "unpaired log key")
}

func TestLevels(t *testing.T) {
	logger, notStdout := newBufferLogger(WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.CDebugf(EnableDebugMode(context.Background()), "forced %d", 1)
	assertLogMatches(t, notStdout, "2023-10-30T09:12:09.459Z\tDEBUG\tlogging/impl_test.go:91\tforced 1")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("kept")
	assertLogMatches(t, notStdout, "2023-10-30T09:12:09.459Z\tDEBUG\tlogging/impl_test.go:96\tkept")
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"error"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, ERROR)
	out, err := json.Marshal(INFO)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"info"`)
}

func TestSubloggerAndAsZap(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)

	sub := logger.Sublogger("scene")
	sub.Infow("added object", "id", "table")
	test.That(t, observed.FilterMessage("added object").Len(), test.ShouldEqual, 1)
	test.That(t, observed.FilterMessage("added object").All()[0].LoggerName, test.ShouldEqual, "scene")

	// A second request for the same name returns the registered logger.
	test.That(t, logger.Sublogger("scene"), test.ShouldEqual, sub)

	logger.AsZap().Infow("through zap", "k", 1)
	test.That(t, observed.FilterMessage("through zap").Len(), test.ShouldEqual, 1)

	logger.SetLevel(ERROR)
	logger.AsZap().Info("filtered")
	test.That(t, observed.FilterMessage("filtered").Len(), test.ShouldEqual, 0)
}

func TestRegistryPatterns(t *testing.T) {
	root, observed := NewObservedTestLogger(t)
	motion := root.Sublogger("motion")
	scene := root.Sublogger("scene")

	registry := root.(*impl).registry
	err := registry.UpdateConfig([]LoggerPatternConfig{
		{Pattern: "scene", Level: "error"},
		{Pattern: "bad..pattern", Level: "debug"},
	}, DEBUG, root)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, scene.GetLevel(), test.ShouldEqual, ERROR)
	test.That(t, motion.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, observed.FilterMessage("failed to validate a pattern").Len(), test.ShouldEqual, 1)

	// Loggers registered after the config is applied pick it up.
	late := scene.Sublogger("diffs")
	test.That(t, late.GetLevel(), test.ShouldEqual, ERROR)

	err = registry.UpdateConfig([]LoggerPatternConfig{{Pattern: "scene.*", Level: "warn"}}, INFO, root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.GetLevel(), test.ShouldEqual, INFO)
	test.That(t, late.GetLevel(), test.ShouldEqual, WARN)
}

func TestValidatePattern(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		isValid bool
	}{
		{"pourdemo.scene", true},
		{"pourdemo.*", true},
		{"*", true},
		{"pourdemo..scene", false},
		{"pourdemo.scene.", false},
		{"pourdemo.**", false},
		{"_.pourdemo", false},
	} {
		test.That(t, ValidatePattern(tc.pattern), test.ShouldEqual, tc.isValid)
	}
}
