package logging

import (
	"fmt"
	"regexp"
	"sync"
)

var globalLoggerRegistry = newRegistry()

// Registry tracks named subloggers so that pattern configs can change their levels.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

func newRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]Logger),
	}
}

// GlobalRegistry returns the registry that loggers built by NewLogger and friends register their
// subloggers into.
func GlobalRegistry() *Registry {
	return globalLoggerRegistry
}

func (lr *Registry) registerLogger(name string, logger Logger) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.loggers[name] = logger
}

func (lr *Registry) loggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

// levelFromConfigLocked returns the level of the last pattern matching `name`. The caller must
// hold the lock.
func (lr *Registry) levelFromConfigLocked(name string) (Level, bool, error) {
	var (
		level Level
		found bool
	)
	for _, lpc := range lr.logConfig {
		r, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
		if err != nil {
			return level, false, err
		}
		if !r.MatchString(name) {
			continue
		}
		level, err = LevelFromString(lpc.Level)
		if err != nil {
			return level, false, err
		}
		found = true
	}
	return level, found, nil
}

// UpdateConfig replaces the pattern configuration and re-levels every registered logger. Loggers
// that match no pattern are set to `defaultLevel`.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, defaultLevel Level, errorLogger Logger) error {
	valid := make([]LoggerPatternConfig, 0, len(logConfig))
	for _, lpc := range logConfig {
		if !ValidatePattern(lpc.Pattern) {
			errorLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		valid = append(valid, lpc)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = valid

	for name, logger := range lr.loggers {
		level, found, err := lr.levelFromConfigLocked(name)
		if err != nil {
			return fmt.Errorf("logger %s: %w", name, err)
		}
		if !found {
			level = defaultLevel
		}
		logger.SetLevel(level)
	}

	return nil
}

// getOrRegister will either:
//   - return an existing logger for the input logger `name` or
//   - register the input `logger` for the given logger `name` and configure it based on the
//     existing patterns.
func (lr *Registry) getOrRegister(name string, logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if existingLogger, ok := lr.loggers[name]; ok {
		return existingLogger
	}

	lr.loggers[name] = logger
	if level, found, err := lr.levelFromConfigLocked(name); err == nil && found {
		logger.SetLevel(level)
	}
	return logger
}
