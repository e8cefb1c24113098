package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/ros"
	"go.viam.com/pourdemo/utils"
)

// DirSource watches a directory and publishes every solution JSON file that appears in it.
// Files present when the source starts are published first, in name order.
type DirSource struct {
	dir    string
	bus    *SolutionBus
	topic  string
	logger logging.Logger

	// WaitForSubscriber makes the source hold back until something listens on the bus topic.
	WaitForSubscriber bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	workers *utils.StoppableWorkers
	// last published modification time and size per file, so repeated write events for the
	// same content publish once
	seen map[string]fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// NewDirSource returns a source for dir publishing on topic.
func NewDirSource(dir string, bus *SolutionBus, topic string, logger logging.Logger) *DirSource {
	return &DirSource{
		dir:    dir,
		bus:    bus,
		topic:  topic,
		logger: logger,
		seen:   map[string]fileStamp{},

		WaitForSubscriber: true,
	}
}

func isSolutionFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// Start publishes the existing files and begins watching in the background.
func (s *DirSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return errors.New("directory source already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.dir); err != nil {
		return multierr.Combine(errors.Wrapf(err, "watching %q", s.dir), watcher.Close())
	}
	s.watcher = watcher

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return multierr.Combine(err, watcher.Close())
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isSolutionFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	wait := s.WaitForSubscriber
	s.workers = utils.NewStoppableWorkers(ctx, func(ctx context.Context) {
		if wait && s.bus.WaitForSubscriber(ctx, s.topic) != nil {
			return
		}
		for _, name := range names {
			s.publishFile(ctx, filepath.Join(s.dir, name))
		}
		s.watch(ctx, watcher)
	})
	return nil
}

func (s *DirSource) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isSolutionFile(event.Name) || !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			s.publishFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.CDebugw(ctx, "directory watch error", "dir", s.dir, "error", err)
		}
	}
}

func (s *DirSource) publishFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}
	s.mu.Lock()
	if prev, ok := s.seen[path]; ok && prev == stamp {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	sol, err := ros.ReadSolutionFile(path)
	if err != nil {
		// a file still being written fails to parse, the next write event retries it
		s.logger.CDebugw(ctx, "skipping unreadable solution file", "path", path, "error", err)
		return
	}
	s.mu.Lock()
	s.seen[path] = stamp
	s.mu.Unlock()

	s.logger.Infow("publishing solution file", "path", path, "segments", len(sol.SubTrajectories))
	s.bus.Publish(ctx, s.topic, sol)
}

// Close stops watching. It is safe to call on a source that was never started.
func (s *DirSource) Close() error {
	s.mu.Lock()
	workers, watcher := s.workers, s.watcher
	s.mu.Unlock()
	if workers != nil {
		workers.Stop()
	}
	if watcher == nil {
		return nil
	}
	return watcher.Close()
}

// Run starts the source and blocks until ctx is done.
func (s *DirSource) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Close()
}
