package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/pubsub"
	"go.viam.com/pourdemo/ros"
	"go.viam.com/pourdemo/solution"
)

const testTopic = "solution"

func solutionJSON(t *testing.T, taskID string) []byte {
	t.Helper()
	msg := ros.Solution{
		TaskID: taskID,
		SubTrajectory: []ros.SubTrajectory{{
			Info: ros.SolutionInfo{ID: 3, Comment: "approach"},
			Trajectory: ros.RobotTrajectory{JointTrajectory: ros.JointTrajectory{
				JointNames: []string{"j1"},
				Points:     []ros.JointTrajectoryPoint{{Positions: []float64{0.25}}},
			}},
			SceneDiff: ros.PlanningScene{IsDiff: true},
		}},
	}
	data, err := json.Marshal(msg)
	test.That(t, err, test.ShouldBeNil)
	return data
}

func subscribe(bus *SolutionBus) <-chan *solution.Solution {
	ch := make(chan *solution.Solution, 10)
	bus.Subscribe(testTopic, func(ctx context.Context, sol *solution.Solution) { ch <- sol })
	return ch
}

func receive(t *testing.T, ch <-chan *solution.Solution) *solution.Solution {
	t.Helper()
	select {
	case sol := <-ch:
		return sol
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for a solution")
		return nil
	}
}

func TestBagSource(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()

	t.Run("publishes in order", func(t *testing.T) {
		bus := pubsub.NewBus[*solution.Solution](logger)
		var msgs []map[string]interface{}
		for _, id := range []string{"first", "second"} {
			raw := map[string]interface{}{}
			test.That(t, json.Unmarshal(solutionJSON(t, id), &raw), test.ShouldBeNil)
			msgs = append(msgs, map[string]interface{}{"meta": map[string]interface{}{"secs": 1, "nsecs": 0}, "data": raw})
		}
		src := NewBagSource("pour.bag", "", bus, testTopic, logger)
		var readTopic string
		src.readMessages = func(path, topic string) ([]map[string]interface{}, error) {
			readTopic = topic
			return msgs, nil
		}
		ch := subscribe(bus)
		test.That(t, src.Run(ctx), test.ShouldBeNil)
		test.That(t, readTopic, test.ShouldEqual, DefaultBagTopic)
		test.That(t, receive(t, ch).TaskID, test.ShouldEqual, "first")
		test.That(t, receive(t, ch).TaskID, test.ShouldEqual, "second")
	})

	t.Run("waits for a subscriber", func(t *testing.T) {
		bus := pubsub.NewBus[*solution.Solution](logger)
		src := NewBagSource("pour.bag", "/other", bus, testTopic, logger)
		src.readMessages = func(path, topic string) ([]map[string]interface{}, error) {
			return []map[string]interface{}{}, nil
		}
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		test.That(t, errors.Is(src.Run(cancelCtx), context.Canceled), test.ShouldBeTrue)

		src.WaitForSubscriber = false
		test.That(t, src.Run(ctx), test.ShouldBeNil)
	})

	t.Run("errors", func(t *testing.T) {
		bus := pubsub.NewBus[*solution.Solution](logger)
		src := NewBagSource(filepath.Join(t.TempDir(), "missing.bag"), "", bus, testTopic, logger)
		test.That(t, src.Run(ctx), test.ShouldNotBeNil)

		src.readMessages = func(path, topic string) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{"sub_trajectory": "nope"}}, nil
		}
		err := src.Run(ctx)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "message 0")

		_, err = ReadBagSolutions(filepath.Join(t.TempDir(), "missing.bag"), DefaultBagTopic)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestDirSource(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(dir, "b.json"), solutionJSON(t, "b"), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(dir, "a.json"), solutionJSON(t, "a"), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600), test.ShouldBeNil)

	bus := pubsub.NewBus[*solution.Solution](logger)
	src := NewDirSource(dir, bus, testTopic, logger)
	test.That(t, src.Start(context.Background()), test.ShouldBeNil)
	defer func() {
		test.That(t, src.Close(), test.ShouldBeNil)
	}()
	test.That(t, src.Start(context.Background()), test.ShouldNotBeNil)

	// existing files wait for the subscription and come in name order
	ch := subscribe(bus)
	test.That(t, receive(t, ch).TaskID, test.ShouldEqual, "a")
	test.That(t, receive(t, ch).TaskID, test.ShouldEqual, "b")

	staged := filepath.Join(dir, "c.partial")
	test.That(t, os.WriteFile(staged, solutionJSON(t, "c"), 0o600), test.ShouldBeNil)
	test.That(t, os.Rename(staged, filepath.Join(dir, "c.json")), test.ShouldBeNil)
	sol := receive(t, ch)
	test.That(t, sol.TaskID, test.ShouldEqual, "c")
	test.That(t, sol.SubTrajectories[0].ID, test.ShouldEqual, uint32(3))
}

func TestDirSourceMissingDir(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bus := pubsub.NewBus[*solution.Solution](logger)
	src := NewDirSource(filepath.Join(t.TempDir(), "missing"), bus, testTopic, logger)
	test.That(t, src.Start(context.Background()), test.ShouldNotBeNil)
	test.That(t, src.Close(), test.ShouldBeNil)

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, NewDirSource(t.TempDir(), bus, testTopic, logger).Run(cancelCtx), test.ShouldBeNil)
}
