// Package demo plays back a planned pour solution and sets up the scene the pour demo runs in.
package demo

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/motion"
	"go.viam.com/pourdemo/planningscene"
	"go.viam.com/pourdemo/pubsub"
	"go.viam.com/pourdemo/solution"
	"go.viam.com/pourdemo/utils"
)

// Outcome describes how far the playback of a solution got.
type Outcome struct {
	TaskID       string
	Executed     int
	Skipped      int
	DiffsApplied int
	// FailedSegment is the index of the segment that stopped playback, or -1.
	FailedSegment int
}

// ExecutorOption configures a SolutionExecutor.
type ExecutorOption func(*SolutionExecutor)

// WithStrictScene aborts playback when a scene diff cannot be applied. By default the failure
// is logged and playback continues.
func WithStrictScene() ExecutorOption {
	return func(e *SolutionExecutor) {
		e.strictScene = true
	}
}

// SolutionExecutor waits for the first solution on a topic and executes it segment by segment.
type SolutionExecutor struct {
	bus       *pubsub.Bus[*solution.Solution]
	topic     string
	executor  motion.Executor
	store     planningscene.Store
	confirmer Confirmer
	logger    logging.Logger

	strictScene bool
}

// NewSolutionExecutor returns a SolutionExecutor listening on topic. A nil confirmer
// confirms automatically.
func NewSolutionExecutor(
	bus *pubsub.Bus[*solution.Solution],
	topic string,
	executor motion.Executor,
	store planningscene.Store,
	confirmer Confirmer,
	logger logging.Logger,
	opts ...ExecutorOption,
) *SolutionExecutor {
	if confirmer == nil {
		confirmer = AutoConfirm
	}
	e := &SolutionExecutor{
		bus:       bus,
		topic:     topic,
		executor:  executor,
		store:     store,
		confirmer: confirmer,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run subscribes to the topic, waits for the first solution and plays it back. Later solutions
// are ignored.
func (e *SolutionExecutor) Run(ctx context.Context) (*Outcome, error) {
	received := make(chan *solution.Solution, 1)
	sub := e.bus.Subscribe(e.topic, pubsub.Once(func(ctx context.Context, sol *solution.Solution) {
		received <- sol
	}))
	defer sub.Unsubscribe()
	e.logger.CDebugw(ctx, "waiting for a solution", "topic", e.topic)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case sol := <-received:
		sub.Unsubscribe()
		e.logger.Infow("received first solution", "task", sol.TaskID, "segments", len(sol.SubTrajectories))
		return e.Play(ctx, sol)
	}
}

// Play asks for confirmation, then executes every segment in order and applies its scene diff.
// Playback stops at the first failed segment and neither that segment's diff nor any later one
// is applied.
func (e *SolutionExecutor) Play(ctx context.Context, sol *solution.Solution) (*Outcome, error) {
	outcome := &Outcome{TaskID: sol.TaskID, FailedSegment: -1}

	e.logger.Info("waiting for confirmation")
	stopSlowLog := utils.SlowLogger(ctx, "waiting for confirmation", "task", sol.TaskID, e.logger)
	ok, err := e.confirmer.Confirm(ctx, sol)
	stopSlowLog()
	if err != nil {
		return outcome, err
	}
	if !ok {
		return outcome, ErrNotConfirmed
	}

	for i := range sol.SubTrajectories {
		segment := &sol.SubTrajectories[i]
		if segment.Trajectory.IsEmpty() {
			e.logger.Info("skipping empty trajectory")
			outcome.Skipped++
		} else {
			e.logger.Infof("executing subtrajectory %d", segment.ID)
			stopSlowLog := utils.SlowLogger(ctx, "still executing", "subtrajectory", strconv.FormatUint(uint64(segment.ID), 10), e.logger)
			err := e.executor.Execute(ctx, &segment.Trajectory)
			stopSlowLog()
			if err != nil {
				e.logger.Errorw("execution failed, aborting", "subtrajectory", segment.ID, "error", err)
				outcome.FailedSegment = i
				return outcome, errors.Wrapf(err, "executing subtrajectory %d", segment.ID)
			}
			outcome.Executed++
		}

		if err := e.store.ApplyDiff(ctx, segment.SceneDiff); err != nil {
			if e.strictScene {
				e.logger.Errorw("applying scene diff failed, aborting", "subtrajectory", segment.ID, "error", err)
				outcome.FailedSegment = i
				return outcome, errors.Wrapf(err, "applying scene diff of subtrajectory %d", segment.ID)
			}
			e.logger.Warnw("failed to apply scene diff", "subtrajectory", segment.ID, "error", err)
			continue
		}
		outcome.DiffsApplied++
	}

	e.logger.Info("executed successfully")
	return outcome, nil
}
