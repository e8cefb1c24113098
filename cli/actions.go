package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/pourdemo/config"
	"go.viam.com/pourdemo/demo"
	"go.viam.com/pourdemo/ingest"
	"go.viam.com/pourdemo/motion"
	"go.viam.com/pourdemo/motion/fake"
	"go.viam.com/pourdemo/pubsub"
	"go.viam.com/pourdemo/ros"
	"go.viam.com/pourdemo/solution"
	"go.viam.com/pourdemo/utils"
)

// SetupSceneAction adds the table, bottle and glass to a fresh planning scene.
func SetupSceneAction(c *cli.Context) (err error) {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, rt.Close(context.Background()))
	}()

	if err := rt.setupScene(c.Context); err != nil {
		return err
	}
	if c.Bool(dumpSceneFlag) {
		return rt.dumpScene(c.Context, c.App.Writer)
	}
	return nil
}

// RunAction sets up the scene and executes the first solution the configured source delivers.
func RunAction(c *cli.Context) (err error) {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, rt.Close(context.Background()))
	}()
	cfg := rt.cfg

	if err := rt.setupScene(c.Context); err != nil {
		return err
	}

	arm, err := fake.NewArm(cfg.PlanningGroup, rt.logger.Sublogger("arm"))
	if err != nil {
		return err
	}
	var execOpts []motion.Option
	if cfg.GoalTolerance != nil {
		execOpts = append(execOpts, motion.WithGoalTolerance(*cfg.GoalTolerance))
	}
	executor, err := motion.NewJointExecutor(cfg.PlanningGroup, arm, rt.logger.Sublogger("motion"), execOpts...)
	if err != nil {
		return err
	}

	var confirmer demo.Confirmer = demo.ConsoleConfirmer{}
	if c.Bool(yesFlag) || cfg.Confirm == config.ConfirmAuto {
		confirmer = demo.AutoConfirm
	}
	var opts []demo.ExecutorOption
	if cfg.StrictScene {
		opts = append(opts, demo.WithStrictScene())
	}

	bus := pubsub.NewBus[*solution.Solution](rt.logger.Sublogger("bus"))
	source, err := newSource(cfg, bus, rt)
	if err != nil {
		return err
	}
	listener := demo.NewSolutionExecutor(bus, cfg.Topic, executor, rt.store, confirmer, rt.logger.Sublogger("executor"), opts...)

	runCtx, cancel := context.WithCancel(c.Context)
	defer cancel()
	sourceErr := make(chan error, 1)
	workers := utils.NewStoppableWorkers(runCtx, func(ctx context.Context) {
		if err := source.Run(ctx); err != nil && ctx.Err() == nil {
			sourceErr <- err
			cancel()
		}
	})

	outcome, err := listener.Run(runCtx)
	workers.Stop()
	select {
	case srcErr := <-sourceErr:
		return errors.Wrap(srcErr, "solution source failed")
	default:
	}
	if outcome != nil {
		printf(c, "task %q: executed %d, skipped %d, scene diffs applied %d",
			outcome.TaskID, outcome.Executed, outcome.Skipped, outcome.DiffsApplied)
	}
	if err != nil {
		return err
	}
	if c.Bool(dumpSceneFlag) {
		return rt.dumpScene(c.Context, c.App.Writer)
	}
	return nil
}

func newSource(cfg *config.Config, bus *ingest.SolutionBus, rt *demoRuntime) (ingest.Source, error) {
	logger := rt.logger.Sublogger("ingest")
	switch cfg.Source.Type {
	case config.SourceRosbag:
		return ingest.NewBagSource(cfg.Source.Path, cfg.Source.Topic, bus, cfg.Topic, logger), nil
	case config.SourceDirectory:
		return ingest.NewDirSource(cfg.Source.Path, bus, cfg.Topic, logger), nil
	default:
		return nil, errors.New("no solution source configured, set source.type and source.path")
	}
}

// InspectAction prints a summary of every solution in a solution file or bag.
func InspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("inspect needs exactly one solution file or bag")
	}
	path := c.Args().First()

	var sols []*solution.Solution
	if strings.EqualFold(filepath.Ext(path), ".bag") {
		rb, err := ros.ReadBag(path)
		if err != nil {
			return err
		}
		printf(c, "topics:\n  %s", strings.Join(ros.Topics(rb), "\n  "))
		sols, err = ingest.BagSolutions(rb, c.String(topicFlag))
		if err != nil {
			return err
		}
	} else {
		sol, err := ros.ReadSolutionFile(path)
		if err != nil {
			return err
		}
		sols = append(sols, sol)
	}

	for _, sol := range sols {
		printf(c, "solution %q with %d subtrajectories", sol.TaskID, len(sol.SubTrajectories))
		printf(c, "%s", sol.Summary())
	}
	return nil
}

// printf prints a message with no decoration.
func printf(c *cli.Context, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(c.App.Writer, format+"\n", a...)
}
