package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"google.golang.org/protobuf/encoding/protojson"

	"go.viam.com/pourdemo/config"
	"go.viam.com/pourdemo/demo"
	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/meshes"
	"go.viam.com/pourdemo/planningscene"
	"go.viam.com/pourdemo/referenceframe"
	"go.viam.com/pourdemo/utils"
)

// demoRuntime holds what every scene command needs: the config, the logger and the scene.
type demoRuntime struct {
	cfg          *config.Config
	logger       logging.Logger
	fileAppender *logging.FileAppender
	store        planningscene.Store
	workers      *utils.StoppableWorkers
}

func newRuntime(c *cli.Context) (*demoRuntime, error) {
	cfgPath := c.String(configFlag)
	if cfgPath == "" {
		return nil, errors.Errorf("a config file is required, pass one with --%s", configFlag)
	}
	cfg, err := config.Read(cfgPath)
	if err != nil {
		return nil, err
	}

	rt := &demoRuntime{cfg: cfg}
	rt.logger, rt.fileAppender, err = newLogger(cfg, c.Bool(debugFlag), c.App.ErrWriter)
	if err != nil {
		return nil, err
	}

	rt.store = planningscene.NewStore(rt.logger.Sublogger("scene"))
	guard := utils.NewGuard(func() {
		goutils.UncheckedError(rt.store.Close(context.Background()))
		if rt.fileAppender != nil {
			goutils.UncheckedError(rt.fileAppender.Close())
		}
	})
	defer guard.OnFail()
	changes, err := rt.store.StreamChanges(c.Context)
	if err != nil {
		return nil, err
	}
	changeLogger := rt.logger.Sublogger("scene.changes")
	rt.workers = utils.NewStoppableWorkers(context.Background(), func(ctx context.Context) {
		// ends when the store closes the stream
		for change := range changes {
			changeLogger.Debugw("scene changed", "change", change.Type.String(), "id", change.ID, "link", change.LinkName)
		}
	})
	rt.logger.Debugw("config loaded", "path", cfg.ConfigFilePath, "topic", cfg.Topic, "group", cfg.PlanningGroup.Name)
	guard.Success()
	return rt, nil
}

// newLogger builds the root logger writing to errOut and, when configured, a rotating file.
func newLogger(cfg *config.Config, debug bool, errOut io.Writer) (logging.Logger, *logging.FileAppender, error) {
	logger := logging.NewBlankLogger("pourdemo")
	logger.AddAppender(logging.NewWriterAppender(errOut))
	var fileAppender *logging.FileAppender
	if cfg.Log.File != "" {
		fileAppender = logging.NewFileAppender(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
		logger.AddAppender(fileAppender)
	}
	level := cfg.Log.LogLevel()
	if debug {
		level = logging.DEBUG
	}
	logger.SetLevel(level)
	if err := logging.GlobalRegistry().UpdateConfig(cfg.Log.Patterns, level, logger); err != nil {
		if fileAppender != nil {
			err = multierr.Combine(err, fileAppender.Close())
		}
		return nil, nil, err
	}
	return logger, fileAppender, nil
}

func (rt *demoRuntime) loader() *meshes.FileLoader {
	return meshes.NewFileLoader(meshes.Resolvers{
		meshes.PackageMap(rt.cfg.Packages),
		meshes.NewSearchPath(rt.cfg.PackagePath),
		meshes.NewSearchPath(os.Getenv("ROS_PACKAGE_PATH")),
	}, rt.logger.Sublogger("meshes"))
}

func (rt *demoRuntime) setupScene(ctx context.Context) error {
	scene := demo.NewSceneInitializer(rt.store, rt.loader(), rt.logger.Sublogger("setup"))
	if err := scene.SetupTable(ctx, rt.cfg.Scene.Tabletop.PoseInFrame()); err != nil {
		return err
	}
	if err := scene.SetupObjects(ctx,
		rt.cfg.Scene.Bottle.PoseInFrame(), rt.cfg.Scene.Glass.PoseInFrame(),
		rt.cfg.Scene.BottleMesh, rt.cfg.Scene.GlassMesh,
	); err != nil {
		return err
	}
	ids, err := rt.store.ObjectIDs(ctx)
	if err != nil {
		return err
	}
	rt.logger.Infow("scene ready", "objects", ids)
	return nil
}

func (rt *demoRuntime) dumpScene(ctx context.Context, w io.Writer) error {
	ws, err := planningscene.ToWorldState(ctx, rt.store)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(referenceframe.WorldStateToProtobuf(ws))
	if err != nil {
		return errors.Wrap(err, "encoding world state")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (rt *demoRuntime) Close(ctx context.Context) error {
	err := rt.store.Close(ctx)
	rt.workers.Stop()
	err = multierr.Combine(err, rt.logger.Sync())
	if rt.fileAppender != nil {
		err = multierr.Combine(err, rt.fileAppender.Close())
	}
	return err
}
