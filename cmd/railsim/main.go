package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	dfworld "github.com/df-mc/dragonfly/server/world"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/rail"
	"github.com/oomph-ac/railcart/settings"
	"github.com/oomph-ac/railcart/train"
	"github.com/oomph-ac/railcart/world"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

const trackHeight = 64

// The following program runs a fixed-rate simulation of a few trains driving around a square loop of track.
func main() {
	path := flag.String("settings", "railsim.toml", "path to the settings file")
	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}

	s, err := readSettings(*path, log)
	if err != nil {
		log.Fatalf("error reading settings: %v", err)
	}
	log.Level = s.LogLevel()
	deadlock.Opts.Disable = !s.Debug.DeadlockDetection

	if s.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              s.Sentry.DSN,
			Environment:      s.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			log.Fatalf("error initialising sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if s.Debug.StatsAddress != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(s.Debug.StatsAddress))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	w := world.New(world.Config{
		Log:       log.WithField("component", "world"),
		LoadDelay: time.Duration(s.Simulation.ChunkLoadDelay),
	})
	buildLoop(w, s.Demo.LoopSize)

	sim := train.NewSimulation(w, s.Physics)
	sim.SetLogger(log.WithField("component", "train"))
	sim.Handle(logHandler{log: log})
	spawnDemoTrains(sim, s, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	run(ctx, w, sim, s, log)
	log.Info("simulation stopped")
}

// readSettings loads the settings file at the path passed, writing the default settings there first if it
// does not exist yet.
func readSettings(path string, log logrus.FieldLogger) (settings.Settings, error) {
	s, err := settings.Load(path)
	if !errors.Is(err, settings.ErrNotExist) {
		return s, err
	}
	if err := settings.SaveDefault(path); err != nil {
		return settings.Settings{}, err
	}
	log.Infof("created default settings at %s", path)
	return settings.Load(path)
}

// buildLoop lays a square loop of track with sides of the size passed, its north-west corner at the origin.
func buildLoop(w *world.World, size int) {
	for i := 1; i < size; i++ {
		w.SetRail(cube.Pos{i, trackHeight, 0}, rail.Regular(rail.ShapeEastWest))
		w.SetRail(cube.Pos{i, trackHeight, size}, rail.Regular(rail.ShapeEastWest))
		w.SetRail(cube.Pos{0, trackHeight, i}, rail.Regular(rail.ShapeNorthSouth))
		w.SetRail(cube.Pos{size, trackHeight, i}, rail.Regular(rail.ShapeNorthSouth))
	}
	w.SetRail(cube.Pos{0, trackHeight, 0}, rail.Regular(rail.ShapeCurveSouthEast))
	w.SetRail(cube.Pos{size, trackHeight, 0}, rail.Regular(rail.ShapeCurveSouthWest))
	w.SetRail(cube.Pos{size, trackHeight, size}, rail.Regular(rail.ShapeCurveNorthWest))
	w.SetRail(cube.Pos{0, trackHeight, size}, rail.Regular(rail.ShapeCurveNorthEast))
}

// spawnDemoTrains places the demo trains one after another on the northern side of the loop and sends them
// east. The first cart of every train is powered.
func spawnDemoTrains(sim *train.Simulation, s settings.Settings, log logrus.FieldLogger) {
	kinds := make([]entity.Kind, s.Demo.Carts)
	for i := range kinds {
		kinds[i] = entity.KindMinecart
	}
	if len(kinds) > 0 {
		kinds[0] = entity.KindPoweredMinecart
	}
	length := int(float64(len(kinds))*s.Physics.CartDistance) + 4

	for i := range s.Demo.Trains {
		x := 2 + i*length
		if x+length >= s.Demo.LoopSize {
			log.Warnf("only %d of %d demo trains fit on the loop", i, s.Demo.Trains)
			return
		}
		g, err := sim.Spawn(s.Train, cube.Pos{x, trackHeight, 0}, game.FaceEast, kinds...)
		if err != nil {
			log.WithError(err).Error("unable to spawn demo train")
			continue
		}
		g.SetForwardForce(s.Demo.Speed)
		g.Head().Refuel(3600)
		log.WithFields(logrus.Fields{"train": g.Name(), "carts": g.Len()}).Info("spawned demo train")
	}
}

// run ticks the world and the simulation at a fixed rate until the context passed is cancelled.
func run(ctx context.Context, w *world.World, sim *train.Simulation, s settings.Settings, log logrus.FieldLogger) {
	ticker := time.NewTicker(time.Second / time.Duration(s.Simulation.TicksPerSecond))
	defer ticker.Stop()
	report := time.NewTicker(time.Duration(s.Simulation.ReportInterval))
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick()
			sim.DoFixedTick()
		case <-report.C:
			w.CleanChunks(s.Simulation.ViewRadius, dfworld.ChunkPos{})
			groups := sim.Groups()
			log.WithFields(logrus.Fields{
				"tick":    sim.CurrentTick(),
				"trains":  len(groups),
				"offline": len(sim.Offline()),
			}).Info("simulation report")
			for _, g := range groups {
				head := g.Head()
				log.WithFields(logrus.Fields{
					"train":    g.Name(),
					"carts":    g.Len(),
					"position": head.Position(),
					"speed":    g.AverageForce(),
					"heading":  head.Heading().Direction,
				}).Debug("train status")
			}
		}
	}
}

// logHandler logs the topology changes of the trains in the simulation.
type logHandler struct {
	train.NopHandler
	log logrus.FieldLogger
}

func (h logHandler) HandleLink(_ *train.Context, a, b *train.Group) {
	h.log.WithFields(logrus.Fields{"train": a.Name(), "with": b.Name()}).Info("trains linked")
}

func (h logHandler) HandleSplit(g, created *train.Group) {
	h.log.WithFields(logrus.Fields{"train": g.Name(), "created": created.Name()}).Info("train split")
}

func (h logHandler) HandleUnload(g *train.Group) {
	h.log.WithField("train", g.Name()).Info("train unloaded")
}

func (h logHandler) HandleFailure(g *train.Group, err error) {
	h.log.WithField("train", g.Name()).WithError(err).Warn("train failed to tick")
}
