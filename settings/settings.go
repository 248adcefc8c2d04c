package settings

import (
	"errors"
	"os"
	"time"

	"github.com/oomph-ac/railcart/oerror"
	"github.com/oomph-ac/railcart/train"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// ErrNotExist is returned by Load if the settings file does not exist.
var ErrNotExist = oerror.New("settings file doesn't exist")

// Settings contains everything that can be configured for a railsim instance.
type Settings struct {
	// Physics is the tuning shared by all trains of the simulation.
	Physics train.Config `toml:"physics"`
	// Train holds the properties new trains start with.
	Train train.Properties `toml:"train"`

	Simulation struct {
		// TicksPerSecond is the rate at which the simulation is ticked.
		TicksPerSecond int `toml:"ticks_per_second"`
		// ChunkLoadDelay is how long a chunk takes to load after a train asked for it.
		ChunkLoadDelay Duration `toml:"chunk_load_delay"`
		// ReportInterval is how often a summary of the running trains is logged.
		ReportInterval Duration `toml:"report_interval"`
		// ViewRadius is the radius in chunks around the origin that is kept loaded. Chunks further out are
		// unloaded unless a train holds them.
		ViewRadius int32 `toml:"view_radius"`
	} `toml:"simulation"`

	Logging struct {
		Level string `toml:"level"`
	} `toml:"logging"`

	Sentry struct {
		// DSN enables crash reporting when not empty.
		DSN         string `toml:"dsn"`
		Environment string `toml:"environment"`
	} `toml:"sentry"`

	Debug struct {
		// StatsAddress is the address the runtime statistics viewer listens on. Empty disables it.
		StatsAddress string `toml:"stats_address"`
		// DeadlockDetection enables lock ordering checks on the world.
		DeadlockDetection bool `toml:"deadlock_detection"`
	} `toml:"debug"`

	Demo struct {
		// Trains is the amount of trains placed on the demo loop.
		Trains int `toml:"trains"`
		// Carts is the amount of carts of each demo train.
		Carts int `toml:"carts"`
		// LoopSize is the length in blocks of each side of the square demo track.
		LoopSize int `toml:"loop_size"`
		// Speed is the forward force the demo trains are launched with.
		Speed float64 `toml:"speed"`
	} `toml:"demo"`
}

// Duration is a time.Duration written as a string such as "50ms" in the settings file.
type Duration time.Duration

// MarshalText ...
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText ...
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return oerror.New("invalid duration %q: %v", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// LogLevel returns the configured log level, falling back to info if it cannot be parsed.
func (s Settings) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(s.Logging.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{Physics: train.DefaultConfig()}
	s.Train = train.DefaultProperties(s.Physics)

	s.Simulation.TicksPerSecond = 20
	s.Simulation.ChunkLoadDelay = Duration(100 * time.Millisecond)
	s.Simulation.ReportInterval = Duration(5 * time.Second)
	s.Simulation.ViewRadius = 8

	s.Logging.Level = "info"
	s.Sentry.Environment = "development"
	s.Debug.StatsAddress = "localhost:18066"

	s.Demo.Trains = 3
	s.Demo.Carts = 4
	s.Demo.LoopSize = 48
	s.Demo.Speed = 0.3
	return s
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return oerror.New("settings file %s already exists", path)
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return oerror.New("failed encoding default settings: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oerror.New("failed creating settings file: %v", err)
	}
	return nil
}

// Load will load the settings from your settings file, and return ErrNotExist if the file does not exist.
// Values missing from the file keep their default.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Settings{}, ErrNotExist
	} else if err != nil {
		return Settings{}, oerror.New("error reading settings: %v", err)
	}

	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, oerror.New("error decoding settings: %v", err)
	}
	if s.Simulation.TicksPerSecond <= 0 {
		return Settings{}, oerror.New("ticks_per_second must be positive, got %d", s.Simulation.TicksPerSecond)
	}
	return s, nil
}
