package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDefaultThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "railsim.toml")
	require.NoError(t, SaveDefault(path))
	assert.Error(t, SaveDefault(path))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, logrus.InfoLevel, s.LogLevel())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "railsim.toml")
	data := `
[physics]
step_threshold = 0.25

[simulation]
chunk_load_delay = "2s"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, s.Physics.StepThreshold)
	assert.Equal(t, DefaultSettings().Physics.CartDistance, s.Physics.CartDistance)
	assert.Equal(t, Duration(2*time.Second), s.Simulation.ChunkLoadDelay)
	assert.Equal(t, 20, s.Simulation.TicksPerSecond)
	assert.Equal(t, logrus.DebugLevel, s.LogLevel())
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "railsim.toml")

	require.NoError(t, os.WriteFile(path, []byte("[simulation]\nticks_per_second = 0\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[simulation]\nreport_interval = \"soon\"\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
