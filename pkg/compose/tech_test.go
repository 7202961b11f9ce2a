package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonforge/piclet/pkg/errors"
)

func TestDefaultTechDie(t *testing.T) {
	die := DefaultTech().Die()
	assert.Equal(t, int64(2753330), die.Width())
	assert.Equal(t, int64(2753340), die.Height())
	assert.Equal(t, int64(0), die.CenterX())
}

func TestWaveguideFor(t *testing.T) {
	tech := DefaultTech()

	wg, ok := tech.WaveguideFor(1310)
	require.True(t, ok)
	assert.Equal(t, int64(800), wg.Width)
	assert.Equal(t, int64(60000), wg.Radius)

	_, ok = tech.WaveguideFor(980)
	assert.False(t, ok)
}

func TestLoadTechOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tech.toml")
	require.NoError(t, os.WriteFile(path, []byte("die_width = 1000000\n"), 0o644))

	tech, err := LoadTech(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), tech.DieWidth)
	// Untouched fields keep their defaults.
	assert.Equal(t, int64(2753340), tech.DieHeight)
	assert.Equal(t, int64(127000), tech.FiberPitch)
}

func TestLoadTechMissingFile(t *testing.T) {
	_, err := LoadTech(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeIO, errors.GetCode(err))
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Name: "alice"}
	require.NoError(t, o.ValidateAndSetDefaults())

	assert.Equal(t, DefaultWavelength, o.Wavelength)
	assert.Equal(t, DefaultMarker, o.Marker)
	assert.Equal(t, int64(2753330), o.Tech.DieWidth)
	assert.NotNil(t, o.Library)
	assert.NotNil(t, o.Logger)
}
