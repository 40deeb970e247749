package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/rmera/mrchem/mr"
)

func TestDefault(Te *testing.T) {
	C := Default()
	require.NoError(Te, C.Validate())
	o := C.Options(nil)
	def := mr.DefaultOptions()
	assert.Equal(Te, def.LargeModelChains, o.LargeModelChains)
	assert.Equal(Te, 26, o.LargeModelChains)
	assert.Equal(Te, 8, o.MinExtSeq)
	assert.Equal(Te, def.Potential, o.Potential)
	//the options do not share the maps of the configuration
	o.Potential[mr.Dist] = "biharmonic"
	assert.Equal(Te, "square", C.Engine.Potential[mr.Dist])

	D, err := Load("")
	require.NoError(Te, err)
	assert.Equal(Te, C, D)
}

func TestDecode(Te *testing.T) {
	in := `
engine:
  allow_zero_upper_limit: true
  large_model_chains: 40
  representative_model_id: 2
  potential:
    dist: log-harmonic
ccd_paths: [/data/ccd]
logging:
  level: debug
parallelism: 8
`
	C, err := Decode(strings.NewReader(in))
	require.NoError(Te, err)
	assert.True(Te, C.Engine.AllowZeroUpperLimit)
	assert.True(Te, C.Engine.OmitDistLimitOutlier)
	assert.Equal(Te, 40, C.Options(nil).LargeModelChains)
	assert.Equal(Te, "log-harmonic", C.Engine.Potential[mr.Dist])
	assert.Equal(Te, 2, C.ModelOptions().RepresentativeModelID)
	assert.Equal(Te, []string{"/data/ccd"}, C.CCDPaths)
	assert.Equal(Te, 8, C.Parallelism)
	assert.Equal(Te, "nm-res-sch", C.Engine.FileType)

	C, err = Decode(strings.NewReader(""))
	require.NoError(Te, err)
	assert.Equal(Te, Default(), C)
}

func TestInvalid(Te *testing.T) {
	for _, in := range []string{
		"parallelism: 0",
		"parallelism: 65",
		"logging: {level: chatty}",
		"engine: {large_model_chains: 0}",
		"engine: {potential: {nope: square}}",
		"engine: {average: {dist: r-12}}",
		"engine: {file_type: ''}",
		"ccd_paths: ['']",
		"no_such_key: 1",
	} {
		_, err := Decode(strings.NewReader(in))
		require.Error(Te, err, in)
		assert.True(Te, errors.Is(err, ErrInvalid), in)
	}
}

func TestLoad(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "mrinterp.yaml")
	require.NoError(Te, os.WriteFile(name, []byte("parallelism: 2\nlogging: {level: warn, json: true}\n"), 0o644))
	C, err := Load(name)
	require.NoError(Te, err)
	assert.Equal(Te, 2, C.Parallelism)

	log, err := C.Logger(false)
	require.NoError(Te, err)
	assert.False(Te, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(Te, log.Core().Enabled(zapcore.WarnLevel))
	log, err = C.Logger(true)
	require.NoError(Te, err)
	assert.True(Te, log.Core().Enabled(zapcore.DebugLevel))

	_, err = Load(filepath.Join(Te.TempDir(), "missing.yaml"))
	assert.Error(Te, err)
	assert.NotNil(Te, C.Dict())
}
