// Package config holds the settings of an interpretation run, read from a
// YAML file and checked before use.
package config

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/ccd"
	"github.com/rmera/mrchem/mr"
	"github.com/rmera/mrchem/star"
)

// ErrInvalid is returned, wrapped, for configurations that fail validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Engine tunes the interpretation.
type Engine struct {
	OmitDistLimitOutlier   bool              `yaml:"omit_dist_limit_outlier"`
	AllowZeroUpperLimit    bool              `yaml:"allow_zero_upper_limit"`
	LargeModelChains       int               `yaml:"large_model_chains" validate:"gte=1"`
	MinExtSeqForAtomSelErr int               `yaml:"min_ext_seq_for_atom_sel_err" validate:"gte=0"`
	FileType               string            `yaml:"file_type" validate:"required"`
	EntryID                string            `yaml:"entry_id" validate:"required"`
	RepresentativeModelID  int               `yaml:"representative_model_id" validate:"gte=0"`
	RepresentativeAltID    string            `yaml:"representative_alt_id" validate:"omitempty,max=4"`
	Potential              map[string]string `yaml:"potential" validate:"dive,keys,subtype,endkeys,oneof=square log-harmonic parabolic biharmonic upper-bound-parabolic lower-bound-parabolic upper-bound-parabolic-linear lower-bound-parabolic-linear"`
	Average                map[string]string `yaml:"average" validate:"dive,keys,subtype,endkeys,oneof=r-6 r-3 sum center"`
}

// Logging selects the level and encoding of the logs.
type Logging struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Config is the whole configuration.
type Config struct {
	Engine      Engine   `yaml:"engine"`
	CCDPaths    []string `yaml:"ccd_paths" validate:"dive,required"`
	Logging     Logging  `yaml:"logging"`
	Parallelism int      `yaml:"parallelism" validate:"gte=1,lte=64"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("subtype", func(fl validator.FieldLevel) bool {
		return slices.Contains(star.Subtypes(), fl.Field().String())
	})
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	o := mr.DefaultOptions()
	return &Config{
		Engine: Engine{
			OmitDistLimitOutlier:   o.OmitDistLimitOutlier,
			AllowZeroUpperLimit:    o.AllowZeroUpperLimit,
			LargeModelChains:       o.LargeModelChains,
			MinExtSeqForAtomSelErr: o.MinExtSeq,
			FileType:               o.FileType,
			EntryID:                o.EntryID,
			Potential:              maps.Clone(o.Potential),
			Average:                maps.Clone(o.Average),
		},
		Logging:     Logging{Level: "info"},
		Parallelism: 4,
	}
}

// Validate checks the configuration.
func (C *Config) Validate() error {
	if err := validate.Struct(C); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Decode reads a configuration from in. Keys missing from the stream keep
// their default values; unknown keys are an error.
func Decode(in io.Reader) (*Config, error) {
	C := Default()
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(C); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := C.Validate(); err != nil {
		return nil, err
	}
	return C, nil
}

// Load reads the configuration file name. An empty name gives the defaults.
func Load(name string) (*Config, error) {
	if name == "" {
		return Default(), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	C, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return C, nil
}

// Options converts the engine settings into options for mr.NewContext.
func (C *Config) Options(log *zap.Logger) mr.Options {
	e := C.Engine
	return mr.Options{
		OmitDistLimitOutlier: e.OmitDistLimitOutlier,
		AllowZeroUpperLimit:  e.AllowZeroUpperLimit,
		LargeModelChains:     e.LargeModelChains,
		MinExtSeq:            e.MinExtSeqForAtomSelErr,
		FileType:             e.FileType,
		EntryID:              e.EntryID,
		Potential:            maps.Clone(e.Potential),
		Average:              maps.Clone(e.Average),
		Logger:               log,
	}
}

// ModelOptions selects the representative model and alternate location.
func (C *Config) ModelOptions() chem.ModelOptions {
	return chem.ModelOptions{RepresentativeModelID: C.Engine.RepresentativeModelID, RepresentativeAltID: C.Engine.RepresentativeAltID}
}

// Dict returns a component dictionary searching the configured paths.
func (C *Config) Dict() *ccd.Dict {
	return ccd.New(C.CCDPaths...)
}

// Logger builds the production logger for the configured level. verbose
// forces the debug level.
func (C *Config) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if !C.Logging.JSON {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	lvl, err := zapcore.ParseLevel(C.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
