package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	chem "github.com/rmera/mrchem"
	"github.com/rmera/mrchem/ccd"
	"github.com/rmera/mrchem/chemjson"
	"github.com/rmera/mrchem/config"
	"github.com/rmera/mrchem/mr"
	"github.com/rmera/mrchem/schrodinger"
)

// interp holds what the passes over every file share. The model and the
// dictionary are only read by the contexts.
type interp struct {
	cfg   *config.Config
	log   *zap.Logger
	model *chem.Model
	dict  *ccd.Dict
}

func newInterp() (*interp, error) {
	S, err := chem.PDBxFileRead(modelFile)
	if err != nil {
		return nil, fmt.Errorf("reading the model: %w", err)
	}
	M, err := chem.BuildModel(S, cfg.ModelOptions())
	if err != nil {
		return nil, fmt.Errorf("building the model: %w", err)
	}
	logger.Info("model loaded", zap.String("file", modelFile), zap.Int("chains", M.NumChains()))
	return &interp{cfg: cfg, log: logger, model: M, dict: cfg.Dict()}, nil
}

// pass interprets the entities once.
func (I *interp) pass(name string, ents []*schrodinger.Entity, reasons *mr.Reasons) *mr.Result {
	C := mr.NewContext(I.model, I.dict, I.cfg.Options(I.log), reasons)
	log := I.log.With(zap.String("file", name))
	res, err := schrodinger.NewListener(C, log).Run(ents)
	if err != nil {
		log.Warn("entities skipped", zap.Error(err))
	}
	log.Info("pass done", zap.String("run_id", res.RunID), zap.Int("warnings", len(res.Warnings)), zap.Strings("reasons", res.Reasons.Keys()))
	return res
}

// writeStar writes the lists of a result as NMR-STAR saveframes.
func writeStar(w io.Writer, res *mr.Result, entryID string) error {
	for _, l := range res.Lists {
		if err := l.Saveframe(entryID).Write(w); err != nil {
			return err
		}
	}
	return nil
}

func base(name string) string {
	b := filepath.Base(name)
	for _, ext := range []string{".gz", ".zst", ".jsonl", ".json", ".yaml", ".yml"} {
		b = strings.TrimSuffix(b, ext)
	}
	return b
}

func create(name string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return fill(f)
}

func sendReport(J *chemjson.Report) func(io.Writer) error {
	return func(w io.Writer) error {
		if jerr := J.Send(w); jerr != nil {
			return jerr
		}
		return nil
	}
}

// file interprets one file, writing <dir>/<name>.str and <dir>/<name>.json.
func (I *interp) file(name, dir string) error {
	ents, err := chemjson.ReadEntities(name)
	if err != nil {
		return err
	}
	res := I.pass(name, ents, nil)
	b := filepath.Join(dir, base(name))
	if err := create(b+".str", func(w io.Writer) error { return writeStar(w, res, I.cfg.Engine.EntryID) }); err != nil {
		return err
	}
	return create(b+".json", sendReport(chemjson.NewReport(name, 1, res)))
}

// batch interprets the files in parallel, one context each. The first
// error stops the files not yet started.
func (I *interp) batch(ctx context.Context, files []string, dir string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(I.cfg.Parallelism)
	for _, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := I.file(name, dir); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// reparse runs a first pass and, if it produced reasons, a second one with
// them. It returns the results of the passes run.
func (I *interp) reparse(name string) ([]*mr.Result, error) {
	ents, err := chemjson.ReadEntities(name)
	if err != nil {
		return nil, err
	}
	ret := []*mr.Result{I.pass(name, ents, nil)}
	if R := ret[0].Reasons; !R.Empty() {
		I.log.Info("reparsing", zap.String("file", name), zap.Strings("reasons", R.Keys()))
		ret = append(ret, I.pass(name, ents, R))
	}
	return ret, nil
}

func readReasons(name string) (*mr.Reasons, error) {
	if name == "" {
		return nil, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	R, jerr := chemjson.DecodeReasons(f)
	if jerr != nil {
		jerr.Decorate(name)
		return nil, jerr
	}
	return R, nil
}

func starOut(cmd *cobra.Command, name string, res *mr.Result) error {
	if outDir == "" {
		return writeStar(cmd.OutOrStdout(), res, cfg.Engine.EntryID)
	}
	return create(filepath.Join(outDir, base(name)+".str"), func(w io.Writer) error { return writeStar(w, res, cfg.Engine.EntryID) })
}

func runFile(cmd *cobra.Command, args []string) error {
	I, err := newInterp()
	if err != nil {
		return err
	}
	R, err := readReasons(reasonsFile)
	if err != nil {
		return err
	}
	ents, err := chemjson.ReadEntities(args[0])
	if err != nil {
		return err
	}
	res := I.pass(args[0], ents, R)
	if err := starOut(cmd, args[0], res); err != nil {
		return err
	}
	if reportFile != "" {
		pass := 1
		if R != nil {
			pass = 2
		}
		return create(reportFile, sendReport(chemjson.NewReport(args[0], pass, res)))
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	if outDir == "" {
		return fmt.Errorf("batch needs an output directory (--out)")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	I, err := newInterp()
	if err != nil {
		return err
	}
	return I.batch(cmd.Context(), args, outDir)
}

func runReparse(cmd *cobra.Command, args []string) error {
	I, err := newInterp()
	if err != nil {
		return err
	}
	results, err := I.reparse(args[0])
	if err != nil {
		return err
	}
	if saveReasons != "" {
		err := create(saveReasons, func(w io.Writer) error {
			if jerr := chemjson.EncodeReasons(results[0].Reasons, w); jerr != nil {
				return jerr
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	if err := starOut(cmd, args[0], results[len(results)-1]); err != nil {
		return err
	}
	if reportFile == "" {
		return nil
	}
	reports := make([]*chemjson.Report, len(results))
	for i, res := range results {
		reports[i] = chemjson.NewReport(args[0], i+1, res)
	}
	return create(reportFile, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	})
}
