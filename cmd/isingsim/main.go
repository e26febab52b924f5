// Command isingsim runs the two-layer dynamic Markov network from a YAML
// configuration, stores the run, and exports trajectories, lattice graphs and
// scan curves.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rrtucci/ising-dbnet/config"
	"github.com/rrtucci/ising-dbnet/export"
	"github.com/rrtucci/ising-dbnet/network"
	"github.com/rrtucci/ising-dbnet/storage"
	"golang.org/x/term"
)

const defaultConfigPath = "isingsim.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:], out)
	case "run":
		return runRun(ctx, args[1:], out)
	case "scan":
		return runScan(ctx, args[1:], out)
	case "dot":
		return runDot(ctx, args[1:], out)
	case "runs":
		return runRuns(ctx, args[1:], out)
	case "serve":
		return runServe(ctx, args[1:], out)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: isingsim <init|run|scan|dot|runs|serve> [flags]", msg)
}

func runInit(_ context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("config", defaultConfigPath, "config file to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.InitConfig(*path); err != nil {
		return err
	}
	fmt.Fprintf(out, "config=%s\n", *path)
	return nil
}

// runFlags are the overrides shared by the simulating commands. Only flags
// given on the command line override the config.
type runFlags struct {
	fs            *flag.FlagSet
	configPath    *string
	steps         *int
	beta          *float64
	seed          *int64
	workers       *int
	outDir        *string
	priorSnapshot *string
	verbose       *bool
}

func addRunFlags(fs *flag.FlagSet) runFlags {
	return runFlags{
		fs:            fs,
		configPath:    fs.String("config", defaultConfigPath, "config file (defaults apply when missing)"),
		steps:         fs.Int("steps", 0, "override run.steps"),
		beta:          fs.Float64("beta", 0, "override model.beta"),
		seed:          fs.Int64("seed", 0, "override run.seed"),
		workers:       fs.Int("workers", 1, "override run.workers"),
		outDir:        fs.String("out", "", "override export.dir"),
		priorSnapshot: fs.String("prior-snapshot", "", "snapshot file whose pairs replace the prior X layer"),
		verbose:       fs.Bool("v", false, "log every step even when stderr is not a terminal"),
	}
}

// load reads the config and applies the flags that were set explicitly.
func (f runFlags) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(*f.configPath)
	if err != nil {
		return nil, err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "steps":
			cfg.Run.Steps = *f.steps
		case "beta":
			cfg.Model.Beta = *f.beta
		case "seed":
			cfg.Run.Seed = *f.seed
		case "workers":
			cfg.Run.Workers = *f.workers
		case "out":
			cfg.Export.Dir = *f.outDir
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// build creates the network and, with -prior-snapshot, replaces its prior.
func (f runFlags) build(cfg *config.Config, opts ...network.Option) (*network.Network, error) {
	sim, err := buildNetwork(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if *f.priorSnapshot == "" {
		return sim, nil
	}
	pairs, err := readSnapshotFile(*f.priorSnapshot)
	if err != nil {
		return nil, err
	}
	if err := sim.Restore(pairs); err != nil {
		return nil, fmt.Errorf("prior snapshot %s: %w", *f.priorSnapshot, err)
	}
	return sim, nil
}

func readSnapshotFile(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return storage.ReadSnapshot(f)
}

func (f runFlags) logSteps() bool {
	return *f.verbose || isTerminal(os.Stderr)
}

// isTerminal reports whether w is an *os.File attached to a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func buildNetwork(cfg *config.Config, opts ...network.Option) (*network.Network, error) {
	m, err := cfg.BuildModel()
	if err != nil {
		return nil, err
	}
	tb, err := cfg.BuildTopology()
	if err != nil {
		return nil, err
	}
	nc, err := cfg.NetworkConfig()
	if err != nil {
		return nil, err
	}
	return network.New(tb, m, nc, opts...)
}

func logStep(s network.StepStats) {
	log.Printf("[isingsim] step=%d magnetization=%.6f efficiency=%s entropy=%.6f cond_info=%.6f",
		s.Step, s.Magnetization, s.EfficiencyString(), s.AvgEntropy, s.AvgCondInfo)
}

func openStore(ctx context.Context, kind, path string) (storage.Store, error) {
	store, err := storage.NewStore(kind, path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return store, nil
}

func runRun(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	rf := addRunFlags(fs)
	storeKind := fs.String("store", "", "override storage.backend: memory|sqlite")
	dbPath := fs.String("db-path", "", "override storage.path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := rf.load()
	if err != nil {
		return err
	}
	if *storeKind != "" {
		cfg.Storage.Backend = *storeKind
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	store, err := openStore(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	var opts []network.Option
	if rf.logSteps() {
		opts = append(opts, network.WithOnStep(logStep))
	}
	sim, err := rf.build(cfg, opts...)
	if err != nil {
		return err
	}
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	rec := storage.NewRunRecord(cfg.Params(sim.Size()), res, sim.Snapshot())
	if err := store.SaveRun(ctx, rec); err != nil {
		return err
	}
	if err := exportRun(ctx, cfg, sim, rec); err != nil {
		return err
	}

	mag := sim.Magnetization()
	fmt.Fprintf(out, "run_id=%s reason=%s steps=%d magnetization=%.6f\n", rec.ID, res.Reason, res.StepsRun, mag)
	return nil
}

// exportRun writes the configured artifacts under export.dir/<run id>.
func exportRun(ctx context.Context, cfg *config.Config, sim *network.Network, rec storage.RunRecord) error {
	e := cfg.Export
	dir := filepath.Join(e.Dir, rec.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	if err := writeFile(filepath.Join(dir, "record.json"), func(w io.Writer) error {
		data, err := storage.EncodeRunRecord(rec)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "snapshot.txt"), func(w io.Writer) error {
		return storage.WriteSnapshot(w, rec.Final)
	}); err != nil {
		return err
	}
	if e.CSV {
		if err := writeFile(filepath.Join(dir, "trajectory.csv"), func(w io.Writer) error {
			return export.WriteTrajectoryCSV(w, rec.Trajectory, nil)
		}); err != nil {
			return err
		}
	}
	if e.SVG && len(rec.Trajectory) > 0 {
		pts := make([]export.CurvePoint, len(rec.Trajectory))
		for i, s := range rec.Trajectory {
			pts[i] = export.CurvePoint{Param: float64(s.Step), X: float64(s.Step), Y: s.Magnetization}
		}
		svg := export.DefaultSVGConfig()
		svg.Title = "magnetization vs step, " + rec.Params.Topology
		svg.XLabel, svg.YLabel = "step", "mag"
		if err := writeFile(filepath.Join(dir, "magnetization.svg"), func(w io.Writer) error {
			return export.WriteCurveSVG(w, pts, svg)
		}); err != nil {
			return err
		}
	}
	if e.DOT {
		dotPath := filepath.Join(dir, "lattice.dot")
		if err := writeFile(dotPath, func(w io.Writer) error {
			return export.WriteDOT(w, export.Views(sim, nil), nil)
		}); err != nil {
			return err
		}
		if e.Render {
			outPath := filepath.Join(dir, "lattice."+e.Format)
			if err := export.Render(ctx, e.Engine, dotPath, outPath, e.Format); err != nil {
				if !errors.Is(err, export.ErrEngineNotFound) {
					return err
				}
				log.Printf("[isingsim] skipping render: %v", err)
			}
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func runScan(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	rf := addRunFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := rf.load()
	if err != nil {
		return err
	}
	if cfg.Model.JJ == 0 {
		return errors.New("scan needs model.jj != 0 to vary beta_hat = beta*jj")
	}

	var mag, info []export.CurvePoint
	for _, bh := range cfg.BetaHats() {
		cfg.Model.Beta = bh / cfg.Model.JJ
		if cfg.Model.Beta < 0 {
			return fmt.Errorf("beta_hat=%v with jj=%v gives negative beta", bh, cfg.Model.JJ)
		}
		sim, err := rf.build(cfg)
		if err != nil {
			return err
		}
		res, err := sim.Run(ctx)
		if err != nil {
			return err
		}
		m := sim.Magnetization()
		mag = append(mag, export.CurvePoint{Param: bh, X: bh, Y: m})
		if last, ok := res.Last(); ok {
			info = append(info, export.CurvePoint{Param: bh, X: last.AvgEntropy, Y: last.AvgCondInfo})
		}
		if rf.logSteps() {
			log.Printf("[isingsim] beta_hat=%.4f reason=%s steps=%d", bh, res.Reason, res.StepsRun)
		}
		fmt.Fprintf(out, "beta_hat=%.4f magnetization=%.6f\n", bh, m)
	}

	dir := cfg.Export.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "scan.csv"), func(w io.Writer) error {
		return export.WriteCurveCSV(w, mag, "beta_hat", "mag", nil)
	}); err != nil {
		return err
	}
	if !cfg.Export.SVG {
		return nil
	}

	magSVG := export.DefaultSVGConfig()
	magSVG.Title = "magnetization vs beta_hat"
	magSVG.XLabel, magSVG.YLabel = "beta_hat", "mag"
	magSVG.Marker, magSVG.MarkerX = true, 1
	if err := writeFile(filepath.Join(dir, "scan_magnetization.svg"), func(w io.Writer) error {
		return export.WriteCurveSVG(w, mag, magSVG)
	}); err != nil {
		return err
	}

	infoSVG := export.DefaultSVGConfig()
	infoSVG.Title = "average conditional information vs entropy"
	infoSVG.XLabel, infoSVG.YLabel = "av_ent", "av_cond_info"
	infoSVG.Diagonal, infoSVG.LabelEnds = true, true
	return writeFile(filepath.Join(dir, "scan_info.svg"), func(w io.Writer) error {
		return export.WriteCurveSVG(w, info, infoSVG)
	})
}

func runDot(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dot", flag.ContinueOnError)
	rf := addRunFlags(fs)
	dotPath := fs.String("file", "lattice.dot", "DOT output file")
	render := fs.Bool("render", false, "render with export.engine into export.format")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := rf.load()
	if err != nil {
		return err
	}
	sim, err := rf.build(cfg)
	if err != nil {
		return err
	}
	if _, err := sim.Run(ctx); err != nil {
		return err
	}
	if err := writeFile(*dotPath, func(w io.Writer) error {
		return export.WriteDOT(w, export.Views(sim, nil), nil)
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "dot=%s\n", *dotPath)

	if *render {
		outPath := *dotPath + "." + cfg.Export.Format
		if err := export.Render(ctx, cfg.Export.Engine, *dotPath, outPath, cfg.Export.Format); err != nil {
			return err
		}
		fmt.Fprintf(out, "image=%s\n", outPath)
	}
	return nil
}

func runRuns(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "config file (defaults apply when missing)")
	storeKind := fs.String("store", "", "override storage.backend: memory|sqlite")
	dbPath := fs.String("db-path", "", "override storage.path")
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	show := fs.String("show", "", "print the stored record of one run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return err
	}
	if *storeKind != "" {
		cfg.Storage.Backend = *storeKind
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	store, err := openStore(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if *show != "" {
		rec, ok, err := store.GetRun(ctx, *show)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("run %s not found", *show)
		}
		data, err := storage.EncodeRunRecord(rec)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) > *limit {
		runs = runs[len(runs)-*limit:]
	}
	if *jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "run_id=%s created_at=%s steps=%d reason=%s magnetization=%.6f\n",
			r.ID, r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), r.StepsRun, r.Reason, r.Magnetization)
	}
	return nil
}
