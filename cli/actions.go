package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/dexterity/config"
	"go.viam.com/dexterity/export"
	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/logging"
	"go.viam.com/dexterity/plotting"
	"go.viam.com/dexterity/sweep"
	"go.viam.com/dexterity/workspace"
)

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("wsindex")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(FlagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.INFO)
	}
	return logger
}

func readConfig(c *cli.Context) (*config.AnalysisConfig, error) {
	path := c.String(FlagConfig)
	if path == "" {
		return nil, errors.Errorf("--%s is required", FlagConfig)
	}
	cfg, err := config.Read(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func printf(c *cli.Context, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(c.App.Writer, format, a...)
}

// GlobalIndexAction runs the global index estimation described by the config file.
func GlobalIndexAction(c *cli.Context) (err error) {
	cfg, err := readConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet(FlagMetric) {
		cfg.GlobalIndex.Metric = c.String(FlagMetric)
	}
	if c.IsSet(FlagAxes) {
		cfg.GlobalIndex.Axes = kinematics.Axes(c.String(FlagAxes))
	}
	if c.IsSet(FlagNormalized) {
		cfg.GlobalIndex.Normalized = c.Bool(FlagNormalized)
	}
	if c.IsSet(FlagSeed) {
		cfg.Seed = c.Int64(FlagSeed)
	}
	for flag, dst := range map[string]*string{
		FlagCSV:    &cfg.Export.CSV,
		FlagSQLite: &cfg.Export.SQLite,
		FlagPlot:   &cfg.Export.Plot,
	} {
		if c.IsSet(flag) {
			*dst = c.Path(flag)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(c)
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()
	arm, err := cfg.Arm()
	if err != nil {
		return err
	}
	projection, err := plotting.ParseProjection(cfg.Export.Projection)
	if err != nil {
		return err
	}
	ws, err := workspace.NewWorkSpace(arm,
		workspace.WithLogger(logger),
		workspace.WithSeed(cfg.Seed),
		workspace.WithPlotter(plotting.NewWorkspacePlotter(projection)),
	)
	if err != nil {
		return err
	}

	res, err := ws.GlobalIndex(c.Context, cfg.GlobalIndex)
	if err != nil {
		return err
	}
	printf(c, "robot:          %s\n", arm.Name())
	printf(c, "metric:         %s (%s axes)\n", cfg.GlobalIndex.Metric, cfg.GlobalIndex.Axes)
	printf(c, "global index:   %.6g\n", res.Value)
	printf(c, "status:         %s after %d iterations\n", res.Status, res.Iterations)
	printf(c, "samples:        %d\n", res.RowCount)
	printf(c, "relative error: %.3g\n", res.RelativeError)
	printf(c, "elapsed:        %s\n", res.Elapsed)
	if summary, err := ws.Summarize(cfg.GlobalIndex.Metric); err == nil {
		printf(c, "%s\n", summary)
	}

	return exportResults(c.Context, c, cfg, ws, res)
}

func exportResults(
	ctx context.Context,
	c *cli.Context,
	cfg *config.AnalysisConfig,
	ws *workspace.WorkSpace,
	res *workspace.Result,
) error {
	var err error
	if cfg.Export.CSV != "" {
		if csvErr := export.WriteCSVFile(cfg.Export.CSV, ws.Store()); csvErr != nil {
			multierr.AppendInto(&err, errors.Wrap(csvErr, "writing csv"))
		} else {
			printf(c, "samples written to %s\n", cfg.Export.CSV)
		}
	}
	if cfg.Export.SQLite != "" {
		multierr.AppendInto(&err, saveRun(ctx, c, cfg.Export.SQLite, ws))
	}
	if cfg.Export.Plot != "" {
		if plotErr := ws.Plot(cfg.GlobalIndex.Metric, cfg.Export.Plot); plotErr != nil {
			multierr.AppendInto(&err, errors.Wrap(plotErr, "plotting workspace"))
		} else {
			printf(c, "workspace plot saved to %s\n", cfg.Export.Plot)
		}
	}
	if cfg.Export.ConvergencePlot != "" {
		if plotErr := plotting.PlotConvergence(res, cfg.Export.ConvergencePlot); plotErr != nil {
			multierr.AppendInto(&err, errors.Wrap(plotErr, "plotting convergence"))
		} else {
			printf(c, "convergence plot saved to %s\n", cfg.Export.ConvergencePlot)
		}
	}
	return err
}

func saveRun(ctx context.Context, c *cli.Context, path string, ws *workspace.WorkSpace) (err error) {
	db, err := export.OpenDB(path)
	if err != nil {
		return errors.Wrap(err, "opening sqlite database")
	}
	defer func() {
		err = multierr.Combine(err, db.Close())
	}()
	id, err := db.SaveStore(ctx, ws.Robot().Name(), ws.Store())
	if err != nil {
		return errors.Wrap(err, "saving run")
	}
	printf(c, "samples saved to %s as run %s\n", path, id)
	return nil
}

// ListMetricsAction prints the built-in metrics and their descriptions.
func ListMetricsAction(c *cli.Context) error {
	registry := workspace.NewRegistry()
	descriptions := registry.Describe()
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Description"})
	for _, name := range registry.Names() {
		t.AppendRow(table.Row{name, descriptions[name]})
	}
	printf(c, "%s\n", t.Render())
	return nil
}

// SweepAction evaluates the global index over the sweep grid of the config file.
func SweepAction(c *cli.Context) error {
	cfg, err := readConfig(c)
	if err != nil {
		return err
	}
	if cfg.Sweep == nil {
		return errors.New("config has no sweep section")
	}
	if c.IsSet(FlagCSV) {
		cfg.Sweep.CSV = c.Path(FlagCSV)
	}
	if c.IsSet(FlagPlot) {
		cfg.Sweep.Plot = c.Path(FlagPlot)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	vars, err := cfg.Sweep.ToVariables()
	if err != nil {
		return err
	}

	logger := newLogger(c)
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()
	sessionLogger := logger.Sublogger("session")
	if !c.Bool(FlagDebug) {
		// per-point sessions only report problems
		sessionLogger.SetLevel(logging.WARN)
	}
	study, err := cfg.Study(workspace.NewRegistry(), sessionLogger)
	if err != nil {
		return err
	}
	results, err := sweep.Run(c.Context, vars, study.Objective(), sweep.Options{
		Parallelism: cfg.Sweep.Parallelism,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	printf(c, "%s\n", results.Table(cfg.Sweep.Minimize))
	if best, ok := results.Best(cfg.Sweep.Minimize); ok {
		printf(c, "best: %v -> %.6g\n", best.Point, best.Objective)
	} else {
		printf(c, "no design point succeeded\n")
	}
	if cfg.Sweep.CSV != "" {
		if err := writeSweepCSV(cfg.Sweep.CSV, results); err != nil {
			return err
		}
	}
	if cfg.Sweep.Plot != "" {
		x, group := cfg.Sweep.PlotAxes()
		if err := plotting.PlotSweep(results, x, group, cfg.Sweep.Plot); err != nil {
			return errors.Wrap(err, "plotting sweep")
		}
		logger.Infow("wrote sweep plot", "path", cfg.Sweep.Plot)
	}
	return nil
}

func writeSweepCSV(path string, results *sweep.Results) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return results.WriteCSV(f)
}
