// Package cli contains the wsindex command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	FlagConfig     = "config"
	FlagDebug      = "debug"
	FlagMetric     = "metric"
	FlagAxes       = "axes"
	FlagNormalized = "normalized"
	FlagSeed       = "seed"
	FlagCSV        = "csv"
	FlagSQLite     = "sqlite"
	FlagPlot       = "plot"
)

// NewApp returns the wsindex application writing results to out and logs to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "wsindex",
		Usage:           "estimate global manipulability indices of robot workspaces",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagConfig,
				Aliases: []string{"c"},
				Usage:   "load analysis configuration from `FILE` (.json, .yaml or .yml)",
			},
			&cli.BoolFlag{
				Name:    FlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "global",
				Usage:     "sample the workspace until the global index converges",
				UsageText: "wsindex --config <FILE> global [other options]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  FlagMetric,
						Usage: "metric to estimate, overriding global_index.method",
					},
					&cli.StringFlag{
						Name:  FlagAxes,
						Usage: "jacobian rows to use: all, trans or rot",
					},
					&cli.BoolFlag{
						Name:  FlagNormalized,
						Usage: "normalize the index by the largest sampled value",
					},
					&cli.Int64Flag{
						Name:  FlagSeed,
						Usage: "random seed, overriding the config",
					},
					&cli.PathFlag{
						Name:  FlagCSV,
						Usage: "write the samples to a CSV file",
					},
					&cli.PathFlag{
						Name:  FlagSQLite,
						Usage: "save the samples as a run in a SQLite database",
					},
					&cli.PathFlag{
						Name:  FlagPlot,
						Usage: "save a workspace scatter coloured by the metric",
					},
				},
				Action: GlobalIndexAction,
			},
			{
				Name:   "metrics",
				Usage:  "list the available metrics",
				Action: ListMetricsAction,
			},
			{
				Name:      "sweep",
				Usage:     "evaluate the global index over a grid of chain designs",
				UsageText: "wsindex --config <FILE> sweep [other options]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  FlagCSV,
						Usage: "write the sweep results to a CSV file",
					},
					&cli.PathFlag{
						Name:  FlagPlot,
						Usage: "plot the objective against the sweep's plot_x variable to an image `FILE`",
					},
				},
				Action: SweepAction,
			},
		},
	}
}
