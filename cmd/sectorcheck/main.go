// Command sectorcheck loads a sector data directory the way the dashboard
// does, reports per-metric statistics for every sector and optionally writes
// one long-form CSV per sector.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"bvmtdash/internal/config"
	"bvmtdash/internal/dataprocessing"
	"bvmtdash/internal/exporter"
	"bvmtdash/internal/infrastructure"
	"bvmtdash/pkg/contracts"
)

type options struct {
	dataDir    string
	convention string
	labelsFile string
	workers    int
	outDir     string
	logLevel   string
	version    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	defaults := config.Default()

	fset := flag.NewFlagSet("sectorcheck", flag.ContinueOnError)
	fset.SetOutput(stderr)

	var opts options
	fset.StringVar(&opts.dataDir, "data", defaults.Data.Dir, "directory containing sector .xlsx/.csv files")
	fset.StringVar(&opts.convention, "convention", defaults.Data.Convention, "numeric cell convention: percent | fraction")
	fset.StringVar(&opts.labelsFile, "labels", "", "optional YAML label map merged over the built-in labels")
	fset.IntVar(&opts.workers, "workers", defaults.Data.Workers, "parallel file parsers")
	fset.StringVar(&opts.outDir, "out", "", "write <sector>.csv long-form exports into this directory")
	fset.StringVar(&opts.logLevel, "log-level", "warn", "debug | info | warn | error")
	fset.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fset.Parse(args); err != nil {
		return options{}, err
	}
	if fset.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fset.Args())
	}
	return opts, nil
}

// run returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("sectorcheck"))
		return 0
	}

	logger := infrastructure.NewLogger(config.LoggingConfig{Level: opts.logLevel, Format: "text"}, stderr)

	if err := check(ctx, opts, stdout, logger); err != nil {
		logger.Error("sector check failed", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "sectorcheck: %v\n", err)
		return 1
	}
	return 0
}

func check(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	labels := dataprocessing.DefaultLabels()
	if opts.labelsFile != "" {
		var err error
		if labels, err = dataprocessing.LoadLabels(opts.labelsFile); err != nil {
			return err
		}
	}

	convention, err := dataprocessing.ParseConvention(opts.convention)
	if err != nil {
		return err
	}

	store, err := dataprocessing.LoadStore(ctx, dataprocessing.LoadOptions{
		Dir:     opts.dataDir,
		Workers: opts.workers,
		Labels:  labels,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	transformer := dataprocessing.NewTransformer(store, labels, dataprocessing.NewNormalizer(convention))
	writer := exporter.NewCSVWriter(logger)

	idTitle, _ := labels.Title(store.Headers()[0])

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTOR\tMETRIC\tN\tMEAN\tMEDIAN\tMIN\tMAX\tSTDDEV")

	for _, name := range store.Names() {
		summary, err := transformer.Summarize(name)
		if err != nil {
			return err
		}
		for _, m := range summary.Metrics {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
				name, m.Label, m.Count, m.Mean, m.Median, m.Min, m.Max, m.StdDev)
		}

		if opts.outDir == "" {
			continue
		}
		rows, err := transformer.Melt(name)
		if err != nil {
			return err
		}
		path := filepath.Join(opts.outDir, name+".csv")
		if err := writer.WriteFile(path, exporter.MeltedOptions(idTitle, rows)); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d sectors OK (%s convention)\n", store.Len(), convention)
	return nil
}
