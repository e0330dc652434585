// Command qoe-report loads a drive-test export, applies a period, region and
// location selection, and prints the operator comparison. It can also write
// the comparison workbook, the observations CSV and the bar charts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"qoedash/internal/config"
	"qoedash/internal/dataprocessing"
	"qoedash/internal/exporter"
	"qoedash/internal/infrastructure"
	"qoedash/internal/services"
	"qoedash/internal/validation"
	"qoedash/pkg/contracts"
	"qoedash/pkg/contracts/domain"
)

type reportOptions struct {
	Input       string
	Output      string
	ChartDir    string
	ChartFormat string
	Query       services.Query
}

func main() {
	in := flag.String("in", "", "measurement file (.csv or .xlsx)")
	period := flag.String("period", domain.PeriodAll, `period label such as "January 2024"`)
	regions := flag.String("regions", "", "comma separated regions (default all)")
	locations := flag.String("locations", "", "comma separated locations (default all)")
	routeParam := flag.String("route-param", "", "Route Test parameter (default first available)")
	staticParam := flag.String("static-param", "", "Static Test parameter (default first available)")
	out := flag.String("out", "", "write the comparison (.xlsx) or the observations (.csv)")
	chartDir := flag.String("charts", "", "directory for route and static bar charts")
	chartFormat := flag.String("chart-format", string(exporter.ChartSVG), "chart format: svg or png")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: qoe-report -in <file> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	opts := reportOptions{
		Input:       *in,
		Output:      *out,
		ChartDir:    *chartDir,
		ChartFormat: *chartFormat,
		Query: services.Query{
			Period:          *period,
			Regions:         splitList(*regions),
			Locations:       splitList(*locations),
			AllLocations:    strings.TrimSpace(*locations) == "",
			RouteParameter:  *routeParam,
			StaticParameter: *staticParam,
		},
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	err = run(ctx, cfg, opts, os.Stdout, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Report failed", slog.String("error", err.Error()))
	}
	_ = infrastructure.CloseLogFile()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts reportOptions, stdout io.Writer, logger *slog.Logger) error {
	validator := validation.NewFileValidator(cfg.Upload.AllowedExtensions, cfg.Upload.MaxBytes, logger)
	if err := validator.ValidateMeasurementFile(opts.Input); err != nil {
		return err
	}
	if opts.Output != "" {
		if err := validator.ValidateOutputFile(opts.Output, ".xlsx", ".csv"); err != nil {
			return err
		}
	}
	if opts.ChartDir != "" {
		if err := validator.ValidateOutputDirectory(opts.ChartDir); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	datasets := services.NewDatasetService(cfg.Cache, cfg.Upload, nil, logger)
	defer datasets.Close()
	dashboard := services.NewDashboardService(datasets, dataprocessing.DefaultPalette(), nil, logger)

	ds, err := datasets.Upload(ctx, filepath.Base(opts.Input), data)
	if err != nil {
		return err
	}

	comparison, err := dashboard.Comparison(ctx, ds.ID, opts.Query)
	if err != nil {
		return err
	}

	printSelection(stdout, ds, comparison.Selection)
	printComparison(stdout, comparison.Route)
	printComparison(stdout, comparison.Static)

	if opts.Output != "" {
		if err := writeOutput(ctx, dashboard, ds.ID, opts, comparison); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Report written", slog.String("path", opts.Output))
	}

	if opts.ChartDir != "" {
		if err := writeCharts(ctx, dashboard, ds.ID, opts, logger); err != nil {
			return err
		}
	}

	return nil
}

func writeOutput(ctx context.Context, dashboard *services.DashboardService, id string, opts reportOptions, comparison services.ComparisonView) error {
	f, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(opts.Output), ".xlsx") {
		return exporter.WriteComparisonWorkbook(f, comparison.Route, comparison.Static)
	}

	charts, err := dashboard.Charts(ctx, id, opts.Query)
	if err != nil {
		return err
	}
	return exporter.WriteObservations(f, exporter.WriteOptions{BOMPrefix: true}, charts.Route, charts.Static)
}

func writeCharts(ctx context.Context, dashboard *services.DashboardService, id string, opts reportOptions, logger *slog.Logger) error {
	format, err := exporter.ParseChartFormat(opts.ChartFormat)
	if err != nil {
		return err
	}

	charts, err := dashboard.Charts(ctx, id, opts.Query)
	if err != nil {
		return err
	}

	for _, lf := range []domain.LongForm{charts.Route, charts.Static} {
		path := filepath.Join(opts.ChartDir, lf.Category.Slug()+"."+string(format))
		if err := writeChart(path, lf, dashboard, format); err != nil {
			if errors.Is(err, exporter.ErrNoChartData) || errors.Is(err, exporter.ErrNonNumericChart) {
				logger.WarnContext(ctx, "Chart skipped",
					slog.String("category", string(lf.Category)),
					slog.String("reason", err.Error()))
				continue
			}
			return err
		}
		logger.InfoContext(ctx, "Chart written", slog.String("path", path))
	}
	return nil
}

func writeChart(path string, lf domain.LongForm, dashboard *services.DashboardService, format exporter.ChartFormat) error {
	if lf.Empty || len(lf.Observations) == 0 {
		return exporter.ErrNoChartData
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()

	if err := exporter.RenderChart(f, lf, dashboard.Palette(), format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return nil
}

func printSelection(w io.Writer, ds *domain.Dataset, sel domain.FilterSelection) {
	fmt.Fprintf(w, "File:      %s (%d records)\n", ds.FileName, ds.Len())
	fmt.Fprintf(w, "Period:    %s\n", sel.Period)
	if len(sel.Regions) > 0 {
		fmt.Fprintf(w, "Regions:   %s\n", strings.Join(sel.Regions, ", "))
	}
	fmt.Fprintf(w, "Locations: %d selected\n\n", len(sel.Locations))
}

func printComparison(w io.Writer, table domain.ComparisonTable) {
	fmt.Fprintf(w, "%s: %s\n", table.Category, table.Parameter)
	if table.Empty {
		fmt.Fprintf(w, "  %s\n\n", table.Message)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(exporter.ComparisonHeaders, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%.2f\t%s\t%s\n",
			row.Operator, row.Parameter,
			row.MaxValue, row.MaxLocation, row.MaxDate,
			row.MinValue, row.MinLocation, row.MinDate)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// splitList splits a comma separated flag, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
