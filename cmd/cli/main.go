// Command cli runs the full analysis over one series of a CSV/XLSX export
// and prints a readable report, for quick looks without the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"nocturna/adapters/ingest"
	"nocturna/app"
	"nocturna/domain/core"
	"nocturna/internal"
	"nocturna/internal/config"
	"nocturna/internal/testkit"
	"nocturna/ports"
)

func main() {
	input := flag.String("input", "", "CSV or XLSX file (synthetic demo data when empty)")
	key := flag.String("key", "", "series key (column header); lists available keys when empty")
	dateCol := flag.String("date-column", "date", "date column header")
	sheet := flag.String("sheet", "", "XLSX sheet name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := internal.NewLogger(internal.LogLevelWarn)

	var reader ports.SeriesReader
	if *input != "" {
		reader = ingest.NewDataReader(*input, ingest.WithSheet(*sheet), ingest.WithDateColumn(*dateCol))
	} else {
		reader = testkit.NewDemoReader()
	}
	service := app.NewAnalysisService(reader, cfg.Engine, logger)
	ctx := context.Background()

	if *key == "" {
		keys, err := service.Keys(ctx)
		if err != nil {
			log.Fatalf("failed to read input: %v", err)
		}
		fmt.Println("Available series:")
		for _, k := range keys {
			fmt.Printf("  %s\n", k)
		}
		os.Exit(0)
	}

	report, err := service.Report(ctx, core.SeriesKey(*key), app.Params{})
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
	printReport(report)
}

func printReport(r *app.AnalysisReport) {
	s := r.Summary
	fmt.Printf("Series %s — %d observations (%d finite) over %d days\n", r.Key, s.N, s.Finite, s.DaySpan)
	fmt.Printf("  mean %.3f  sd %.3f  median %.3f  IQR [%.3f, %.3f]  range [%.3f, %.3f]\n",
		s.Mean, s.StdDev, s.Median, s.Q25, s.Q75, s.Min, s.Max)

	if len(r.Changes) == 0 {
		fmt.Println("  no regime changes detected")
	} else {
		fmt.Printf("  %d regime change(s):", len(r.Changes))
		for _, cp := range r.Changes {
			fmt.Printf(" %s", cp.Date.Format("2006-01-02"))
		}
		fmt.Println()
	}

	if len(r.Breakpoints) > 0 {
		fmt.Printf("  %d rolling-average crossing(s), first at %s\n",
			len(r.Breakpoints), r.Breakpoints[0].Date.Format("2006-01-02"))
	}

	if len(r.ACF.Entries) == 0 {
		return
	}
	best := 0
	for i, e := range r.ACF.Entries {
		if e.Lag > 0 && e.R > r.ACF.Entries[best].R {
			best = i
		}
	}
	if r.ACF.Entries[best].Lag > 0 && r.ACF.Entries[best].R > r.ACF.ConfBound {
		fmt.Printf("  strongest autocorrelation at lag %d (r=%.3f, band ±%.3f)\n",
			r.ACF.Entries[best].Lag, r.ACF.Entries[best].R, r.ACF.ConfBound)
	}
	fmt.Printf("  report %s generated in %dms\n", r.ID, r.RuntimeMs)
}
