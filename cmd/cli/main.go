package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/unobtuse/ledgerscope/internal/domain"
	infraBQ "github.com/unobtuse/ledgerscope/internal/infra/bigquery"
	"github.com/unobtuse/ledgerscope/internal/logger"
	"github.com/unobtuse/ledgerscope/internal/recurring"
	"github.com/unobtuse/ledgerscope/internal/report"
	"github.com/unobtuse/ledgerscope/internal/source"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "detect":
		runDetect(log)
	case "export":
		runExport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Ledgerscope CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  detect    Detect recurring payments from a CSV file or the warehouse")
	fmt.Println("  export    Run detection and upload the JSON report to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// detectFlags are the inputs shared by detect and export.
type detectFlags struct {
	csvPath *string
	userID  *string
	project *string
	search  *string
	cadence *string
	active  *string
	best    *bool
}

func addDetectFlags(fs *flag.FlagSet) detectFlags {
	return detectFlags{
		csvPath: fs.String("csv", "", "Path to a CSV file of debit transactions (offline mode)"),
		userID:  fs.String("user", "", "User ID to load from the warehouse"),
		project: fs.String("project", infraBQ.DefaultProjectID(), "GCP project ID (or set BQ_PROJECT env)"),
		search:  fs.String("search", "", "Filter: text search over names and category"),
		cadence: fs.String("cadence", "", "Filter: cadence label, e.g. monthly or biweekly"),
		active:  fs.String("active", "", "Filter: true or false"),
		best:    fs.Bool("best-match", false, "Use best-scoring group selection instead of first match"),
	}
}

// loadAndDetect resolves the transaction source from the flags, runs the
// engine, and returns the result with the window it covered.
func loadAndDetect(ctx context.Context, log zerolog.Logger, f detectFlags) (recurring.Result, time.Time, time.Time) {
	opts := recurring.DefaultOptions()
	opts.BestMatch = *f.best
	now := time.Now()
	opts.Now = now
	since := now.AddDate(0, -opts.LookbackMonths, 0)

	filter := recurring.Filter{Search: *f.search, Cadence: *f.cadence}
	if *f.active != "" {
		active := *f.active == "true"
		filter.Active = &active
	}

	var txs []domain.Transaction
	var err error

	switch {
	case *f.csvPath != "":
		txs, err = source.LoadTransactions(*f.csvPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load CSV")
		}
	case *f.userID != "":
		if *f.project == "" {
			log.Fatal().Msg("Error: -project or BQ_PROJECT is required with -user")
		}
		repo, err := infraBQ.NewRepository(ctx, *f.project)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create repository")
		}
		defer repo.Close()
		txs, err = repo.QueryDebitsByUser(ctx, *f.userID, since, now)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load transactions")
		}
	default:
		log.Fatal().Msg("Error: either -csv or -user is required")
	}

	return recurring.Detect(txs, filter, opts), since, now
}

func runDetect(log zerolog.Logger) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	f := addDetectFlags(fs)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	res, _, _ := loadAndDetect(ctx, log, f)

	printResult(res)
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	f := addDetectFlags(fs)
	bucket := fs.String("bucket", "", "GCS bucket for the JSON report")
	fs.Parse(os.Args[2:])

	if *bucket == "" {
		log.Fatal().Msg("Error: -bucket is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	res, since, now := loadAndDetect(ctx, log, f)

	userID := *f.userID
	if userID == "" {
		userID = "csv"
	}
	rep := report.Build(userID, res, since, now, now)
	uri, err := report.UploadToGCS(ctx, *bucket, report.ObjectName(userID, now), rep)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Report exported to %s\n", uri)
}

func printResult(res recurring.Result) {
	fmt.Printf("%-30s %-12s %10s %8s %-12s %s\n",
		"NAME", "CADENCE", "AVG", "COUNT", "NEXT", "ACTIVE")
	for _, g := range res.Groups {
		next := "-"
		if g.NextExpectedDate != nil {
			next = g.NextExpectedDate.Format("2006-01-02")
		}
		name := g.DisplayName
		if len(name) > 30 {
			name = name[:30]
		}
		fmt.Printf("%-30s %-12s %10s %8d %-12s %v\n",
			name, g.Cadence, g.AverageAmount.StringFixed(2), g.OccurrenceCount, next, g.IsActive)
	}
	s := res.Summary
	fmt.Printf("\n%d recurring (%d active, %d inactive)\n",
		s.TotalRecurring, s.ActiveRecurring, s.InactiveRecurring)
	fmt.Printf("Estimated monthly spend: %s\n", s.EstimatedMonthlySpend.StringFixed(2))
	fmt.Printf("Total paid in window:    %s\n", s.TotalPaidInWindow.StringFixed(2))
}
