package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/simplebook/internal/backup"
	"github.com/dvloznov/simplebook/internal/config"
	"github.com/dvloznov/simplebook/internal/domain"
	"github.com/dvloznov/simplebook/internal/ingest/qfx"
	"github.com/dvloznov/simplebook/internal/logger"
	"github.com/dvloznov/simplebook/internal/report"
	"github.com/dvloznov/simplebook/internal/review"
	"github.com/dvloznov/simplebook/internal/rules"
	"github.com/dvloznov/simplebook/internal/store"
)

// monthLimit caps how many rows a report pulls for one month. A personal
// account never comes close; the cap just bounds memory on a corrupt db.
const monthLimit = 10000

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	switch os.Args[1] {
	case "import":
		runImport(log, cfg)
	case "months":
		runMonths(log, cfg)
	case "report":
		runReport(log, cfg)
	case "review":
		runReview(log, cfg)
	case "review-next":
		runReviewNext(log, cfg)
	case "review-set":
		runReviewSet(log, cfg)
	case "review-status":
		runReviewStatus(log, cfg)
	case "backup":
		runBackup(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("SimpleBook CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  sb <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import <file.qfx>                    Import a bank export into the local db")
	fmt.Println("  months [limit]                       List month buckets with transaction counts")
	fmt.Println("  report YYYY-MM                       Month summary plus resolved-review breakdowns")
	fmt.Println("  review YYYY-MM                       Flag a month's transactions for human review")
	fmt.Println("  review-next YYYY-MM                  Show the next open review item")
	fmt.Println("  review-set YYYY-MM <id> key=value..  Record resolution fields on a review item")
	fmt.Println("  review-status YYYY-MM                Count open and resolved review items")
	fmt.Println("  backup [YYYY-MM]                     Upload the db and review files to GCS")
	fmt.Println("  help                                 Show this help message")
	fmt.Println("\nConfig is read from simplebook.yaml, or the file named by SB_CONFIG.")
}

// requireMonth parses the YYYY-MM argument every review/report command takes.
func requireMonth(log zerolog.Logger, cmd, arg string) (year, month int) {
	year, month, err := domain.ParseYearMonth(arg)
	if err != nil {
		log.Error().Err(err).Msgf("Usage: sb %s YYYY-MM", cmd)
		os.Exit(1)
	}
	return year, month
}

func openStore(log zerolog.Logger, cfg config.Config) *store.Store {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("Failed to open database")
	}
	return st
}

func runImport(log zerolog.Logger, cfg config.Config) {
	if len(os.Args) < 3 {
		log.Error().Msg("Usage: sb import <file.qfx>")
		os.Exit(1)
	}
	sourceFile := os.Args[2]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	st := openStore(log, cfg)
	defer st.Close()

	runID, err := st.StartImportRun(ctx, sourceFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to record import run")
	}
	log.Debug().Str("run_id", runID).Str("file", sourceFile).Msg("Starting import")

	txs, err := qfx.ParseFile(sourceFile)
	if err != nil {
		st.FinishImportRun(ctx, runID, 0, 0, err)
		log.Fatal().Err(err).Str("file", sourceFile).Msg("Import failed")
	}

	inserted, err := st.UpsertTransactions(ctx, txs)
	if err != nil {
		st.FinishImportRun(ctx, runID, len(txs), 0, err)
		log.Fatal().Err(err).Msg("Import failed")
	}
	if err := st.FinishImportRun(ctx, runID, len(txs), inserted, nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to close import run")
	}

	total, err := st.CountTransactions(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count transactions")
	}

	log.Info().
		Str("run_id", runID).
		Int("imported", len(txs)).
		Int("inserted", inserted).
		Msg("Import completed")
	fmt.Printf("Imported %d transactions from %s (%d new, %d total in db)\n",
		len(txs), sourceFile, inserted, total)
}

func runMonths(log zerolog.Logger, cfg config.Config) {
	limit := 60
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			log.Error().Msg("Usage: sb months [limit]")
			os.Exit(1)
		}
		limit = n
	}

	ctx := context.Background()
	st := openStore(log, cfg)
	defer st.Close()

	months, err := st.ListMonths(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list months")
	}
	if len(months) == 0 {
		fmt.Println("No transactions imported yet.")
		return
	}
	if len(months) > limit {
		months = months[:limit]
	}
	report.RenderMonths(os.Stdout, months)
}

func runReport(log zerolog.Logger, cfg config.Config) {
	if len(os.Args) < 3 {
		log.Error().Msg("Usage: sb report YYYY-MM")
		os.Exit(1)
	}
	ym := os.Args[2]
	year, month := requireMonth(log, "report", ym)

	ctx := context.Background()
	st := openStore(log, cfg)
	defer st.Close()

	txs, err := st.ListByMonth(ctx, year, month, monthLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load month")
	}
	report.RenderSummary(os.Stdout, ym, report.Summarize(txs))

	ledger, err := review.Load(cfg.DataDir, ym)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load review bucket")
	}
	resolved := ledger.Resolved()
	report.RenderGroups(os.Stdout, "Category", report.ByCategory(resolved))
	report.RenderGroups(os.Stdout, "Vendor", report.ByVendor(resolved))

	printNeedsReview(cfg, txs, ledger)
}

// printNeedsReview lists currently flaggable transactions annotated with the
// classifier's best guess, so the operator sees what a review pass would do
// before running one.
func printNeedsReview(cfg config.Config, txs []domain.Transaction, ledger *review.Ledger) {
	flagged := review.Select(txs)
	if len(flagged) == 0 {
		fmt.Println("\nNeeds review: nothing flagged")
		return
	}

	classifier := rules.New(cfg.ClassifierConfig())
	fmt.Printf("\nNeeds review (%d):\n", len(flagged))
	for _, f := range flagged {
		id := review.MakeID(f.Tx)
		status := "new"
		if it, ok := ledger.Get(id); ok {
			if it.Open() {
				status = review.StatusOpen
			} else {
				status = it.Status
			}
		}
		line := fmt.Sprintf("  %s  %s  %10s  %-30s  [%s] %s",
			id, f.Tx.DateString(), f.Tx.Amount.StringFixed(2), f.Tx.Name, status, f.Reason)
		if res := classifier.Classify(f.Tx); res.Category != "" {
			line += fmt.Sprintf("  guess: %s (%s)", res.Category, res.Confidence)
		}
		fmt.Println(line)
	}
}

func runReview(log zerolog.Logger, cfg config.Config) {
	if len(os.Args) < 3 {
		log.Error().Msg("Usage: sb review YYYY-MM")
		os.Exit(1)
	}
	ym := os.Args[2]
	year, month := requireMonth(log, "review", ym)

	ctx := context.Background()
	st := openStore(log, cfg)
	defer st.Close()

	txs, err := st.ListByMonth(ctx, year, month, monthLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load month")
	}

	ledger, err := review.Load(cfg.DataDir, ym)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load review bucket")
	}

	flagged := review.Select(txs)
	created := 0
	for _, f := range flagged {
		if ledger.Upsert(review.NewItem(ym, f)) {
			created++
		}
	}
	if err := ledger.Save(cfg.DataDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to save review bucket")
	}

	open, resolved := ledger.Counts()
	log.Info().
		Str("month", ym).
		Int("flagged", len(flagged)).
		Int("created", created).
		Msg("Review pass completed")
	fmt.Printf("Flagged %d of %d transactions (%d new). Bucket: %d open, %d resolved.\n",
		len(flagged), len(txs), created, open, resolved)
	if open > 0 {
		fmt.Printf("Next: sb review-next %s\n", ym)
	}
}

func runReviewNext(log zerolog.Logger, cfg config.Config) {
	if len(os.Args) < 3 {
		log.Error().Msg("Usage: sb review-next YYYY-MM")
		os.Exit(1)
	}
	ym := os.Args[2]
	requireMonth(log, "review-next", ym)

	ledger, err := review.Load(cfg.DataDir, ym)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load review bucket")
	}

	it := ledger.FindNextOpen()
	if it == nil {
		fmt.Printf("No open review items for %s.\n", ym)
		return
	}

	fmt.Println("\n=== Next Review Item ===")
	fmt.Printf("ID:     %s\n", it.ID)
	fmt.Printf("Date:   %s\n", it.PostedDate)
	fmt.Printf("Amount: %s\n", it.Amount.StringFixed(2))
	fmt.Printf("Name:   %s\n", it.Name)
	if it.Memo != "" {
		fmt.Printf("Memo:   %s\n", it.Memo)
	}
	fmt.Printf("Reason: %s\n", it.Reason)
	for k, v := range it.Extra {
		fmt.Printf("%s: %s\n", k, v)
	}
	fmt.Printf("\nResolve with: sb review-set %s %s category=\"...\" status=resolved\n", ym, it.ID)
}

func runReviewSet(log zerolog.Logger, cfg config.Config) {
	if len(os.Args) < 5 {
		log.Error().Msg("Usage: sb review-set YYYY-MM <id> key=value ...")
		os.Exit(1)
	}
	ym := os.Args[2]
	requireMonth(log, "review-set", ym)
	id := os.Args[3]
	pairs := os.Args[4:]

	ledger, err := review.Load(cfg.DataDir, ym)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load review bucket")
	}

	if err := ledger.Patch(id, pairs); err != nil {
		if errors.Is(err, review.ErrNotFound) || errors.Is(err, review.ErrBadField) {
			log.Error().Err(err).Msg("Patch rejected")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Patch failed")
	}
	if err := ledger.Save(cfg.DataDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to save review bucket")
	}

	it, _ := ledger.Get(id)
	fmt.Printf("Updated %s (status: %s)\n", id, it.Status)
	if next := ledger.FindNextOpen(); next != nil {
		fmt.Printf("Next open item: %s\n", next.ID)
	} else {
		fmt.Printf("All review items for %s are resolved.\n", ym)
	}
}

func runReviewStatus(log zerolog.Logger, cfg config.Config) {
	if len(os.Args) < 3 {
		log.Error().Msg("Usage: sb review-status YYYY-MM")
		os.Exit(1)
	}
	ym := os.Args[2]
	requireMonth(log, "review-status", ym)

	ledger, err := review.Load(cfg.DataDir, ym)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load review bucket")
	}

	open, resolved := ledger.Counts()
	fmt.Printf("%s: %d items (%d open, %d resolved)\n", ym, ledger.Len(), open, resolved)
}

func runBackup(log zerolog.Logger, cfg config.Config) {
	ym := ""
	if len(os.Args) > 2 {
		ym = os.Args[2]
		requireMonth(log, "backup", ym)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	up := backup.NewGCSUploader(cfg.Backup.CredentialsFile)
	uploaded, err := backup.Run(ctx, up, cfg.Backup, cfg.DBPath, cfg.DataDir, ym)
	if err != nil {
		log.Fatal().Err(err).Msg("Backup failed")
	}

	for _, obj := range uploaded {
		fmt.Printf("Uploaded gs://%s/%s\n", cfg.Backup.Bucket, obj)
	}
	fmt.Printf("Backup completed (%d objects).\n", len(uploaded))
}
