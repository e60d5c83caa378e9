package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clearhaven/claimdesk/internal/config"
	"github.com/clearhaven/claimdesk/internal/ingest"
	"github.com/clearhaven/claimdesk/internal/repository"
	"github.com/clearhaven/claimdesk/pkg/database"
	"github.com/clearhaven/claimdesk/pkg/logger"
	"go.uber.org/zap"
)

// loadclaims imports a claims file and a details file from disk in one
// atomic batch. It is the command-line counterpart of the upload endpoint,
// intended for seeding and scheduled reloads.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	var (
		claimsPath  = flag.String("claims-file", cfg.Import.DefaultClaimsFile, "path to the claims CSV file")
		detailsPath = flag.String("details-file", cfg.Import.DefaultDetailFile, "path to the claim details CSV file")
		modeFlag    = flag.String("mode", string(ingest.ModeOverwrite), "import mode: append or overwrite")
		timeout     = flag.Duration("timeout", 10*time.Minute, "overall import timeout")
	)
	flag.Parse()

	mode, err := ingest.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	claimsFile, err := os.Open(*claimsPath)
	if err != nil {
		log.Fatal("cannot open claims file", zap.String("path", *claimsPath), zap.Error(err))
	}
	defer claimsFile.Close()

	detailsFile, err := os.Open(*detailsPath)
	if err != nil {
		log.Fatal("cannot open details file", zap.String("path", *detailsPath), zap.Error(err))
	}
	defer detailsFile.Close()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close() //nolint:errcheck
		}
	}()

	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var summary *ingest.Summary
	err = repository.NewImportTx(db).Do(ctx, func(store ingest.Store) error {
		var runErr error
		summary, runErr = ingest.NewImporter(store, log).Run(ctx, ingest.Batch{
			Claims:      claimsFile,
			Details:     detailsFile,
			ClaimsName:  filepath.Base(*claimsPath),
			DetailsName: filepath.Base(*detailsPath),
			Mode:        mode,
		})
		return runErr
	})
	if err != nil {
		log.Fatal("import failed, nothing was persisted", zap.Error(err))
	}

	fmt.Printf("import complete (mode=%s)\n", summary.Mode)
	fmt.Printf("  claims:  %d created, %d updated\n", summary.ClaimsCreated, summary.ClaimsUpdated)
	fmt.Printf("  details: %d created, %d updated\n", summary.DetailsCreated, summary.DetailsUpdated)
	fmt.Printf("  rejected rows: %d\n", len(summary.Rejected))
	for _, rej := range summary.Rejected {
		fmt.Printf("    - %s\n", rej.Error())
	}
}
