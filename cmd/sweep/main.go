// Command sweep runs a single retention pass over the staging and artifact
// directories and exits. Useful from cron when the API runs without its
// background sweeper.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"thumbnailer/internal/infra"
	"thumbnailer/internal/retention"
)

func main() {
	maxAge := flag.Duration("max-age", retention.DefaultMaxAge, "remove files older than this")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg)

	report := retention.New(retention.Options{
		Dirs:   []string{cfg.StagingDir(), cfg.ArtifactDir()},
		MaxAge: *maxAge,
		Logger: logger,
	}).RunOnce(context.Background())

	fmt.Printf("scanned=%d removed=%d failed=%d\n", report.Scanned, report.Removed, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
