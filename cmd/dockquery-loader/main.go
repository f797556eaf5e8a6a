// Command dockquery-loader inserts a shipyard snapshot into Postgres. The
// snapshot comes either from a local file or from the configured S3 bucket.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dockquery/dockquery/internal/config"
	"github.com/dockquery/dockquery/internal/dataset"
	"github.com/dockquery/dockquery/internal/dbexec"
	"github.com/dockquery/dockquery/internal/observability"
	s3store "github.com/dockquery/dockquery/internal/storage/s3"
)

func main() {
	file := flag.String("file", "", "path to a local snapshot JSON file")
	object := flag.String("object", "", "object key of a snapshot in the dataset bucket")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall load timeout")
	flag.Parse()

	_ = godotenv.Load()

	if (*file == "") == (*object == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -object is required")
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv("dockquery-loader")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := dbexec.Open(ctx, dbexec.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "database open error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	snapshot, err := openSnapshot(ctx, cfg, *file, *object)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = snapshot.Close() }()

	loader, err := dataset.NewLoader(db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loader error: %v\n", err)
		os.Exit(1)
	}

	summary, err := loader.Load(ctx, snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	for _, report := range summary.Tables {
		if report.Err != nil {
			fmt.Printf("%-22s rolled back: %v\n", report.Table, report.Err)
			continue
		}
		fmt.Printf("%-22s %d row(s)\n", report.Table, report.Inserted)
	}
	fmt.Printf("inserted %d row(s) total\n", summary.TotalInserted())
	if summary.Failed() {
		os.Exit(1)
	}
}

func openSnapshot(ctx context.Context, cfg config.Config, file, object string) (io.ReadCloser, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open snapshot file: %w", err)
		}
		return f, nil
	}

	if strings.TrimSpace(cfg.Dataset.Bucket) == "" {
		return nil, fmt.Errorf("DOCKQUERY_DATASET_BUCKET is required for -object")
	}
	store, err := s3store.New(s3store.Config{
		Endpoint:        cfg.Dataset.Endpoint,
		Region:          cfg.Dataset.Region,
		Bucket:          cfg.Dataset.Bucket,
		AccessKeyID:     cfg.Dataset.AccessKeyID,
		SecretAccessKey: cfg.Dataset.SecretAccessKey,
		UseSSL:          cfg.Dataset.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, object)
}
