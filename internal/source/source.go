// Package source builds the launch Dataset from whichever backend the
// configuration names: a CSV file, a CSV served over HTTP, or the SQLite mirror.
package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yegors/launchboard/internal/config"
	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/internal/storage/sqlite"
	"github.com/yegors/launchboard/pkg/logger"
)

// Load reads the dataset described by cfg. Any failure is fatal to the
// caller: there is no partial dataset.
func Load(ctx context.Context, cfg config.DatasetConfig, log *logger.Logger) (*launches.Dataset, error) {
	log = log.Named("source")
	opts := launches.LoadOptions{MalformedRows: launches.MalformedRowPolicy(cfg.MalformedRows)}

	var (
		dataset *launches.Dataset
		report  *launches.LoadReport
		origin  string
		err     error
	)

	switch cfg.Source {
	case config.SourceCSV:
		origin = cfg.Path
		dataset, report, err = launches.LoadFile(cfg.Path, opts)

	case config.SourceHTTP:
		origin = cfg.URL
		client := NewClient(cfg.FetchTimeout(), cfg.FetchMaxRetries, log)
		var body []byte
		body, err = client.FetchCSV(ctx, cfg.URL)
		if err == nil {
			dataset, report, err = launches.LoadCSV(bytes.NewReader(body), opts)
		}

	case config.SourceSQLite:
		origin = cfg.SQLitePath
		dataset, err = loadMirror(ctx, cfg.SQLitePath, log)

	default:
		err = fmt.Errorf("unknown dataset source: %s", cfg.Source)
	}

	logReport(log, origin, report)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset from %s: %w", origin, err)
	}

	bounds := dataset.ObservedPayloadRange()
	log.Info("Dataset loaded",
		logger.String("source", cfg.Source),
		logger.String("origin", origin),
		logger.Int("records", dataset.Len()),
		logger.Strings("sites", dataset.Sites()),
		logger.Float64("observed_min_payload", bounds.Low),
		logger.Float64("observed_max_payload", bounds.High),
	)

	return dataset, nil
}

func loadMirror(ctx context.Context, path string, log *logger.Logger) (*launches.Dataset, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	storage, err := sqlite.NewLaunchStorage(db, log)
	if err != nil {
		return nil, err
	}

	if last, err := storage.LastImport(ctx); err == nil {
		log.Debug("Using SQLite mirror",
			logger.String("imported_from", last.Source),
			logger.Time("imported_at", last.ImportedAt),
		)
	}

	records, err := storage.LoadLaunches(ctx)
	if err != nil {
		return nil, err
	}
	return launches.NewDataset(records)
}

// logReport emits one warning per skipped row and a summary
func logReport(log *logger.Logger, origin string, report *launches.LoadReport) {
	if report == nil || len(report.Skipped) == 0 {
		return
	}
	for _, row := range report.Skipped {
		log.Warn("Skipped malformed row",
			logger.String("origin", origin),
			logger.Int("line", row.Line),
			logger.String("reason", row.Reason),
		)
	}
	log.Warn("Dataset loaded with skipped rows",
		logger.Int("rows", report.Rows),
		logger.Int("loaded", report.Loaded),
		logger.Int("skipped", len(report.Skipped)),
	)
}
