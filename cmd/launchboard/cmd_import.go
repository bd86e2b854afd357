package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/internal/storage/sqlite"
	"github.com/yegors/launchboard/pkg/logger"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		csvPath string
		dbPath  string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a launch CSV into the SQLite mirror",
		Long: `Parses the CSV with the configured malformed-row policy and replaces the
contents of the SQLite mirror with it. Serve from the mirror with
dataset.source = "sqlite".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("csv") {
				csvPath = cfg.Dataset.Path
			}
			if !cmd.Flags().Changed("db") {
				dbPath = cfg.Dataset.SQLitePath
			}

			dataset, report, err := launches.LoadFile(csvPath, launches.LoadOptions{
				MalformedRows: launches.MalformedRowPolicy(cfg.Dataset.MalformedRows),
			})
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", csvPath, err)
			}
			for _, row := range report.Skipped {
				log.Warn("Skipped malformed row", logger.Int("line", row.Line), logger.String("reason", row.Reason))
			}

			db, err := sqlite.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			storage, err := sqlite.NewLaunchStorage(db, log)
			if err != nil {
				return err
			}
			id, err := storage.ReplaceLaunches(cmd.Context(), csvPath, dataset.Records())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d launches from %s into %s (import %d, %d rows skipped)\n",
				dataset.Len(), csvPath, dbPath, id, len(report.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file to import (default dataset.path)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite mirror path (default dataset.sqlite_path)")
	return cmd
}
