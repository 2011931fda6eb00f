package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Sydwelll/nft-marketplace-backend/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool
var jsonFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the ledger and its journal",
	Long:  `Replays the event journal against the ledger, validates the database schema and checks the journal bucket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), "")
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the journal bucket structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), "structure")
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Replay the journal and compare it with the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), "ledger")
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the ledger database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), "schema")
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Check that every event was published to the bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), "journal")
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, ledgerCmd, schemaCmd, journalCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	journalCmd.Flags().BoolVar(&fixFlag, "fix", false, "Upload missing events")
	integrityCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Save the report as JSON")
}

// runIntegrityChecks runs one check, or all of them when only is empty.
func runIntegrityChecks(ctx context.Context, only string) error {
	startTime := time.Now()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	logg := rt.logger
	defer logg.Sync()

	svc := integrity.NewService(rt.client, rt.cfg.Storage.Bucket, logg, rt.db)

	var report any
	switch only {
	case "structure":
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}
		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else if fixFlag {
			if err := svc.FixStructure(ctx, missing); err != nil {
				return fmt.Errorf("failed to fix structure: %w", err)
			}
			logg.Info("Structure fixed successfully.", zap.Strings("fixed", missing))
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			logg.Info("Run with --fix to create missing folders.")
		}
		report = map[string]any{"missing": missing}

	case "ledger":
		r, err := svc.CheckLedger(ctx)
		if err != nil {
			return fmt.Errorf("ledger check failed: %w", err)
		}
		if r.Matched {
			logg.Info("Ledger matches its journal.",
				zap.Uint64("next_id", r.NextID),
				zap.Int("items", r.Items),
				zap.Int("minted", r.Minted),
				zap.Int("purchased", r.Purchased),
				zap.Int("burned", r.Burned),
			)
		} else {
			for _, issue := range r.Issues {
				logg.Warn("Ledger inconsistency", zap.String("issue", issue))
			}
		}
		report = r

	case "schema":
		r, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if r.Matched {
			logg.Info("Schema matches the ledger models.")
		} else {
			for table, tbl := range r.Tables {
				if tbl.Status == "ok" {
					continue
				}
				if len(tbl.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
				}
				if len(tbl.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
				}
			}
			for _, e := range r.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
		report = r

	case "journal":
		r, err := svc.CheckJournal(ctx, fixFlag)
		if err != nil {
			return fmt.Errorf("journal check failed: %w", err)
		}
		if len(r.Missing) == 0 && len(r.Mismatched) == 0 {
			logg.Info("Journal is fully published.", zap.Int("stored", r.Stored), zap.Int("published", r.Published))
		} else {
			logg.Warn("Journal drift detected", zap.Int("missing", len(r.Missing)), zap.Int("mismatched", len(r.Mismatched)))
			logg.Info("Run with --fix to upload missing and mismatched events.")
		}
		report = r

	default:
		all := svc.CheckAll(ctx)
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(data))
		report = all
	}

	if jsonFlag {
		filename := fmt.Sprintf("integrity_%s_%d.json", nameOr(only, "all"), time.Now().Unix())
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return fmt.Errorf("failed to save JSON file: %w", err)
		}
		logg.Info("Detailed JSON report saved", zap.String("file", filename))
	}

	logg.Info("Integrity run finished", zap.Duration("execution_time", time.Since(startTime)))
	return nil
}

func nameOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
