package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloudsync/core/config"
	"cloudsync/core/logger"
	"cloudsync/core/reconcile"
	"cloudsync/core/schema"
	cloudSync "cloudsync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	syncClouds    []string
	syncAllClouds bool
	syncDryRun    bool
	syncJSON      bool
)

// syncCmd runs sync cycles once, outside the scheduler.
var syncCmd = &cobra.Command{
	Use:   "sync <resource|stack|all>",
	Short: "Run a sync cycle once",
	Long: `Lists live resources, reconciles the document collection and inserts
new resources, then exits.

Examples:
  # Preview what an image sync would change
  sync Image --cloud regionone --dry-run

  # Sync heat stack resources
  sync stack --cloud regionone

  # Sync every resource type on every cloud
  sync all --all-clouds`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncClouds, "cloud", nil, "Cloud to sync (repeatable)")
	syncCmd.Flags().BoolVar(&syncAllClouds, "all-clouds", false, "Sync every configured cloud")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan only, write nothing")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print results as JSON")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	svc, err := bootstrap(ctx, cfg, l, nil, nil)
	if err != nil {
		return err
	}

	clouds := syncClouds
	if syncAllClouds {
		clouds = svc.registry.Names()
	}
	if len(clouds) == 0 {
		return errors.New("no cloud selected, use --cloud or --all-clouds")
	}

	resource := args[0]
	var (
		results []*reconcile.Result
		errs    []error
	)
	switch {
	case strings.EqualFold(resource, "all"):
		results, err = svc.service.SyncAll(ctx, clouds, syncDryRun)
		errs = append(errs, err)
	case strings.EqualFold(resource, cloudSync.StackJob):
		for _, name := range clouds {
			r, err := svc.service.SyncStacks(ctx, name, syncDryRun)
			results = append(results, r...)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", cloudSync.JobName(cloudSync.StackJob, name), err))
			}
		}
	default:
		rt, err := schema.ParseResourceType(resource)
		if err != nil {
			return err
		}
		for _, name := range clouds {
			r, err := svc.service.SyncOne(ctx, rt, name, syncDryRun)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", cloudSync.JobName(rt.String(), name), err))
				continue
			}
			results = append(results, r)
		}
	}

	if syncJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printSyncResults(l, results)
	}
	if syncDryRun {
		l.Info("Dry-run mode: No changes were made.")
	}
	return errors.Join(errs...)
}

// printSyncResults logs one summary line per reconciled collection.
func printSyncResults(l *zap.Logger, results []*reconcile.Result) {
	for _, r := range results {
		l.Info("Sync result",
			zap.String("collection", r.Collection),
			zap.String("cloud", r.Cloud),
			zap.String("source", r.Source),
			zap.Int("live", r.Live),
			zap.Int("updated", r.Updated),
			zap.Int("deleted", r.Deleted),
			zap.Int("unchanged", r.Unchanged),
			zap.Int("inserted", r.Inserted),
			zap.Int("skipped", r.Skipped),
			zap.Int("failed", r.Failed),
		)
	}
}
