package cmd

import (
	"context"
	"fmt"

	"cloudsync/core/config"
	"cloudsync/core/database"
	"cloudsync/core/docstore"
	"cloudsync/core/logger"
	"cloudsync/core/schema"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// collectionsCmd groups document collection maintenance commands.
var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage the document collections",
}

var collectionsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create every collection table and its indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, l, err := openStore()
		if err != nil {
			return err
		}
		defer l.Sync()

		ctx := context.Background()
		for _, rt := range schema.AllResourceTypes() {
			if err := store.EnsureCollection(ctx, rt.Collection()); err != nil {
				return err
			}
		}
		l.Info("Collections ready", zap.Int("count", len(schema.AllResourceTypes())))
		return nil
	},
}

var collectionsDescribeCmd = &cobra.Command{
	Use:   "describe <resource>",
	Short: "Print the column layout of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := schema.ParseResourceType(args[0])
		if err != nil {
			return err
		}
		store, l, err := openStore()
		if err != nil {
			return err
		}
		defer l.Sync()

		cols, err := store.Describe(context.Background(), rt.Collection())
		if err != nil {
			return err
		}
		for _, c := range cols {
			fmt.Printf("%-16s %-24s null=%-3s key=%s\n", c.Field, c.Type, c.Null, c.Key)
		}
		return nil
	},
}

func init() {
	collectionsCmd.AddCommand(collectionsMigrateCmd)
	collectionsCmd.AddCommand(collectionsDescribeCmd)
	RootCmd.AddCommand(collectionsCmd)
}

func openStore() (*docstore.GormStore, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return docstore.NewGormStore(db, l), l, nil
}
