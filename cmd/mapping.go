package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"cloudsync/core/config"
	"cloudsync/core/fieldmap"
	"cloudsync/core/logger"
	"cloudsync/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMappingObject = "mapper.yaml"

// mappingCmd groups field-map maintenance commands.
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Validate and publish the field-map table",
}

var mappingCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a field-map file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := fieldmap.LoadFile(args[0])
		if err != nil {
			return err
		}
		for _, ct := range table.CloudTypes() {
			fmt.Printf("%s: %v\n", ct, table.Resources(ct))
		}
		return nil
	},
}

var mappingPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Validate a field-map file and upload it to the storage bucket",
	Long: `Uploads the file to the configured bucket under MAPPING_OBJECT
(default mapper.yaml), so every instance started with MAPPING_OBJECT set
loads the same table.`,
	Args: cobra.ExactArgs(1),
	RunE: runMappingPush,
}

func init() {
	mappingCmd.AddCommand(mappingCheckCmd)
	mappingCmd.AddCommand(mappingPushCmd)
	RootCmd.AddCommand(mappingCmd)
}

func runMappingPush(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	// never publish a table the service would refuse to start with
	if _, err := fieldmap.Parse(data, args[0]); err != nil {
		return err
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return err
	}

	object := cfg.Mapping.Object
	if object == "" {
		object = defaultMappingObject
	}
	info, err := client.PutObject(ctx, cfg.Storage.Bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", object, err)
	}

	l.Info("Field map published",
		zap.String("bucket", cfg.Storage.Bucket),
		zap.String("object", object),
		zap.Int64("size", info.Size),
	)
	return nil
}
