package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cloudsync/core/config"
	"cloudsync/core/logger"
	"cloudsync/core/mapper"

	"github.com/spf13/cobra"
)

var (
	// Flags for the map command
	mapCloud     string
	mapCloudType string
)

// mapCmd translates a payload file without touching the database.
var mapCmd = &cobra.Command{
	Use:   "map <resource> [file]",
	Short: "Translate a cloud payload into a canonical document",
	Long: `Reads a JSON payload from file (or stdin) and prints the canonical
document the mapper would store for it.

Examples:
  map Volume volume.json --cloud regionone
  openstack server show -f json vm1 | cloudsync map Instance --cloud-type openstack`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMap,
}

func init() {
	mapCmd.Flags().StringVar(&mapCloud, "cloud", "", "Cloud the payload came from")
	mapCmd.Flags().StringVar(&mapCloudType, "cloud-type", "", "Cloud type, resolved from --cloud when empty")

	RootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// zap writes to stderr, stdout only carries the document
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	in := io.Reader(os.Stdin)
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	var payload any
	if err := json.NewDecoder(in).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	ctx := context.Background()
	m, _, err := loadMapper(ctx, cfg, l)
	if err != nil {
		return err
	}

	target := mapper.Target{Cloud: mapCloud, CloudType: mapCloudType}
	if target.Cloud == "" {
		target.Cloud = "preview"
	}
	doc, err := m.Translate(ctx, payload, args[0], target)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.ToMap())
}
