package fieldmap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cloudsync/core/storage"

	"go.uber.org/zap"
)

// Config selects where the field-map table is loaded from.
type Config struct {
	// Path overrides the file search order when set.
	Path string `mapstructure:"path" default:""`
	// Object loads the table from the storage bucket instead of the filesystem.
	Object string `mapstructure:"object" default:""`
}

// DefaultSearchPaths is the lookup order used when no path is configured:
// the packaged install location first, then the working directory.
var DefaultSearchPaths = []string{
	"/etc/cloudsync/mapper.yaml",
	"config/mapper.yaml",
	"mapper.yaml",
}

// LoadFile parses the first readable file among paths.
func LoadFile(paths ...string) (*Table, error) {
	var tried []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			tried = append(tried, p)
			continue
		}
		if err != nil {
			return nil, &ConfigurationError{Reason: "cannot read field map " + p, Err: err}
		}
		return Parse(data, p)
	}
	return nil, &ConfigurationError{Reason: fmt.Sprintf("no field map found in %v", tried)}
}

// LoadObject fetches and parses the table from object storage.
func LoadObject(ctx context.Context, client storage.Client, bucket, object string) (*Table, error) {
	data, err := storage.ReadObject(ctx, client, bucket, object)
	if err != nil {
		return nil, &ConfigurationError{Reason: "cannot fetch field map", Err: err}
	}
	return Parse(data, fmt.Sprintf("s3://%s/%s", bucket, object))
}

// Load builds the table once at startup according to cfg. client may be nil
// when cfg.Object is empty.
func Load(ctx context.Context, cfg Config, client storage.Client, bucket string, logger *zap.Logger) (*Table, error) {
	var (
		table *Table
		err   error
	)
	switch {
	case cfg.Object != "":
		if client == nil {
			return nil, &ConfigurationError{Reason: "field map object configured without a storage client"}
		}
		table, err = LoadObject(ctx, client, bucket, cfg.Object)
	case cfg.Path != "":
		table, err = LoadFile(cfg.Path)
	default:
		table, err = LoadFile(DefaultSearchPaths...)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Field map loaded",
		zap.String("origin", table.Origin()),
		zap.Strings("cloud_types", table.CloudTypes()),
	)
	return table, nil
}
