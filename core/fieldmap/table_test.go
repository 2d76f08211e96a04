package fieldmap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"cloudsync/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleTable = `
openstack:
  image:
    name: name
    reference_id: id
    status: status
    size: size
  Flavor:
    name: name
    reference_id: id
    ram: ram
aws:
  instance:
    reference_id: InstanceId
`

func TestParseAndResolve(t *testing.T) {
	table, err := Parse([]byte(sampleTable), "inline")
	require.NoError(t, err)

	t.Run("Case Insensitive Resource", func(t *testing.T) {
		for _, name := range []string{"image", "Image", "IMAGE"} {
			fm, err := table.Resolve("openstack", name)
			require.NoError(t, err)
			assert.Equal(t, "id", fm["reference_id"])
		}
		fm, err := table.Resolve("openstack", "flavor")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "ram", "reference_id"}, fm.Fields())
	})

	t.Run("Missing Resource", func(t *testing.T) {
		_, err := table.Resolve("openstack", "volume")
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "volume", cfgErr.ResourceType)
		assert.Contains(t, err.Error(), "resource type not configured")
	})

	t.Run("Missing Cloud Type", func(t *testing.T) {
		_, err := table.Resolve("gcp", "image")
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "gcp", cfgErr.CloudType)
	})

	t.Run("Resolved Map Is A Copy", func(t *testing.T) {
		fm, _ := table.Resolve("openstack", "image")
		fm["status"] = "tampered"
		again, _ := table.Resolve("openstack", "image")
		assert.Equal(t, "status", again["status"])
	})

	assert.Equal(t, []string{"aws", "openstack"}, table.CloudTypes())
	assert.Equal(t, []string{"flavor", "image"}, table.Resources("openstack"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"Bad YAML", "openstack: [", "invalid field map"},
		{"Unknown Resource", "openstack:\n  loadbalancer:\n    name: name\n", "unknown resource type"},
		{"Unknown Field", "openstack:\n  image:\n    checksum: checksum\n", "not part of the Image schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "inline")
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_SearchOrder(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(second, []byte(sampleTable), 0o600))

	table, err := LoadFile(filepath.Join(dir, "missing.yaml"), second)
	require.NoError(t, err)
	assert.Equal(t, second, table.Origin())

	_, err = LoadFile(filepath.Join(dir, "nope.yaml"))
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoad(t *testing.T) {
	logger := zap.NewNop()

	t.Run("From Object Storage", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "cloudsync", "mapping/mapper.yaml", mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte(sampleTable))), nil)

		table, err := Load(context.Background(), Config{Object: "mapping/mapper.yaml"}, client, "cloudsync", logger)
		require.NoError(t, err)
		assert.Equal(t, "s3://cloudsync/mapping/mapper.yaml", table.Origin())
		client.AssertExpectations(t)
	})

	t.Run("Object Without Client", func(t *testing.T) {
		_, err := Load(context.Background(), Config{Object: "x.yaml"}, nil, "cloudsync", logger)
		assert.Error(t, err)
	})

	t.Run("Explicit Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mapper.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0o600))

		table, err := Load(context.Background(), Config{Path: path}, nil, "", logger)
		require.NoError(t, err)
		assert.Equal(t, path, table.Origin())
	})

	t.Run("Storage Error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "cloudsync", "gone.yaml", mock.Anything).
			Return(nil, errors.New("NoSuchKey"))

		_, err := Load(context.Background(), Config{Object: "gone.yaml"}, client, "cloudsync", logger)
		assert.ErrorContains(t, err, "NoSuchKey")
	})
}

func TestPackagedTable(t *testing.T) {
	table, err := LoadFile(filepath.Join("..", "..", "config", "mapper.yaml"))
	require.NoError(t, err)

	for _, resource := range []string{"Image", "Instance", "Volume", "Flavor", "KeyPair", "Cluster"} {
		fm, err := table.Resolve("openstack", resource)
		require.NoError(t, err, resource)
		assert.Contains(t, fm, "reference_id", resource)
	}
}
