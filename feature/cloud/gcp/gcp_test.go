package gcp

import (
	"context"
	"testing"

	"cloudsync/core/schema"
	"cloudsync/feature/cloud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_NotImplemented(t *testing.T) {
	l, err := Connect(context.Background(), cloud.Cloud{Name: "eu", Type: cloud.TypeGCP}, nil)
	require.NoError(t, err)
	_, err = l.List(context.Background(), schema.Instance)
	assert.ErrorIs(t, err, cloud.ErrNotImplemented)
}
