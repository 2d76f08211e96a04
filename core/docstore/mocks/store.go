package mocks

import (
	"context"

	"cloudsync/core/docstore"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of docstore.Store
type Store struct {
	mock.Mock
}

func (m *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	args := m.Called(ctx, collection, filter)
	if docs, ok := args.Get(0).([]docstore.Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) InsertMany(ctx context.Context, collection string, docs []docstore.Document) error {
	args := m.Called(ctx, collection, docs)
	return args.Error(0)
}

func (m *Store) UpdateOne(ctx context.Context, collection string, filter docstore.Filter, patch docstore.Document) (int64, error) {
	args := m.Called(ctx, collection, filter, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) BulkUpdate(ctx context.Context, collection string, updates []docstore.Update) (int64, error) {
	args := m.Called(ctx, collection, updates)
	return args.Get(0).(int64), args.Error(1)
}
