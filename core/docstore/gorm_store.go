package docstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"cloudsync/core/database"
	"cloudsync/core/schema"
	"cloudsync/core/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var collectionName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// GormStore implements Store on a relational database, one table per
// collection.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	migrated map[string]struct{}
}

// NewGormStore creates a store on db.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormStore{
		db:       db,
		logger:   logger,
		now:      time.Now,
		migrated: make(map[string]struct{}),
	}
}

// EnsureCollection creates the collection table and its indexes when missing.
func (s *GormStore) EnsureCollection(ctx context.Context, collection string) error {
	if !collectionName.MatchString(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.migrated[collection]; ok {
		return nil
	}

	tx := s.db.WithContext(ctx)
	if err := tx.Table(collection).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate collection %s: %w", collection, err)
	}

	prefix := "idx_" + strings.ToLower(collection)
	indexes := []struct {
		name    string
		unique  bool
		columns []string
	}{
		{prefix + "_uuid", true, []string{"uuid"}},
		{prefix + "_partition", false, []string{"cloud", "source", "active"}},
		{prefix + "_reference", false, []string{"reference_id"}},
	}
	for _, idx := range indexes {
		if tx.Migrator().HasIndex(collection, idx.name) {
			continue
		}
		sql := "CREATE INDEX ? ON ? (" + placeholders(len(idx.columns)) + ")"
		if idx.unique {
			sql = "CREATE UNIQUE INDEX ? ON ? (" + placeholders(len(idx.columns)) + ")"
		}
		args := []any{clause.Column{Name: idx.name}, clause.Table{Name: collection}}
		for _, c := range idx.columns {
			args = append(args, clause.Column{Name: c})
		}
		if err := tx.Exec(sql, args...).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	s.migrated[collection] = struct{}{}
	s.logger.Debug("Collection ready", zap.String("collection", collection))
	return nil
}

// Find implements Store.
func (s *GormStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return nil, err
	}
	where, err := columnFilter(filter)
	if err != nil {
		return nil, err
	}

	var records []Record
	q := s.db.WithContext(ctx).Table(collection)
	if len(where) > 0 {
		q = q.Where(where)
	}
	if err := q.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	docs := make([]Document, len(records))
	for i, rec := range records {
		docs[i] = rec.toDocument()
	}
	return docs, nil
}

// InsertMany implements Store.
func (s *GormStore) InsertMany(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return err
	}

	records := make([]Record, len(docs))
	for i, doc := range docs {
		records[i] = toRecord(doc)
		if records[i].UUID == "" {
			return fmt.Errorf("document %d has no uuid", i)
		}
	}
	if err := s.db.WithContext(ctx).Table(collection).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// UpdateOne implements Store.
func (s *GormStore) UpdateOne(ctx context.Context, collection string, filter Filter, patch Document) (int64, error) {
	return s.BulkUpdate(ctx, collection, []Update{{Filter: filter, Set: patch}})
}

// BulkUpdate implements Store. All updates run in one transaction.
func (s *GormStore) BulkUpdate(ctx context.Context, collection string, updates []Update) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(updates))
	for _, u := range updates {
		id, ok := u.Filter[schema.FieldUUID]
		if !ok || id == nil {
			return 0, ErrMissingUUIDFilter
		}
		ids = append(ids, utils.ToString(id))
	}

	var modified int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []Record
		if err := tx.Table(collection).Where("uuid IN ?", ids).Find(&current).Error; err != nil {
			return fmt.Errorf("failed to load documents: %w", err)
		}
		byUUID := make(map[string]Record, len(current))
		for _, rec := range current {
			byUUID[rec.UUID] = rec
		}

		for i, u := range updates {
			rec, ok := byUUID[ids[i]]
			if !ok {
				continue
			}
			where, err := columnFilter(u.Filter)
			if err != nil {
				return err
			}
			values := s.patchValues(rec, u.Set)
			res := tx.Table(collection).Where(where).Updates(values)
			if res.Error != nil {
				return fmt.Errorf("failed to update %s: %w", ids[i], res.Error)
			}
			modified += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

// Describe returns the column layout of a collection table.
func (s *GormStore) Describe(ctx context.Context, collection string) ([]database.ColumnInfo, error) {
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return nil, err
	}
	return database.GetTableColumns(s.db.WithContext(ctx), collection)
}

// patchValues turns a document patch into column updates. Non-column fields
// are merged into the record's existing Fields; uuid and created_at are
// immutable.
func (s *GormStore) patchValues(rec Record, patch Document) map[string]any {
	values := map[string]any{"updated_at": s.now()}
	fields := datatypes.JSONMap{}
	for k, v := range rec.Fields {
		fields[k] = v
	}
	fieldsChanged := false

	for k, v := range patch {
		if _, ok := stringColumns[k]; ok {
			values[k] = utils.ToStringPtr(v)
			continue
		}
		switch k {
		case schema.FieldUUID, schema.FieldCreatedAt, schema.FieldUpdatedAt:
		case schema.FieldActive:
			values[k] = utils.ToInt(v)
		case schema.FieldCloudMeta:
			values[k] = toJSONMap(v)
		default:
			fields[k] = v
			fieldsChanged = true
		}
	}
	if fieldsChanged {
		values["fields"] = fields
	}
	return values
}

func columnFilter(filter Filter) (map[string]any, error) {
	where := make(map[string]any, len(filter))
	for k, v := range filter {
		if !IsColumn(k) || k == schema.FieldCloudMeta {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFilterField, k)
		}
		where[k] = v
	}
	return where, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
