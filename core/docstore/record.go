package docstore

import (
	"encoding/json"
	"time"

	"cloudsync/core/schema"
	"cloudsync/core/utils"

	"gorm.io/datatypes"
)

// Record is the row layout shared by every collection table. Indexed document
// fields are columns; the remaining type-specific fields live in Fields.
type Record struct {
	ID          uint              `gorm:"primaryKey;autoIncrement"`
	UUID        string            `gorm:"column:uuid;size:36;not null"`
	ReferenceID *string           `gorm:"column:reference_id;size:255"`
	Name        *string           `gorm:"column:name;size:255"`
	Description *string           `gorm:"column:description;type:text"`
	Cloud       *string           `gorm:"column:cloud;size:128"`
	OrgID       *string           `gorm:"column:org_id;size:64"`
	ProjectID   *string           `gorm:"column:project_id;size:64"`
	Source      *string           `gorm:"column:source;size:64"`
	SourceID    *string           `gorm:"column:source_id;size:255"`
	Active      int               `gorm:"column:active;not null;default:1"`
	CloudMeta   datatypes.JSONMap `gorm:"column:cloud_meta"`
	Fields      datatypes.JSONMap `gorm:"column:fields"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
	CreatedBy   *string           `gorm:"column:created_by;size:128"`
	UpdatedBy   *string           `gorm:"column:updated_by;size:128"`
}

// stringColumns maps document fields stored as nullable string columns.
var stringColumns = map[string]func(*Record) **string{
	schema.FieldReferenceID: func(r *Record) **string { return &r.ReferenceID },
	schema.FieldName:        func(r *Record) **string { return &r.Name },
	schema.FieldDescription: func(r *Record) **string { return &r.Description },
	schema.FieldCloud:       func(r *Record) **string { return &r.Cloud },
	schema.FieldOrgID:       func(r *Record) **string { return &r.OrgID },
	schema.FieldProjectID:   func(r *Record) **string { return &r.ProjectID },
	schema.FieldSource:      func(r *Record) **string { return &r.Source },
	schema.FieldSourceID:    func(r *Record) **string { return &r.SourceID },
	schema.FieldCreatedBy:   func(r *Record) **string { return &r.CreatedBy },
	schema.FieldUpdatedBy:   func(r *Record) **string { return &r.UpdatedBy },
}

// IsColumn reports whether a document field is stored in its own column.
func IsColumn(field string) bool {
	if _, ok := stringColumns[field]; ok {
		return true
	}
	switch field {
	case schema.FieldUUID, schema.FieldActive, schema.FieldCloudMeta, schema.FieldCreatedAt, schema.FieldUpdatedAt:
		return true
	}
	return false
}

func toRecord(doc Document) Record {
	rec := Record{Active: int(schema.StatusActive), Fields: datatypes.JSONMap{}}
	for k, v := range doc {
		if col, ok := stringColumns[k]; ok {
			*col(&rec) = utils.ToStringPtr(v)
			continue
		}
		switch k {
		case schema.FieldUUID:
			rec.UUID = utils.ToString(v)
		case schema.FieldActive:
			if v != nil {
				rec.Active = utils.ToInt(v)
			}
		case schema.FieldCloudMeta:
			rec.CloudMeta = toJSONMap(v)
		case schema.FieldCreatedAt:
			if t, ok := v.(time.Time); ok {
				rec.CreatedAt = t
			}
		case schema.FieldUpdatedAt:
			if t, ok := v.(time.Time); ok {
				rec.UpdatedAt = t
			}
		default:
			rec.Fields[k] = v
		}
	}
	return rec
}

func (r Record) toDocument() Document {
	doc := make(Document, len(r.Fields)+len(stringColumns)+5)
	for k, v := range r.Fields {
		doc[k] = fromJSON(v)
	}
	for field, col := range stringColumns {
		if p := *col(&r); p != nil {
			doc[field] = *p
		} else {
			doc[field] = nil
		}
	}
	doc[schema.FieldUUID] = r.UUID
	doc[schema.FieldActive] = r.Active
	cloudMeta := map[string]any{}
	for k, v := range r.CloudMeta {
		cloudMeta[k] = fromJSON(v)
	}
	doc[schema.FieldCloudMeta] = cloudMeta
	doc[schema.FieldCreatedAt] = r.CreatedAt
	doc[schema.FieldUpdatedAt] = r.UpdatedAt
	return doc
}

// fromJSON replaces the json.Number values of a decoded column with int64,
// or float64 when the number has a fraction, so stored documents carry the
// same value types as translated ones.
func fromJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = fromJSON(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromJSON(e)
		}
		return out
	default:
		return v
	}
}

func toJSONMap(v any) datatypes.JSONMap {
	switch m := v.(type) {
	case nil:
		return nil
	case datatypes.JSONMap:
		return m
	case map[string]any:
		return datatypes.JSONMap(m)
	default:
		return datatypes.JSONMap{"value": v}
	}
}
