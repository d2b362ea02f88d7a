// Package store persists named queries (a Condition paired with an
// optional Modification, both canonically encoded) in sqlite via gorm,
// the way the teacher persists a Stage's TargetQuery as
// gorm.io/datatypes.JSON (models.Stage.TargetQuery) in db/sqlite.go.
package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/queryalgebra/codec"
	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/modification"
)

// SavedQuery is one row of the saved_queries table: a named Condition,
// optionally paired with a Modification to apply to whatever matches
// it, both stored in their canonical wire form.
type SavedQuery struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)"`
	Name        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	RecordType  string         `gorm:"type:varchar(255);not null;index"`
	Condition   datatypes.JSON `gorm:"type:jsonb;not null"`
	Modification datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

// Store wraps a gorm.DB scoped to the saved_queries table.
type Store struct {
	db *gorm.DB
}

// Open connects to a sqlite database at dsn (a file path, or ":memory:"
// for an ephemeral store) and runs migrations, mirroring the teacher's
// db.Connect/db.Migrate split.
func Open(dsn string, debug bool) (*Store, error) {
	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := db.AutoMigrate(&SavedQuery{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Save canonically encodes cond (and mod, if non-nil) against leaf and
// upserts a SavedQuery row under name.
func (s *Store) Save(name, recordType string, leaf *descriptor.Descriptor, cond condition.Condition, mod modification.Modification) error {
	condWire, err := codec.EncodeCondition(leaf, cond)
	if err != nil {
		return fmt.Errorf("store: encode condition: %w", err)
	}
	condJSON, err := marshalJSON(condWire)
	if err != nil {
		return err
	}

	row := SavedQuery{
		ID:         uuid.NewString(),
		Name:       name,
		RecordType: recordType,
		Condition:  condJSON,
	}

	if mod != nil {
		modWire, err := codec.EncodeModification(leaf, mod)
		if err != nil {
			return fmt.Errorf("store: encode modification: %w", err)
		}
		modJSON, err := marshalJSON(modWire)
		if err != nil {
			return err
		}
		row.Modification = modJSON
	}

	return s.db.Clauses(onConflictUpdate()).Create(&row).Error
}

// Load fetches the named saved query and decodes it against leaf.
func (s *Store) Load(name string, leaf *descriptor.Descriptor) (condition.Condition, modification.Modification, error) {
	var row SavedQuery
	if err := s.db.Where("name = ?", name).First(&row).Error; err != nil {
		return nil, nil, fmt.Errorf("store: load %q: %w", name, err)
	}

	condWire, err := unmarshalJSON(row.Condition)
	if err != nil {
		return nil, nil, err
	}
	cond, err := codec.DecodeCondition(leaf, condWire)
	if err != nil {
		return nil, nil, fmt.Errorf("store: decode condition %q: %w", name, err)
	}

	var mod modification.Modification
	if len(row.Modification) > 0 {
		modWire, err := unmarshalJSON(row.Modification)
		if err != nil {
			return nil, nil, err
		}
		mod, err = codec.DecodeModification(leaf, modWire)
		if err != nil {
			return nil, nil, fmt.Errorf("store: decode modification %q: %w", name, err)
		}
	}

	return cond, mod, nil
}

// List returns the names of every saved query for recordType, most
// recently updated first.
func (s *Store) List(recordType string) ([]string, error) {
	var rows []SavedQuery
	q := s.db.Order("updated_at desc")
	if recordType != "" {
		q = q.Where("record_type = ?", recordType)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

// Delete removes the named saved query, if present.
func (s *Store) Delete(name string) error {
	return s.db.Where("name = ?", name).Delete(&SavedQuery{}).Error
}

// Close releases the underlying sql.DB connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
