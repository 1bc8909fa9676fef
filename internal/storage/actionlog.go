package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"giga_trading/internal/models"
)

// ActionLog is the append-only decision store consumed by the orchestrator.
// Write appends; Read returns records in insertion order; Latest is the
// effective current decision for a (user, category) pair, nil when the log is
// cold (that is not an error).
type ActionLog interface {
	Write(user, category string, action map[string]any) error
	Read(filter Filter) ([]models.ActionRecord, error)
	Latest(user, category string) (*models.ActionRecord, error)
}

// Filter narrows a Read. Zero-value fields are ignored.
type Filter struct {
	User     string
	Category string
}

type actionModel struct {
	ID        uint      `gorm:"primaryKey"`
	TraceID   string    `gorm:"size:36"`
	User      string    `gorm:"index:idx_actions_user_category"`
	Category  string    `gorm:"index:idx_actions_user_category"`
	Timestamp time.Time `gorm:"index"`
	Action    datatypes.JSON
}

func (actionModel) TableName() string { return "actions" }

// Store implements ActionLog on SQLite via gorm.
type Store struct {
	db *gorm.DB
}

// Open creates (or opens) the action log database at path and migrates the
// schema. WAL keeps concurrent readers cheap; writes stay serialized.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("action log: database path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("action log: create dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&actionModel{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Write appends one record. The action map is stored as JSON; each record
// gets a fresh trace ID for cross-referencing with external logs.
func (s *Store) Write(user, category string, action map[string]any) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("action log: marshal action: %w", err)
	}
	rec := actionModel{
		TraceID:   uuid.NewString(),
		User:      user,
		Category:  category,
		Timestamp: time.Now().UTC(),
		Action:    datatypes.JSON(data),
	}
	return s.db.Create(&rec).Error
}

// Read returns matching records ordered by insertion.
func (s *Store) Read(filter Filter) ([]models.ActionRecord, error) {
	q := s.db.Model(&actionModel{}).Order("id asc")
	if filter.User != "" {
		q = q.Where("user = ?", filter.User)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var rows []actionModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.ActionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Latest returns the most recent record for (user, category), or nil when
// none exists.
func (s *Store) Latest(user, category string) (*models.ActionRecord, error) {
	var row actionModel
	err := s.db.
		Where("user = ? AND category = ?", user, category).
		Order("id desc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := toRecord(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func toRecord(row actionModel) (models.ActionRecord, error) {
	var action map[string]any
	if len(row.Action) > 0 {
		if err := json.Unmarshal(row.Action, &action); err != nil {
			return models.ActionRecord{}, fmt.Errorf("action log: record %d has corrupt action JSON: %w", row.ID, err)
		}
	}
	return models.ActionRecord{
		ID:        row.ID,
		TraceID:   row.TraceID,
		User:      row.User,
		Timestamp: row.Timestamp,
		Category:  row.Category,
		Action:    action,
	}, nil
}
