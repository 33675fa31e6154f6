// Package records reads published FAQ entries from the MySQL content store.
package records

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campushelp/faqrag/internal/domain"
)

// questionRow mirrors the questions table used by the CMS.
type questionRow struct {
	ID       int64  `gorm:"column:id;primaryKey"`
	Title    string `gorm:"column:title"`
	Content  string `gorm:"column:content"`
	PostType string `gorm:"column:post_type"`
	Langues  string `gorm:"column:langues"`
	Ecoles   string `gorm:"column:ecoles"`
	Status   string `gorm:"column:status"`
}

func (questionRow) TableName() string { return "questions" }

const statusPublished = "publish"

// Repo implements the record source over a gorm MySQL connection.
type Repo struct {
	db *gorm.DB
}

// New creates a records repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Open connects to MySQL and configures the connection pool.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// PublishedRecords returns all published FAQ entries.
func (r *Repo) PublishedRecords(ctx context.Context) ([]domain.Record, error) {
	var rows []questionRow
	err := r.db.WithContext(ctx).
		Where("status = ?", statusPublished).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select published records: %w", err)
	}
	return toRecords(rows), nil
}

// PublishedIDs returns the IDs of all published FAQ entries.
func (r *Repo) PublishedIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&questionRow{}).
		Where("status = ?", statusPublished).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("select published ids: %w", err)
	}
	return ids, nil
}

// RecordsByIDs returns the published entries among the given IDs.
// IDs that are missing or unpublished are simply absent from the result.
func (r *Repo) RecordsByIDs(ctx context.Context, ids []int64) ([]domain.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []questionRow
	err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, statusPublished).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select records by ids: %w", err)
	}
	return toRecords(rows), nil
}

// Ping checks the database connection.
func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}
	return nil
}

func toRecords(rows []questionRow) []domain.Record {
	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records
}

func toRecord(row questionRow) domain.Record {
	return domain.Record{
		ID:       row.ID,
		Title:    row.Title,
		Content:  row.Content,
		Category: row.PostType,
		Language: row.Langues,
		Schools:  row.Ecoles,
	}
}
