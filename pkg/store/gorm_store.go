package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"guestbook/pkg/domain"
)

const migrateLockID int64 = 41530215

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db    *gorm.DB
	table string
}

// NewGormStore opens the DB and migrates the entry table.
func NewGormStore(dsn, table string) (*GormStore, error) {
	table, err := resolveTable(table)
	if err != nil {
		return nil, err
	}
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.Table(table).AutoMigrate(&EntryModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db, table: table}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// InsertEntry creates a row; Postgres assigns the id from its sequence.
func (s *GormStore) InsertEntry(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	model := entryToModel(e)
	if err := s.db.WithContext(ctx).Table(s.table).Create(&model).Error; err != nil {
		return domain.Entry{}, err
	}
	return entryFromModel(model), nil
}

// ListEntries returns all entries, newest id first.
func (s *GormStore) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	var models []EntryModel
	if err := s.db.WithContext(ctx).Table(s.table).Order("id DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Entry, 0, len(models))
	for _, m := range models {
		res = append(res, entryFromModel(m))
	}
	return res, nil
}

// DeleteEntry removes an entry by id.
func (s *GormStore) DeleteEntry(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).Delete(&EntryModel{}).Error
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
