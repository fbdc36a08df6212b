package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filesmanager/internal/util"
	"filesmanager/pkg/domain"
)

const migrateLockID int64 = 51873301

// GormStore implements UserStore and FileStore using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &FileModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
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

// InsertUser creates a user; a taken email yields ErrDuplicateEmail.
func (s *GormStore) InsertUser(ctx context.Context, email, passwordHash string) (domain.User, error) {
	model := UserModel{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(ctx context.Context, id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// UserCount returns number of users.
func (s *GormStore) UserCount(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// InsertFile stores a new record.
func (s *GormStore) InsertFile(ctx context.Context, f domain.File) (domain.File, error) {
	if f.ID == "" {
		f.ID = util.NewID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	model := fileToModel(f)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.File{}, err
	}
	return fileFromModel(model), nil
}

// GetFile retrieves a record by ID.
func (s *GormStore) GetFile(ctx context.Context, id string) (domain.File, bool, error) {
	var model FileModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.File{}, false, nil
		}
		return domain.File{}, false, err
	}
	return fileFromModel(model), true, nil
}

// UpdateFile applies a patch as a single-row update and returns the new state.
func (s *GormStore) UpdateFile(ctx context.Context, id string, patch FilePatch) (domain.File, error) {
	updates := map[string]any{}
	if patch.IsPublic != nil {
		updates["is_public"] = *patch.IsPublic
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&FileModel{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return domain.File{}, res.Error
		}
	}
	f, ok, err := s.GetFile(ctx, id)
	if err != nil {
		return domain.File{}, err
	}
	if !ok {
		return domain.File{}, ErrFileNotFound
	}
	return f, nil
}

// ListFiles returns one page of matching records ordered by creation.
func (s *GormStore) ListFiles(ctx context.Context, filter FileFilter, page Pagination) ([]domain.File, error) {
	var models []FileModel
	tx := s.db.WithContext(ctx).
		Where("user_id = ? AND parent_id = ?", filter.UserID, filter.ParentID).
		Order("created_at ASC").
		Order("id ASC").
		Offset(page.Skip)
	if page.Limit > 0 {
		tx = tx.Limit(page.Limit)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.File, 0, len(models))
	for _, m := range models {
		res = append(res, fileFromModel(m))
	}
	return res, nil
}

// FileCount returns number of file records.
func (s *GormStore) FileCount(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&FileModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Ping checks database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func fileToModel(f domain.File) FileModel {
	parentID := f.ParentID
	if parentID == "" {
		parentID = domain.RootParentID
	}
	return FileModel{
		ID:         f.ID,
		UserID:     f.UserID,
		ParentID:   parentID,
		Name:       f.Name,
		Type:       string(f.Type),
		IsPublic:   f.IsPublic,
		StorageKey: f.StorageKey,
		CreatedAt:  f.CreatedAt,
	}
}

func fileFromModel(m FileModel) domain.File {
	return domain.File{
		ID:         m.ID,
		UserID:     m.UserID,
		ParentID:   m.ParentID,
		Name:       m.Name,
		Type:       domain.FileType(m.Type),
		IsPublic:   m.IsPublic,
		StorageKey: m.StorageKey,
		CreatedAt:  m.CreatedAt,
	}
}
