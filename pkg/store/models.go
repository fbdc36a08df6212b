package store

import "time"

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type FileModel struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"not null;index:idx_file_owner_parent,priority:1"`
	ParentID   string `gorm:"not null;index:idx_file_owner_parent,priority:2"`
	Name       string `gorm:"not null"`
	Type       string `gorm:"not null"`
	IsPublic   bool   `gorm:"not null;default:false"`
	StorageKey string
	CreatedAt  time.Time `gorm:"not null;index"`
}

func (UserModel) TableName() string { return "users" }

func (FileModel) TableName() string { return "files" }
