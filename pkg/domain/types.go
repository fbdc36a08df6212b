package domain

import "time"

// RootParentID is the reserved parent identifier for top-level records.
const RootParentID = "0"

// PageSize is the fixed number of records returned per listing page.
const PageSize = 20

type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

// Valid reports whether t is one of the known record variants.
func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// File is a folder, file or image record. Only non-folders carry a storage key.
type File struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Type       FileType  `json:"type"`
	ParentID   string    `json:"parentId"`
	IsPublic   bool      `json:"isPublic"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"-"`
}

// IsFolder reports whether the record is a folder.
func (f File) IsFolder() bool {
	return f.Type == TypeFolder
}

// IsRoot reports whether the record sits at the top level.
func (f File) IsRoot() bool {
	return f.ParentID == "" || f.ParentID == RootParentID
}
