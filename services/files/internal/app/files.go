package app

import (
	"context"
	"errors"
	"fmt"

	"filesmanager/internal/util"
	"filesmanager/pkg/domain"
	"filesmanager/pkg/storage"
	"filesmanager/pkg/store"
)

// Action is the kind of access requested on a record.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

// Authorize decides whether user may perform action on f.
// Owners may read and write; anyone may read a public record.
func Authorize(user domain.User, f domain.File, action Action) bool {
	owner := user.ID != "" && f.UserID == user.ID
	switch action {
	case ActionWrite:
		return owner
	case ActionRead:
		return owner || f.IsPublic
	default:
		return false
	}
}

// lookup loads a record and applies Authorize. Absent and denied records
// both come back as ErrNotFound.
func (a *App) lookup(ctx context.Context, user domain.User, id string, action Action) (domain.File, error) {
	if id == "" {
		return domain.File{}, ErrNotFound
	}
	f, ok, err := a.files.GetFile(ctx, id)
	if err != nil {
		return domain.File{}, fmt.Errorf("get file: %w", err)
	}
	if !ok || !Authorize(user, f, action) {
		return domain.File{}, ErrNotFound
	}
	return f, nil
}

// NewFile is the input of CreateFile. MalformedData and MalformedParent
// record transport decode failures so they are reported in validation
// order rather than ahead of it.
type NewFile struct {
	Name     string
	Type     domain.FileType
	ParentID string
	IsPublic bool
	Data     []byte

	MalformedData   bool
	MalformedParent bool
}

func (n NewFile) validate() error {
	if n.Name == "" {
		return missing("name", "name")
	}
	if !n.Type.Valid() {
		return missing("type", "type")
	}
	if n.Type != domain.TypeFolder && n.Data == nil && !n.MalformedData {
		return missing("data", "data")
	}
	if n.MalformedData {
		return &ValidationError{Field: "data", Message: "Invalid data"}
	}
	return nil
}

// CreateFile validates and stores a new folder, file or image owned by user.
func (a *App) CreateFile(ctx context.Context, user domain.User, in NewFile) (domain.File, error) {
	if err := in.validate(); err != nil {
		return domain.File{}, err
	}
	if in.MalformedParent {
		return domain.File{}, ErrParentNotFound
	}
	parentID := in.ParentID
	if parentID == "" {
		parentID = domain.RootParentID
	}
	if parentID != domain.RootParentID {
		parent, ok, err := a.files.GetFile(ctx, parentID)
		if err != nil {
			return domain.File{}, fmt.Errorf("get parent: %w", err)
		}
		if !ok {
			return domain.File{}, ErrParentNotFound
		}
		if !parent.IsFolder() {
			return domain.File{}, ErrParentNotAFolder
		}
		// foreign folders are indistinguishable from missing ones
		if !Authorize(user, parent, ActionWrite) {
			return domain.File{}, ErrParentNotFound
		}
	}

	rec := domain.File{
		UserID:    user.ID,
		Name:      in.Name,
		Type:      in.Type,
		ParentID:  parentID,
		IsPublic:  in.IsPublic,
		CreatedAt: a.now().UTC(),
	}
	if in.Type != domain.TypeFolder {
		handle, err := a.blobs.Write(ctx, in.Data)
		if err != nil {
			return domain.File{}, fmt.Errorf("write content: %w", err)
		}
		rec.StorageKey = handle
	}
	created, err := a.files.InsertFile(ctx, rec)
	if err != nil {
		if rec.StorageKey != "" {
			if delErr := a.blobs.Delete(ctx, rec.StorageKey); delErr != nil {
				util.LoggerFromContext(ctx).Warn("orphaned content after failed insert", "err", delErr)
			}
		}
		return domain.File{}, fmt.Errorf("insert file: %w", err)
	}
	return created, nil
}

// ListChildren returns one page of user's records under parentID (root when empty).
func (a *App) ListChildren(ctx context.Context, user domain.User, parentID string, page int) ([]domain.File, error) {
	if parentID == "" {
		parentID = domain.RootParentID
	}
	files, err := a.files.ListFiles(ctx, store.FileFilter{UserID: user.ID, ParentID: parentID}, store.PageOf(page))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// GetFile returns a record the user may read.
func (a *App) GetFile(ctx context.Context, user domain.User, id string) (domain.File, error) {
	return a.lookup(ctx, user, id, ActionRead)
}

// SetPublic changes visibility of a record owned by user.
func (a *App) SetPublic(ctx context.Context, user domain.User, id string, value bool) (domain.File, error) {
	if _, err := a.lookup(ctx, user, id, ActionWrite); err != nil {
		return domain.File{}, err
	}
	updated, err := a.files.UpdateFile(ctx, id, store.FilePatch{IsPublic: &value})
	if errors.Is(err, store.ErrFileNotFound) {
		return domain.File{}, ErrNotFound
	}
	if err != nil {
		return domain.File{}, fmt.Errorf("update file: %w", err)
	}
	return updated, nil
}

// Publish makes a record public.
func (a *App) Publish(ctx context.Context, user domain.User, id string) (domain.File, error) {
	return a.SetPublic(ctx, user, id, true)
}

// Unpublish makes a record private.
func (a *App) Unpublish(ctx context.Context, user domain.User, id string) (domain.File, error) {
	return a.SetPublic(ctx, user, id, false)
}

// ReadContent returns the record and its content bytes. user may be the
// zero value for anonymous callers, who can only read public records.
func (a *App) ReadContent(ctx context.Context, user domain.User, id string) (domain.File, []byte, error) {
	if id == "" {
		return domain.File{}, nil, ErrNotFound
	}
	f, ok, err := a.files.GetFile(ctx, id)
	if err != nil {
		return domain.File{}, nil, fmt.Errorf("get file: %w", err)
	}
	if !ok {
		return domain.File{}, nil, ErrNotFound
	}
	if f.IsFolder() {
		return domain.File{}, nil, ErrFolderHasNoContent
	}
	if !Authorize(user, f, ActionRead) || f.StorageKey == "" {
		return domain.File{}, nil, ErrNotFound
	}
	data, err := a.blobs.Read(ctx, f.StorageKey)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return domain.File{}, nil, ErrNotFound
	}
	if err != nil {
		return domain.File{}, nil, fmt.Errorf("read content: %w", err)
	}
	return f, data, nil
}
