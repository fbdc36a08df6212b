package store

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"filesmanager/pkg/domain"
)

func TestMemoryStoreInsertUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u, err := s.InsertUser(ctx, "user@example.com", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = s.InsertUser(ctx, "user@example.com", "other")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// case-sensitive as stored
	_, err = s.InsertUser(ctx, "User@example.com", "other")
	require.NoError(t, err)

	got, ok, err := s.GetUserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, u.ID, got.ID)

	byID, ok, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hash", byID.PasswordHash)

	count, err := s.UserCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestMemoryStoreListFilesPaginatesInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 45; i++ {
		_, err := s.InsertFile(ctx, domain.File{
			UserID:   "owner",
			Name:     fmt.Sprintf("f-%02d", i),
			Type:     domain.TypeFile,
			ParentID: domain.RootParentID,
		})
		require.NoError(t, err)
	}
	_, err := s.InsertFile(ctx, domain.File{UserID: "other", Name: "x", Type: domain.TypeFile, ParentID: domain.RootParentID})
	require.NoError(t, err)

	filter := FileFilter{UserID: "owner", ParentID: domain.RootParentID}
	sizes := []int{20, 20, 5, 0}
	for page, want := range sizes {
		got, err := s.ListFiles(ctx, filter, PageOf(page))
		require.NoError(t, err)
		require.Len(t, got, want, "page %d", page)
		if want > 0 {
			require.Equal(t, fmt.Sprintf("f-%02d", page*domain.PageSize), got[0].Name)
		}
	}
}

func TestMemoryStoreUpdateFile(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	f, err := s.InsertFile(ctx, domain.File{UserID: "owner", Name: "a", Type: domain.TypeFolder, ParentID: domain.RootParentID})
	require.NoError(t, err)

	public := true
	updated, err := s.UpdateFile(ctx, f.ID, FilePatch{IsPublic: &public})
	require.NoError(t, err)
	require.True(t, updated.IsPublic)
	require.Equal(t, f.Name, updated.Name)

	_, err = s.UpdateFile(ctx, "missing", FilePatch{IsPublic: &public})
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestPageOfNegativeIsFirstPage(t *testing.T) {
	require.Equal(t, Pagination{Skip: 0, Limit: domain.PageSize}, PageOf(-3))
	require.Equal(t, Pagination{Skip: 40, Limit: domain.PageSize}, PageOf(2))
}

func TestPageOfSaturatesHugePages(t *testing.T) {
	last := math.MaxInt / domain.PageSize
	require.Equal(t, last*domain.PageSize, PageOf(last).Skip)
	require.Equal(t, math.MaxInt, PageOf(last+1).Skip)
	require.Equal(t, math.MaxInt, PageOf(math.MaxInt).Skip)
	require.Equal(t, domain.PageSize, PageOf(math.MaxInt).Limit)

	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.InsertFile(ctx, domain.File{UserID: "u1", Name: "a", Type: domain.TypeFolder, ParentID: domain.RootParentID})
	require.NoError(t, err)
	got, err := s.ListFiles(ctx, FileFilter{UserID: "u1", ParentID: domain.RootParentID}, PageOf(math.MaxInt))
	require.NoError(t, err)
	require.Empty(t, got)
}
