package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"github.com/opsdesk/admin-api/internal/storage"
	"github.com/opsdesk/admin-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupContentService(t *testing.T) (*service.ContentService, *storage.LocalStorage, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewContentService(repository.NewContentRepository(db), store, policy.Default(), zap.NewNop())
	return svc, store, db
}

func storeFile(t *testing.T, store *storage.LocalStorage, name string) string {
	path, _, err := store.Upload(context.Background(), name, strings.NewReader("data"))
	require.NoError(t, err)
	return path
}

func TestContentService_CreateAndUpdate(t *testing.T) {
	svc, _, db := setupContentService(t)
	writer := testutil.CreateTestUser(t, db, domain.RoleContentWriter)
	ctx := testutil.AsUser(context.Background(), writer)
	size := int64(1536)

	dto, err := svc.Create(ctx, &domain.CreateContentRequest{
		Title:    "Hero banner",
		Type:     domain.ContentTypeImage,
		FilePath: "ab/cd/banner.png",
		FileName: "banner.png",
		FileSize: &size,
		Tags:     []string{"homepage", "q3"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContentStatusDraft, dto.Status)
	assert.Equal(t, "1.5 KB", dto.FileSizeFormatted)
	assert.Equal(t, writer.ID, dto.CreatedBy)

	got, err := svc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"homepage", "q3"}, got.Tags)

	updated, err := svc.Update(ctx, dto.ID, &domain.UpdateContentRequest{
		CreateContentRequest: domain.CreateContentRequest{
			Title:    "Hero banner v2",
			Type:     domain.ContentTypeImage,
			FilePath: "ab/cd/banner.png",
			FileName: "banner.png",
		},
		Status: domain.ContentStatusArchived,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hero banner v2", updated.Title)
	assert.Equal(t, domain.ContentStatusArchived, updated.Status)
	assert.Equal(t, []string{}, updated.Tags)

	designer := testutil.CreateTestUser(t, db, domain.RoleDesigner)
	_, err = svc.Create(testutil.AsUser(context.Background(), designer), &domain.CreateContentRequest{Title: "x"})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestContentService_Approve(t *testing.T) {
	svc, _, db := setupContentService(t)
	writer := testutil.CreateTestUser(t, db, domain.RoleContentWriter)
	manager := testutil.CreateTestUser(t, db, domain.RoleManager)
	draft := testutil.CreateTestContent(t, db, writer, domain.ContentStatusDraft, "a/b/one.png")

	_, err := svc.Approve(testutil.AsUser(context.Background(), writer), draft.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	dto, err := svc.Approve(testutil.AsUser(context.Background(), manager), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentStatusApproved, dto.Status)
	require.NotNil(t, dto.ApprovedBy)
	assert.Equal(t, manager.ID, *dto.ApprovedBy)
	assert.NotNil(t, dto.ApprovedAt)

	_, err = svc.Approve(testutil.AsUser(context.Background(), manager), draft.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestContentService_BulkApprove(t *testing.T) {
	svc, _, db := setupContentService(t)
	writer := testutil.CreateTestUser(t, db, domain.RoleContentWriter)
	manager := testutil.CreateTestUser(t, db, domain.RoleManager)
	a := testutil.CreateTestContent(t, db, writer, domain.ContentStatusDraft, "a/b/a.png")
	b := testutil.CreateTestContent(t, db, writer, domain.ContentStatusArchived, "a/b/b.png")
	c := testutil.CreateTestContent(t, db, writer, domain.ContentStatusDraft, "a/b/c.png")

	result, err := svc.BulkApprove(testutil.AsUser(context.Background(), manager), []uint{a.ID, b.ID, c.ID, 404})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, c.ID}, result.Processed)
	assert.Equal(t, []domain.BatchItemResult{
		{ID: b.ID, Reason: "status archived"},
		{ID: 404, Reason: "not found"},
	}, result.Skipped)
}

func TestContentService_DeleteRemovesFile(t *testing.T) {
	svc, store, db := setupContentService(t)
	writer := testutil.CreateTestUser(t, db, domain.RoleContentWriter)
	ctx := testutil.AsUser(context.Background(), writer)

	path := storeFile(t, store, "poster.png")
	content := testutil.CreateTestContent(t, db, writer, domain.ContentStatusDraft, path)

	require.NoError(t, svc.Delete(ctx, content.ID))

	exists, err := store.Exists(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.GetByID(ctx, content.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	t.Run("bulk", func(t *testing.T) {
		p1 := storeFile(t, store, "one.png")
		p2 := storeFile(t, store, "two.png")
		c1 := testutil.CreateTestContent(t, db, writer, domain.ContentStatusDraft, p1)
		c2 := testutil.CreateTestContent(t, db, writer, domain.ContentStatusApproved, p2)

		result, err := svc.BulkDelete(ctx, []uint{c1.ID, 12345, c2.ID})
		require.NoError(t, err)
		assert.Equal(t, []uint{c1.ID, c2.ID}, result.Processed)
		assert.Len(t, result.Skipped, 1)

		for _, p := range []string{p1, p2} {
			exists, err := store.Exists(context.Background(), p)
			require.NoError(t, err)
			assert.False(t, exists)
		}
	})
}
