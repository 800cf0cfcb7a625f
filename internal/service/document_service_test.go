package service_test

import (
	"context"
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
)

func TestDocumentService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewDocumentService(repository.NewDocumentRepository(db), store, policy.Default(), zap.NewNop())

	writer := testutil.CreateTestUser(t, db, domain.RoleContentWriter)
	manager := testutil.CreateTestUser(t, db, domain.RoleManager)
	hr := testutil.CreateTestUser(t, db, domain.RoleHR)

	path := storeFile(t, store, "Contract.PDF")
	size := int64(1048576)
	req := &domain.CreateDocumentRequest{
		Title:    "Master services agreement",
		FilePath: path,
		FileName: "Contract.PDF",
		FileSize: &size,
		MimeType: "application/pdf",
		Category: domain.DocumentCategoryContract,
	}

	t.Run("upload_documents grants create", func(t *testing.T) {
		dto, err := svc.Create(testutil.AsUser(context.Background(), writer), req)
		require.NoError(t, err)
		assert.Equal(t, "1 MB", dto.FileSizeFormatted)
		assert.Equal(t, "pdf", dto.FileExtension)
		assert.True(t, dto.IsPDF)
		assert.False(t, dto.IsImage)
		assert.Equal(t, writer.ID, dto.UploadedBy)

		_, err = svc.Update(testutil.AsUser(context.Background(), writer), dto.ID, req)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		assert.ErrorIs(t, svc.Delete(testutil.AsUser(context.Background(), writer), dto.ID), service.ErrPermissionDenied)

		require.NoError(t, svc.Delete(testutil.AsUser(context.Background(), manager), dto.ID))
		exists, err := store.Exists(context.Background(), path)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("hr cannot upload", func(t *testing.T) {
		_, err := svc.Create(testutil.AsUser(context.Background(), hr), req)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("default category", func(t *testing.T) {
		dto, err := svc.Create(testutil.AsUser(context.Background(), manager), &domain.CreateDocumentRequest{
			Title:    "Logo",
			FilePath: "x/y/logo.png",
			FileName: "logo.png",
			MimeType: "image/png",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentCategoryOther, dto.Category)
		assert.True(t, dto.IsImage)
		assert.Equal(t, "N/A", dto.FileSizeFormatted)

		result, err := svc.BulkDelete(testutil.AsUser(context.Background(), manager), []uint{dto.ID, 777})
		require.NoError(t, err)
		assert.Equal(t, []uint{dto.ID}, result.Processed)
		assert.Equal(t, []domain.BatchItemResult{{ID: 777, Reason: "not found"}}, result.Skipped)
	})
}
