package services

import (
	"testing"

	"despacho_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSnapshotTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Snapshot{}))
	return db
}

func TestLocalStore(t *testing.T) {
	store := NewLocalStore(setupSnapshotTestDB(t))

	t.Run("LoadWithoutSnapshot", func(t *testing.T) {
		tree, found, err := store.Load()
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, tree)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		tree := models.NewDocumentTree()
		tree.Cases["case-1"] = &models.Case{
			ID:     "case-1",
			Actor:  "Juan Pérez",
			Title:  "Juan Pérez vs María López",
			Status: models.CaseStatusNuevo,
			Tasks:  []models.Task{{ID: "t-1", Title: "Contestar", Date: "2026-09-01"}},
		}
		tree.Promotions = []models.Promotion{{ID: "p-1", Name: "escrito.pdf", Status: models.PromotionStatusAnalyzing}}

		require.NoError(t, store.Save(tree))

		loaded, found, err := store.Load()
		require.NoError(t, err)
		require.True(t, found)
		require.Contains(t, loaded.Cases, "case-1")
		assert.Equal(t, "Juan Pérez", loaded.Cases["case-1"].Actor)
		assert.Len(t, loaded.Cases["case-1"].Tasks, 1)
		assert.Len(t, loaded.Promotions, 1)
		assert.Len(t, loaded.States, 3)
	})

	t.Run("SaveOverwritesSingleRow", func(t *testing.T) {
		tree := models.NewDocumentTree()
		require.NoError(t, store.Save(tree))

		loaded, found, err := store.Load()
		require.NoError(t, err)
		require.True(t, found)
		assert.Empty(t, loaded.Cases)

		var count int64
		store.DB.Model(&models.Snapshot{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("LoadNormalizesNilCollections", func(t *testing.T) {
		snapshot := models.Snapshot{Key: SnapshotKey, Data: []byte(`{"cases":{"c1":{"id":"c1"}}}`)}
		require.NoError(t, store.DB.Save(&snapshot).Error)

		loaded, found, err := store.Load()
		require.NoError(t, err)
		require.True(t, found)
		assert.NotNil(t, loaded.Promotions)
		assert.NotNil(t, loaded.Cases["c1"].Images)
		assert.Len(t, loaded.States, 3)
	})
}
