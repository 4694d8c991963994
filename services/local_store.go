package services

import (
	"encoding/json"
	"fmt"

	"despacho_app_go/models"

	"gorm.io/gorm"
)

// SnapshotKey is the single row key under which the document tree lives
const SnapshotKey = "tree"

// LocalStore persists the full document tree as one serialized snapshot,
// rewritten wholesale on every mutation. Save is best-effort: the caller
// logs failures and keeps the in-memory tree authoritative for the
// session.
type LocalStore struct {
	DB *gorm.DB
}

func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{DB: db}
}

// Load reads the persisted tree. The second return value reports whether
// a snapshot existed at all.
func (s *LocalStore) Load() (*models.DocumentTree, bool, error) {
	var snapshot models.Snapshot
	err := s.DB.First(&snapshot, "key = ?", SnapshotKey).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var tree models.DocumentTree
	if err := json.Unmarshal(snapshot.Data, &tree); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	tree.Normalize()
	return &tree, true, nil
}

// Save serializes the tree and rewrites the snapshot row
func (s *LocalStore) Save(tree *models.DocumentTree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	snapshot := models.Snapshot{Key: SnapshotKey, Data: data}
	if err := s.DB.Save(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
