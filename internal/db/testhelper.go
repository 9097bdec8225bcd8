package db

import (
	"context"
	"path/filepath"
	"testing"
)

// OpenTestMetastore opens a migrated metastore in t.TempDir() and closes it
// when the test ends.
func OpenTestMetastore(t *testing.T) *Metastore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	ms, err := OpenMetastore(context.Background(), path, 4)
	if err != nil {
		t.Fatalf("open test metastore: %v", err)
	}
	t.Cleanup(func() { _ = ms.Close() })
	return ms
}
