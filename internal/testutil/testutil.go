package testutil

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/hivechat/hivechat/internal/tenantdb"
)

func TestLogger(t *testing.T) *log.Logger {
	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
	})
	return logger
}

// TempStore opens a throwaway tenant message store backed by a file in the
// test's temp directory.
func TempStore(t *testing.T) *tenantdb.Store {
	t.Helper()

	store, err := tenantdb.NewStore(filepath.Join(t.TempDir(), "tenant.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	return store
}
