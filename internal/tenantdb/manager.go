package tenantdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Manager hands out one message store per tenant, creating the tenant's
// database file on first use.
type Manager struct {
	dir    string
	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tenant database directory: %w", err)
	}

	return &Manager{
		dir:    dir,
		stores: make(map[string]*Store),
	}, nil
}

// For returns the store for a tenant, opening it if necessary.
func (m *Manager) For(tenantId string) (MessageStore, error) {
	if err := validateTenantId(tenantId); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[tenantId]; ok {
		return store, nil
	}

	store, err := NewStore(filepath.Join(m.dir, tenantId+".db"))
	if err != nil {
		return nil, fmt.Errorf("open tenant database %q: %w", tenantId, err)
	}

	m.stores[tenantId] = store
	return store, nil
}

// Tenants lists tenants that currently have a database file on disk.
func (m *Manager) Tenants() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}

	var tenants []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		tenants = append(tenants, strings.TrimSuffix(e.Name(), ".db"))
	}

	return tenants, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for id, store := range m.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.stores, id)
	}

	return firstErr
}

// validateTenantId rejects ids that could escape the data directory.
func validateTenantId(tenantId string) error {
	if tenantId == "" {
		return fmt.Errorf("tenant id cannot be empty")
	}
	if strings.ContainsAny(tenantId, "/\\") || strings.Contains(tenantId, "..") {
		return fmt.Errorf("invalid tenant id %q", tenantId)
	}
	return nil
}
