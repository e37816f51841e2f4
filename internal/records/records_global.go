package records

import (
	"fmt"
	"sync"

	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
)

// Global store instance for command logic.
var (
	globalStore contract.RecordStore = NoneStore{}
	globalMu    sync.RWMutex
	initOnce    sync.Once
	closeOnce   sync.Once
)

// InitRecords opens the global record store. Later calls are no-ops.
func InitRecords(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		store, err := NewRecordStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize record store: %w", err)
			return
		}
		globalMu.Lock()
		globalStore = store
		globalMu.Unlock()
	})
	return initErr
}

// Store returns the global record store, or a NoneStore before InitRecords.
func Store() contract.RecordStore {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalStore
}

// CloseRecords should be called on application shutdown.
func CloseRecords() {
	closeOnce.Do(func() {
		globalMu.Lock()
		defer globalMu.Unlock()
		if err := closeStore(globalStore); err != nil {
			contract.LogWarn("Failed to close record store", err)
		}
	})
}

// closeStore closes store and names the backend in any error.
func closeStore(store contract.RecordStore) error {
	if store == nil {
		return nil
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("closing %T: %w", store, err)
	}
	return nil
}
