// Package iocache persists ingest results and load history across runs.
package iocache

import (
	"sync"

	"github.com/leen324/locscope/internal/contract"
)

// CacheStoreManager manages the ingest cache and history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	ingest       contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetIngestStore returns the ingest CacheStore.
func (mgr *CacheStoreManager) GetIngestStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.ingest
}

// GetHistoryStore returns the load HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
