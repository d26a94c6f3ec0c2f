package testsupport

import (
	"testing"

	"votd/internal/collection"
	"votd/internal/config"
	"votd/internal/verbcache"
)

// MustOpenCache opens the configured verb cache and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *verbcache.Cache {
	t.Helper()
	cache, err := verbcache.Open(cfg.Paths.CachePath, nil)
	if err != nil {
		t.Fatalf("verbcache.Open: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

// MustOpenCollection opens the configured working collection and registers
// cleanup.
func MustOpenCollection(t testing.TB, cfg *config.Config) *collection.Collection {
	t.Helper()
	coll, err := collection.Open(cfg.Paths.CollectionPath, nil)
	if err != nil {
		t.Fatalf("collection.Open: %v", err)
	}
	t.Cleanup(func() { _ = coll.Close() })
	return coll
}
