package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/leen324/locscope/core/agg"
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
)

// currentCacheVersion defines the version of the cached ingest schema
const currentCacheVersion = 1

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// cachedParse parses raw CSV, reusing a cached result for identical input.
func cachedParse(raw []byte, store contract.CacheStore, opts agg.ParseOptions) ([]schema.LineRecord, error) {
	if store == nil {
		return agg.ReadCSV(bytes.NewReader(raw), opts)
	}

	key := generateCacheKey(raw, opts)

	// Check for cache hit
	if records, ok := checkCacheHit(store, key); ok {
		contract.Logger.WithField("key", key[:12]).Debug("Ingest cache hit")
		return records, nil
	}

	// Cache miss: compute and store
	return computeAndStore(raw, store, key, opts)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) ([]schema.LineRecord, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > contract.IngestCacheMaxAge {
		return nil, false
	}
	plain, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, false
	}
	var records []schema.LineRecord
	if err := json.Unmarshal(plain, &records); err != nil {
		return nil, false
	}
	return records, true
}

// computeAndStore parses the input and stores the compressed result
func computeAndStore(raw []byte, store contract.CacheStore, key string, opts agg.ParseOptions) ([]schema.LineRecord, error) {
	records, err := agg.ReadCSV(bytes.NewReader(raw), opts)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := store.Set(key, zstdEncoder.EncodeAll(data, nil), currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to write ingest cache", err)
		}
	}
	return records, nil
}

// generateCacheKey hashes the raw input together with the options that affect parsing
func generateCacheKey(raw []byte, opts agg.ParseOptions) string {
	h := sha256.New()
	h.Write(raw)
	locName := ""
	if opts.Location != nil {
		locName = opts.Location.String()
	}
	_, _ = fmt.Fprintf(h, "|%s|%s|v%d", opts.Policy, locName, currentCacheVersion)
	return fmt.Sprintf("%x", h.Sum(nil))
}
