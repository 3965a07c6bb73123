package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type statsReaderStub struct {
	snapshots int
	stats     models.SystemStats
}

func (s *statsReaderStub) Snapshot(ctx context.Context) (*models.SystemStats, error) {
	s.snapshots++
	stats := s.stats
	return &stats, nil
}

type cacheStoreStub struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newCacheStoreStub() *cacheStoreStub {
	return &cacheStoreStub{entries: make(map[string][]byte)}
}

func (s *cacheStoreStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *cacheStoreStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = payload
	return nil
}

func (s *cacheStoreStub) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func TestStatsServiceSnapshotCachesResult(t *testing.T) {
	reader := &statsReaderStub{stats: models.SystemStats{TotalSeafarers: 10, PendingVerifications: 2}}
	cacheSvc := NewCacheService(newCacheStoreStub(), nil, time.Minute, nil, true)
	svc := NewStatsService(reader, cacheSvc, time.Minute, nil)

	stats, hit, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 10, stats.TotalSeafarers)
	require.Equal(t, 1, reader.snapshots)

	stats, hit, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 2, stats.PendingVerifications)
	require.Equal(t, 1, reader.snapshots)
}

func TestStatsServiceInvalidateForcesRecompute(t *testing.T) {
	reader := &statsReaderStub{stats: models.SystemStats{TotalAgents: 3}}
	cacheSvc := NewCacheService(newCacheStoreStub(), nil, time.Minute, nil, true)
	svc := NewStatsService(reader, cacheSvc, time.Minute, nil)

	_, _, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, reader.snapshots)

	svc.Invalidate(context.Background())

	_, hit, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, reader.snapshots)
}

func TestStatsServiceSkipsDisabledCache(t *testing.T) {
	reader := &statsReaderStub{stats: models.SystemStats{TotalSeafarers: 1}}
	cacheSvc := NewCacheService(nil, nil, time.Minute, nil, false)
	svc := NewStatsService(reader, cacheSvc, time.Minute, nil)

	for i := 0; i < 3; i++ {
		_, hit, err := svc.Snapshot(context.Background())
		require.NoError(t, err)
		require.False(t, hit)
	}
	require.Equal(t, 3, reader.snapshots)
}
