package storage

import (
	"context"
	"sync"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// memorySnapshot keeps the location table in process memory
type memorySnapshot struct {
	records []models.LocationRecord
	mu      sync.RWMutex
}

func (m *memorySnapshot) readAll(_ context.Context) ([]models.LocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.LocationRecord, len(m.records))
	copy(result, m.records)
	return result, nil
}

func (m *memorySnapshot) writeAll(_ context.Context, records []models.LocationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make([]models.LocationRecord, len(records))
	copy(m.records, records)
	return nil
}

// memoryKV is a key-value slot map in process memory
type memoryKV struct {
	entries map[string][]byte
	mu      sync.RWMutex
}

func newMemoryKV() *memoryKV {
	return &memoryKV{
		entries: make(map[string][]byte),
	}
}

func (m *memoryKV) get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.entries[key]
	return value, exists, nil
}

func (m *memoryKV) put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}
