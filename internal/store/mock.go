package store

import (
	"sync"

	"fjacquet/budget-csv/internal/textutils"
)

// MockLearningStore is an in-memory learning map for testing.
type MockLearningStore struct {
	mu       sync.Mutex
	Mappings map[string]string
	Recorded []LearningEntry

	RecordError error
}

// NewMockLearningStore returns a MockLearningStore holding mappings, keyed
// by simplified name.
func NewMockLearningStore(mappings map[string]string) *MockLearningStore {
	copied := make(map[string]string, len(mappings))
	for k, v := range mappings {
		copied[k] = v
	}
	return &MockLearningStore{Mappings: copied}
}

// Lookup returns the mapping for a simplified name.
func (m *MockLearningStore) Lookup(simplifiedName string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.Mappings[simplifiedName]
	return category, ok
}

// Record simplifies rawName and stores the mapping unless RecordError is set.
func (m *MockLearningStore) Record(rawName, category string) error {
	if m.RecordError != nil {
		return m.RecordError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Mappings == nil {
		m.Mappings = make(map[string]string)
	}
	name := textutils.SimplifyName(rawName)
	m.Mappings[name] = category
	m.Recorded = append(m.Recorded, LearningEntry{Name: name, Category: category})
	return nil
}
