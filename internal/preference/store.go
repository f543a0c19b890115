package preference

import (
	"fmt"
	"sync"

	"github.com/nikhilbhutani/voicenews/internal/models"
)

// Store maps user IDs to their selected category for the lifetime of the
// process. Later writes for the same user replace earlier ones.
type Store struct {
	mu    sync.RWMutex
	prefs map[string]models.Category
}

func NewStore() *Store {
	return &Store{prefs: make(map[string]models.Category)}
}

// Set records the category for userID. Values outside the enumeration
// never reach the map.
func (s *Store) Set(userID string, category models.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = category
	return nil
}

// Get returns the stored category. A missing entry is a normal outcome.
func (s *Store) Get(userID string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.prefs[userID]
	return c, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prefs)
}
