package preview

import "sync"

// buildStatus tracks the last build result for the error banner.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

func (s *buildStatus) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

func (s *buildStatus) setSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = nil
	s.hasGoodBuild = true
}

func (s *buildStatus) failure() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError != nil, s.lastError
}

func (s *buildStatus) good() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasGoodBuild
}
