package event

import "sync"

// AuthoritySet is an in-memory, name-keyed set of authority public
// keys, built by replaying AuthorityAdd/AuthorityRemove claims (e.g.
// while iterating a DAG with Iterator) or bootstrapped from config.
// Builder.Sign consults it for the pre-sign check §4.8 reserves.
type AuthoritySet struct {
	mu   sync.RWMutex
	keys map[string]string // name -> public key
}

// NewAuthoritySet returns an empty set.
func NewAuthoritySet() *AuthoritySet {
	return &AuthoritySet{keys: make(map[string]string)}
}

// Add records name as an authority with the given public key. It
// returns ErrAuthorityNameConflict if name is already registered under
// a different key.
func (s *AuthoritySet) Add(name, publicKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.keys[name]; ok && existing != publicKey {
		return ErrAuthorityNameConflict
	}
	s.keys[name] = publicKey
	return nil
}

// Remove drops name from the set. It returns
// ErrRemovedAuthorityDoesNotExist if name was never added.
func (s *AuthoritySet) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[name]; !ok {
		return ErrRemovedAuthorityDoesNotExist
	}
	delete(s.keys, name)
	return nil
}

// Has reports whether name is a currently-registered authority.
func (s *AuthoritySet) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.keys[name]
	return ok
}

// Len returns the number of registered authorities.
func (s *AuthoritySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.keys)
}

// Apply replays a single event's AuthorityAdd/AuthorityRemove claims
// against the set, in claim order. It does not stop at the first
// error; it accumulates and returns the last one, so a malformed claim
// in the middle of an event doesn't block later claims from applying.
func (s *AuthoritySet) Apply(e *Event) error {
	var lastErr error
	for _, c := range e.Claims() {
		switch claim := c.(type) {
		case AuthorityAdd:
			if err := s.Add(claim.Name, claim.PublicKey); err != nil {
				lastErr = err
			}
		case AuthorityRemove:
			if err := s.Remove(claim.Name); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}
