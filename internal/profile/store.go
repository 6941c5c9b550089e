// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package profile

import (
	"sync"

	"github.com/toeirei/allsqladmin/internal/security"
)

// Sealer encrypts and decrypts single password strings.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(token string) (string, error)
}

// Store is the ordered profile collection bound to one file. Every mutating
// method validates first, then persists the whole collection; a failed write
// leaves the in-memory collection as it was.
type Store struct {
	mu       sync.RWMutex
	path     string
	sealer   Sealer
	profiles []Profile
}

// NewStore returns an empty store for path. Call Reload to read the file.
// sealer may be nil; the store then only handles profiles without
// passwords.
func NewStore(path string, sealer Sealer) *Store {
	return &Store{path: path, sealer: sealer, profiles: []Profile{}}
}

// Path is the backing file.
func (s *Store) Path() string { return s.path }

// Reload replaces the in-memory collection with the file contents. A
// *LoadWarning is returned for unreadable files; the store is then empty but
// usable.
func (s *Store) Reload() error {
	profiles, err := Load(s.path)
	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()
	return err
}

// List returns a copy of all profiles in insertion order.
func (s *Store) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Get returns the profile called name.
func (s *Store) Get(name string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(name); i >= 0 {
		return s.profiles[i], nil
	}
	return Profile{}, ErrNotFound
}

// Add validates p, seals password (when non-empty) into p.Password, appends
// and persists. Any Password already set on p is ignored.
func (s *Store) Add(p Profile, password security.Secret) error {
	if err := Validate(p); err != nil {
		return err
	}
	sealed, err := s.seal(password)
	if err != nil {
		return err
	}
	p.Password = sealed

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(p.Name) >= 0 {
		return ErrDuplicateName
	}
	next := make([]Profile, len(s.profiles), len(s.profiles)+1)
	copy(next, s.profiles)
	next = append(next, p)
	return s.commit(next)
}

// Edit replaces the profile called name with p at the same position. The
// password is re-sealed from the new plaintext; an empty password clears it.
func (s *Store) Edit(name string, p Profile, password security.Secret) error {
	if err := Validate(p); err != nil {
		return err
	}
	sealed, err := s.seal(password)
	if err != nil {
		return err
	}
	p.Password = sealed

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	if j := s.indexOf(p.Name); j >= 0 && j != i {
		return ErrDuplicateName
	}
	next := make([]Profile, len(s.profiles))
	copy(next, s.profiles)
	next[i] = p
	return s.commit(next)
}

// Remove deletes the profile called name.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	return s.removeAt(i)
}

// RemoveAt deletes the profile at position i.
func (s *Store) RemoveAt(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.profiles) {
		return ErrNotFound
	}
	return s.removeAt(i)
}

// DecryptPassword returns the plaintext password of p. Profiles without a
// password yield an empty Secret. A token that cannot be opened returns the
// sealer's error (a *crypt.DecryptionError) and an empty Secret, so the
// caller can prompt for the password instead.
func (s *Store) DecryptPassword(p Profile) (security.Secret, error) {
	if !p.HasPassword() {
		return nil, nil
	}
	if s.sealer == nil {
		return nil, ErrNoSealer
	}
	plain, err := s.sealer.Open(p.Password)
	if err != nil {
		return nil, err
	}
	return security.FromString(plain), nil
}

func (s *Store) seal(password security.Secret) (string, error) {
	if password.IsEmpty() {
		return "", nil
	}
	if s.sealer == nil {
		return "", ErrNoSealer
	}
	return s.sealer.Seal(password.Reveal())
}

// removeAt expects s.mu held.
func (s *Store) removeAt(i int) error {
	next := make([]Profile, 0, len(s.profiles)-1)
	next = append(next, s.profiles[:i]...)
	next = append(next, s.profiles[i+1:]...)
	return s.commit(next)
}

// commit persists next and, on success, makes it current. Expects s.mu held.
func (s *Store) commit(next []Profile) error {
	if err := Save(s.path, next); err != nil {
		return err
	}
	s.profiles = next
	return nil
}

// indexOf expects s.mu held.
func (s *Store) indexOf(name string) int {
	for i, p := range s.profiles {
		if p.Name == name {
			return i
		}
	}
	return -1
}
