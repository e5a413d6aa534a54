package templateguard

import (
	"context"
	"sync"
)

// Archive is the append-only store of accepted schema versions. The archive
// is the sole owner of its history: entries are created once, never mutated,
// never deleted. Implementations must serialize Append per archive so that a
// latest-read plus append-write behaves as one check-and-set transaction; the
// second writer of a colliding version observes ErrDuplicateVersion.
//
// Backends live under store/ (filesystem layout, sqlite). Memory is an
// in-process implementation for library embedding and tests.
type Archive interface {
	// Latest returns the highest archived version, the current template.
	// Returns ErrEmptyArchive when nothing has been archived yet.
	Latest(ctx context.Context) (*Schema, error)
	// Get returns the schema archived under v, or ErrUnknownVersion.
	Get(ctx context.Context, v Version) (*Schema, error)
	// Append records a new version, or ErrDuplicateVersion if v exists.
	Append(ctx context.Context, s *Schema) error
	// Versions enumerates archived versions in ascending order.
	Versions(ctx context.Context) ([]Version, error)
}

// Memory is a mutex-serialized in-memory Archive.
type Memory struct {
	mu      sync.Mutex
	by      map[Version]*Schema
	ordered []Version // ascending
}

// NewMemory returns an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{by: make(map[Version]*Schema)}
}

func (m *Memory) Latest(ctx context.Context) (*Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ordered) == 0 {
		return nil, ErrEmptyArchive
	}
	return m.by[m.ordered[len(m.ordered)-1]], nil
}

func (m *Memory) Get(ctx context.Context, v Version) (*Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.by[v]
	if !ok {
		return nil, ErrUnknownVersion
	}
	return s, nil
}

func (m *Memory) Append(ctx context.Context, s *Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.by[s.Version]; dup {
		return ErrDuplicateVersion
	}
	m.by[s.Version] = s
	// Insert keeping ascending order; appends in practice arrive in order.
	i := len(m.ordered)
	for i > 0 && s.Version.Less(m.ordered[i-1]) {
		i--
	}
	m.ordered = append(m.ordered, Version{})
	copy(m.ordered[i+1:], m.ordered[i:])
	m.ordered[i] = s.Version
	return nil
}

func (m *Memory) Versions(ctx context.Context) ([]Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Version, len(m.ordered))
	copy(out, m.ordered)
	return out, nil
}
