package memory

import (
	"context"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

var _ portsrepo.MappingReader = (*Store)(nil)

// PutMapping stores a mapping row, deactivating any active row for the same kind and key.
func (s *Store) PutMapping(m domain.AccountMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.IsActive {
		for i, existing := range s.mappings {
			if existing.TenantID == m.TenantID && existing.Kind == m.Kind && existing.Key == m.Key {
				s.mappings[i].IsActive = false
			}
		}
	}
	s.mappings = append(s.mappings, m)
}

// FindActiveMapping implements portsrepo.MappingReader.
func (s *Store) FindActiveMapping(_ context.Context, tenantID string, kind domain.MappingKind, key string) (*domain.AccountMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mappings {
		if m.TenantID == tenantID && m.Kind == kind && m.Key == key && m.IsActive {
			found := m
			return &found, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no active " + string(kind) + " mapping for " + key)
}
