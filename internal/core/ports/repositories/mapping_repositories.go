package repositories

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// MappingReader reads account mappings written by configuration screens.
type MappingReader interface {
	// FindActiveMapping returns the single active mapping of kind for key, or ErrNotFound.
	FindActiveMapping(ctx context.Context, tenantID string, kind domain.MappingKind, key string) (*domain.AccountMapping, error)
}
