// Package memory provides the plain in-memory document store used by tests
// and ephemeral hosts.
package memory

import (
	"github.com/philharmoniedeparis/metascore-library-sub004/internal/core"
)

// Store is the in-memory document store with no persistence hook.
type Store struct {
	*core.Store
}

// NewStore constructs an empty in-memory document store.
func NewStore(opts ...core.StoreOption) *Store {
	return &Store{Store: core.NewStore(opts...)}
}
