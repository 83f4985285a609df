// Package vectordb provides a provider-switching handle to the vector
// database backing the knowledge base. Supported backends are Qdrant
// (REST API) and Redis 8 with the FT search module.
package vectordb

import (
	"context"
	"fmt"

	"github.com/hazz-dev/kbprobe/internal/config"
)

// Stats is a snapshot of collection-level counters.
type Stats struct {
	Documents      int64 `json:"documents"`
	Vectors        int64 `json:"vectors"`
	IndexedVectors int64 `json:"indexed_vectors"`
}

// Store is a connected vector database handle.
type Store interface {
	// DBType returns the backend identifier ("qdrant" or "redis").
	DBType() string
	// CollectionName returns the collection (or index) this handle targets.
	CollectionName() string
	// Statistics returns collection-level counters.
	Statistics(ctx context.Context) (Stats, error)
	// Close releases the underlying connection.
	Close() error
}

// Connect builds a Store for the configured backend and verifies
// connectivity. For Qdrant the target collection is created when absent,
// matching how the indexing pipeline bootstraps it.
func Connect(ctx context.Context, cfg config.VectorDBConfig) (Store, error) {
	switch cfg.Type {
	case "qdrant":
		return connectQdrant(ctx, cfg.Qdrant)
	case "redis":
		return connectRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown vectordb type %q", cfg.Type)
	}
}
