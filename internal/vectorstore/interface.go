package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks threadqa/internal/vectorstore VectorStore

import "context"

// VectorStore reads precomputed subthread embeddings from an index built
// offline. It never writes.
type VectorStore interface {
	// FetchVectors returns the stored vector for each subthread ID that has a point
	// in the collection. IDs without a point are omitted from the result.
	FetchVectors(ctx context.Context, collection string, ids []string) (map[string][]float32, error)

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
