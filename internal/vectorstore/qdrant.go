package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"threadqa/internal/contextutil"
)

// fetchBatchSize bounds the number of point IDs per Get request.
const fetchBatchSize = 256

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr, apiKey string) (*QdrantStore, error) {
	host, port, useTLS, err := parseEndpoint(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// parseEndpoint derives the gRPC host and port from a Qdrant HTTP URL.
// The gRPC port is the HTTP port + 1, or 6334 when no port is given.
func parseEndpoint(urlStr string) (host string, port int, useTLS bool, err error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host = parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port = 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}

	return host, port, parsedURL.Scheme == "https", nil
}

// PointID maps a subthread ID to the Qdrant point ID the offline indexer
// stored it under: unsigned integers map to numeric IDs, UUIDs are used as
// is, and anything else maps to a name-based (SHA-1) UUID in the URL namespace.
func PointID(subthreadID string) *qdrant.PointId {
	if n, err := strconv.ParseUint(subthreadID, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	if u, err := uuid.Parse(subthreadID); err == nil {
		return qdrant.NewID(u.String())
	}
	return qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(subthreadID)).String())
}

// pointKey renders a point ID as a map key.
func pointKey(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// FetchVectors retrieves stored vectors for the given subthread IDs in batches.
func (s *QdrantStore) FetchVectors(ctx context.Context, collection string, ids []string) (map[string][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors := make(map[string][]float32, len(ids))
	if len(ids) == 0 {
		return vectors, nil
	}

	for start := 0; start < len(ids); start += fetchBatchSize {
		end := min(start+fetchBatchSize, len(ids))
		batch := ids[start:end]

		byPoint := make(map[string]string, len(batch))
		pointIDs := make([]*qdrant.PointId, 0, len(batch))
		for _, id := range batch {
			pid := PointID(id)
			byPoint[pointKey(pid)] = id
			pointIDs = append(pointIDs, pid)
		}

		points, err := s.client.Get(ctx, &qdrant.GetPoints{
			CollectionName: collection,
			Ids:            pointIDs,
			WithPayload:    qdrant.NewWithPayload(false),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to fetch points", "collection", collection, "count", len(batch), "error", err)
			return nil, fmt.Errorf("failed to fetch points: %w", err)
		}

		for _, point := range points {
			subthreadID, ok := byPoint[pointKey(point.GetId())]
			if !ok {
				continue
			}
			data := pointVector(point)
			if len(data) == 0 {
				continue
			}
			vectors[subthreadID] = data
		}
	}

	logger.InfoContext(ctx, "fetched subthread vectors", "collection", collection, "requested", len(ids), "found", len(vectors))
	return vectors, nil
}

// pointVector returns the unnamed dense vector of a point. Servers fill
// either the dense oneof or the legacy data field.
func pointVector(point *qdrant.RetrievedPoint) []float32 {
	out := point.GetVectors().GetVector()
	if data := out.GetDense().GetData(); len(data) > 0 {
		return data
	}
	return out.GetData()
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
