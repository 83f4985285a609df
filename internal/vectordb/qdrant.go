package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hazz-dev/kbprobe/internal/config"
)

type qdrantStore struct {
	baseURL    string
	collection string
	client     *http.Client
}

// connectQdrant verifies the Qdrant REST endpoint is reachable and ensures
// the target collection exists (cosine distance, configured dimension).
func connectQdrant(ctx context.Context, cfg config.QdrantConfig) (*qdrantStore, error) {
	s := &qdrantStore{
		baseURL:    fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		collection: cfg.Collection,
		client:     &http.Client{},
	}

	if err := s.checkConnection(ctx); err != nil {
		return nil, err
	}
	if err := s.ensureCollection(ctx, cfg.EmbeddingDim); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *qdrantStore) DBType() string { return "qdrant" }

func (s *qdrantStore) CollectionName() string { return s.collection }

func (s *qdrantStore) Close() error { return nil }

func (s *qdrantStore) checkConnection(ctx context.Context) error {
	resp, err := s.get(ctx, "/collections")
	if err != nil {
		return fmt.Errorf("connecting to qdrant at %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant returned status %d on /collections", resp.StatusCode)
	}
	return nil
}

func (s *qdrantStore) ensureCollection(ctx context.Context, dim int) error {
	resp, err := s.get(ctx, "/collections/"+s.collection)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", s.collection, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return s.createCollection(ctx, dim)
	default:
		return fmt.Errorf("qdrant returned status %d for collection %q", resp.StatusCode, s.collection)
	}
}

func (s *qdrantStore) createCollection(ctx context.Context, dim int) error {
	body, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return fmt.Errorf("marshaling collection params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/collections/"+s.collection, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", s.collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("creating collection %q: qdrant returned status %d", s.collection, resp.StatusCode)
	}
	return nil
}

type qdrantCollectionInfo struct {
	Result struct {
		PointsCount         int64 `json:"points_count"`
		VectorsCount        int64 `json:"vectors_count"`
		IndexedVectorsCount int64 `json:"indexed_vectors_count"`
	} `json:"result"`
	Status string `json:"status"`
}

// Statistics reads collection counters from GET /collections/{name}.
func (s *qdrantStore) Statistics(ctx context.Context) (Stats, error) {
	resp, err := s.get(ctx, "/collections/"+s.collection)
	if err != nil {
		return Stats{}, fmt.Errorf("querying collection %q: %w", s.collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Stats{}, fmt.Errorf("qdrant returned status %d for collection %q", resp.StatusCode, s.collection)
	}

	var info qdrantCollectionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Stats{}, fmt.Errorf("decoding collection info: %w", err)
	}

	return Stats{
		Documents:      info.Result.PointsCount,
		Vectors:        info.Result.VectorsCount,
		IndexedVectors: info.Result.IndexedVectorsCount,
	}, nil
}

func (s *qdrantStore) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return s.client.Do(req)
}
