package probe_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hazz-dev/kbprobe/internal/probe"
	"github.com/hazz-dev/kbprobe/internal/vectordb"
)

type fakeStore struct {
	stats  vectordb.Stats
	err    error
	closed bool
}

func (f *fakeStore) DBType() string         { return "qdrant" }
func (f *fakeStore) CollectionName() string { return "kb_articles" }
func (f *fakeStore) Close() error           { f.closed = true; return nil }

func (f *fakeStore) Statistics(_ context.Context) (vectordb.Stats, error) {
	return f.stats, f.err
}

func vdbConnector(s vectordb.Store, err error) probe.VectorDBConnector {
	return func(_ context.Context) (vectordb.Store, error) {
		return s, err
	}
}

func TestVectorDBProbe_Success(t *testing.T) {
	store := &fakeStore{stats: vectordb.Stats{Documents: 128, Vectors: 128, IndexedVectors: 128}}
	p := probe.NewVectorDB(vdbConnector(store, nil), 5*time.Second)

	result := p.Check(context.Background())
	if result.Status != probe.StatusPass {
		t.Fatalf("expected pass, got %q: %s", result.Status, result.Error)
	}
	if result.ProbeName != "vectordb" {
		t.Errorf("expected probe name 'vectordb', got %q", result.ProbeName)
	}
	if !strings.Contains(result.Detail, "documents=128") {
		t.Errorf("expected document count in detail, got %q", result.Detail)
	}
	if !store.closed {
		t.Error("expected the store to be closed after the check")
	}
}

func TestVectorDBProbe_ConstructionFailure(t *testing.T) {
	p := probe.NewVectorDB(vdbConnector(nil, errors.New("connection refused")), 5*time.Second)

	result := p.Check(context.Background())
	if result.Status != probe.StatusFail {
		t.Fatalf("expected fail, got %q", result.Status)
	}
	if !strings.Contains(result.Error, "connecting") {
		t.Errorf("expected construction error to mention connecting, got %q", result.Error)
	}
}

func TestVectorDBProbe_StatisticsFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("index corrupted")}
	p := probe.NewVectorDB(vdbConnector(store, nil), 5*time.Second)

	result := p.Check(context.Background())
	if result.Status != probe.StatusFail {
		t.Fatalf("expected fail, got %q", result.Status)
	}
	if !strings.Contains(result.Error, "statistics") {
		t.Errorf("expected operation error to mention statistics, got %q", result.Error)
	}
	if !store.closed {
		t.Error("expected the store to be closed even on failure")
	}
}
