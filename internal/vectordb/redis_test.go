package vectordb

import (
	"context"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
)

func TestRedis_Statistics(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "kb_articles")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("index_name"),
			mock.RedisString("kb_articles"),
			mock.RedisString("num_docs"),
			mock.RedisInt64(12),
			mock.RedisString("num_records"),
			mock.RedisInt64(96),
		)))

	s := &redisStore{client: c, index: "kb_articles"}
	stats, err := s.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Documents != 12 {
		t.Errorf("expected 12 documents, got %d", stats.Documents)
	}
	if stats.Vectors != 96 {
		t.Errorf("expected 96 vectors, got %d", stats.Vectors)
	}
}

func TestRedis_Statistics_StringCounters(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	// RESP2 replies carry FT.INFO counters as strings.
	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "kb_articles")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("num_docs"),
			mock.RedisString("7"),
			mock.RedisString("num_records"),
			mock.RedisString("21"),
		)))

	s := &redisStore{client: c, index: "kb_articles"}
	stats, err := s.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Documents != 7 {
		t.Errorf("expected 7 documents, got %d", stats.Documents)
	}
}

func TestRedis_Statistics_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "kb_articles")).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	s := &redisStore{client: c, index: "kb_articles"}
	stats, err := s.Statistics(context.Background())
	if err != nil {
		t.Fatalf("expected missing index to yield zero stats, got error: %v", err)
	}
	if stats.Documents != 0 {
		t.Errorf("expected 0 documents, got %d", stats.Documents)
	}
}

func TestRedis_Statistics_ConnectionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "kb_articles")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := &redisStore{client: c, index: "kb_articles"}
	if _, err := s.Statistics(context.Background()); err == nil {
		t.Fatal("expected error for connection failure")
	}
}
